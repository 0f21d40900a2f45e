package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/masarify/finance-tracker-backend/internal/model"
	"github.com/masarify/finance-tracker-backend/internal/repository"
)

// InvestmentBuilder provides a fluent interface for creating test investments.
//
// Example usage:
//
//	// Simple stock holding with defaults
//	inv := testutil.NewInvestment(userID).Build(t, db)
//
//	// Customized holding
//	inv := testutil.NewInvestment(userID).
//	    AsGold(model.GoldK21).
//	    WithHolding(10, 45000, 4500).
//	    Build(t, db)
type InvestmentBuilder struct {
	inv model.Investment
}

// NewInvestment creates an InvestmentBuilder with stock defaults.
func NewInvestment(userID string) *InvestmentBuilder {
	now := time.Now().UTC()
	return &InvestmentBuilder{
		inv: model.Investment{
			ID:        MakeID(),
			UserID:    userID,
			AssetType: model.AssetStock,
			Name:      MakeName("Test Holding"),
			Stock:     &model.StockDetail{Ticker: MakeTicker("TST")},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// WithID sets a custom ID.
func (b *InvestmentBuilder) WithID(id string) *InvestmentBuilder {
	b.inv.ID = id
	return b
}

// WithName sets a custom name.
func (b *InvestmentBuilder) WithName(name string) *InvestmentBuilder {
	b.inv.Name = name
	return b
}

// AsStock makes the investment a stock holding with the given ticker.
func (b *InvestmentBuilder) AsStock(ticker string) *InvestmentBuilder {
	b.clearDetails()
	b.inv.AssetType = model.AssetStock
	b.inv.Stock = &model.StockDetail{Ticker: ticker}
	return b
}

// WithFundType marks a stock holding as a fund of the given type.
func (b *InvestmentBuilder) WithFundType(fundType string) *InvestmentBuilder {
	if b.inv.Stock != nil {
		b.inv.Stock.FundType = fundType
	}
	return b
}

// AsGold makes the investment a gold holding of the given unit type.
func (b *InvestmentBuilder) AsGold(goldType model.GoldType) *InvestmentBuilder {
	b.clearDetails()
	b.inv.AssetType = model.AssetGold
	b.inv.Gold = &model.GoldDetail{GoldType: goldType}
	return b
}

// AsCurrency makes the investment a foreign currency holding.
func (b *InvestmentBuilder) AsCurrency(code string) *InvestmentBuilder {
	b.clearDetails()
	b.inv.AssetType = model.AssetCurrency
	b.inv.Currency = &model.CurrencyDetail{CurrencyCode: code}
	return b
}

// AsDebt makes the investment a debt instrument.
func (b *InvestmentBuilder) AsDebt(subType model.DebtSubType, rate float64, maturity time.Time) *InvestmentBuilder {
	b.clearDetails()
	b.inv.AssetType = model.AssetDebt
	b.inv.Debt = &model.DebtDetail{
		SubType:           subType,
		Issuer:            "Test Bank",
		InterestRate:      rate,
		InterestFrequency: model.FrequencyMonthly,
		MaturityDate:      maturity,
	}
	return b
}

// Matured marks a debt holding as already matured.
func (b *InvestmentBuilder) Matured() *InvestmentBuilder {
	if b.inv.Debt != nil {
		b.inv.Debt.IsMatured = true
	}
	return b
}

// AsRealEstate makes the investment a property holding with the given
// installment plan.
func (b *InvestmentBuilder) AsRealEstate(totalPrice float64, freq model.Frequency, start, end time.Time) *InvestmentBuilder {
	b.clearDetails()
	b.inv.AssetType = model.AssetRealEstate
	b.inv.RealEstate = &model.RealEstateDetail{
		Location:              "Test City",
		InstallmentFrequency:  freq,
		TotalInstallmentPrice: totalPrice,
		InstallmentStartDate:  start,
		InstallmentEndDate:    end,
	}
	return b
}

// WithDownPayment sets the down payment on a real-estate holding.
func (b *InvestmentBuilder) WithDownPayment(amount float64) *InvestmentBuilder {
	if b.inv.RealEstate != nil {
		b.inv.RealEstate.DownPayment = amount
	}
	return b
}

// WithHolding sets the quantity, invested total and average cost.
func (b *InvestmentBuilder) WithHolding(quantity, invested, averageCost float64) *InvestmentBuilder {
	b.inv.TotalQuantity = quantity
	b.inv.TotalInvested = invested
	b.inv.AverageCost = averageCost
	return b
}

// Closed marks the holding as closed.
func (b *InvestmentBuilder) Closed() *InvestmentBuilder {
	b.inv.IsClosed = true
	return b
}

func (b *InvestmentBuilder) clearDetails() {
	b.inv.Stock = nil
	b.inv.Gold = nil
	b.inv.Currency = nil
	b.inv.Debt = nil
	b.inv.RealEstate = nil
}

// Build creates the investment in the database and returns it.
func (b *InvestmentBuilder) Build(t *testing.T, db *sql.DB) model.Investment {
	t.Helper()

	if err := repository.NewInvestmentRepository(db).Create(b.inv); err != nil {
		t.Fatalf("Failed to create test investment: %v", err)
	}
	return b.inv
}

// InstallmentBuilder provides a fluent interface for creating installments.
type InstallmentBuilder struct {
	inst model.Installment
}

// NewInstallment creates an InstallmentBuilder with defaults.
func NewInstallment(investmentID string, number int) *InstallmentBuilder {
	return &InstallmentBuilder{
		inst: model.Installment{
			ID:           MakeID(),
			InvestmentID: investmentID,
			Number:       number,
			Amount:       10000,
			DueDate:      time.Now().UTC(),
			Status:       model.InstallmentUnpaid,
		},
	}
}

// WithAmount sets the installment amount.
func (b *InstallmentBuilder) WithAmount(amount float64) *InstallmentBuilder {
	b.inst.Amount = amount
	return b
}

// WithDueDate sets the due date.
func (b *InstallmentBuilder) WithDueDate(date time.Time) *InstallmentBuilder {
	b.inst.DueDate = date
	return b
}

// Paid marks the installment as paid.
func (b *InstallmentBuilder) Paid() *InstallmentBuilder {
	b.inst.Status = model.InstallmentPaid
	return b
}

// AsDownPayment marks the installment as the down payment row.
func (b *InstallmentBuilder) AsDownPayment() *InstallmentBuilder {
	b.inst.IsDownPayment = true
	b.inst.Status = model.InstallmentPaid
	return b
}

// Build creates the installment in the database and returns it.
func (b *InstallmentBuilder) Build(t *testing.T, db *sql.DB) model.Installment {
	t.Helper()

	if err := repository.NewInstallmentRepository(db).Insert(b.inst); err != nil {
		t.Fatalf("Failed to create test installment: %v", err)
	}
	return b.inst
}

// TransactionBuilder provides a fluent interface for creating ledger entries.
type TransactionBuilder struct {
	tx model.Transaction
}

// NewLedgerEntry creates a TransactionBuilder with buy defaults.
func NewLedgerEntry(userID, investmentID string) *TransactionBuilder {
	return &TransactionBuilder{
		tx: model.Transaction{
			ID:           MakeID(),
			UserID:       userID,
			InvestmentID: investmentID,
			Type:         model.TxBuy,
			Quantity:     100,
			PricePerUnit: 10,
			Amount:       1000,
			Date:         time.Now().UTC(),
			CreatedAt:    time.Now().UTC(),
		},
	}
}

// WithType sets the transaction type.
func (b *TransactionBuilder) WithType(txType model.TransactionType) *TransactionBuilder {
	b.tx.Type = txType
	return b
}

// WithAmount sets the signed cash amount.
func (b *TransactionBuilder) WithAmount(amount float64) *TransactionBuilder {
	b.tx.Amount = amount
	return b
}

// WithProfitOrLoss sets the realized profit or loss.
func (b *TransactionBuilder) WithProfitOrLoss(pl float64) *TransactionBuilder {
	b.tx.ProfitOrLoss = pl
	return b
}

// WithDate sets the transaction date.
func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	b.tx.Date = date
	return b
}

// Build creates the transaction in the database and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	if err := repository.NewTransactionRepository(db).Insert(b.tx); err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}
	return b.tx
}

// RecordBuilder provides a fluent interface for creating financial records.
type RecordBuilder struct {
	rec model.FinancialRecord
}

// NewRecord creates a RecordBuilder with income defaults.
func NewRecord(userID string) *RecordBuilder {
	return &RecordBuilder{
		rec: model.FinancialRecord{
			ID:        MakeID(),
			UserID:    userID,
			Type:      model.RecordIncome,
			Amount:    5000,
			Category:  "salary",
			Date:      time.Now().UTC(),
			CreatedAt: time.Now().UTC(),
		},
	}
}

// AsExpense makes the record an expense.
func (b *RecordBuilder) AsExpense() *RecordBuilder {
	b.rec.Type = model.RecordExpense
	b.rec.Category = "rent"
	return b
}

// WithAmount sets the record amount.
func (b *RecordBuilder) WithAmount(amount float64) *RecordBuilder {
	b.rec.Amount = amount
	return b
}

// WithDate sets the record date.
func (b *RecordBuilder) WithDate(date time.Time) *RecordBuilder {
	b.rec.Date = date
	return b
}

// Fixed marks the record as a recurring estimate.
func (b *RecordBuilder) Fixed() *RecordBuilder {
	b.rec.IsFixed = true
	return b
}

// Build creates the record in the database and returns it.
func (b *RecordBuilder) Build(t *testing.T, db *sql.DB) model.FinancialRecord {
	t.Helper()

	if err := repository.NewRecordRepository(db).Create(b.rec); err != nil {
		t.Fatalf("Failed to create test record: %v", err)
	}
	return b.rec
}

// Price seeders

// SeedSecurityPrice stores a security price for valuation tests.
func SeedSecurityPrice(t *testing.T, db *sql.DB, ticker string, price float64) {
	t.Helper()

	err := repository.NewMarketDataRepository(db).UpsertSecurityPrice(model.SecurityPrice{
		Ticker: ticker,
		Price:  price,
		AsOf:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Failed to seed security price: %v", err)
	}
}

// SeedGoldPrice stores a gold price for valuation tests.
func SeedGoldPrice(t *testing.T, db *sql.DB, goldType model.GoldType, price float64) {
	t.Helper()

	err := repository.NewMarketDataRepository(db).UpsertGoldPrice(model.GoldPrice{
		GoldType: goldType,
		Price:    price,
		AsOf:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Failed to seed gold price: %v", err)
	}
}

// SeedExchangeRate stores an exchange rate for valuation tests.
func SeedExchangeRate(t *testing.T, db *sql.DB, code string, rate float64) {
	t.Helper()

	err := repository.NewMarketDataRepository(db).UpsertExchangeRate(model.ExchangeRate{
		CurrencyCode: code,
		Rate:         rate,
		AsOf:         time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Failed to seed exchange rate: %v", err)
	}
}
