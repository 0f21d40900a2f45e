// Package ledger builds immutable ledger entries from user intents. All
// functions are pure: they read the current holding state and return the
// transaction plus the holding delta to apply, without touching storage.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/masarify/finance-tracker-backend/internal/apperrors"
	"github.com/masarify/finance-tracker-backend/internal/model"
)

// txNamespace seeds the deterministic transaction IDs. Replaying the same
// intent always yields the same UUID, which makes the write path idempotent.
var txNamespace = uuid.MustParse("7f1c3c52-9a4e-4b8a-9a6e-2f0d1c5b8e31")

// Intent is a requested ledger operation against a holding. Quantity,
// PricePerUnit and Fees drive buys and sells; Amount drives the flat-amount
// types (payment, dividend, interest, income, expense, matured principal).
// Sequence disambiguates multiple same-day intents of the same type.
type Intent struct {
	UserID       string
	InvestmentID string
	Type         model.TransactionType
	Quantity     float64
	PricePerUnit float64
	Fees         float64
	Amount       float64
	Date         time.Time
	Sequence     int
	Description  string
}

// Delta is the holding mutation an entry applies. UnitPrice is set on buys
// so the average cost can be reweighted from prices alone: fees raise the
// invested total but never the average cost.
type Delta struct {
	Quantity  float64
	Invested  float64
	UnitPrice float64
	Close     bool
	Mature    bool
}

// Entry pairs a transaction with its holding delta.
type Entry struct {
	Transaction model.Transaction
	Delta       Delta
}

// TransactionID derives the deterministic UUID for an intent.
func TransactionID(intent Intent) string {
	seed := fmt.Sprintf("%s|%s|%s|%d",
		intent.InvestmentID, intent.Type, intent.Date.Format("2006-01-02"), intent.Sequence)
	return uuid.NewSHA1(txNamespace, []byte(seed)).String()
}

// Build turns an intent into a ledger entry against the given holding.
//
// Parameters:
//   - intent: the requested operation
//   - holding: the current holding state, used for average-cost math
//
// Returns:
//   - Entry: the transaction and holding delta to apply atomically
//   - error: apperrors.ErrValidation on malformed intents,
//     apperrors.ErrInsufficientQuantity when a sell exceeds the held quantity
func Build(intent Intent, holding model.Investment) (Entry, error) {
	if err := validate(intent); err != nil {
		return Entry{}, err
	}

	switch intent.Type {
	case model.TxBuy:
		return buildBuy(intent), nil
	case model.TxSell:
		return buildSell(intent, holding)
	case model.TxPayment:
		return buildFlat(intent, intent.Amount, Delta{Invested: intent.Amount}), nil
	case model.TxReversal:
		return buildFlat(intent, -intent.Amount, Delta{Invested: -intent.Amount}), nil
	case model.TxExpense:
		return buildFlat(intent, intent.Amount, Delta{}), nil
	case model.TxDividend, model.TxInterest, model.TxIncome:
		return buildFlat(intent, -intent.Amount, Delta{}), nil
	case model.TxMaturedDebt:
		return buildFlat(intent, -intent.Amount, Delta{Close: true, Mature: true}), nil
	default:
		return Entry{}, fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidation, intent.Type)
	}
}

func validate(intent Intent) error {
	if intent.Quantity < 0 || intent.PricePerUnit < 0 || intent.Fees < 0 || intent.Amount < 0 {
		return fmt.Errorf("%w: negative quantity, price, fees or amount", apperrors.ErrValidation)
	}
	switch intent.Type {
	case model.TxBuy, model.TxSell:
		if intent.Quantity == 0 {
			return fmt.Errorf("%w: quantity is required", apperrors.ErrValidation)
		}
	}
	return nil
}

// buildBuy records a purchase. Cost basis grows by quantity*price plus fees.
func buildBuy(intent Intent) Entry {
	amount := round2(intent.Quantity*intent.PricePerUnit + intent.Fees)
	return Entry{
		Transaction: newTransaction(intent, amount, 0),
		Delta:       Delta{Quantity: intent.Quantity, Invested: amount, UnitPrice: intent.PricePerUnit},
	}
}

// buildSell records a disposal under the average-cost method: the cost basis
// shrinks by averageCost*quantity and the average itself is unchanged. Fees
// reduce the proceeds.
func buildSell(intent Intent, holding model.Investment) (Entry, error) {
	if intent.Quantity > holding.TotalQuantity {
		return Entry{}, fmt.Errorf("%w: selling %v of %v held",
			apperrors.ErrInsufficientQuantity, intent.Quantity, holding.TotalQuantity)
	}
	proceeds := round2(intent.Quantity*intent.PricePerUnit - intent.Fees)
	costOut := round2(intent.Quantity * holding.AverageCost)
	profit := round2(proceeds - costOut)

	tx := newTransaction(intent, -proceeds, profit)
	return Entry{
		Transaction: tx,
		Delta:       Delta{Quantity: -intent.Quantity, Invested: -costOut},
	}, nil
}

func buildFlat(intent Intent, signedAmount float64, delta Delta) Entry {
	return Entry{
		Transaction: newTransaction(intent, round2(signedAmount), 0),
		Delta:       delta,
	}
}

func newTransaction(intent Intent, amount, profit float64) model.Transaction {
	return model.Transaction{
		ID:           TransactionID(intent),
		UserID:       intent.UserID,
		InvestmentID: intent.InvestmentID,
		Type:         intent.Type,
		Quantity:     intent.Quantity,
		PricePerUnit: intent.PricePerUnit,
		Fees:         intent.Fees,
		Amount:       amount,
		ProfitOrLoss: profit,
		Date:         intent.Date,
		Description:  intent.Description,
	}
}

// Apply folds a delta into a holding. Buys reweight the average cost from
// unit prices; sells leave it untouched. A flat position resets the average
// to zero.
func Apply(holding model.Investment, delta Delta) model.Investment {
	oldQuantity := holding.TotalQuantity
	holding.TotalQuantity = round6(holding.TotalQuantity + delta.Quantity)
	holding.TotalInvested = round2(holding.TotalInvested + delta.Invested)

	switch {
	case holding.TotalQuantity <= 0:
		holding.AverageCost = 0
	case delta.Quantity > 0:
		weighted := oldQuantity*holding.AverageCost + delta.Quantity*delta.UnitPrice
		holding.AverageCost = weighted / holding.TotalQuantity
	}

	if delta.Close {
		holding.IsClosed = true
	}
	if delta.Mature && holding.Debt != nil {
		holding.Debt.IsMatured = true
	}
	return holding
}

// Replay folds a holding's full transaction history, oldest first, back into
// its position totals. The fold mirrors Apply: buys reweight the average cost
// from unit prices, sells release quantity at the running average, payments
// and reversals move the invested total only. Close and maturity flags are
// not touched; they belong to the stored holding.
func Replay(transactions []model.Transaction) (totalQuantity, totalInvested, averageCost float64) {
	var holding model.Investment
	for _, t := range transactions {
		var delta Delta
		switch t.Type {
		case model.TxBuy:
			delta = Delta{Quantity: t.Quantity, Invested: t.Amount, UnitPrice: t.PricePerUnit}
		case model.TxSell:
			delta = Delta{Quantity: -t.Quantity, Invested: -round2(t.Quantity * holding.AverageCost)}
		case model.TxPayment, model.TxReversal:
			// Amount carries the sign: payments positive, reversals negative.
			delta = Delta{Invested: t.Amount}
		}
		holding = Apply(holding, delta)
	}
	return holding.TotalQuantity, holding.TotalInvested, holding.AverageCost
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// round6 keeps fractional quantities (gold grams, fund units) stable.
func round6(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(6).Float64()
	return f
}
