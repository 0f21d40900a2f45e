package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/masarify/finance-tracker-backend/internal/apperrors"
	"github.com/masarify/finance-tracker-backend/internal/model"
)

// InvestmentRepository provides data access methods for the investments table.
// The holding columns (quantity, invested, average cost, closed flags) are
// guarded by an optimistic version counter; see UpdateHolding.
type InvestmentRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewInvestmentRepository creates a new InvestmentRepository with the provided database connection.
func NewInvestmentRepository(db *sql.DB) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

// WithTx returns a copy of the repository scoped to the given transaction.
func (r *InvestmentRepository) WithTx(tx *sql.Tx) *InvestmentRepository {
	return &InvestmentRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *InvestmentRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const investmentColumns = `
	id, user_id, asset_type, name, is_closed,
	total_quantity, total_invested, average_cost, version, created_at, updated_at,
	ticker, fund_type, gold_type, currency_code,
	debt_sub_type, issuer, interest_rate, interest_frequency, maturity_date, is_matured,
	location, down_payment, maintenance_amount, maintenance_payment_date,
	installment_frequency, total_installment_price, installment_start_date, installment_end_date`

// Create inserts a new investment row including its asset-class detail columns.
func (r *InvestmentRepository) Create(inv model.Investment) error {
	query := `
		INSERT INTO investments (` + investmentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	args := []any{
		inv.ID, inv.UserID, string(inv.AssetType), inv.Name, inv.IsClosed,
		inv.TotalQuantity, inv.TotalInvested, inv.AverageCost, inv.Version,
		FormatTimestamp(inv.CreatedAt), FormatTimestamp(inv.UpdatedAt),
	}
	args = append(args, detailArgs(inv)...)

	if _, err := r.getQuerier().Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert investment: %w", err)
	}
	return nil
}

// detailArgs flattens the populated detail struct into the nullable detail
// columns, in schema order.
func detailArgs(inv model.Investment) []any {
	var (
		ticker, fundType, goldType, currencyCode         sql.NullString
		debtSubType, issuer, interestFrequency           sql.NullString
		interestRate                                     sql.NullFloat64
		maturityDate                                     sql.NullString
		isMatured                                        bool
		location, maintenancePaymentDate                 sql.NullString
		downPayment, maintenanceAmount, totalInstallment sql.NullFloat64
		installmentFrequency                             sql.NullString
		installmentStart, installmentEnd                 sql.NullString
	)

	switch {
	case inv.Stock != nil:
		ticker = sql.NullString{String: inv.Stock.Ticker, Valid: true}
		fundType = sql.NullString{String: inv.Stock.FundType, Valid: inv.Stock.FundType != ""}
	case inv.Gold != nil:
		goldType = sql.NullString{String: string(inv.Gold.GoldType), Valid: true}
	case inv.Currency != nil:
		currencyCode = sql.NullString{String: inv.Currency.CurrencyCode, Valid: true}
	case inv.Debt != nil:
		debtSubType = sql.NullString{String: string(inv.Debt.SubType), Valid: true}
		issuer = sql.NullString{String: inv.Debt.Issuer, Valid: inv.Debt.Issuer != ""}
		interestRate = sql.NullFloat64{Float64: inv.Debt.InterestRate, Valid: true}
		interestFrequency = sql.NullString{String: string(inv.Debt.InterestFrequency), Valid: true}
		maturityDate = sql.NullString{String: FormatDate(inv.Debt.MaturityDate), Valid: true}
		isMatured = inv.Debt.IsMatured
	case inv.RealEstate != nil:
		re := inv.RealEstate
		location = sql.NullString{String: re.Location, Valid: re.Location != ""}
		downPayment = sql.NullFloat64{Float64: re.DownPayment, Valid: true}
		maintenanceAmount = sql.NullFloat64{Float64: re.MaintenanceAmount, Valid: true}
		if re.MaintenancePaymentDate != nil {
			maintenancePaymentDate = sql.NullString{String: FormatDate(*re.MaintenancePaymentDate), Valid: true}
		}
		installmentFrequency = sql.NullString{String: string(re.InstallmentFrequency), Valid: true}
		totalInstallment = sql.NullFloat64{Float64: re.TotalInstallmentPrice, Valid: true}
		installmentStart = sql.NullString{String: FormatDate(re.InstallmentStartDate), Valid: true}
		installmentEnd = sql.NullString{String: FormatDate(re.InstallmentEndDate), Valid: true}
	}

	return []any{
		ticker, fundType, goldType, currencyCode,
		debtSubType, issuer, interestRate, interestFrequency, maturityDate, isMatured,
		location, downPayment, maintenanceAmount, maintenancePaymentDate,
		installmentFrequency, totalInstallment, installmentStart, installmentEnd,
	}
}

// GetByID retrieves one investment owned by the given user.
// Returns apperrors.ErrInvestmentNotFound if no row matches.
func (r *InvestmentRepository) GetByID(userID, id string) (model.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE id = ? AND user_id = ?`

	row := r.getQuerier().QueryRow(query, id, userID)
	inv, err := scanInvestment(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Investment{}, apperrors.ErrInvestmentNotFound
	}
	if err != nil {
		return model.Investment{}, fmt.Errorf("failed to query investment: %w", err)
	}
	return inv, nil
}

// ListByUser retrieves a user's investments, optionally restricted to open
// holdings. Results are ordered by creation time.
func (r *InvestmentRepository) ListByUser(userID string, openOnly bool) ([]model.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE user_id = ?`
	if openOnly {
		query += ` AND is_closed = 0`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.getQuerier().Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query investments: %w", err)
	}
	defer rows.Close()

	investments := []model.Investment{}
	for rows.Next() {
		inv, err := scanInvestment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		investments = append(investments, inv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating investments: %w", err)
	}
	return investments, nil
}

// ListMaturedDebtDue retrieves open debt instruments whose maturity date is
// on or before the given day, across all users.
func (r *InvestmentRepository) ListMaturedDebtDue(now time.Time) ([]model.Investment, error) {
	query := `SELECT ` + investmentColumns + `
		FROM investments
		WHERE asset_type = ? AND is_closed = 0 AND is_matured = 0 AND maturity_date <= ?
		ORDER BY maturity_date ASC`

	rows, err := r.getQuerier().Query(query, string(model.AssetDebt), FormatDate(now))
	if err != nil {
		return nil, fmt.Errorf("failed to query matured debt instruments: %w", err)
	}
	defer rows.Close()

	investments := []model.Investment{}
	for rows.Next() {
		inv, err := scanInvestment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		investments = append(investments, inv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating investments: %w", err)
	}
	return investments, nil
}

// ListOpenTickers retrieves the distinct tickers of open stock holdings
// across all users, for market data refreshes.
func (r *InvestmentRepository) ListOpenTickers() ([]string, error) {
	return r.listDistinct(`
		SELECT DISTINCT ticker FROM investments
		WHERE asset_type = ? AND is_closed = 0 AND ticker IS NOT NULL
	`, string(model.AssetStock))
}

// ListOpenCurrencyCodes retrieves the distinct currency codes of open
// currency holdings across all users.
func (r *InvestmentRepository) ListOpenCurrencyCodes() ([]string, error) {
	return r.listDistinct(`
		SELECT DISTINCT currency_code FROM investments
		WHERE asset_type = ? AND is_closed = 0 AND currency_code IS NOT NULL
	`, string(model.AssetCurrency))
}

func (r *InvestmentRepository) listDistinct(query string, args ...any) ([]string, error) {
	rows, err := r.getQuerier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct investment keys: %w", err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan investment key: %w", err)
		}
		values = append(values, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating investment keys: %w", err)
	}
	return values, nil
}

// UpdateHolding writes the mutable holding columns with an optimistic
// version check. The write succeeds only when the stored version still
// matches expectedVersion; otherwise apperrors.ErrConflict is returned and
// the caller may re-read and retry.
func (r *InvestmentRepository) UpdateHolding(inv model.Investment, expectedVersion int64) error {
	isMatured := inv.Debt != nil && inv.Debt.IsMatured

	query := `
		UPDATE investments
		SET total_quantity = ?, total_invested = ?, average_cost = ?,
		    is_closed = ?, is_matured = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?
	`
	result, err := r.getQuerier().Exec(query,
		inv.TotalQuantity, inv.TotalInvested, inv.AverageCost,
		inv.IsClosed, isMatured, FormatTimestamp(time.Now().UTC()),
		inv.ID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check holding update: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrConflict
	}
	return nil
}

// UpdateSchedulePlan rewrites the real-estate plan columns after a schedule
// regeneration.
func (r *InvestmentRepository) UpdateSchedulePlan(id string, re model.RealEstateDetail) error {
	query := `
		UPDATE investments
		SET installment_frequency = ?, total_installment_price = ?,
		    installment_start_date = ?, installment_end_date = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.getQuerier().Exec(query,
		string(re.InstallmentFrequency), re.TotalInstallmentPrice,
		FormatDate(re.InstallmentStartDate), FormatDate(re.InstallmentEndDate),
		FormatTimestamp(time.Now().UTC()), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule plan: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check schedule plan update: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrInvestmentNotFound
	}
	return nil
}

// scanInvestment maps one row onto a model.Investment, populating the detail
// struct that matches the asset type.
func scanInvestment(scan func(dest ...any) error) (model.Investment, error) {
	var (
		inv                    model.Investment
		assetType              string
		createdAt, updatedAt   string
		ticker, fundType       sql.NullString
		goldType, currencyCode sql.NullString
		debtSubType, issuer    sql.NullString
		interestRate           sql.NullFloat64
		interestFrequency      sql.NullString
		maturityDate           sql.NullString
		isMatured              bool
		location               sql.NullString
		downPayment            sql.NullFloat64
		maintenanceAmount      sql.NullFloat64
		maintenancePaymentDate sql.NullString
		installmentFrequency   sql.NullString
		totalInstallmentPrice  sql.NullFloat64
		installmentStart       sql.NullString
		installmentEnd         sql.NullString
	)

	err := scan(
		&inv.ID, &inv.UserID, &assetType, &inv.Name, &inv.IsClosed,
		&inv.TotalQuantity, &inv.TotalInvested, &inv.AverageCost, &inv.Version,
		&createdAt, &updatedAt,
		&ticker, &fundType, &goldType, &currencyCode,
		&debtSubType, &issuer, &interestRate, &interestFrequency, &maturityDate, &isMatured,
		&location, &downPayment, &maintenanceAmount, &maintenancePaymentDate,
		&installmentFrequency, &totalInstallmentPrice, &installmentStart, &installmentEnd,
	)
	if err != nil {
		return model.Investment{}, err
	}

	inv.AssetType = model.AssetType(assetType)
	if inv.CreatedAt, err = ParseTime(createdAt); err != nil {
		return model.Investment{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if inv.UpdatedAt, err = ParseTime(updatedAt); err != nil {
		return model.Investment{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	switch inv.AssetType {
	case model.AssetStock:
		inv.Stock = &model.StockDetail{Ticker: ticker.String, FundType: fundType.String}
	case model.AssetGold:
		inv.Gold = &model.GoldDetail{GoldType: model.GoldType(goldType.String)}
	case model.AssetCurrency:
		inv.Currency = &model.CurrencyDetail{CurrencyCode: currencyCode.String}
	case model.AssetDebt:
		detail := &model.DebtDetail{
			SubType:           model.DebtSubType(debtSubType.String),
			Issuer:            issuer.String,
			InterestRate:      interestRate.Float64,
			InterestFrequency: model.Frequency(interestFrequency.String),
			IsMatured:         isMatured,
		}
		if maturityDate.Valid {
			if detail.MaturityDate, err = ParseTime(maturityDate.String); err != nil {
				return model.Investment{}, fmt.Errorf("failed to parse maturity_date: %w", err)
			}
		}
		inv.Debt = detail
	case model.AssetRealEstate:
		detail := &model.RealEstateDetail{
			Location:              location.String,
			DownPayment:           downPayment.Float64,
			MaintenanceAmount:     maintenanceAmount.Float64,
			InstallmentFrequency:  model.Frequency(installmentFrequency.String),
			TotalInstallmentPrice: totalInstallmentPrice.Float64,
		}
		if maintenancePaymentDate.Valid {
			d, err := ParseTime(maintenancePaymentDate.String)
			if err != nil {
				return model.Investment{}, fmt.Errorf("failed to parse maintenance_payment_date: %w", err)
			}
			detail.MaintenancePaymentDate = &d
		}
		if installmentStart.Valid {
			if detail.InstallmentStartDate, err = ParseTime(installmentStart.String); err != nil {
				return model.Investment{}, fmt.Errorf("failed to parse installment_start_date: %w", err)
			}
		}
		if installmentEnd.Valid {
			if detail.InstallmentEndDate, err = ParseTime(installmentEnd.String); err != nil {
				return model.Investment{}, fmt.Errorf("failed to parse installment_end_date: %w", err)
			}
		}
		inv.RealEstate = detail
	}

	return inv, nil
}
