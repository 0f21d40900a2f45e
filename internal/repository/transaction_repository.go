package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/masarify/finance-tracker-backend/internal/apperrors"
	"github.com/masarify/finance-tracker-backend/internal/model"
)

// TransactionRepository provides data access methods for the transactions
// table. Rows are immutable once written; the deterministic IDs make inserts
// naturally idempotent.
type TransactionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// WithTx returns a copy of the repository scoped to the given transaction.
func (r *TransactionRepository) WithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *TransactionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Exists reports whether a transaction with the given ID is already stored.
func (r *TransactionRepository) Exists(id string) (bool, error) {
	var found int
	err := r.getQuerier().QueryRow(`SELECT 1 FROM transactions WHERE id = ?`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check transaction existence: %w", err)
	}
	return true, nil
}

// Insert stores a new ledger entry.
func (r *TransactionRepository) Insert(t model.Transaction) error {
	query := `
		INSERT INTO transactions
			(id, user_id, investment_id, type, quantity, price_per_unit, fees,
			 amount, profit_or_loss, date, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.getQuerier().Exec(query,
		t.ID, t.UserID, t.InvestmentID, string(t.Type),
		t.Quantity, t.PricePerUnit, t.Fees,
		t.Amount, t.ProfitOrLoss, FormatDate(t.Date), t.Description,
		FormatTimestamp(createdAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// GetByID retrieves one transaction.
// Returns apperrors.ErrTransactionNotFound if no row matches.
func (r *TransactionRepository) GetByID(id string) (model.Transaction, error) {
	row := r.getQuerier().QueryRow(`
		SELECT id, user_id, investment_id, type, quantity, price_per_unit, fees,
		       amount, profit_or_loss, date, description, created_at
		FROM transactions WHERE id = ?
	`, id)
	t, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to query transaction: %w", err)
	}
	return t, nil
}

// ListByInvestment retrieves all transactions of one investment, oldest first.
func (r *TransactionRepository) ListByInvestment(investmentID string) ([]model.Transaction, error) {
	return r.list(`
		SELECT id, user_id, investment_id, type, quantity, price_per_unit, fees,
		       amount, profit_or_loss, date, description, created_at
		FROM transactions
		WHERE investment_id = ?
		ORDER BY date ASC, created_at ASC
	`, investmentID)
}

// ListByUser retrieves all transactions of one user, oldest first.
func (r *TransactionRepository) ListByUser(userID string) ([]model.Transaction, error) {
	return r.list(`
		SELECT id, user_id, investment_id, type, quantity, price_per_unit, fees,
		       amount, profit_or_loss, date, description, created_at
		FROM transactions
		WHERE user_id = ?
		ORDER BY date ASC, created_at ASC
	`, userID)
}

func (r *TransactionRepository) list(query string, args ...any) ([]model.Transaction, error) {
	rows, err := r.getQuerier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

// SumRealizedPL totals the booked profit of all sell transactions for a user.
func (r *TransactionRepository) SumRealizedPL(userID string) (float64, error) {
	var total sql.NullFloat64
	err := r.getQuerier().QueryRow(`
		SELECT SUM(profit_or_loss) FROM transactions WHERE user_id = ? AND type = ?
	`, userID, string(model.TxSell)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum realized profit: %w", err)
	}
	return total.Float64, nil
}

// SumMaturedDebtCash totals the principal returned by matured debt
// instruments. Amounts are stored negative (cash inflow), so the sum is
// negated for reporting.
func (r *TransactionRepository) SumMaturedDebtCash(userID string) (float64, error) {
	var total sql.NullFloat64
	err := r.getQuerier().QueryRow(`
		SELECT SUM(amount) FROM transactions WHERE user_id = ? AND type = ?
	`, userID, string(model.TxMaturedDebt)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum matured debt cash: %w", err)
	}
	return -total.Float64, nil
}

func scanTransaction(scan func(dest ...any) error) (model.Transaction, error) {
	var (
		t                  model.Transaction
		txType             string
		dateStr, createdAt string
		description        sql.NullString
	)
	err := scan(
		&t.ID, &t.UserID, &t.InvestmentID, &txType,
		&t.Quantity, &t.PricePerUnit, &t.Fees,
		&t.Amount, &t.ProfitOrLoss, &dateStr, &description, &createdAt,
	)
	if err != nil {
		return model.Transaction{}, err
	}
	t.Type = model.TransactionType(txType)
	t.Description = description.String
	if t.Date, err = ParseTime(dateStr); err != nil {
		return model.Transaction{}, fmt.Errorf("failed to parse date: %w", err)
	}
	if t.CreatedAt, err = ParseTime(createdAt); err != nil {
		return model.Transaction{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return t, nil
}
