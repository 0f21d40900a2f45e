package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/masarify/finance-tracker-backend/internal/apperrors"
	"github.com/masarify/finance-tracker-backend/internal/model"
)

// InstallmentRepository provides data access methods for the installments table.
type InstallmentRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewInstallmentRepository creates a new InstallmentRepository with the provided database connection.
func NewInstallmentRepository(db *sql.DB) *InstallmentRepository {
	return &InstallmentRepository{db: db}
}

// WithTx returns a copy of the repository scoped to the given transaction.
func (r *InstallmentRepository) WithTx(tx *sql.Tx) *InstallmentRepository {
	return &InstallmentRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *InstallmentRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// ListByInvestment retrieves all installments of an investment ordered by
// due date, then number.
func (r *InstallmentRepository) ListByInvestment(investmentID string) ([]model.Installment, error) {
	query := `
		SELECT id, investment_id, number, amount, due_date, status,
		       cheque_number, description, is_down_payment, is_maintenance
		FROM installments
		WHERE investment_id = ?
		ORDER BY due_date ASC, number ASC
	`
	rows, err := r.getQuerier().Query(query, investmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query installments: %w", err)
	}
	defer rows.Close()

	installments := []model.Installment{}
	for rows.Next() {
		inst, err := scanInstallment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		installments = append(installments, inst)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating installments: %w", err)
	}
	return installments, nil
}

// GetByNumber retrieves one installment by its number within an investment.
// Returns apperrors.ErrInstallmentNotFound if no row matches.
func (r *InstallmentRepository) GetByNumber(investmentID string, number int) (model.Installment, error) {
	query := `
		SELECT id, investment_id, number, amount, due_date, status,
		       cheque_number, description, is_down_payment, is_maintenance
		FROM installments
		WHERE investment_id = ? AND number = ?
	`
	row := r.getQuerier().QueryRow(query, investmentID, number)
	inst, err := scanInstallment(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Installment{}, apperrors.ErrInstallmentNotFound
	}
	if err != nil {
		return model.Installment{}, fmt.Errorf("failed to query installment: %w", err)
	}
	return inst, nil
}

// Insert adds a single installment row.
func (r *InstallmentRepository) Insert(inst model.Installment) error {
	query := `
		INSERT INTO installments
			(id, investment_id, number, amount, due_date, status,
			 cheque_number, description, is_down_payment, is_maintenance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.getQuerier().Exec(query,
		inst.ID, inst.InvestmentID, inst.Number, inst.Amount,
		FormatDate(inst.DueDate), string(inst.Status),
		inst.ChequeNumber, inst.Description, inst.IsDownPayment, inst.IsMaintenance,
	)
	if err != nil {
		return fmt.Errorf("failed to insert installment: %w", err)
	}
	return nil
}

// ReplaceForInvestment swaps the full installment set of an investment.
// Used after schedule regeneration, which carries paid rows over itself.
func (r *InstallmentRepository) ReplaceForInvestment(investmentID string, installments []model.Installment) error {
	if _, err := r.getQuerier().Exec(`DELETE FROM installments WHERE investment_id = ?`, investmentID); err != nil {
		return fmt.Errorf("failed to clear installments: %w", err)
	}
	for _, inst := range installments {
		inst.InvestmentID = investmentID
		if err := r.Insert(inst); err != nil {
			return err
		}
	}
	return nil
}

// MarkPaid flips an installment to paid and records the cheque number.
// Returns apperrors.ErrInstallmentAlreadyPaid when it was paid before.
func (r *InstallmentRepository) MarkPaid(id, chequeNumber string) error {
	result, err := r.getQuerier().Exec(`
		UPDATE installments
		SET status = ?, cheque_number = ?
		WHERE id = ? AND status = ?
	`, string(model.InstallmentPaid), chequeNumber, id, string(model.InstallmentUnpaid))
	if err != nil {
		return fmt.Errorf("failed to mark installment paid: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check installment update: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrInstallmentAlreadyPaid
	}
	return nil
}

// MarkUnpaid flips a paid installment back to unpaid and clears its cheque
// number. Returns apperrors.ErrInstallmentNotPaid when it was not paid.
func (r *InstallmentRepository) MarkUnpaid(id string) error {
	result, err := r.getQuerier().Exec(`
		UPDATE installments
		SET status = ?, cheque_number = NULL
		WHERE id = ? AND status = ?
	`, string(model.InstallmentUnpaid), id, string(model.InstallmentPaid))
	if err != nil {
		return fmt.Errorf("failed to mark installment unpaid: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check installment update: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrInstallmentNotPaid
	}
	return nil
}

// SumPaid totals the amounts of all paid installments of an investment,
// including down-payment and maintenance rows.
func (r *InstallmentRepository) SumPaid(investmentID string) (float64, error) {
	var total sql.NullFloat64
	err := r.getQuerier().QueryRow(`
		SELECT SUM(amount) FROM installments
		WHERE investment_id = ? AND status = ?
	`, investmentID, string(model.InstallmentPaid)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum paid installments: %w", err)
	}
	return total.Float64, nil
}

func scanInstallment(scan func(dest ...any) error) (model.Installment, error) {
	var (
		inst                  model.Installment
		dueDate, status       string
		chequeNumber, details sql.NullString
	)
	err := scan(
		&inst.ID, &inst.InvestmentID, &inst.Number, &inst.Amount, &dueDate, &status,
		&chequeNumber, &details, &inst.IsDownPayment, &inst.IsMaintenance,
	)
	if err != nil {
		return model.Installment{}, err
	}
	inst.Status = model.InstallmentStatus(status)
	inst.ChequeNumber = chequeNumber.String
	inst.Description = details.String
	if inst.DueDate, err = ParseTime(dueDate); err != nil {
		return model.Installment{}, fmt.Errorf("failed to parse due_date: %w", err)
	}
	return inst, nil
}
