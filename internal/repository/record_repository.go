package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/masarify/finance-tracker-backend/internal/apperrors"
	"github.com/masarify/finance-tracker-backend/internal/model"
)

// RecordRepository provides data access methods for the financial_records table.
type RecordRepository struct {
	db *sql.DB
}

// NewRecordRepository creates a new RecordRepository with the provided database connection.
func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Create inserts a new financial record.
func (r *RecordRepository) Create(rec model.FinancialRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.Exec(`
		INSERT INTO financial_records (id, user_id, type, amount, category, date, is_fixed, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.UserID, string(rec.Type), rec.Amount, rec.Category,
		FormatDate(rec.Date), rec.IsFixed, rec.Notes, FormatTimestamp(createdAt))
	if err != nil {
		return fmt.Errorf("failed to insert financial record: %w", err)
	}
	return nil
}

// GetByID retrieves one financial record owned by the given user.
// Returns apperrors.ErrRecordNotFound if no row matches.
func (r *RecordRepository) GetByID(userID, id string) (model.FinancialRecord, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, type, amount, category, date, is_fixed, notes, created_at
		FROM financial_records WHERE id = ? AND user_id = ?
	`, id, userID)
	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FinancialRecord{}, apperrors.ErrRecordNotFound
	}
	if err != nil {
		return model.FinancialRecord{}, fmt.Errorf("failed to query financial record: %w", err)
	}
	return rec, nil
}

// ListByUser retrieves a user's financial records within an optional date
// range, newest first. Zero times disable the corresponding bound.
func (r *RecordRepository) ListByUser(userID string, from, to time.Time) ([]model.FinancialRecord, error) {
	query := `
		SELECT id, user_id, type, amount, category, date, is_fixed, notes, created_at
		FROM financial_records
		WHERE user_id = ?
	`
	args := []any{userID}
	if !from.IsZero() {
		query += ` AND date >= ?`
		args = append(args, FormatDate(from))
	}
	if !to.IsZero() {
		query += ` AND date <= ?`
		args = append(args, FormatDate(to))
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query financial records: %w", err)
	}
	defer rows.Close()

	records := []model.FinancialRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan financial record: %w", err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating financial records: %w", err)
	}
	return records, nil
}

// SumByType totals a user's records of one type within a date range.
func (r *RecordRepository) SumByType(userID string, recType model.RecordType, from, to time.Time) (float64, error) {
	var total sql.NullFloat64
	err := r.db.QueryRow(`
		SELECT SUM(amount) FROM financial_records
		WHERE user_id = ? AND type = ? AND date >= ? AND date <= ?
	`, userID, string(recType), FormatDate(from), FormatDate(to)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum financial records: %w", err)
	}
	return total.Float64, nil
}

func scanRecord(scan func(dest ...any) error) (model.FinancialRecord, error) {
	var (
		rec             model.FinancialRecord
		recType         string
		dateStr         string
		createdAt       string
		category, notes sql.NullString
	)
	err := scan(
		&rec.ID, &rec.UserID, &recType, &rec.Amount, &category,
		&dateStr, &rec.IsFixed, &notes, &createdAt,
	)
	if err != nil {
		return model.FinancialRecord{}, err
	}
	rec.Type = model.RecordType(recType)
	rec.Category = category.String
	rec.Notes = notes.String
	if rec.Date, err = ParseTime(dateStr); err != nil {
		return model.FinancialRecord{}, fmt.Errorf("failed to parse date: %w", err)
	}
	if rec.CreatedAt, err = ParseTime(createdAt); err != nil {
		return model.FinancialRecord{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return rec, nil
}
