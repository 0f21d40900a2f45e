package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/masarify/finance-tracker-backend/internal/api/request"
	"github.com/masarify/finance-tracker-backend/internal/apperrors"
	"github.com/masarify/finance-tracker-backend/internal/model"
	"github.com/masarify/finance-tracker-backend/internal/repository"
)

// RecordService handles standalone income and expense entries.
type RecordService struct {
	recordRepo *repository.RecordRepository
}

// NewRecordService creates a new RecordService with the provided repository dependencies.
func NewRecordService(recordRepo *repository.RecordRepository) *RecordService {
	return &RecordService{recordRepo: recordRepo}
}

// CreateRecord stores a new financial record for a user.
func (s *RecordService) CreateRecord(userID string, req request.CreateRecordRequest) (*model.FinancialRecord, error) {
	date, err := repository.ParseTime(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: bad record date", apperrors.ErrValidation)
	}

	rec := model.FinancialRecord{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      model.RecordType(req.Type),
		Amount:    req.Amount,
		Category:  req.Category,
		Date:      date,
		IsFixed:   req.IsFixed,
		Notes:     req.Notes,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.recordRepo.Create(rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRecords retrieves a user's financial records within an optional date
// range (zero times disable the bounds), newest first.
func (s *RecordService) ListRecords(userID string, from, to time.Time) ([]model.FinancialRecord, error) {
	return s.recordRepo.ListByUser(userID, from, to)
}
