package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/masarify/finance-tracker-backend/internal/api/request"
	"github.com/masarify/finance-tracker-backend/internal/apperrors"
	"github.com/masarify/finance-tracker-backend/internal/ledger"
	"github.com/masarify/finance-tracker-backend/internal/model"
	"github.com/masarify/finance-tracker-backend/internal/repository"
	"github.com/masarify/finance-tracker-backend/internal/schedule"
)

// InvestmentService owns the holding write path. Every mutation runs inside
// one database transaction: the ledger row and the holding update commit or
// roll back together, guarded by the holding's optimistic version counter.
type InvestmentService struct {
	db              *sql.DB
	investmentRepo  *repository.InvestmentRepository
	installmentRepo *repository.InstallmentRepository
	transactionRepo *repository.TransactionRepository
}

// NewInvestmentService creates a new InvestmentService with the provided repository dependencies.
func NewInvestmentService(
	db *sql.DB,
	investmentRepo *repository.InvestmentRepository,
	installmentRepo *repository.InstallmentRepository,
	transactionRepo *repository.TransactionRepository,
) *InvestmentService {
	return &InvestmentService{
		db:              db,
		investmentRepo:  investmentRepo,
		installmentRepo: installmentRepo,
		transactionRepo: transactionRepo,
	}
}

// CreateInvestment opens a new holding for a user.
//
// Real-estate holdings get their installment schedule generated up front,
// with a paid down-payment row and an unpaid maintenance row when those
// amounts are set; the invested total is then derived from the paid rows.
// Debt instruments book their principal as an initial purchase so the ledger
// carries the full money trail from day one.
//
// Parameters:
//   - ctx: request context
//   - userID: owner of the holding
//   - req: validated creation request
//
// Returns:
//   - *model.Investment: the stored holding including generated installments
//   - error: schedule errors for bad plans, wrapped storage errors otherwise
func (s *InvestmentService) CreateInvestment(ctx context.Context, userID string, req request.CreateInvestmentRequest) (*model.Investment, error) {
	now := time.Now().UTC()
	inv := model.Investment{
		ID:        uuid.New().String(),
		UserID:    userID,
		AssetType: model.AssetType(req.AssetType),
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var installments []model.Installment

	switch inv.AssetType {
	case model.AssetStock:
		inv.Stock = &model.StockDetail{Ticker: req.Ticker, FundType: req.FundType}
	case model.AssetGold:
		inv.Gold = &model.GoldDetail{GoldType: model.GoldType(req.GoldType)}
	case model.AssetCurrency:
		inv.Currency = &model.CurrencyDetail{CurrencyCode: req.CurrencyCode}
	case model.AssetDebt:
		maturity, err := repository.ParseTime(req.MaturityDate)
		if err != nil {
			return nil, fmt.Errorf("%w: bad maturity date", apperrors.ErrValidation)
		}
		inv.Debt = &model.DebtDetail{
			SubType:           model.DebtSubType(req.DebtSubType),
			Issuer:            req.Issuer,
			InterestRate:      req.InterestRate,
			InterestFrequency: model.Frequency(req.InterestFrequency),
			MaturityDate:      maturity,
		}
	case model.AssetRealEstate:
		detail, generated, err := buildRealEstate(inv.ID, req, now)
		if err != nil {
			return nil, err
		}
		inv.RealEstate = detail
		installments = generated
	default:
		return nil, fmt.Errorf("%w: unknown asset type %q", apperrors.ErrValidation, req.AssetType)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.investmentRepo.WithTx(tx).Create(inv); err != nil {
		return nil, err
	}
	if len(installments) > 0 {
		instRepo := s.installmentRepo.WithTx(tx)
		for _, inst := range installments {
			if err := instRepo.Insert(inst); err != nil {
				return nil, err
			}
		}
		paid, err := instRepo.SumPaid(inv.ID)
		if err != nil {
			return nil, err
		}
		inv.TotalInvested = paid
		if err := s.investmentRepo.WithTx(tx).UpdateHolding(inv, inv.Version); err != nil {
			return nil, err
		}
		inv.Version++
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit investment creation: %w", err)
	}

	if inv.RealEstate != nil {
		inv.RealEstate.Installments = installments
	}

	// Book the debt principal through the regular ledger path so the
	// conservation invariant covers it.
	if inv.AssetType == model.AssetDebt && req.Principal > 0 {
		purchaseDate := req.PurchaseDate
		if purchaseDate == "" {
			purchaseDate = now.Format("2006-01-02")
		}
		if _, _, err := s.RecordTransaction(ctx, userID, inv.ID, request.CreateTransactionRequest{
			Type:         string(model.TxBuy),
			Quantity:     1,
			PricePerUnit: req.Principal,
			Date:         purchaseDate,
		}); err != nil {
			return nil, err
		}
		stored, err := s.investmentRepo.GetByID(userID, inv.ID)
		if err != nil {
			return nil, err
		}
		return &stored, nil
	}

	return &inv, nil
}

// buildRealEstate assembles the detail struct and the full installment set
// for a new property holding.
func buildRealEstate(investmentID string, req request.CreateInvestmentRequest, now time.Time) (*model.RealEstateDetail, []model.Installment, error) {
	start, err := repository.ParseTime(req.InstallmentStartDate)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: bad installment start date", apperrors.ErrValidation)
	}
	var end time.Time
	if req.InstallmentEndDate != "" {
		if end, err = repository.ParseTime(req.InstallmentEndDate); err != nil {
			return nil, nil, fmt.Errorf("%w: bad installment end date", apperrors.ErrValidation)
		}
	}

	detail := &model.RealEstateDetail{
		Location:              req.Location,
		DownPayment:           req.DownPayment,
		MaintenanceAmount:     req.MaintenanceAmount,
		InstallmentFrequency:  model.Frequency(req.InstallmentFrequency),
		TotalInstallmentPrice: req.TotalInstallmentPrice,
		InstallmentStartDate:  start,
		InstallmentEndDate:    end,
	}

	installments, err := schedule.Generate(schedule.Rule{
		InvestmentID:      investmentID,
		Frequency:         detail.InstallmentFrequency,
		StartDate:         start,
		EndDate:           end,
		TotalCount:        req.InstallmentCount,
		InstallmentAmount: req.InstallmentAmount,
		TotalPrice:        req.TotalInstallmentPrice,
	})
	if err != nil {
		return nil, nil, err
	}
	if end.IsZero() {
		// Count-driven plan: the last generated due date bounds the range.
		end = installments[len(installments)-1].DueDate
		detail.InstallmentEndDate = end
	}

	if req.DownPayment > 0 {
		installments = append(installments, model.Installment{
			ID:            uuid.New().String(),
			InvestmentID:  investmentID,
			Number:        0,
			Amount:        req.DownPayment,
			DueDate:       now,
			Status:        model.InstallmentPaid,
			Description:   "Down payment",
			IsDownPayment: true,
		})
	}
	if req.MaintenanceAmount > 0 {
		dueDate := end
		if req.MaintenancePaymentDate != "" {
			if dueDate, err = repository.ParseTime(req.MaintenancePaymentDate); err != nil {
				return nil, nil, fmt.Errorf("%w: bad maintenance payment date", apperrors.ErrValidation)
			}
			detail.MaintenancePaymentDate = &dueDate
		}
		installments = append(installments, model.Installment{
			ID:            uuid.New().String(),
			InvestmentID:  investmentID,
			Number:        len(installments) + 1,
			Amount:        req.MaintenanceAmount,
			DueDate:       dueDate,
			Status:        model.InstallmentUnpaid,
			Description:   "Maintenance",
			IsMaintenance: true,
		})
	}

	schedule.Sort(installments)
	return detail, installments, nil
}

// GetInvestment retrieves one holding. Real-estate holdings come back with
// their installments loaded.
func (s *InvestmentService) GetInvestment(userID, investmentID string) (*model.Investment, error) {
	inv, err := s.investmentRepo.GetByID(userID, investmentID)
	if err != nil {
		return nil, err
	}
	if inv.RealEstate != nil {
		installments, err := s.installmentRepo.ListByInvestment(inv.ID)
		if err != nil {
			return nil, err
		}
		inv.RealEstate.Installments = installments
	}
	return &inv, nil
}

// ListInvestments retrieves a user's holdings, optionally only open ones.
func (s *InvestmentService) ListInvestments(userID string, openOnly bool) ([]model.Investment, error) {
	return s.investmentRepo.ListByUser(userID, openOnly)
}

// ListTransactions retrieves the ledger of one holding, oldest first.
func (s *InvestmentService) ListTransactions(userID, investmentID string) ([]model.Transaction, error) {
	if _, err := s.investmentRepo.GetByID(userID, investmentID); err != nil {
		return nil, err
	}
	return s.transactionRepo.ListByInvestment(investmentID)
}

// RecordTransaction applies a ledger intent to a holding.
//
// The transaction ID is derived from the intent, so replaying the same
// request returns the already-stored entry without touching the holding.
// The insert and the holding update share one database transaction; a lost
// version check is retried once against fresh state before giving up with
// apperrors.ErrConflict.
//
// Returns:
//   - *model.Transaction: the stored ledger entry
//   - bool: true when this call created the entry, false on an idempotent replay
//   - error: validation errors, apperrors.ErrInsufficientQuantity on oversell,
//     apperrors.ErrInvestmentClosed for writes against closed holdings
func (s *InvestmentService) RecordTransaction(ctx context.Context, userID, investmentID string, req request.CreateTransactionRequest) (*model.Transaction, bool, error) {
	date, err := repository.ParseTime(req.Date)
	if err != nil {
		return nil, false, fmt.Errorf("%w: bad transaction date", apperrors.ErrValidation)
	}

	intent := ledger.Intent{
		UserID:       userID,
		InvestmentID: investmentID,
		Type:         model.TransactionType(req.Type),
		Quantity:     req.Quantity,
		PricePerUnit: req.PricePerUnit,
		Fees:         req.Fees,
		Amount:       req.Amount,
		Date:         date,
		Sequence:     req.Sequence,
		Description:  req.Description,
	}

	return s.recordIntent(ctx, userID, investmentID, intent, nil)
}

// recordIntent retries the write path once on a lost version check. The
// optional beforeApply hook runs inside the same database transaction,
// before the holding update, so callers can piggyback related writes.
func (s *InvestmentService) recordIntent(ctx context.Context, userID, investmentID string, intent ledger.Intent, beforeApply func(tx *sql.Tx) error) (*model.Transaction, bool, error) {
	var (
		result  *model.Transaction
		created bool
	)
	backoff := retry.WithMaxRetries(1, retry.NewConstant(25*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		stored, wasCreated, err := s.applyIntent(userID, investmentID, intent, beforeApply)
		if err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				return retry.RetryableError(err)
			}
			return err
		}
		result, created = stored, wasCreated
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

// applyIntent runs one attempt of the write path.
func (s *InvestmentService) applyIntent(userID, investmentID string, intent ledger.Intent, beforeApply func(tx *sql.Tx) error) (*model.Transaction, bool, error) {
	inv, err := s.investmentRepo.GetByID(userID, investmentID)
	if err != nil {
		return nil, false, err
	}
	if inv.IsClosed && intent.Type != model.TxMaturedDebt {
		return nil, false, apperrors.ErrInvestmentClosed
	}

	entry, err := ledger.Build(intent, inv)
	if err != nil {
		return nil, false, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	txRepo := s.transactionRepo.WithTx(tx)
	exists, err := txRepo.Exists(entry.Transaction.ID)
	if err != nil {
		return nil, false, err
	}
	if exists {
		stored, err := txRepo.GetByID(entry.Transaction.ID)
		if err != nil {
			return nil, false, err
		}
		return &stored, false, nil
	}

	if err := txRepo.Insert(entry.Transaction); err != nil {
		return nil, false, err
	}

	if beforeApply != nil {
		if err := beforeApply(tx); err != nil {
			return nil, false, err
		}
	}

	updated := ledger.Apply(inv, entry.Delta)
	if inv.AssetType == model.AssetRealEstate {
		// Installments are the source of truth for property cost;
		// ledger deltas never override them.
		paid, err := s.installmentRepo.WithTx(tx).SumPaid(inv.ID)
		if err != nil {
			return nil, false, err
		}
		updated.TotalInvested = paid
	}
	if err := s.investmentRepo.WithTx(tx).UpdateHolding(updated, inv.Version); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit ledger entry: %w", err)
	}
	return &entry.Transaction, true, nil
}

// PayInstallment marks a real-estate installment paid and books the payment
// in the ledger, atomically. The invested total is recomputed from the paid
// installment rows afterwards.
func (s *InvestmentService) PayInstallment(ctx context.Context, userID, investmentID string, number int, req request.PayInstallmentRequest) (*model.Transaction, error) {
	inv, err := s.investmentRepo.GetByID(userID, investmentID)
	if err != nil {
		return nil, err
	}
	if inv.AssetType != model.AssetRealEstate {
		return nil, fmt.Errorf("%w: installments exist only on real-estate holdings", apperrors.ErrValidation)
	}

	inst, err := s.installmentRepo.GetByNumber(investmentID, number)
	if err != nil {
		return nil, err
	}
	if inst.Status == model.InstallmentPaid {
		return nil, apperrors.ErrInstallmentAlreadyPaid
	}

	paymentDate := time.Now().UTC()
	if req.Date != "" {
		if paymentDate, err = repository.ParseTime(req.Date); err != nil {
			return nil, fmt.Errorf("%w: bad payment date", apperrors.ErrValidation)
		}
	}

	intent := ledger.Intent{
		UserID:       userID,
		InvestmentID: investmentID,
		Type:         model.TxPayment,
		Amount:       inst.Amount,
		Date:         paymentDate,
		Sequence:     number,
		Description:  fmt.Sprintf("Installment %d", number),
	}

	stored, created, err := s.recordIntent(ctx, userID, investmentID, intent, func(tx *sql.Tx) error {
		return s.installmentRepo.WithTx(tx).MarkPaid(inst.ID, req.ChequeNumber)
	})
	if err != nil {
		return nil, err
	}
	if !created {
		if err := s.reflipInstallment(userID, investmentID, inst.ID, true, req.ChequeNumber); err != nil {
			return nil, err
		}
	}
	return stored, nil
}

// UnpayInstallment reverses a paid installment: the row flips back to unpaid,
// a reversing ledger entry is booked and the invested total is re-derived
// from the remaining paid rows, atomically.
func (s *InvestmentService) UnpayInstallment(ctx context.Context, userID, investmentID string, number int) (*model.Transaction, error) {
	inv, err := s.investmentRepo.GetByID(userID, investmentID)
	if err != nil {
		return nil, err
	}
	if inv.AssetType != model.AssetRealEstate {
		return nil, fmt.Errorf("%w: installments exist only on real-estate holdings", apperrors.ErrValidation)
	}

	inst, err := s.installmentRepo.GetByNumber(investmentID, number)
	if err != nil {
		return nil, err
	}
	if inst.Status != model.InstallmentPaid {
		return nil, apperrors.ErrInstallmentNotPaid
	}

	intent := ledger.Intent{
		UserID:       userID,
		InvestmentID: investmentID,
		Type:         model.TxReversal,
		Amount:       inst.Amount,
		Date:         time.Now().UTC(),
		Sequence:     number,
		Description:  fmt.Sprintf("Installment %d reversal", number),
	}

	stored, created, err := s.recordIntent(ctx, userID, investmentID, intent, func(tx *sql.Tx) error {
		return s.installmentRepo.WithTx(tx).MarkUnpaid(inst.ID)
	})
	if err != nil {
		return nil, err
	}
	if !created {
		if err := s.reflipInstallment(userID, investmentID, inst.ID, false, ""); err != nil {
			return nil, err
		}
	}
	return stored, nil
}

// reflipInstallment applies a status flip whose ledger entry already exists
// from an earlier pay/unpay cycle on the same day. The deterministic entry ID
// makes the second cycle replay the first one's row, so the flip and the
// invested recompute run here instead of inside the ledger write path.
func (s *InvestmentService) reflipInstallment(userID, investmentID, installmentID string, paid bool, chequeNumber string) error {
	inv, err := s.investmentRepo.GetByID(userID, investmentID)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	instRepo := s.installmentRepo.WithTx(tx)
	if paid {
		err = instRepo.MarkPaid(installmentID, chequeNumber)
	} else {
		err = instRepo.MarkUnpaid(installmentID)
	}
	if err != nil {
		return err
	}

	total, err := instRepo.SumPaid(investmentID)
	if err != nil {
		return err
	}
	inv.TotalInvested = total
	if err := s.investmentRepo.WithTx(tx).UpdateHolding(inv, inv.Version); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit installment flip: %w", err)
	}
	return nil
}

// RecalculateHoldings rebuilds every holding of a user from its transaction
// history. The cached position columns are treated as disposable: quantity,
// invested total and average cost are re-derived by replaying the ledger,
// and real-estate invested totals come from the paid installment rows.
func (s *InvestmentService) RecalculateHoldings(ctx context.Context, userID string) ([]model.Investment, error) {
	investments, err := s.investmentRepo.ListByUser(userID, false)
	if err != nil {
		return nil, err
	}

	rebuilt := make([]model.Investment, 0, len(investments))
	for _, inv := range investments {
		fresh, err := s.recalculateHolding(ctx, userID, inv.ID)
		if err != nil {
			return nil, err
		}
		rebuilt = append(rebuilt, *fresh)
	}
	return rebuilt, nil
}

// recalculateHolding replays one holding's ledger inside a database
// transaction, retried once when a concurrent write takes the version.
func (s *InvestmentService) recalculateHolding(ctx context.Context, userID, investmentID string) (*model.Investment, error) {
	var result model.Investment
	backoff := retry.WithMaxRetries(1, retry.NewConstant(25*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		inv, err := s.investmentRepo.GetByID(userID, investmentID)
		if err != nil {
			return err
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		transactions, err := s.transactionRepo.WithTx(tx).ListByInvestment(investmentID)
		if err != nil {
			return err
		}
		inv.TotalQuantity, inv.TotalInvested, inv.AverageCost = ledger.Replay(transactions)
		if inv.AssetType == model.AssetRealEstate {
			paid, err := s.installmentRepo.WithTx(tx).SumPaid(investmentID)
			if err != nil {
				return err
			}
			inv.TotalInvested = paid
		}

		if err := s.investmentRepo.WithTx(tx).UpdateHolding(inv, inv.Version); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				return retry.RetryableError(err)
			}
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit recalculation: %w", err)
		}
		inv.Version++
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateSchedule regenerates a real-estate installment plan. Paid rows keep
// their state, the plan columns are rewritten and the invested total is
// recomputed, all in one database transaction.
func (s *InvestmentService) UpdateSchedule(userID, investmentID string, req request.UpdateScheduleRequest) (*model.Investment, error) {
	inv, err := s.investmentRepo.GetByID(userID, investmentID)
	if err != nil {
		return nil, err
	}
	if inv.AssetType != model.AssetRealEstate {
		return nil, fmt.Errorf("%w: schedules exist only on real-estate holdings", apperrors.ErrValidation)
	}

	start, err := repository.ParseTime(req.InstallmentStartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad installment start date", apperrors.ErrValidation)
	}
	var end time.Time
	if req.InstallmentEndDate != "" {
		if end, err = repository.ParseTime(req.InstallmentEndDate); err != nil {
			return nil, fmt.Errorf("%w: bad installment end date", apperrors.ErrValidation)
		}
	}

	existing, err := s.installmentRepo.ListByInvestment(investmentID)
	if err != nil {
		return nil, err
	}

	regenerated, err := schedule.Regenerate(schedule.Rule{
		InvestmentID:      investmentID,
		Frequency:         model.Frequency(req.InstallmentFrequency),
		StartDate:         start,
		EndDate:           end,
		TotalCount:        req.InstallmentCount,
		InstallmentAmount: req.InstallmentAmount,
		TotalPrice:        req.TotalInstallmentPrice,
	}, existing)
	if err != nil {
		return nil, err
	}
	if end.IsZero() {
		for _, inst := range regenerated {
			if !inst.IsDownPayment && !inst.IsMaintenance && inst.DueDate.After(end) {
				end = inst.DueDate
			}
		}
	}

	detail := *inv.RealEstate
	detail.InstallmentFrequency = model.Frequency(req.InstallmentFrequency)
	detail.TotalInstallmentPrice = req.TotalInstallmentPrice
	detail.InstallmentStartDate = start
	detail.InstallmentEndDate = end

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	instRepo := s.installmentRepo.WithTx(tx)
	if err := instRepo.ReplaceForInvestment(investmentID, regenerated); err != nil {
		return nil, err
	}
	if err := s.investmentRepo.WithTx(tx).UpdateSchedulePlan(investmentID, detail); err != nil {
		return nil, err
	}

	paid, err := instRepo.SumPaid(investmentID)
	if err != nil {
		return nil, err
	}
	inv.TotalInvested = paid
	if err := s.investmentRepo.WithTx(tx).UpdateHolding(inv, inv.Version); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit schedule update: %w", err)
	}

	inv.RealEstate = &detail
	inv.RealEstate.Installments = regenerated
	inv.Version++
	return &inv, nil
}

// CloseInvestment marks a holding closed. Closed holdings accept no further
// ledger writes and drop out of the open-holdings aggregation.
func (s *InvestmentService) CloseInvestment(userID, investmentID string) error {
	inv, err := s.investmentRepo.GetByID(userID, investmentID)
	if err != nil {
		return err
	}
	if inv.IsClosed {
		return nil
	}
	inv.IsClosed = true
	return s.investmentRepo.UpdateHolding(inv, inv.Version)
}
