package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/masarify/finance-tracker-backend/internal/ledger"
	"github.com/masarify/finance-tracker-backend/internal/model"
	"github.com/masarify/finance-tracker-backend/internal/repository"
)

// SweeperService retires debt instruments that have reached their maturity
// date: the principal comes back as a matured-debt ledger entry and the
// holding is closed. Entries carry deterministic IDs derived from the
// maturity date, so running a sweep twice changes nothing.
type SweeperService struct {
	investmentRepo    *repository.InvestmentRepository
	investmentService *InvestmentService
	cron              *cron.Cron
}

// NewSweeperService creates a new SweeperService with the provided dependencies.
func NewSweeperService(
	investmentRepo *repository.InvestmentRepository,
	investmentService *InvestmentService,
) *SweeperService {
	return &SweeperService{
		investmentRepo:    investmentRepo,
		investmentService: investmentService,
	}
}

// Sweep processes every open debt instrument whose maturity date is on or
// before now. Each instrument is handled independently; one failure does not
// stop the rest.
//
// Returns:
//   - int: number of instruments matured by this run
//   - error: the first error encountered, after all instruments were attempted
func (s *SweeperService) Sweep(ctx context.Context, now time.Time) (int, error) {
	due, err := s.investmentRepo.ListMaturedDebtDue(now)
	if err != nil {
		return 0, err
	}

	matured := 0
	var firstErr error
	for _, inv := range due {
		intent := ledger.Intent{
			UserID:       inv.UserID,
			InvestmentID: inv.ID,
			Type:         model.TxMaturedDebt,
			Amount:       inv.TotalInvested,
			Date:         inv.Debt.MaturityDate,
			Description:  fmt.Sprintf("Matured: %s", inv.Name),
		}
		_, created, err := s.investmentService.recordIntent(ctx, inv.UserID, inv.ID, intent, nil)
		if err != nil {
			log.Printf("maturity sweep: failed to retire %s: %v", inv.ID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if created {
			matured++
		}
	}
	return matured, firstErr
}

// Start schedules recurring sweeps with the given cron spec and optionally
// runs one sweep immediately.
func (s *SweeperService) Start(cronSpec string, runOnStart bool) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(cronSpec, func() {
		if count, err := s.Sweep(context.Background(), time.Now().UTC()); err != nil {
			log.Printf("maturity sweep failed: %v", err)
		} else if count > 0 {
			log.Printf("maturity sweep retired %d instrument(s)", count)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule maturity sweep: %w", err)
	}
	s.cron.Start()

	if runOnStart {
		go func() {
			if _, err := s.Sweep(context.Background(), time.Now().UTC()); err != nil {
				log.Printf("startup maturity sweep failed: %v", err)
			}
		}()
	}
	return nil
}

// Stop halts the scheduled sweeps and waits for a running one to finish.
func (s *SweeperService) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}
