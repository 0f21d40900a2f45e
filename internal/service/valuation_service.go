package service

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/masarify/finance-tracker-backend/internal/apperrors"
	"github.com/masarify/finance-tracker-backend/internal/marketdata"
	"github.com/masarify/finance-tracker-backend/internal/model"
	"github.com/masarify/finance-tracker-backend/internal/repository"
)

// ValuationService produces the portfolio summary. Market data refreshes run
// concurrently per feed slice; a failing slice keeps its stale prices and is
// logged instead of failing the valuation.
type ValuationService struct {
	investmentRepo  *repository.InvestmentRepository
	marketDataRepo  *repository.MarketDataRepository
	transactionRepo *repository.TransactionRepository
	recordRepo      *repository.RecordRepository
	settingsRepo    *repository.SettingsRepository
	aggregation     *AggregationService
	feed            marketdata.Client
}

// NewValuationService creates a new ValuationService with the provided
// dependencies. The feed client may be nil when no feed is configured;
// valuations then price from stored data only.
func NewValuationService(
	investmentRepo *repository.InvestmentRepository,
	marketDataRepo *repository.MarketDataRepository,
	transactionRepo *repository.TransactionRepository,
	recordRepo *repository.RecordRepository,
	settingsRepo *repository.SettingsRepository,
	aggregation *AggregationService,
	feed marketdata.Client,
) *ValuationService {
	return &ValuationService{
		investmentRepo:  investmentRepo,
		marketDataRepo:  marketDataRepo,
		transactionRepo: transactionRepo,
		recordRepo:      recordRepo,
		settingsRepo:    settingsRepo,
		aggregation:     aggregation,
		feed:            feed,
	}
}

// RefreshMarketData pulls the three feed slices concurrently and stores the
// latest observations. Slice failures are logged and swallowed so one broken
// endpoint degrades only its own prices.
func (s *ValuationService) RefreshMarketData(ctx context.Context) error {
	if s.feed == nil {
		return nil
	}

	tickers, err := s.investmentRepo.ListOpenTickers()
	if err != nil {
		return err
	}
	codes, err := s.investmentRepo.ListOpenCurrencyCodes()
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		prices, err := s.feed.SecurityPrices(ctx, tickers)
		if err != nil {
			log.Printf("market data refresh: securities slice failed: %v", err)
			return nil
		}
		for _, p := range prices {
			if err := s.marketDataRepo.UpsertSecurityPrice(p); err != nil {
				return err
			}
		}
		return nil
	})

	g.Go(func() error {
		prices, err := s.feed.GoldPrices(ctx)
		if err != nil {
			log.Printf("market data refresh: gold slice failed: %v", err)
			return nil
		}
		for _, p := range prices {
			if err := s.marketDataRepo.UpsertGoldPrice(p); err != nil {
				return err
			}
		}
		return nil
	})

	g.Go(func() error {
		rates, err := s.feed.ExchangeRates(ctx, codes)
		if err != nil {
			log.Printf("market data refresh: rates slice failed: %v", err)
			return nil
		}
		for _, r := range rates {
			if err := s.marketDataRepo.UpsertExchangeRate(r); err != nil {
				return err
			}
		}
		return nil
	})

	return g.Wait()
}

// Valuate assembles the full portfolio summary for one user: refreshed and
// bucketed holdings, realized profit, matured-debt cash, projected interest
// and the current month's cash flow.
func (s *ValuationService) Valuate(ctx context.Context, userID string) (*model.PortfolioSummary, error) {
	if err := s.RefreshMarketData(ctx); err != nil {
		return nil, err
	}

	classes, exposure, interest, err := s.aggregation.AggregateOpenHoldings(userID)
	if err != nil {
		return nil, err
	}

	summary := &model.PortfolioSummary{
		UserID:            userID,
		AsOf:              time.Now().UTC(),
		Classes:           classes,
		ProjectedInterest: interest,
		Exposure:          exposure,
	}
	for _, class := range classes {
		summary.TotalInvested += class.TotalInvested
		summary.CurrentValue += class.CurrentValue
	}
	summary.UnrealizedPL = summary.CurrentValue - summary.TotalInvested
	summary.UnrealizedPct = ProfitLossPercent(summary.TotalInvested, summary.CurrentValue)

	if summary.RealizedPL, err = s.transactionRepo.SumRealizedPL(userID); err != nil {
		return nil, err
	}
	if summary.MaturedDebtCash, err = s.transactionRepo.SumMaturedDebtCash(userID); err != nil {
		return nil, err
	}

	now := summary.AsOf
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)
	inflows, err := s.recordRepo.SumByType(userID, model.RecordIncome, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	outflows, err := s.recordRepo.SumByType(userID, model.RecordExpense, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	summary.CashFlow = model.CashFlowSummary{
		Inflows:  inflows,
		Outflows: outflows,
		Net:      inflows - outflows,
	}

	return summary, nil
}

// SetFeedToken stores the feed access token encrypted at rest. It takes
// effect for feed clients constructed after the change.
func (s *ValuationService) SetFeedToken(token string) error {
	if token == "" {
		return apperrors.ErrValidation
	}
	return s.settingsRepo.SetEncrypted(repository.FeedTokenKey, token)
}

// FeedToken retrieves the decrypted feed access token, or "" when none has
// been stored yet.
func (s *ValuationService) FeedToken() (string, error) {
	token, err := s.settingsRepo.GetEncrypted(repository.FeedTokenKey)
	if errors.Is(err, apperrors.ErrSettingNotFound) {
		return "", nil
	}
	return token, err
}
