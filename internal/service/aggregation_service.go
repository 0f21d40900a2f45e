package service

import (
	"math"
	"sort"

	"github.com/masarify/finance-tracker-backend/internal/model"
	"github.com/masarify/finance-tracker-backend/internal/repository"
	"github.com/masarify/finance-tracker-backend/internal/schedule"
)

// AggregationService groups a user's open holdings into per-class buckets
// and prices them with the latest stored market data. Holdings without a
// usable price fall back to their cost so a missing feed never hides money.
type AggregationService struct {
	investmentRepo *repository.InvestmentRepository
	marketDataRepo *repository.MarketDataRepository
}

// NewAggregationService creates a new AggregationService with the provided repository dependencies.
func NewAggregationService(
	investmentRepo *repository.InvestmentRepository,
	marketDataRepo *repository.MarketDataRepository,
) *AggregationService {
	return &AggregationService{
		investmentRepo: investmentRepo,
		marketDataRepo: marketDataRepo,
	}
}

// ProfitLossPercent computes a relative return that stays meaningful at the
// edges: a costless position with no value returns 0, a costless position
// with value returns +Inf.
func ProfitLossPercent(cost, value float64) model.Percent {
	if cost == 0 {
		if value == 0 {
			return 0
		}
		return model.Percent(math.Inf(1))
	}
	return model.Percent((value - cost) / cost * 100)
}

// AggregateOpenHoldings buckets and prices a user's open holdings.
//
// Returns:
//   - []model.ClassSummary: one summary per asset class present, buckets keyed
//     by ticker, gold type, currency code, debt subtype or holding ID
//   - model.ExposureSummary: debt/gold exposure including classified funds
//   - model.InterestProjection: expected interest from open debt instruments;
//     matured instruments contribute nothing
func (s *AggregationService) AggregateOpenHoldings(userID string) ([]model.ClassSummary, model.ExposureSummary, model.InterestProjection, error) {
	investments, err := s.investmentRepo.ListByUser(userID, true)
	if err != nil {
		return nil, model.ExposureSummary{}, model.InterestProjection{}, err
	}

	fundClasses, err := s.marketDataRepo.ListFundClasses()
	if err != nil {
		return nil, model.ExposureSummary{}, model.InterestProjection{}, err
	}

	buckets := make(map[model.AssetType]map[string]*model.HoldingBucket)
	var exposure model.ExposureSummary
	var interest model.InterestProjection

	for _, inv := range investments {
		if inv.Debt != nil && inv.Debt.IsMatured {
			continue
		}

		key := bucketKey(inv)
		value, priceKnown := s.currentValue(inv)

		classBuckets, ok := buckets[inv.AssetType]
		if !ok {
			classBuckets = make(map[string]*model.HoldingBucket)
			buckets[inv.AssetType] = classBuckets
		}
		bucket, ok := classBuckets[key]
		if !ok {
			bucket = &model.HoldingBucket{Key: key, AssetType: inv.AssetType, PriceKnown: true}
			classBuckets[key] = bucket
		}
		bucket.Count++
		bucket.TotalQuantity += inv.TotalQuantity
		bucket.TotalInvested += inv.TotalInvested
		bucket.CurrentValue += value
		bucket.PriceKnown = bucket.PriceKnown && priceKnown

		switch inv.AssetType {
		case model.AssetStock:
			if fc, ok := fundClasses[inv.Stock.FundType]; ok {
				if fc.IsDebtRelated {
					exposure.DebtExposure += value
				}
				if fc.IsGoldRelated {
					exposure.GoldExposure += value
				}
			}
		case model.AssetGold:
			exposure.GoldExposure += value
		case model.AssetDebt:
			exposure.DebtExposure += value
			interest.Monthly += schedule.MonthlyInterest(inv.TotalInvested, inv.Debt.InterestRate)
			interest.Yearly += schedule.YearlyInterest(inv.TotalInvested, inv.Debt.InterestRate)
		}
	}

	classes := make([]model.ClassSummary, 0, len(buckets))
	for assetType, classBuckets := range buckets {
		summary := model.ClassSummary{AssetType: assetType}
		for _, bucket := range classBuckets {
			if bucket.TotalQuantity > 0 {
				bucket.AverageCost = bucket.TotalInvested / bucket.TotalQuantity
			}
			bucket.UnrealizedPL = bucket.CurrentValue - bucket.TotalInvested
			bucket.UnrealizedPct = ProfitLossPercent(bucket.TotalInvested, bucket.CurrentValue)
			summary.Buckets = append(summary.Buckets, *bucket)
			summary.TotalInvested += bucket.TotalInvested
			summary.CurrentValue += bucket.CurrentValue
		}
		sort.Slice(summary.Buckets, func(i, j int) bool {
			return summary.Buckets[i].Key < summary.Buckets[j].Key
		})
		summary.UnrealizedPL = summary.CurrentValue - summary.TotalInvested
		summary.UnrealizedPct = ProfitLossPercent(summary.TotalInvested, summary.CurrentValue)
		classes = append(classes, summary)
	}
	sort.Slice(classes, func(i, j int) bool {
		return classes[i].AssetType < classes[j].AssetType
	})

	return classes, exposure, interest, nil
}

// bucketKey picks the grouping key for a holding within its asset class.
func bucketKey(inv model.Investment) string {
	switch {
	case inv.Stock != nil:
		return inv.Stock.Ticker
	case inv.Gold != nil:
		return string(inv.Gold.GoldType)
	case inv.Currency != nil:
		return inv.Currency.CurrencyCode
	case inv.Debt != nil:
		return string(inv.Debt.SubType)
	default:
		return inv.ID
	}
}

// currentValue prices one holding with the latest stored market data. The
// second return reports whether a live price was available; when it is not,
// the invested cost stands in so totals stay conservative.
func (s *AggregationService) currentValue(inv model.Investment) (float64, bool) {
	switch {
	case inv.Stock != nil:
		price, err := s.marketDataRepo.GetSecurityPrice(inv.Stock.Ticker)
		if err != nil {
			return inv.TotalInvested, false
		}
		return inv.TotalQuantity * price.Price, true
	case inv.Gold != nil:
		price, err := s.marketDataRepo.GetGoldPrice(inv.Gold.GoldType)
		if err != nil {
			return inv.TotalInvested, false
		}
		return inv.TotalQuantity * price.Price, true
	case inv.Currency != nil:
		rate, err := s.marketDataRepo.GetExchangeRate(inv.Currency.CurrencyCode)
		if err != nil {
			return inv.TotalInvested, false
		}
		return inv.TotalQuantity * rate.Rate, true
	default:
		// Debt instruments are held at face value and property at paid
		// cost; neither has a live quote.
		return inv.TotalInvested, true
	}
}
