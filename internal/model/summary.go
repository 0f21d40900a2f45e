package model

import (
	"encoding/json"
	"math"
	"time"
)

// Percent is a percentage that stays JSON-renderable at the edges:
// a zero-cost holding with positive value has infinite return, which
// encoding/json refuses to marshal as a number.
type Percent float64

// MarshalJSON renders infinities and NaN as strings and everything else
// as a plain number.
func (p Percent) MarshalJSON() ([]byte, error) {
	f := float64(p)
	switch {
	case math.IsInf(f, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Infinity"`), nil
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(f)
}

// UnmarshalJSON accepts both the numeric and the string forms produced
// by MarshalJSON.
func (p *Percent) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*p = Percent(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "Infinity":
		*p = Percent(math.Inf(1))
	case "-Infinity":
		*p = Percent(math.Inf(-1))
	default:
		*p = Percent(math.NaN())
	}
	return nil
}

// HoldingBucket aggregates open holdings that share a grouping key
// (ticker, gold type, currency code, debt subtype or a single property).
type HoldingBucket struct {
	Key           string    `json:"key"`
	AssetType     AssetType `json:"assetType"`
	Count         int       `json:"count"`
	TotalQuantity float64   `json:"totalQuantity"`
	TotalInvested float64   `json:"totalInvested"`
	AverageCost   float64   `json:"averageCost"`
	CurrentValue  float64   `json:"currentValue"`
	PriceKnown    bool      `json:"priceKnown"`
	UnrealizedPL  float64   `json:"unrealizedPl"`
	UnrealizedPct Percent   `json:"unrealizedPlPercent"`
}

// ClassSummary rolls one asset class up across its buckets.
type ClassSummary struct {
	AssetType     AssetType       `json:"assetType"`
	Buckets       []HoldingBucket `json:"buckets"`
	TotalInvested float64         `json:"totalInvested"`
	CurrentValue  float64         `json:"currentValue"`
	UnrealizedPL  float64         `json:"unrealizedPl"`
	UnrealizedPct Percent         `json:"unrealizedPlPercent"`
}

// InterestProjection is the expected interest income from open debt
// instruments.
type InterestProjection struct {
	Monthly float64 `json:"monthly"`
	Yearly  float64 `json:"yearly"`
}

// CashFlowSummary aggregates financial records for the current month.
type CashFlowSummary struct {
	Inflows  float64 `json:"inflows"`
	Outflows float64 `json:"outflows"`
	Net      float64 `json:"net"`
}

// ExposureSummary augments the class totals with fund-classification
// spillover: debt funds count toward debt exposure, gold funds toward gold.
type ExposureSummary struct {
	DebtExposure float64 `json:"debtExposure"`
	GoldExposure float64 `json:"goldExposure"`
}

// PortfolioSummary is the full valuation response for one user.
type PortfolioSummary struct {
	UserID            string             `json:"userId"`
	AsOf              time.Time          `json:"asOf"`
	Classes           []ClassSummary     `json:"classes"`
	TotalInvested     float64            `json:"totalInvested"`
	CurrentValue      float64            `json:"currentValue"`
	UnrealizedPL      float64            `json:"unrealizedPl"`
	UnrealizedPct     Percent            `json:"unrealizedPlPercent"`
	RealizedPL        float64            `json:"realizedPl"`
	MaturedDebtCash   float64            `json:"maturedDebtCash"`
	ProjectedInterest InterestProjection `json:"projectedInterest"`
	Exposure          ExposureSummary    `json:"exposure"`
	CashFlow          CashFlowSummary    `json:"cashFlow"`
}
