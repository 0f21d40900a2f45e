package model

import "time"

// SecurityPrice is the latest known price for a listed ticker, in EGP.
type SecurityPrice struct {
	Ticker string    `json:"ticker"`
	Price  float64   `json:"price"`
	AsOf   time.Time `json:"asOf"`
}

// GoldPrice is the latest known price per unit of a gold type, in EGP.
type GoldPrice struct {
	GoldType GoldType  `json:"goldType"`
	Price    float64   `json:"price"`
	AsOf     time.Time `json:"asOf"`
}

// ExchangeRate is the latest EGP rate for one unit of a foreign currency.
type ExchangeRate struct {
	CurrencyCode string    `json:"currencyCode"`
	Rate         float64   `json:"rate"`
	AsOf         time.Time `json:"asOf"`
}

// FundClass classifies a fund type for exposure bucketing. A stock holding
// whose fund type is flagged here counts toward the corresponding exposure
// summary instead of plain equity.
type FundClass struct {
	FundType      string `json:"fundType"`
	IsDebtRelated bool   `json:"isDebtRelated"`
	IsGoldRelated bool   `json:"isGoldRelated"`
	IsMoneyMarket bool   `json:"isMoneyMarket"`
}
