package model

import "time"

// AssetType identifies the class of an investment holding.
type AssetType string

const (
	AssetStock      AssetType = "stock"
	AssetGold       AssetType = "gold"
	AssetCurrency   AssetType = "currency"
	AssetDebt       AssetType = "debt"
	AssetRealEstate AssetType = "real_estate"
)

// GoldType enumerates the tradable gold units.
type GoldType string

const (
	GoldK24   GoldType = "K24"
	GoldK21   GoldType = "K21"
	GoldPound GoldType = "POUND"
	GoldOunce GoldType = "OUNCE"
)

// DebtSubType enumerates debt instrument flavours.
type DebtSubType string

const (
	DebtCertificate  DebtSubType = "certificate"
	DebtTreasuryBill DebtSubType = "treasury_bill"
	DebtBond         DebtSubType = "bond"
	DebtOther        DebtSubType = "other"
)

// Frequency is the cadence of installments or interest payouts.
type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// Investment represents a single holding in a user's ledger. The common
// fields hold the average-cost state; the detail structs are populated
// according to AssetType.
type Investment struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	AssetType     AssetType `json:"assetType"`
	Name          string    `json:"name"`
	IsClosed      bool      `json:"isClosed"`
	TotalQuantity float64   `json:"totalQuantity"`
	TotalInvested float64   `json:"totalInvested"`
	AverageCost   float64   `json:"averageCost"`
	Version       int64     `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Stock      *StockDetail      `json:"stock,omitempty"`
	Gold       *GoldDetail       `json:"gold,omitempty"`
	Currency   *CurrencyDetail   `json:"currency,omitempty"`
	Debt       *DebtDetail       `json:"debt,omitempty"`
	RealEstate *RealEstateDetail `json:"realEstate,omitempty"`
}

// StockDetail holds the listing info for stock and fund holdings. FundType
// keys into the fund_class table for exposure classification.
type StockDetail struct {
	Ticker   string `json:"ticker"`
	FundType string `json:"fundType,omitempty"`
}

// GoldDetail holds the unit type for gold holdings.
type GoldDetail struct {
	GoldType GoldType `json:"goldType"`
}

// CurrencyDetail holds the ISO code for foreign currency holdings.
type CurrencyDetail struct {
	CurrencyCode string `json:"currencyCode"`
}

// DebtDetail holds the terms of a debt instrument.
type DebtDetail struct {
	SubType           DebtSubType `json:"subType"`
	Issuer            string      `json:"issuer"`
	InterestRate      float64     `json:"interestRate"`
	InterestFrequency Frequency   `json:"interestFrequency"`
	MaturityDate      time.Time   `json:"maturityDate"`
	IsMatured         bool        `json:"isMatured"`
}

// RealEstateDetail holds purchase-plan terms for property holdings.
// TotalInvested on the parent is always derived from the paid installments,
// the down payment and the maintenance amount; it is never written directly.
type RealEstateDetail struct {
	Location               string     `json:"location"`
	DownPayment            float64    `json:"downPayment"`
	MaintenanceAmount      float64    `json:"maintenanceAmount"`
	MaintenancePaymentDate *time.Time `json:"maintenancePaymentDate,omitempty"`
	InstallmentFrequency   Frequency  `json:"installmentFrequency"`
	TotalInstallmentPrice  float64    `json:"totalInstallmentPrice"`
	InstallmentStartDate   time.Time  `json:"installmentStartDate"`
	InstallmentEndDate     time.Time  `json:"installmentEndDate"`

	Installments []Installment `json:"installments,omitempty"`
}

// ValidAssetTypes is the set of accepted asset type values.
var ValidAssetTypes = map[AssetType]bool{
	AssetStock:      true,
	AssetGold:       true,
	AssetCurrency:   true,
	AssetDebt:       true,
	AssetRealEstate: true,
}

// ValidGoldTypes is the set of accepted gold unit values.
var ValidGoldTypes = map[GoldType]bool{
	GoldK24:   true,
	GoldK21:   true,
	GoldPound: true,
	GoldOunce: true,
}

// ValidDebtSubTypes is the set of accepted debt instrument flavours.
var ValidDebtSubTypes = map[DebtSubType]bool{
	DebtCertificate:  true,
	DebtTreasuryBill: true,
	DebtBond:         true,
	DebtOther:        true,
}

// ValidFrequencies is the set of accepted installment/interest cadences.
var ValidFrequencies = map[Frequency]bool{
	FrequencyMonthly:   true,
	FrequencyQuarterly: true,
	FrequencyYearly:    true,
}
