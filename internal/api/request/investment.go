package request

// CreateInvestmentRequest carries the fields to open a new holding. The
// asset-class sections are read according to AssetType; unrelated fields are
// ignored.
type CreateInvestmentRequest struct {
	AssetType string `json:"assetType"`
	Name      string `json:"name"`

	// stock
	Ticker   string `json:"ticker,omitempty"`
	FundType string `json:"fundType,omitempty"`

	// gold
	GoldType string `json:"goldType,omitempty"`

	// currency
	CurrencyCode string `json:"currencyCode,omitempty"`

	// debt
	DebtSubType       string  `json:"debtSubType,omitempty"`
	Issuer            string  `json:"issuer,omitempty"`
	InterestRate      float64 `json:"interestRate,omitempty"`
	InterestFrequency string  `json:"interestFrequency,omitempty"`
	MaturityDate      string  `json:"maturityDate,omitempty"`
	Principal         float64 `json:"principal,omitempty"`
	PurchaseDate      string  `json:"purchaseDate,omitempty"`

	// real estate
	Location               string  `json:"location,omitempty"`
	DownPayment            float64 `json:"downPayment,omitempty"`
	MaintenanceAmount      float64 `json:"maintenanceAmount,omitempty"`
	MaintenancePaymentDate string  `json:"maintenancePaymentDate,omitempty"`
	InstallmentFrequency   string  `json:"installmentFrequency,omitempty"`
	TotalInstallmentPrice  float64 `json:"totalInstallmentPrice,omitempty"`
	InstallmentAmount      float64 `json:"installmentAmount,omitempty"`
	InstallmentStartDate   string  `json:"installmentStartDate,omitempty"`
	InstallmentEndDate     string  `json:"installmentEndDate,omitempty"`
	InstallmentCount       int     `json:"installmentCount,omitempty"`
}

// UpdateScheduleRequest rewrites a real-estate installment plan. Paid
// installments survive the regeneration.
type UpdateScheduleRequest struct {
	InstallmentFrequency  string  `json:"installmentFrequency"`
	TotalInstallmentPrice float64 `json:"totalInstallmentPrice,omitempty"`
	InstallmentAmount     float64 `json:"installmentAmount,omitempty"`
	InstallmentStartDate  string  `json:"installmentStartDate"`
	InstallmentEndDate    string  `json:"installmentEndDate,omitempty"`
	InstallmentCount      int     `json:"installmentCount,omitempty"`
}
