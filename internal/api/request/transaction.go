package request

// CreateTransactionRequest records a ledger operation against a holding.
// Quantity, PricePerUnit and Fees drive buys and sells; Amount drives the
// flat-amount types. Sequence disambiguates several same-day entries of the
// same type and keeps re-submissions idempotent.
type CreateTransactionRequest struct {
	Type         string  `json:"type"`
	Quantity     float64 `json:"quantity,omitempty"`
	PricePerUnit float64 `json:"pricePerUnit,omitempty"`
	Fees         float64 `json:"fees,omitempty"`
	Amount       float64 `json:"amount,omitempty"`
	Date         string  `json:"date"`
	Sequence     int     `json:"sequence,omitempty"`
	Description  string  `json:"description,omitempty"`
}
