package request

// CreateRecordRequest adds a standalone income or expense entry.
type CreateRecordRequest struct {
	Type     string  `json:"type"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category,omitempty"`
	Date     string  `json:"date"`
	IsFixed  bool    `json:"isFixed,omitempty"`
	Notes    string  `json:"notes,omitempty"`
}
