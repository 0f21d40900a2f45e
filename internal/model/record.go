package model

import "time"

// RecordType identifies the direction of a financial record.
type RecordType string

const (
	RecordIncome  RecordType = "income"
	RecordExpense RecordType = "expense"
)

// ValidRecordTypes is the set of accepted record type values.
var ValidRecordTypes = map[RecordType]bool{
	RecordIncome:  true,
	RecordExpense: true,
}

// FinancialRecord is a standalone income or expense entry outside the
// investment ledger. IsFixed marks recurring estimates (salary, rent) that
// feed the monthly cash-flow projection.
type FinancialRecord struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Type      RecordType `json:"type"`
	Amount    float64    `json:"amount"`
	Category  string     `json:"category,omitempty"`
	Date      time.Time  `json:"date"`
	IsFixed   bool       `json:"isFixed"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt,omitempty"`
}
