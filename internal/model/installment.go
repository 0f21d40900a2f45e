package model

import "time"

// InstallmentStatus marks whether an installment has been paid.
type InstallmentStatus string

const (
	InstallmentPaid   InstallmentStatus = "paid"
	InstallmentUnpaid InstallmentStatus = "unpaid"
)

// Installment is one scheduled payment of a real-estate purchase plan.
// Number is 1-based within its investment and unique together with DueDate.
type Installment struct {
	ID            string            `json:"id"`
	InvestmentID  string            `json:"investmentId"`
	Number        int               `json:"number"`
	Amount        float64           `json:"amount"`
	DueDate       time.Time         `json:"dueDate"`
	Status        InstallmentStatus `json:"status"`
	ChequeNumber  string            `json:"chequeNumber,omitempty"`
	Description   string            `json:"description,omitempty"`
	IsDownPayment bool              `json:"isDownPayment"`
	IsMaintenance bool              `json:"isMaintenance"`
}
