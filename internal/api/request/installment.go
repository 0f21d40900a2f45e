package request

// PayInstallmentRequest marks an installment as paid.
type PayInstallmentRequest struct {
	ChequeNumber string `json:"chequeNumber,omitempty"`
	Date         string `json:"date,omitempty"`
}
