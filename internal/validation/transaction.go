package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/masarify/finance-tracker-backend/internal/api/request"
	"github.com/masarify/finance-tracker-backend/internal/model"
)

// ValidateCreateTransaction validates a ledger entry creation request.
//
// Required fields:
//   - type: Must be a known transaction type
//   - date: Must be in YYYY-MM-DD format
//
// Buys and sells additionally need a positive quantity and price; the
// flat-amount types need a positive amount.
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	txType := model.TransactionType(req.Type)
	if strings.TrimSpace(req.Type) == "" {
		errors["type"] = "type is required"
	} else if !model.ValidTransactionTypes[txType] {
		errors["type"] = fmt.Sprintf("invalid type: %s", req.Type)
	}

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		errors["date"] = err.Error()
	}

	switch txType {
	case model.TxBuy, model.TxSell:
		if req.Quantity <= 0.0 {
			errors["quantity"] = "quantity must be positive"
		}
		if req.PricePerUnit <= 0.0 {
			errors["pricePerUnit"] = "pricePerUnit must be positive"
		}
		if req.Fees < 0.0 {
			errors["fees"] = "fees cannot be negative"
		}
	case model.TxPayment, model.TxDividend, model.TxInterest, model.TxIncome, model.TxExpense, model.TxMaturedDebt:
		if req.Amount <= 0.0 {
			errors["amount"] = "amount must be positive"
		}
	}

	if req.Sequence < 0 {
		errors["sequence"] = "sequence cannot be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
