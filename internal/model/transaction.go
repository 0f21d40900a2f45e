package model

import "time"

// TransactionType identifies what a ledger entry represents.
type TransactionType string

const (
	TxBuy         TransactionType = "buy"
	TxSell        TransactionType = "sell"
	TxPayment     TransactionType = "payment"
	TxReversal    TransactionType = "reversal"
	TxDividend    TransactionType = "dividend"
	TxInterest    TransactionType = "interest"
	TxMaturedDebt TransactionType = "matured_debt"
	TxIncome      TransactionType = "income"
	TxExpense     TransactionType = "expense"
)

// ValidTransactionTypes is the set of accepted transaction type values.
var ValidTransactionTypes = map[TransactionType]bool{
	TxBuy:         true,
	TxSell:        true,
	TxPayment:     true,
	TxDividend:    true,
	TxInterest:    true,
	TxMaturedDebt: true,
	TxIncome:      true,
	TxExpense:     true,
}

// Transaction is an immutable ledger entry. Amount is the signed cash delta
// from the user's point of view: buys and expenses are positive outflows
// recorded as positive cost, sells and income carry negative Amount
// (cash coming back). ProfitOrLoss is populated for sells only.
type Transaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	InvestmentID string          `json:"investmentId"`
	Type         TransactionType `json:"type"`
	Quantity     float64         `json:"quantity"`
	PricePerUnit float64         `json:"pricePerUnit"`
	Fees         float64         `json:"fees"`
	Amount       float64         `json:"amount"`
	ProfitOrLoss float64         `json:"profitOrLoss,omitempty"`
	Date         time.Time       `json:"date"`
	Description  string          `json:"description,omitempty"`
	CreatedAt    time.Time       `json:"createdAt,omitempty"`
}
