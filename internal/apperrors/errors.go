package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrInvestmentNotFound indicates that an investment with the given ID does not exist.
	ErrInvestmentNotFound = errors.New("investment not found")

	// ErrInstallmentNotFound indicates that an installment with the given number does not exist.
	ErrInstallmentNotFound = errors.New("installment not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrRecordNotFound indicates that a financial record with the given ID does not exist.
	ErrRecordNotFound = errors.New("financial record not found")

	// ErrPriceNotFound indicates no price record for a specific asset and date combination.
	ErrPriceNotFound = errors.New("price not found")

	// ErrExchangeRateNotFound indicates no rate record for a specific currency.
	ErrExchangeRateNotFound = errors.New("exchange rate not found")

	// ErrSettingNotFound indicates that a settings key has not been stored.
	ErrSettingNotFound = errors.New("setting not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrValidation indicates that a request failed field-level validation.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientQuantity indicates that a sell cannot be completed
	// because the holding does not contain enough quantity.
	ErrInsufficientQuantity = errors.New("insufficient quantity for sale")

	// ErrInvalidAmount indicates that an amount field has a zero or negative value
	// where a positive one is required.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrEmptySchedule indicates that a schedule rule produces no installments
	// (e.g., start date after end date).
	ErrEmptySchedule = errors.New("schedule produces no installments")

	// ErrInvalidDateRange indicates that the provided date range is invalid.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrInvestmentClosed indicates that a write was attempted against a closed holding.
	ErrInvestmentClosed = errors.New("investment is closed")

	// ErrInstallmentAlreadyPaid indicates that an installment was already marked paid.
	ErrInstallmentAlreadyPaid = errors.New("installment already paid")

	// ErrInstallmentNotPaid indicates that a payment reversal targeted an
	// installment that is not marked paid.
	ErrInstallmentNotPaid = errors.New("installment not paid")

	// ErrMissingRequiredField indicates that a required field is missing or empty.
	ErrMissingRequiredField = errors.New("missing required field")
)

// Concurrency and infrastructure errors.
var (
	// ErrConflict indicates that an optimistic-concurrency write lost its version
	// check and exhausted its retries.
	ErrConflict = errors.New("concurrent modification conflict")

	// ErrConfiguration indicates missing or inconsistent service configuration
	// (e.g., no feed URL or an undecryptable feed token).
	ErrConfiguration = errors.New("invalid configuration")

	// ErrTransientIO indicates a retryable infrastructure failure such as a
	// feed timeout. Callers may retry; persistent state is unchanged.
	ErrTransientIO = errors.New("transient I/O failure")
)
