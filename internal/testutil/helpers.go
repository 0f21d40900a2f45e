package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/masarify/finance-tracker-backend/internal/marketdata"
	"github.com/masarify/finance-tracker-backend/internal/repository"
	"github.com/masarify/finance-tracker-backend/internal/service"
)

// TestFernetKey is a valid fernet key for exercising encrypted settings in
// tests. Never use it outside tests.
const TestFernetKey = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA="

func NewTestInvestmentService(t *testing.T, db *sql.DB) *service.InvestmentService {
	t.Helper()

	return service.NewInvestmentService(
		db,
		repository.NewInvestmentRepository(db),
		repository.NewInstallmentRepository(db),
		repository.NewTransactionRepository(db),
	)
}

func NewTestAggregationService(t *testing.T, db *sql.DB) *service.AggregationService {
	t.Helper()

	return service.NewAggregationService(
		repository.NewInvestmentRepository(db),
		repository.NewMarketDataRepository(db),
	)
}

func NewTestSweeperService(t *testing.T, db *sql.DB) *service.SweeperService {
	t.Helper()

	return service.NewSweeperService(
		repository.NewInvestmentRepository(db),
		NewTestInvestmentService(t, db),
	)
}

func NewTestRecordService(t *testing.T, db *sql.DB) *service.RecordService {
	t.Helper()

	return service.NewRecordService(repository.NewRecordRepository(db))
}

func NewTestSettingsRepository(t *testing.T, db *sql.DB) *repository.SettingsRepository {
	t.Helper()

	settingsRepo, err := repository.NewSettingsRepository(db, TestFernetKey)
	if err != nil {
		t.Fatalf("Failed to create settings repository: %v", err)
	}
	return settingsRepo
}

// NewTestValuationService creates a ValuationService backed by the given feed
// client. Pass nil to value from stored market data only.
func NewTestValuationService(t *testing.T, db *sql.DB, feed marketdata.Client) *service.ValuationService {
	t.Helper()

	return service.NewValuationService(
		repository.NewInvestmentRepository(db),
		repository.NewMarketDataRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewRecordRepository(db),
		NewTestSettingsRepository(t, db),
		NewTestAggregationService(t, db),
		feed,
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeTicker generates a unique ticker symbol for testing.
//
// Example usage:
//
//	ticker := testutil.MakeTicker("COMI")
//	// Returns: "COMI1A2B"
func MakeTicker(base string) string {
	if base == "" {
		base = "TST"
	}
	return base + randomAlphanumeric(4)
}

// MakeName generates a unique holding name for testing.
//
// Example usage:
//
//	name := testutil.MakeName("Gold Stash")
//	// Returns: "Gold Stash XYZ789"
func MakeName(base string) string {
	if base == "" {
		base = "Holding"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}

// Common test constants

var (
	// CommonCurrencies contains frequently used currency codes
	CommonCurrencies = []string{"USD", "EUR", "GBP", "SAR", "AED", "KWD"}
)

// RandomCurrency returns a random currency from CommonCurrencies.
func RandomCurrency() string {
	//nolint:gosec // G404: Using math/rand for test data generation is acceptable
	return CommonCurrencies[rand.Intn(len(CommonCurrencies))]
}
