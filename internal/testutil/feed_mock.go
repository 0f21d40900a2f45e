package testutil

import (
	"context"
	"time"

	"github.com/masarify/finance-tracker-backend/internal/model"
)

// MockFeedClient is a mock implementation of marketdata.Client for testing.
// It returns predefined data instead of calling the external feed.
type MockFeedClient struct {
	// Securities is returned from SecurityPrices
	Securities []model.SecurityPrice
	// Gold is returned from GoldPrices
	Gold []model.GoldPrice
	// Rates is returned from ExchangeRates
	Rates []model.ExchangeRate
	// Err is returned from every query method when set
	Err error
	// CallCount tracks how many feed calls were made
	CallCount int
}

// NewMockFeedClient creates a mock feed with a small set of default prices.
func NewMockFeedClient() *MockFeedClient {
	now := time.Now().UTC()
	return &MockFeedClient{
		Securities: []model.SecurityPrice{
			{Ticker: "COMI", Price: 80, AsOf: now},
		},
		Gold: []model.GoldPrice{
			{GoldType: model.GoldK21, Price: 4500, AsOf: now},
		},
		Rates: []model.ExchangeRate{
			{CurrencyCode: "USD", Rate: 48, AsOf: now},
		},
	}
}

// SecurityPrices returns the configured security prices or error.
func (m *MockFeedClient) SecurityPrices(_ context.Context, _ []string) ([]model.SecurityPrice, error) {
	m.CallCount++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Securities, nil
}

// GoldPrices returns the configured gold prices or error.
func (m *MockFeedClient) GoldPrices(_ context.Context) ([]model.GoldPrice, error) {
	m.CallCount++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Gold, nil
}

// ExchangeRates returns the configured exchange rates or error.
func (m *MockFeedClient) ExchangeRates(_ context.Context, _ []string) ([]model.ExchangeRate, error) {
	m.CallCount++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Rates, nil
}

// WithError configures the mock to fail every feed call.
func (m *MockFeedClient) WithError(err error) *MockFeedClient {
	m.Err = err
	return m
}

// WithSecurityPrice replaces the security slice with a single price.
func (m *MockFeedClient) WithSecurityPrice(ticker string, price float64) *MockFeedClient {
	m.Securities = []model.SecurityPrice{{Ticker: ticker, Price: price, AsOf: time.Now().UTC()}}
	return m
}

// WithGoldPrice replaces the gold slice with a single price.
func (m *MockFeedClient) WithGoldPrice(goldType model.GoldType, price float64) *MockFeedClient {
	m.Gold = []model.GoldPrice{{GoldType: goldType, Price: price, AsOf: time.Now().UTC()}}
	return m
}

// WithExchangeRate replaces the rate slice with a single rate.
func (m *MockFeedClient) WithExchangeRate(code string, rate float64) *MockFeedClient {
	m.Rates = []model.ExchangeRate{{CurrencyCode: code, Rate: rate, AsOf: time.Now().UTC()}}
	return m
}

// Empty configures the mock to return no data from any slice.
func (m *MockFeedClient) Empty() *MockFeedClient {
	m.Securities = nil
	m.Gold = nil
	m.Rates = nil
	return m
}
