package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/masarify/finance-tracker-backend/internal/apperrors"
	"github.com/masarify/finance-tracker-backend/internal/model"
)

// MarketDataRepository provides data access methods for the price tables
// (security_prices, gold_prices, exchange_rates) and the fund_classes lookup.
// Price rows keep only the latest observation per asset; upserts overwrite.
type MarketDataRepository struct {
	db *sql.DB
}

// NewMarketDataRepository creates a new MarketDataRepository with the provided database connection.
func NewMarketDataRepository(db *sql.DB) *MarketDataRepository {
	return &MarketDataRepository{db: db}
}

// UpsertSecurityPrice stores the latest price for a ticker.
func (r *MarketDataRepository) UpsertSecurityPrice(p model.SecurityPrice) error {
	_, err := r.db.Exec(`
		INSERT INTO security_prices (ticker, price, as_of) VALUES (?, ?, ?)
		ON CONFLICT (ticker) DO UPDATE SET price = excluded.price, as_of = excluded.as_of
	`, p.Ticker, p.Price, FormatTimestamp(p.AsOf))
	if err != nil {
		return fmt.Errorf("failed to upsert security price: %w", err)
	}
	return nil
}

// UpsertGoldPrice stores the latest price for a gold type.
func (r *MarketDataRepository) UpsertGoldPrice(p model.GoldPrice) error {
	_, err := r.db.Exec(`
		INSERT INTO gold_prices (gold_type, price, as_of) VALUES (?, ?, ?)
		ON CONFLICT (gold_type) DO UPDATE SET price = excluded.price, as_of = excluded.as_of
	`, string(p.GoldType), p.Price, FormatTimestamp(p.AsOf))
	if err != nil {
		return fmt.Errorf("failed to upsert gold price: %w", err)
	}
	return nil
}

// UpsertExchangeRate stores the latest EGP rate for a currency.
func (r *MarketDataRepository) UpsertExchangeRate(rate model.ExchangeRate) error {
	_, err := r.db.Exec(`
		INSERT INTO exchange_rates (currency_code, rate, as_of) VALUES (?, ?, ?)
		ON CONFLICT (currency_code) DO UPDATE SET rate = excluded.rate, as_of = excluded.as_of
	`, rate.CurrencyCode, rate.Rate, FormatTimestamp(rate.AsOf))
	if err != nil {
		return fmt.Errorf("failed to upsert exchange rate: %w", err)
	}
	return nil
}

// GetSecurityPrice retrieves the latest price for a ticker.
// Returns apperrors.ErrPriceNotFound if none is stored.
func (r *MarketDataRepository) GetSecurityPrice(ticker string) (model.SecurityPrice, error) {
	var (
		p    model.SecurityPrice
		asOf string
	)
	err := r.db.QueryRow(`SELECT ticker, price, as_of FROM security_prices WHERE ticker = ?`, ticker).
		Scan(&p.Ticker, &p.Price, &asOf)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SecurityPrice{}, apperrors.ErrPriceNotFound
	}
	if err != nil {
		return model.SecurityPrice{}, fmt.Errorf("failed to query security price: %w", err)
	}
	if p.AsOf, err = ParseTime(asOf); err != nil {
		return model.SecurityPrice{}, fmt.Errorf("failed to parse as_of: %w", err)
	}
	return p, nil
}

// GetGoldPrice retrieves the latest price for a gold type.
// Returns apperrors.ErrPriceNotFound if none is stored.
func (r *MarketDataRepository) GetGoldPrice(goldType model.GoldType) (model.GoldPrice, error) {
	var (
		p       model.GoldPrice
		rawType string
		asOf    string
	)
	err := r.db.QueryRow(`SELECT gold_type, price, as_of FROM gold_prices WHERE gold_type = ?`, string(goldType)).
		Scan(&rawType, &p.Price, &asOf)
	if errors.Is(err, sql.ErrNoRows) {
		return model.GoldPrice{}, apperrors.ErrPriceNotFound
	}
	if err != nil {
		return model.GoldPrice{}, fmt.Errorf("failed to query gold price: %w", err)
	}
	p.GoldType = model.GoldType(rawType)
	if p.AsOf, err = ParseTime(asOf); err != nil {
		return model.GoldPrice{}, fmt.Errorf("failed to parse as_of: %w", err)
	}
	return p, nil
}

// GetExchangeRate retrieves the latest EGP rate for a currency.
// Returns apperrors.ErrExchangeRateNotFound if none is stored.
func (r *MarketDataRepository) GetExchangeRate(currencyCode string) (model.ExchangeRate, error) {
	var (
		rate model.ExchangeRate
		asOf string
	)
	err := r.db.QueryRow(`SELECT currency_code, rate, as_of FROM exchange_rates WHERE currency_code = ?`, currencyCode).
		Scan(&rate.CurrencyCode, &rate.Rate, &asOf)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ExchangeRate{}, apperrors.ErrExchangeRateNotFound
	}
	if err != nil {
		return model.ExchangeRate{}, fmt.Errorf("failed to query exchange rate: %w", err)
	}
	if rate.AsOf, err = ParseTime(asOf); err != nil {
		return model.ExchangeRate{}, fmt.Errorf("failed to parse as_of: %w", err)
	}
	return rate, nil
}

// ListFundClasses retrieves the fund classification lookup keyed by fund type.
func (r *MarketDataRepository) ListFundClasses() (map[string]model.FundClass, error) {
	rows, err := r.db.Query(`SELECT fund_type, is_debt_related, is_gold_related, is_money_market FROM fund_classes`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fund classes: %w", err)
	}
	defer rows.Close()

	classes := make(map[string]model.FundClass)
	for rows.Next() {
		var fc model.FundClass
		if err := rows.Scan(&fc.FundType, &fc.IsDebtRelated, &fc.IsGoldRelated, &fc.IsMoneyMarket); err != nil {
			return nil, fmt.Errorf("failed to scan fund class: %w", err)
		}
		classes[fc.FundType] = fc
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fund classes: %w", err)
	}
	return classes, nil
}
