// Package marketdata talks to the external price feed. One client covers the
// three feed slices: listed security prices, local gold prices and EGP
// exchange rates.
package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/masarify/finance-tracker-backend/internal/apperrors"
	"github.com/masarify/finance-tracker-backend/internal/model"
)

// Client is the feed interface consumed by the valuation service. It is an
// interface so tests can substitute a mock feed.
type Client interface {
	SecurityPrices(ctx context.Context, tickers []string) ([]model.SecurityPrice, error)
	GoldPrices(ctx context.Context) ([]model.GoldPrice, error)
	ExchangeRates(ctx context.Context, codes []string) ([]model.ExchangeRate, error)
}

// FeedClient implements Client against the HTTP feed.
type FeedClient struct {
	client *resty.Client
}

// NewFeedClient creates a feed client for the given base URL. The access
// token may be empty for feeds that do not require one.
func NewFeedClient(baseURL, accessToken string) *FeedClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("Accept", "application/json")
	if accessToken != "" {
		client.SetAuthToken(accessToken)
	}
	return &FeedClient{client: client}
}

type securityPriceDTO struct {
	Ticker string  `json:"ticker"`
	Price  float64 `json:"price"`
	AsOf   string  `json:"asOf"`
}

type goldPriceDTO struct {
	GoldType string  `json:"goldType"`
	Price    float64 `json:"price"`
	AsOf     string  `json:"asOf"`
}

type exchangeRateDTO struct {
	CurrencyCode string  `json:"currencyCode"`
	Rate         float64 `json:"rate"`
	AsOf         string  `json:"asOf"`
}

// SecurityPrices fetches the latest prices for the given tickers.
func (c *FeedClient) SecurityPrices(ctx context.Context, tickers []string) ([]model.SecurityPrice, error) {
	if len(tickers) == 0 {
		return []model.SecurityPrice{}, nil
	}

	var dtos []securityPriceDTO
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(map[string][]string{"ticker": tickers}).
		SetResult(&dtos).
		Get("/v1/securities")
	if err := checkResponse(resp, err, "securities"); err != nil {
		return nil, err
	}

	prices := make([]model.SecurityPrice, 0, len(dtos))
	for _, dto := range dtos {
		asOf, err := parseAsOf(dto.AsOf)
		if err != nil {
			return nil, err
		}
		prices = append(prices, model.SecurityPrice{Ticker: dto.Ticker, Price: dto.Price, AsOf: asOf})
	}
	return prices, nil
}

// GoldPrices fetches the latest prices for all gold types.
func (c *FeedClient) GoldPrices(ctx context.Context) ([]model.GoldPrice, error) {
	var dtos []goldPriceDTO
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&dtos).
		Get("/v1/gold")
	if err := checkResponse(resp, err, "gold"); err != nil {
		return nil, err
	}

	prices := make([]model.GoldPrice, 0, len(dtos))
	for _, dto := range dtos {
		asOf, err := parseAsOf(dto.AsOf)
		if err != nil {
			return nil, err
		}
		prices = append(prices, model.GoldPrice{GoldType: model.GoldType(dto.GoldType), Price: dto.Price, AsOf: asOf})
	}
	return prices, nil
}

// ExchangeRates fetches the latest EGP rates for the given currency codes.
func (c *FeedClient) ExchangeRates(ctx context.Context, codes []string) ([]model.ExchangeRate, error) {
	if len(codes) == 0 {
		return []model.ExchangeRate{}, nil
	}

	var dtos []exchangeRateDTO
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(map[string][]string{"code": codes}).
		SetResult(&dtos).
		Get("/v1/rates")
	if err := checkResponse(resp, err, "rates"); err != nil {
		return nil, err
	}

	rates := make([]model.ExchangeRate, 0, len(dtos))
	for _, dto := range dtos {
		asOf, err := parseAsOf(dto.AsOf)
		if err != nil {
			return nil, err
		}
		rates = append(rates, model.ExchangeRate{CurrencyCode: dto.CurrencyCode, Rate: dto.Rate, AsOf: asOf})
	}
	return rates, nil
}

func checkResponse(resp *resty.Response, err error, slice string) error {
	if err != nil {
		return fmt.Errorf("%w: feed %s request failed: %v", apperrors.ErrTransientIO, slice, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w: feed %s returned status %d", apperrors.ErrTransientIO, slice, resp.StatusCode())
	}
	return nil
}

func parseAsOf(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad feed timestamp %q", apperrors.ErrTransientIO, raw)
	}
	return t.UTC(), nil
}
