// Package history retrieves daily OHLCV price series for a ticker symbol
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"klsescraper/scrape"

	"github.com/shopspring/decimal"
)

// BaseURL is the default chart API host
const BaseURL = "https://query1.finance.yahoo.com"

// ErrNoData is returned when the provider has no candles for the requested
// ticker and date range.
var ErrNoData = errors.New("no data for ticker and date range")

// Candle is one day of price history
type Candle struct {
	Date   time.Time       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// Provider supplies daily price history; the HTTP layer depends on this
// contract rather than on a concrete client.
type Provider interface {
	Daily(ctx context.Context, ticker string, start, end time.Time) ([]Candle, error)
}

// Client fetches price history from the chart API
type Client struct {
	http    *scrape.Client
	baseURL string
}

// NewClient creates a history client on top of the shared fetch client
func NewClient(http *scrape.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{http: http, baseURL: baseURL}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Daily returns the daily candles for ticker between start and end inclusive,
// ordered by date. Days the exchange reports no quote for are skipped.
func (c *Client) Daily(ctx context.Context, ticker string, start, end time.Time) ([]Candle, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("start date %s is not before end date %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	addr := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=history",
		c.baseURL, url.PathEscape(ticker), start.Unix(), end.Unix())

	body, err := c.http.Get(ctx, addr)
	if err != nil {
		var fetchErr *scrape.FetchError
		if errors.As(err, &fetchErr) && fetchErr.StatusCode == 404 {
			return nil, ErrNoData
		}
		return nil, err
	}

	var resp chartResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, &scrape.ExtractError{Reason: "invalid chart response", Err: err}
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart API: %s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, ErrNoData
	}

	result := resp.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, ErrNoData
	}
	quote := result.Indicators.Quote[0]

	candles := make([]Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		candle := Candle{
			Date:  time.Unix(ts, 0).UTC(),
			Close: decimal.NewFromFloat(*quote.Close[i]),
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			candle.Open = decimal.NewFromFloat(*quote.Open[i])
		}
		if i < len(quote.High) && quote.High[i] != nil {
			candle.High = decimal.NewFromFloat(*quote.High[i])
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			candle.Low = decimal.NewFromFloat(*quote.Low[i])
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			candle.Volume = *quote.Volume[i]
		}
		candles = append(candles, candle)
	}

	if len(candles) == 0 {
		return nil, ErrNoData
	}

	return candles, nil
}
