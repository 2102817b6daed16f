package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

var ErrSymbolNotFound = errors.New("marketdata: symbol not found")

// Quote is the latest end-of-tape snapshot for one symbol.
type Quote struct {
	Symbol        string          `json:"symbol"`
	Open          decimal.Decimal `json:"open"`
	High          decimal.Decimal `json:"high"`
	Low           decimal.Decimal `json:"low"`
	Price         decimal.Decimal `json:"price"`
	Volume        int64           `json:"volume"`
	PreviousClose decimal.Decimal `json:"previous_close"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent string          `json:"change_percent"`
	TradingDay    string          `json:"latest_trading_day"`
	FetchedAt     time.Time       `json:"fetched_at"`
}

// Bar is one daily candle from the historical series.
type Bar struct {
	Date   string          `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// Client fetches quotes and daily history from an AlphaVantage-compatible
// endpoint.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	now     func() time.Time
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (c *Client) fetch(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("apikey", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("marketdata: failed to create request: %w", err)
	}
	req.Header.Add("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("marketdata: quote fetch failed: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("marketdata: failed to read response body: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("marketdata: upstream returned %s", res.Status)
	}
	return raw, nil
}

// The upstream keys its fields with numbered labels.
type globalQuoteResponse struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Open          string `json:"02. open"`
		High          string `json:"03. high"`
		Low           string `json:"04. low"`
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		TradingDay    string `json:"07. latest trading day"`
		PreviousClose string `json:"08. previous close"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
}

func (c *Client) GlobalQuote(ctx context.Context, symbol string) (Quote, error) {
	if symbol == "" {
		return Quote{}, errors.New("symbol required")
	}
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)
	raw, err := c.fetch(ctx, params)
	if err != nil {
		return Quote{}, err
	}
	var body globalQuoteResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return Quote{}, fmt.Errorf("marketdata: failed to decode quote: %w", err)
	}
	// An unknown symbol comes back as an empty object, not an error status.
	if body.GlobalQuote.Symbol == "" {
		return Quote{}, ErrSymbolNotFound
	}
	q := Quote{
		Symbol:        body.GlobalQuote.Symbol,
		Volume:        parseInt(body.GlobalQuote.Volume),
		ChangePercent: body.GlobalQuote.ChangePercent,
		TradingDay:    body.GlobalQuote.TradingDay,
		FetchedAt:     c.now(),
	}
	q.Open = parseDecimal(body.GlobalQuote.Open)
	q.High = parseDecimal(body.GlobalQuote.High)
	q.Low = parseDecimal(body.GlobalQuote.Low)
	q.Price = parseDecimal(body.GlobalQuote.Price)
	q.PreviousClose = parseDecimal(body.GlobalQuote.PreviousClose)
	q.Change = parseDecimal(body.GlobalQuote.Change)
	return q, nil
}

type dailySeriesResponse struct {
	Series map[string]struct {
		Open   string `json:"1. open"`
		High   string `json:"2. high"`
		Low    string `json:"3. low"`
		Close  string `json:"4. close"`
		Volume string `json:"5. volume"`
	} `json:"Time Series (Daily)"`
}

// HistoricalDaily returns end-of-day bars for the symbol between from and
// to inclusive, both formatted as YYYY-MM-DD, newest first.
func (c *Client) HistoricalDaily(ctx context.Context, symbol, from, to string) ([]Bar, error) {
	if symbol == "" {
		return nil, errors.New("symbol required")
	}
	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)
	params.Set("outputsize", "full")
	raw, err := c.fetch(ctx, params)
	if err != nil {
		return nil, err
	}
	var body dailySeriesResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("marketdata: failed to decode daily series: %w", err)
	}
	if len(body.Series) == 0 {
		return nil, ErrSymbolNotFound
	}
	bars := make([]Bar, 0, len(body.Series))
	for date, row := range body.Series {
		if from != "" && date < from {
			continue
		}
		if to != "" && date > to {
			continue
		}
		bars = append(bars, Bar{
			Date:   date,
			Open:   parseDecimal(row.Open),
			High:   parseDecimal(row.High),
			Low:    parseDecimal(row.Low),
			Close:  parseDecimal(row.Close),
			Volume: parseInt(row.Volume),
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date > bars[j].Date })
	return bars, nil
}

func parseDecimal(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseInt(v string) int64 {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
