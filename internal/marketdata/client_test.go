package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const globalQuoteFixture = `{
	"Global Quote": {
		"01. symbol": "AAPL",
		"02. open": "227.9200",
		"03. high": "230.1600",
		"04. low": "226.6600",
		"05. price": "229.8700",
		"06. volume": "38168252",
		"07. latest trading day": "2024-03-05",
		"08. previous close": "227.4800",
		"09. change": "2.3900",
		"10. change percent": "1.0507%"
	}
}`

const dailySeriesFixture = `{
	"Meta Data": {"2. Symbol": "AAPL"},
	"Time Series (Daily)": {
		"2024-03-05": {"1. open": "227.92", "2. high": "230.16", "3. low": "226.66", "4. close": "229.87", "5. volume": "38168252"},
		"2024-03-04": {"1. open": "226.10", "2. high": "228.00", "3. low": "225.30", "4. close": "227.48", "5. volume": "31025460"},
		"2024-03-01": {"1. open": "223.00", "2. high": "226.40", "3. low": "222.80", "4. close": "226.10", "5. volume": "28991710"}
	}
}`

func newQuoteServer(t *testing.T, body string, hits *int) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			*hits++
		}
		assert.NotEmpty(t, r.URL.Query().Get("apikey"))
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "demo")
}

func TestGlobalQuote(t *testing.T) {
	c := newQuoteServer(t, globalQuoteFixture, nil)
	q, err := c.GlobalQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, "229.87", q.Price.String())
	assert.Equal(t, "227.48", q.PreviousClose.String())
	assert.Equal(t, int64(38168252), q.Volume)
	assert.Equal(t, "1.0507%", q.ChangePercent)
	assert.Equal(t, "2024-03-05", q.TradingDay)
	assert.False(t, q.FetchedAt.IsZero())
}

func TestGlobalQuoteUnknownSymbol(t *testing.T) {
	c := newQuoteServer(t, `{"Global Quote": {}}`, nil)
	_, err := c.GlobalQuote(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, ErrSymbolNotFound)
}

func TestHistoricalDaily(t *testing.T) {
	c := newQuoteServer(t, dailySeriesFixture, nil)
	bars, err := c.HistoricalDaily(context.Background(), "AAPL", "2024-03-04", "2024-03-05")
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, "2024-03-05", bars[0].Date)
	assert.Equal(t, "2024-03-04", bars[1].Date)
	assert.Equal(t, "229.87", bars[0].Close.String())
}

func TestQuoteCacheFreshness(t *testing.T) {
	cache := NewQuoteCache()
	now := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)
	cache.Put(Quote{Symbol: "AAPL", FetchedAt: now})

	_, ok := cache.Fresh("AAPL", 2*time.Second, now.Add(1*time.Second))
	assert.True(t, ok)

	_, ok = cache.Fresh("AAPL", 2*time.Second, now.Add(5*time.Second))
	assert.False(t, ok)

	_, ok = cache.Fresh("MSFT", 2*time.Second, now)
	assert.False(t, ok)
}

func TestServiceQuoteUsesCache(t *testing.T) {
	hits := 0
	c := newQuoteServer(t, globalQuoteFixture, &hits)
	svc := NewService(c, NewQuoteCache())
	now := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	c.now = svc.now

	_, err := svc.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	_, err = svc.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 1, hits)

	now = now.Add(10 * time.Second)
	_, err = svc.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
}
