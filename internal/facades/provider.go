package facades

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mkravets/tradesim/internal/models"
)

// ErrNoData signals that a provider had nothing for the request. It is a
// valid empty-result outcome, not a fault; the resolver moves on to the next
// provider.
var ErrNoData = errors.New("no chart data available")

// Provider is the uniform capability every upstream adapter implements.
type Provider interface {
	Name() string
	FetchChart(ctx context.Context, symbol, class, rng, interval string) (models.ChartSeries, error)
}

// Default upstream endpoints.
const (
	BinanceBaseURL   = "https://api.binance.com"
	CoinGeckoBaseURL = "https://api.coingecko.com"
	YahooBaseURL     = "https://query1.finance.yahoo.com"
	StooqBaseURL     = "https://stooq.com"
	FMPBaseURL       = "https://financialmodelingprep.com"
)

// rangeDays maps a requested range to the length of the window in days.
var rangeDays = map[string]int{
	"1d":  1,
	"5d":  5,
	"1w":  7,
	"1mo": 30,
	"3mo": 90,
	"6mo": 180,
	"1y":  365,
	"5y":  1825,
}

// daysForRange resolves the window length, defaulting to 30 days for
// unknown ranges.
func daysForRange(rng string) int {
	if d, ok := rangeDays[strings.ToLower(rng)]; ok {
		return d
	}
	return 30
}

// binanceIntervals maps requested intervals onto Binance kline intervals.
// Unknown intervals fall back to 5-minute granularity.
var binanceIntervals = map[string]string{
	"1m":  "1m",
	"5m":  "5m",
	"15m": "15m",
	"30m": "30m",
	"60m": "1h",
	"1h":  "1h",
	"1d":  "1d",
	"1wk": "1w",
}

func binanceInterval(interval string) string {
	if v, ok := binanceIntervals[strings.ToLower(interval)]; ok {
		return v
	}
	return "5m"
}

// fmpIntervals maps requested intervals onto FMP intraday endpoint names.
// Unknown intervals fall back to 5min.
var fmpIntervals = map[string]string{
	"1m":  "1min",
	"5m":  "5min",
	"15m": "15min",
	"30m": "30min",
	"60m": "1hour",
	"1h":  "1hour",
	"4h":  "4hour",
}

func fmpInterval(interval string) string {
	if v, ok := fmpIntervals[strings.ToLower(interval)]; ok {
		return v
	}
	return "5min"
}

// newHTTPClient builds the client shared by the adapters. Providers also get
// a per-call deadline from the resolver; this timeout is the hard cap.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
