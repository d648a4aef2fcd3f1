package facades

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mkravets/tradesim/internal/logger"
	"github.com/mkravets/tradesim/internal/models"
)

// BinanceProvider fetches candles from the exchange kline endpoint. It only
// serves crypto symbols.
type BinanceProvider struct {
	baseURL string
	client  *http.Client
}

func NewBinanceProvider(baseURL string, timeout time.Duration) *BinanceProvider {
	if baseURL == "" {
		baseURL = BinanceBaseURL
	}
	return &BinanceProvider{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

func (p *BinanceProvider) Name() string { return "binance" }

// binanceSymbol converts a catalog pair like BTC-USD into the exchange
// ticker BTCUSDT.
func binanceSymbol(symbol string) string {
	s := strings.ToUpper(strings.ReplaceAll(symbol, "-", ""))
	if strings.HasSuffix(s, "USD") && !strings.HasSuffix(s, "USDT") {
		s += "T"
	}
	return s
}

func (p *BinanceProvider) FetchChart(ctx context.Context, symbol, class, rng, interval string) (models.ChartSeries, error) {
	if class != models.ClassCrypto {
		return models.ChartSeries{}, ErrNoData
	}

	q := url.Values{}
	q.Set("symbol", binanceSymbol(symbol))
	q.Set("interval", binanceInterval(interval))
	q.Set("limit", "500")

	reqURL := fmt.Sprintf("%s/api/v3/klines?%s", p.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return models.ChartSeries{}, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return models.ChartSeries{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Log.Warnw("binance returned non-200", "symbol", symbol, "status", resp.StatusCode)
		return models.ChartSeries{}, ErrNoData
	}

	// Each kline is [openTimeMs, open, high, low, close, volume, ...] with
	// prices and volume encoded as strings.
	var klines [][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&klines); err != nil {
		return models.ChartSeries{}, err
	}

	var series models.ChartSeries
	for _, k := range klines {
		if len(k) < 6 {
			continue
		}

		var openTimeMs int64
		if err := json.Unmarshal(k[0], &openTimeMs); err != nil {
			continue
		}
		closePrice, err := parseQuotedFloat(k[4])
		if err != nil {
			continue
		}
		volume, err := parseQuotedFloat(k[5])
		if err != nil {
			volume = 0
		}

		series.Timestamps = append(series.Timestamps, openTimeMs/1000)
		series.Close = append(series.Close, closePrice)
		series.Volume = append(series.Volume, volume)
	}

	if series.IsEmpty() {
		return models.ChartSeries{}, ErrNoData
	}
	return series, nil
}

func parseQuotedFloat(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		// Some endpoints emit plain numbers instead of strings.
		var f float64
		if err2 := json.Unmarshal(raw, &f); err2 == nil {
			return f, nil
		}
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}
