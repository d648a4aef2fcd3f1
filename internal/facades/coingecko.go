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

// coinGeckoIDs maps base crypto tickers to aggregator coin ids.
var coinGeckoIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"BNB":   "binancecoin",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"SOL":   "solana",
	"DOGE":  "dogecoin",
	"DOT":   "polkadot",
	"LTC":   "litecoin",
	"MATIC": "matic-network",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
}

// CoinGeckoProvider fetches prices from the market aggregator. Days-based
// ranges, daily granularity for long windows.
type CoinGeckoProvider struct {
	baseURL string
	client  *http.Client
}

func NewCoinGeckoProvider(baseURL string, timeout time.Duration) *CoinGeckoProvider {
	if baseURL == "" {
		baseURL = CoinGeckoBaseURL
	}
	return &CoinGeckoProvider{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

func (p *CoinGeckoProvider) Name() string { return "coingecko" }

func (p *CoinGeckoProvider) FetchChart(ctx context.Context, symbol, class, rng, interval string) (models.ChartSeries, error) {
	if class != models.ClassCrypto {
		return models.ChartSeries{}, ErrNoData
	}

	base := strings.ToUpper(symbol)
	if i := strings.IndexByte(base, '-'); i > 0 {
		base = base[:i]
	}
	coinID, ok := coinGeckoIDs[base]
	if !ok {
		return models.ChartSeries{}, ErrNoData
	}

	days := daysForRange(rng)
	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("days", strconv.Itoa(days))
	if days > 30 {
		q.Set("interval", "daily")
	}

	reqURL := fmt.Sprintf("%s/api/v3/coins/%s/market_chart?%s", p.baseURL, coinID, q.Encode())
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
		logger.Log.Warnw("coingecko returned non-200", "coin", coinID, "status", resp.StatusCode)
		return models.ChartSeries{}, ErrNoData
	}

	var payload struct {
		Prices       [][2]float64 `json:"prices"`
		TotalVolumes [][2]float64 `json:"total_volumes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.ChartSeries{}, err
	}

	var series models.ChartSeries
	for i, point := range payload.Prices {
		series.Timestamps = append(series.Timestamps, int64(point[0])/1000)
		series.Close = append(series.Close, point[1])
		if i < len(payload.TotalVolumes) {
			series.Volume = append(series.Volume, payload.TotalVolumes[i][1])
		} else {
			series.Volume = append(series.Volume, 0)
		}
	}

	if series.IsEmpty() {
		return models.ChartSeries{}, ErrNoData
	}
	return series, nil
}
