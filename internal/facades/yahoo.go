package facades

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mkravets/tradesim/internal/logger"
	"github.com/mkravets/tradesim/internal/models"
)

// YahooProvider fetches the general-purpose quote/candle API. It serves any
// asset class.
type YahooProvider struct {
	baseURL string
	client  *http.Client
}

func NewYahooProvider(baseURL string, timeout time.Duration) *YahooProvider {
	if baseURL == "" {
		baseURL = YahooBaseURL
	}
	return &YahooProvider{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

func (p *YahooProvider) FetchChart(ctx context.Context, symbol, class, rng, interval string) (models.ChartSeries, error) {
	q := url.Values{}
	q.Set("range", rng)
	q.Set("interval", interval)

	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", p.baseURL, url.PathEscape(symbol), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return models.ChartSeries{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return models.ChartSeries{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Log.Warnw("yahoo returned non-200", "symbol", symbol, "status", resp.StatusCode)
		return models.ChartSeries{}, ErrNoData
	}

	var payload struct {
		Chart struct {
			Result []struct {
				Timestamp  []int64 `json:"timestamp"`
				Indicators struct {
					Quote []struct {
						Close  []*float64 `json:"close"`
						Volume []*float64 `json:"volume"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
		} `json:"chart"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.ChartSeries{}, err
	}

	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return models.ChartSeries{}, ErrNoData
	}

	result := payload.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	var series models.ChartSeries
	for i, ts := range result.Timestamp {
		// Market pauses come back as null closes, skip them.
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		series.Timestamps = append(series.Timestamps, ts)
		series.Close = append(series.Close, *quote.Close[i])
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			series.Volume = append(series.Volume, *quote.Volume[i])
		} else {
			series.Volume = append(series.Volume, 0)
		}
	}

	if series.IsEmpty() {
		return models.ChartSeries{}, ErrNoData
	}
	return series, nil
}
