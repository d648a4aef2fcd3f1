package facades

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mkravets/tradesim/internal/logger"
	"github.com/mkravets/tradesim/internal/models"
)

// FMPProvider fetches the financial-data API keyed by an API token. It picks
// the intraday or daily endpoint from the requested interval. Non-crypto
// symbols only.
type FMPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewFMPProvider(baseURL, apiKey string, timeout time.Duration) *FMPProvider {
	if baseURL == "" {
		baseURL = FMPBaseURL
	}
	return &FMPProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  newHTTPClient(timeout),
	}
}

func (p *FMPProvider) Name() string { return "fmp" }

type fmpBar struct {
	Date   string  `json:"date"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

func (p *FMPProvider) FetchChart(ctx context.Context, symbol, class, rng, interval string) (models.ChartSeries, error) {
	if class == models.ClassCrypto || p.apiKey == "" {
		return models.ChartSeries{}, ErrNoData
	}

	q := url.Values{}
	q.Set("apikey", p.apiKey)

	var reqURL string
	daily := strings.EqualFold(interval, "1d") || strings.EqualFold(interval, "1wk")
	if daily {
		reqURL = fmt.Sprintf("%s/api/v3/historical-price-full/%s?%s", p.baseURL, url.PathEscape(symbol), q.Encode())
	} else {
		reqURL = fmt.Sprintf("%s/api/v3/historical-chart/%s/%s?%s", p.baseURL, fmpInterval(interval), url.PathEscape(symbol), q.Encode())
	}

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
		logger.Log.Warnw("fmp returned non-200", "symbol", symbol, "status", resp.StatusCode)
		return models.ChartSeries{}, ErrNoData
	}

	var bars []fmpBar
	if daily {
		var payload struct {
			Historical []fmpBar `json:"historical"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return models.ChartSeries{}, err
		}
		bars = payload.Historical
	} else {
		if err := json.NewDecoder(resp.Body).Decode(&bars); err != nil {
			return models.ChartSeries{}, err
		}
	}

	series := fmpBarsToSeries(bars)
	if series.IsEmpty() {
		return models.ChartSeries{}, ErrNoData
	}
	return series, nil
}

// fmpBarsToSeries converts the newest-first bar list into an ascending series.
func fmpBarsToSeries(bars []fmpBar) models.ChartSeries {
	type point struct {
		ts     int64
		close  float64
		volume float64
	}

	points := make([]point, 0, len(bars))
	for _, bar := range bars {
		ts, err := parseFMPDate(bar.Date)
		if err != nil {
			continue
		}
		points = append(points, point{ts: ts, close: bar.Close, volume: bar.Volume})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].ts < points[j].ts })

	var series models.ChartSeries
	for _, pt := range points {
		series.Timestamps = append(series.Timestamps, pt.ts)
		series.Close = append(series.Close, pt.close)
		series.Volume = append(series.Volume, pt.volume)
	}
	return series
}

func parseFMPDate(s string) (int64, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("unrecognized date %q", s)
}
