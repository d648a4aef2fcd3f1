package facades

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mkravets/tradesim/internal/logger"
	"github.com/mkravets/tradesim/internal/models"
)

// StooqProvider fetches daily historical quotes as CSV. Non-crypto symbols only.
type StooqProvider struct {
	baseURL string
	client  *http.Client
}

func NewStooqProvider(baseURL string, timeout time.Duration) *StooqProvider {
	if baseURL == "" {
		baseURL = StooqBaseURL
	}
	return &StooqProvider{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

func (p *StooqProvider) Name() string { return "stooq" }

// stooqSymbol lowercases the ticker and appends the .us market suffix for
// plain stock symbols.
func stooqSymbol(symbol, class string) string {
	s := strings.ToLower(symbol)
	if class == models.ClassStock && !strings.Contains(s, ".") {
		s += ".us"
	}
	return s
}

func (p *StooqProvider) FetchChart(ctx context.Context, symbol, class, rng, interval string) (models.ChartSeries, error) {
	if class == models.ClassCrypto {
		return models.ChartSeries{}, ErrNoData
	}

	q := url.Values{}
	q.Set("s", stooqSymbol(symbol, class))
	q.Set("i", "d")

	reqURL := fmt.Sprintf("%s/q/d/l/?%s", p.baseURL, q.Encode())
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
		logger.Log.Warnw("stooq returned non-200", "symbol", symbol, "status", resp.StatusCode)
		return models.ChartSeries{}, ErrNoData
	}

	cutoff := time.Now().AddDate(0, 0, -daysForRange(rng))

	var series models.ChartSeries
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Rows are Date,Open,High,Low,Close,Volume; skip the header and
		// anything malformed.
		fields := strings.Split(line, ",")
		if len(fields) < 5 {
			continue
		}

		day, err := time.Parse("2006-01-02", fields[0])
		if err != nil {
			continue
		}
		closePrice, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			continue
		}
		var volume float64
		if len(fields) >= 6 {
			volume, _ = strconv.ParseFloat(fields[5], 64)
		}

		if day.Before(cutoff) {
			continue
		}

		series.Timestamps = append(series.Timestamps, day.Unix())
		series.Close = append(series.Close, closePrice)
		series.Volume = append(series.Volume, volume)
	}
	if err := scanner.Err(); err != nil {
		return models.ChartSeries{}, err
	}

	if series.IsEmpty() {
		return models.ChartSeries{}, ErrNoData
	}
	return series, nil
}
