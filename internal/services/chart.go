package services

import (
	"context"
	"strings"
	"time"

	"github.com/mkravets/tradesim/internal/logger"
	"github.com/mkravets/tradesim/internal/models"
)

// Staleness thresholds by requested range. Short ranges refresh faster.
const (
	shortRangeStaleness = 15 * time.Minute
	longRangeStaleness  = 60 * time.Minute
)

// Minimum point count a chart is padded to when strict range filtering
// thins it out too much.
const minChartPoints = 50

// rangeSlack is the generous extension added to the strict range window so a
// chart covering a weekend or market pause still renders.
const rangeSlack = 36 * time.Hour

// ChartCache is the read-through cache over chart series.
type ChartCache interface {
	Key(symbol, rng, interval string) string
	Get(ctx context.Context, key string) (*models.CachedChart, error)
	Set(ctx context.Context, key string, entry models.CachedChart) error
}

// ChartResolver resolves a chart from the upstream provider chain.
type ChartResolver interface {
	FetchChart(ctx context.Context, symbol, class, rng, interval string) (models.ChartSeries, string, error)
}

// AssetCatalog looks up catalog entries to classify symbols.
type AssetCatalog interface {
	GetBySymbol(ctx context.Context, symbol string) (*models.AssetDB, error)
}

// ChartService serves chart data cache-first: a fresh cached series is
// returned as-is, a stale or missing one triggers a live fetch through the
// resolver followed by a fire-and-forget cache write. An empty result is a
// valid outcome, never an error.
type ChartService struct {
	cache    ChartCache
	resolver ChartResolver
	assets   AssetCatalog
	now      func() time.Time
}

// NewChartService creates a new ChartService.
func NewChartService(cache ChartCache, resolver ChartResolver, assets AssetCatalog) *ChartService {
	return &ChartService{
		cache:    cache,
		resolver: resolver,
		assets:   assets,
		now:      time.Now,
	}
}

// GetChart returns the canonical series for (symbol, range, interval).
func (s *ChartService) GetChart(ctx context.Context, symbol, rng, interval string) (models.ChartSeries, error) {
	key := s.cache.Key(symbol, rng, interval)

	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Log.Errorw("chart cache read failed", "key", key, "error", err)
		cached = nil
	}
	if cached != nil && s.isFresh(cached.FetchedAt, rng) {
		return filterForRange(cached.Series, rng), nil
	}

	class := s.classify(ctx, symbol)
	series, source, err := s.resolver.FetchChart(ctx, symbol, class, rng, interval)
	if err != nil {
		logger.Log.Errorw("chart resolution failed", "symbol", symbol, "error", err)
		series = models.ChartSeries{}
	}

	if series.IsEmpty() {
		// Serve the stale copy over nothing at all.
		if cached != nil {
			return filterForRange(cached.Series, rng), nil
		}
		return models.ChartSeries{}, nil
	}

	s.cacheWrite(key, models.CachedChart{
		Series:    series,
		FetchedAt: s.now().UTC(),
		Source:    source,
	})

	return filterForRange(series, rng), nil
}

// UpsertTable ingests a table-shaped payload (header row plus string cells),
// normalizing it into the canonical series at write time. Payloads without a
// recognizable price column are unusable and are not cached.
func (s *ChartService) UpsertTable(ctx context.Context, symbol, rng, interval string, rows [][]string, source string) error {
	series, err := ParseTableSeries(rows)
	if err != nil {
		logger.Log.Warnw("unusable table payload", "symbol", symbol, "source", source, "error", err)
		return err
	}

	key := s.cache.Key(symbol, rng, interval)
	return s.cache.Set(ctx, key, models.CachedChart{
		Series:    series,
		FetchedAt: s.now().UTC(),
		Source:    source,
	})
}

// cacheWrite stores the entry in the background. A failed write never fails
// the read that triggered it.
func (s *ChartService) cacheWrite(key string, entry models.CachedChart) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.cache.Set(ctx, key, entry); err != nil {
			logger.Log.Errorw("chart cache write failed", "key", key, "error", err)
		}
	}()
}

func (s *ChartService) isFresh(fetchedAt time.Time, rng string) bool {
	threshold := longRangeStaleness
	switch strings.ToLower(rng) {
	case "1d", "5d", "1w":
		threshold = shortRangeStaleness
	}
	return s.now().Sub(fetchedAt) < threshold
}

// classify resolves the asset class from the catalog, defaulting to stock
// for unknown symbols unless the symbol looks like a crypto pair.
func (s *ChartService) classify(ctx context.Context, symbol string) string {
	if s.assets != nil {
		asset, err := s.assets.GetBySymbol(ctx, symbol)
		if err == nil && asset != nil {
			return asset.Class
		}
		if err != nil {
			logger.Log.Warnw("asset lookup failed", "symbol", symbol, "error", err)
		}
	}
	upper := strings.ToUpper(symbol)
	if strings.HasSuffix(upper, "-USD") || strings.HasSuffix(upper, "-USDT") {
		return models.ClassCrypto
	}
	return models.ClassStock
}

// rangeWindow maps a range onto its strict duration.
var rangeWindow = map[string]time.Duration{
	"1d":  24 * time.Hour,
	"5d":  5 * 24 * time.Hour,
	"1w":  7 * 24 * time.Hour,
	"1mo": 30 * 24 * time.Hour,
	"3mo": 90 * 24 * time.Hour,
	"6mo": 180 * 24 * time.Hour,
	"1y":  365 * 24 * time.Hour,
	"5y":  5 * 365 * 24 * time.Hour,
}

// filterForRange trims the series to a generous window for the requested
// range and backfills to at least minChartPoints when the strict filter
// leaves the chart too sparse.
func filterForRange(series models.ChartSeries, rng string) models.ChartSeries {
	if series.IsEmpty() {
		return series
	}

	window, ok := rangeWindow[strings.ToLower(rng)]
	if !ok {
		return series
	}

	last := series.Timestamps[len(series.Timestamps)-1]
	cutoff := last - int64((window + rangeSlack).Seconds())

	start := 0
	for i, ts := range series.Timestamps {
		if ts >= cutoff {
			start = i
			break
		}
	}

	// Backfill earlier points when the filtered window is too sparse.
	if len(series.Timestamps)-start < minChartPoints {
		start = len(series.Timestamps) - minChartPoints
		if start < 0 {
			start = 0
		}
	}

	return models.ChartSeries{
		Timestamps: series.Timestamps[start:],
		Close:      series.Close[start:],
		Volume:     series.Volume[start:],
	}
}
