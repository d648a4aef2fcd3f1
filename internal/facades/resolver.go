package facades

import (
	"context"
	"errors"
	"time"

	"github.com/mkravets/tradesim/internal/logger"
	"github.com/mkravets/tradesim/internal/models"
)

// Resolver walks a prioritized provider list until one returns at least one
// price point. Every provider call carries its own deadline; a timed-out
// provider is treated the same as an empty one and the chain proceeds.
// When every provider is exhausted the resolver returns an empty series and
// no error.
type Resolver struct {
	providers []Provider
	timeout   time.Duration
}

// NewResolver builds a resolver over the given providers in priority order.
func NewResolver(timeout time.Duration, providers ...Provider) *Resolver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Resolver{
		providers: providers,
		timeout:   timeout,
	}
}

// FetchChart resolves a chart for the symbol, returning the first non-empty
// series and the name of the provider that produced it.
func (r *Resolver) FetchChart(ctx context.Context, symbol, class, rng, interval string) (models.ChartSeries, string, error) {
	for _, provider := range r.providers {
		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		series, err := provider.FetchChart(callCtx, symbol, class, rng, interval)
		cancel()

		if err != nil {
			if errors.Is(err, ErrNoData) || errors.Is(err, context.DeadlineExceeded) {
				logger.Log.Debugw("provider had no data, trying next",
					"provider", provider.Name(), "symbol", symbol)
			} else {
				logger.Log.Warnw("provider failed, trying next",
					"provider", provider.Name(), "symbol", symbol, "error", err)
			}
			continue
		}
		if series.IsEmpty() {
			continue
		}

		logger.Log.Infow("chart resolved",
			"provider", provider.Name(), "symbol", symbol, "points", series.Len())
		return series, provider.Name(), nil
	}

	logger.Log.Infow("all providers exhausted", "symbol", symbol, "range", rng, "interval", interval)
	return models.ChartSeries{}, "", nil
}
