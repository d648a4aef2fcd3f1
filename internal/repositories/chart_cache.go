package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/mkravets/tradesim/internal/logger"
	"github.com/mkravets/tradesim/internal/models"
)

// ChartCacheRepository stores normalized chart series in Redis. The value
// keeps its own fetched_at timestamp; the range-dependent staleness decision
// belongs to the chart service, the Redis TTL is only a backstop.
type ChartCacheRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewChartCacheRepository creates a cache repository with the backstop TTL.
func NewChartCacheRepository(client *redis.Client, ttl time.Duration) *ChartCacheRepository {
	return &ChartCacheRepository{
		client: client,
		ttl:    ttl,
	}
}

// Key derives the cache key for a (symbol, range, interval) request.
func (r *ChartCacheRepository) Key(symbol, rng, interval string) string {
	return fmt.Sprintf("chart:%s:%s:%s", strings.ToUpper(symbol), rng, interval)
}

// Get returns the cached entry for the key, or nil on a cache miss.
func (r *ChartCacheRepository) Get(ctx context.Context, key string) (*models.CachedChart, error) {
	val, err := r.client.Get(ctx, key).Bytes()

	logger.Log.Infow(
		"key", key,
		"bytes", len(val),
		"error", err,
	)

	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entry models.CachedChart
	if err := json.Unmarshal(val, &entry); err != nil {
		logger.Log.Errorw("failed to unmarshal cached chart", "key", key, "error", err)
		return nil, err
	}

	return &entry, nil
}

// Set stores the entry under the key with the backstop TTL.
func (r *ChartCacheRepository) Set(ctx context.Context, key string, entry models.CachedChart) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	err = r.client.Set(ctx, key, data, r.ttl).Err()

	logger.Log.Infow(
		"key", key,
		"points", entry.Series.Len(),
		"source", entry.Source,
		"error", err,
	)

	return err
}
