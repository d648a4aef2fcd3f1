package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mkravets/tradesim/internal/models"
)

func TestChartCacheRepository(t *testing.T) {
	ctx := context.Background()

	// Start Redis container
	req := testcontainers.ContainerRequest{
		Image:        "redis:7.0-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	}
	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	assert.NoError(t, err)
	defer redisC.Terminate(ctx)

	host, err := redisC.Host(ctx)
	assert.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379")
	assert.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port.Port()),
	})
	defer rdb.Close()

	err = rdb.Ping(ctx).Err()
	assert.NoError(t, err)

	repo := NewChartCacheRepository(rdb, 2*time.Second)

	entry := models.CachedChart{
		Series: models.ChartSeries{
			Timestamps: []int64{1700000000, 1700086400},
			Close:      []float64{200.5, 201.25},
			Volume:     []float64{1000, 2000},
		},
		FetchedAt: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		Source:    "yahoo",
	}

	t.Run("Key format", func(t *testing.T) {
		assert.Equal(t, "chart:AAPL:1mo:1d", repo.Key("aapl", "1mo", "1d"))
	})

	t.Run("Set and Get chart", func(t *testing.T) {
		key := repo.Key("AAPL", "1mo", "1d")

		err := repo.Set(ctx, key, entry)
		assert.NoError(t, err)

		got, err := repo.Get(ctx, key)
		assert.NoError(t, err)
		assert.NotNil(t, got)
		assert.Equal(t, entry.Series, got.Series)
		assert.Equal(t, "yahoo", got.Source)
		assert.True(t, entry.FetchedAt.Equal(got.FetchedAt))
	})

	t.Run("Get missing key is a miss, not an error", func(t *testing.T) {
		got, err := repo.Get(ctx, repo.Key("TSLA", "1y", "1d"))
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Cached value expires", func(t *testing.T) {
		key := repo.Key("BTC-USD", "1w", "1h")

		err := repo.Set(ctx, key, entry)
		assert.NoError(t, err)

		// Wait for expiration (2s)
		time.Sleep(3 * time.Second)

		got, err := repo.Get(ctx, key)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Corrupt value returns error", func(t *testing.T) {
		key := repo.Key("ETH-USD", "1d", "5m")
		err := rdb.Set(ctx, key, "not-json", time.Minute).Err()
		assert.NoError(t, err)

		got, err := repo.Get(ctx, key)
		assert.Error(t, err)
		assert.Nil(t, got)
	})
}
