package facades

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mkravets/tradesim/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCoinGeckoProvider_FetchChart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/coins/bitcoin/market_chart", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "365", r.URL.Query().Get("days"))
		assert.Equal(t, "daily", r.URL.Query().Get("interval"))

		// Prices and volumes come as [millis, value] pairs.
		w.Write([]byte(`{
			"prices": [[1700000000000, 60000.5], [1700086400000, 60400.0]],
			"total_volumes": [[1700000000000, 1000.0], [1700086400000, 1100.0]]
		}`))
	}))
	defer srv.Close()

	p := NewCoinGeckoProvider(srv.URL, time.Second)
	series, err := p.FetchChart(context.Background(), "BTC-USD", models.ClassCrypto, "1y", "1d")

	assert.NoError(t, err)
	assert.Equal(t, 2, series.Len())
	assert.Equal(t, int64(1700000000), series.Timestamps[0])
	assert.Equal(t, 60000.5, series.Close[0])
	assert.Equal(t, 1000.0, series.Volume[0])
}

func TestCoinGeckoProvider_ShortRangeOmitsDailyInterval(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("days"))
		assert.Empty(t, r.URL.Query().Get("interval"))
		w.Write([]byte(`{"prices": [[1700000000000, 60000.5]], "total_volumes": []}`))
	}))
	defer srv.Close()

	p := NewCoinGeckoProvider(srv.URL, time.Second)
	series, err := p.FetchChart(context.Background(), "BTC-USD", models.ClassCrypto, "1w", "1h")

	assert.NoError(t, err)
	assert.Equal(t, 0.0, series.Volume[0])
}

func TestCoinGeckoProvider_UnknownCoin(t *testing.T) {
	p := NewCoinGeckoProvider("http://unused", time.Second)
	_, err := p.FetchChart(context.Background(), "OBSCURE-USD", models.ClassCrypto, "1mo", "1d")

	assert.ErrorIs(t, err, ErrNoData)
}

func TestCoinGeckoProvider_NonCrypto(t *testing.T) {
	p := NewCoinGeckoProvider("http://unused", time.Second)
	_, err := p.FetchChart(context.Background(), "AAPL", models.ClassStock, "1mo", "1d")

	assert.ErrorIs(t, err, ErrNoData)
}
