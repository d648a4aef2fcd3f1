package facades

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mkravets/tradesim/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestStooqSymbol(t *testing.T) {
	assert.Equal(t, "aapl.us", stooqSymbol("AAPL", models.ClassStock))
	assert.Equal(t, "brk-b.us", stooqSymbol("BRK-B", models.ClassStock))
	assert.Equal(t, "aapl.de", stooqSymbol("AAPL.DE", models.ClassStock))
	assert.Equal(t, "eurusd", stooqSymbol("EURUSD", models.ClassForex))
}

func TestStooqProvider_FetchChart(t *testing.T) {
	// The cutoff is computed from the wall clock, so the fixture uses
	// recent dates.
	d1 := time.Now().AddDate(0, 0, -3).Format("2006-01-02")
	d2 := time.Now().AddDate(0, 0, -2).Format("2006-01-02")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/q/d/l/", r.URL.Path)
		assert.Equal(t, "aapl.us", r.URL.Query().Get("s"))

		fmt.Fprintf(w, "Date,Open,High,Low,Close,Volume\n")
		fmt.Fprintf(w, "%s,189.0,191.0,188.5,190.5,1000000\n", d1)
		fmt.Fprintf(w, "malformed line without commas\n")
		fmt.Fprintf(w, "%s,190.5,192.0,190.0,191.25,1200000\n", d2)
	}))
	defer srv.Close()

	p := NewStooqProvider(srv.URL, time.Second)
	series, err := p.FetchChart(context.Background(), "AAPL", models.ClassStock, "1mo", "1d")

	assert.NoError(t, err)
	assert.Equal(t, 2, series.Len())
	assert.Equal(t, []float64{190.5, 191.25}, series.Close)
	assert.Equal(t, []float64{1000000, 1200000}, series.Volume)
}

func TestStooqProvider_RangeCutoff(t *testing.T) {
	recent := time.Now().AddDate(0, 0, -2).Format("2006-01-02")
	old := time.Now().AddDate(0, 0, -60).Format("2006-01-02")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "Date,Open,High,Low,Close,Volume\n")
		fmt.Fprintf(w, "%s,100.0,101.0,99.0,100.5,500\n", old)
		fmt.Fprintf(w, "%s,101.0,102.0,100.0,101.5,600\n", recent)
	}))
	defer srv.Close()

	p := NewStooqProvider(srv.URL, time.Second)
	series, err := p.FetchChart(context.Background(), "AAPL", models.ClassStock, "1w", "1d")

	assert.NoError(t, err)
	// The 60-day-old row falls outside the one-week window.
	assert.Equal(t, 1, series.Len())
	assert.Equal(t, 101.5, series.Close[0])
}

func TestStooqProvider_Crypto(t *testing.T) {
	p := NewStooqProvider("http://unused", time.Second)
	_, err := p.FetchChart(context.Background(), "BTC-USD", models.ClassCrypto, "1mo", "1d")

	assert.ErrorIs(t, err, ErrNoData)
}

func TestStooqProvider_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "Date,Open,High,Low,Close,Volume\n")
	}))
	defer srv.Close()

	p := NewStooqProvider(srv.URL, time.Second)
	_, err := p.FetchChart(context.Background(), "NOPE", models.ClassStock, "1mo", "1d")

	assert.ErrorIs(t, err, ErrNoData)
}
