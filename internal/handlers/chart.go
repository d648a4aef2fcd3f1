package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mkravets/tradesim/internal/logger"
	"github.com/mkravets/tradesim/internal/models"
)

// ChartReader defines the interface that the service must implement.
type ChartReader interface {
	GetChart(ctx context.Context, symbol, rng, interval string) (models.ChartSeries, error)
}

// ChartResponse represents the chart response
// swagger:model ChartResponse
type ChartResponse struct {
	// Asset symbol
	// default: BTC-USD
	Symbol string `json:"symbol"`

	// Requested range
	// default: 1mo
	Range string `json:"range"`

	// Requested interval
	// default: 1d
	Interval string `json:"interval"`

	// Canonical price series, may be empty when no provider had data
	Series models.ChartSeries `json:"series"`
}

// ChartErrorResponse represents an error response for chart requests
// swagger:model ChartErrorResponse
type ChartErrorResponse struct {
	// Error message
	// default: Symbol is required
	Error string `json:"error"`
}

// NewGetChartHandler returns an HTTP handler for chart data.
// @Summary Get chart data
// @Description Returns the canonical price series for a symbol. Served from the cache when fresh, otherwise resolved through the provider chain. An empty series is a valid response.
// @Tags market-data
// @Produce json
// @Param symbol path string true "Asset symbol" default(BTC-USD)
// @Param range query string false "Chart range" default(1mo)
// @Param interval query string false "Chart interval" default(1d)
// @Success 200 {object} handlers.ChartResponse "Chart series"
// @Failure 400 {object} handlers.ChartErrorResponse "Missing symbol"
// @Failure 500 {object} handlers.ChartErrorResponse "Internal server error"
// @Router /chart/{symbol} [get]
func NewGetChartHandler(svc ChartReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
		if symbol == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ChartErrorResponse{Error: "Symbol is required"})
			return
		}

		rng := r.URL.Query().Get("range")
		if rng == "" {
			rng = "1mo"
		}
		interval := r.URL.Query().Get("interval")
		if interval == "" {
			interval = "1d"
		}

		series, err := svc.GetChart(r.Context(), symbol, rng, interval)
		if err != nil {
			logger.Log.Errorw("failed to get chart", "symbol", symbol, "range", rng, "interval", interval, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(ChartErrorResponse{Error: "Internal server error"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(ChartResponse{
			Symbol:   symbol,
			Range:    rng,
			Interval: interval,
			Series:   series,
		})
	}
}
