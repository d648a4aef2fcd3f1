package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mkravets/tradesim/internal/logger"
	"github.com/mkravets/tradesim/internal/models"
)

// AssetLister defines the interface that the repository must implement.
type AssetLister interface {
	List(ctx context.Context, activeOnly bool) ([]models.AssetDB, error)
}

// AssetsResponse represents the asset catalog response
// swagger:model AssetsResponse
type AssetsResponse struct {
	// Tradable assets
	Assets []models.AssetDB `json:"assets"`
}

// AssetsErrorResponse represents an error response for the asset catalog
// swagger:model AssetsErrorResponse
type AssetsErrorResponse struct {
	// Error message
	// default: Internal server error
	Error string `json:"error"`
}

// NewGetAssetsHandler returns an HTTP handler for the asset catalog.
// @Summary List tradable assets
// @Description Returns active catalog assets. Pass all=true to include inactive ones.
// @Tags catalog
// @Produce json
// @Param all query bool false "Include inactive assets" default(false)
// @Success 200 {object} handlers.AssetsResponse "Asset catalog"
// @Failure 500 {object} handlers.AssetsErrorResponse "Internal server error"
// @Router /assets [get]
func NewGetAssetsHandler(lister AssetLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly := r.URL.Query().Get("all") != "true"

		assets, err := lister.List(r.Context(), activeOnly)
		if err != nil {
			logger.Log.Errorw("failed to list assets", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(AssetsErrorResponse{Error: "Internal server error"})
			return
		}
		if assets == nil {
			assets = []models.AssetDB{}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(AssetsResponse{Assets: assets})
	}
}
