package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/mkravets/tradesim/internal/jwt"
	"github.com/mkravets/tradesim/internal/logger"
	"github.com/mkravets/tradesim/internal/models"
	"github.com/mkravets/tradesim/internal/services"
)

// PortfolioTokener defines only the methods needed by this handler.
type PortfolioTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// PortfolioReader defines the interface that the service must implement.
type PortfolioReader interface {
	GetPortfolio(ctx context.Context, accountID uuid.UUID) (*models.PortfolioView, error)
}

// PortfolioErrorResponse represents an error response when fetching the portfolio
// swagger:model PortfolioErrorResponse
type PortfolioErrorResponse struct {
	// Error message
	// default: Unauthorized
	Error string `json:"error"`
}

// NewGetPortfolioHandler returns an HTTP handler for fetching the portfolio.
// @Summary Get portfolio
// @Description Returns the account's positions with current valuation, unrealized P/L and total value including cash
// @Tags portfolio
// @Produce json
// @Success 200 {object} models.PortfolioView "Portfolio with valuation"
// @Failure 401 {object} handlers.PortfolioErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.PortfolioErrorResponse "Account not found"
// @Failure 500 {object} handlers.PortfolioErrorResponse "Internal server error"
// @Router /portfolio [get]
// @Security BearerAuth
func NewGetPortfolioHandler(
	svc PortfolioReader,
	tokenGetter PortfolioTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Error("unauthorized portfolio request: missing or invalid token")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(PortfolioErrorResponse{
				Error: "Unauthorized",
			})
			return
		}

		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(PortfolioErrorResponse{
				Error: "Unauthorized",
			})
			return
		}

		portfolio, err := svc.GetPortfolio(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, services.ErrAccountNotFound) {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(PortfolioErrorResponse{
					Error: "Account not found",
				})
				return
			}
			logger.Log.Errorw("failed to get portfolio", "accountID", claims.UserID, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(PortfolioErrorResponse{
				Error: "Internal server error",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(portfolio)
	}
}
