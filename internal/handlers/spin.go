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

// SpinTokener defines only the methods needed by this handler.
type SpinTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// Spinner defines the interface that the service must implement.
type Spinner interface {
	Spin(ctx context.Context, accountID uuid.UUID) (*models.SpinResult, error)
}

// SpinResponse represents a successful lucky-wheel spin response
// swagger:model SpinResponse
type SpinResponse struct {
	// Success message
	// default: Congratulations!
	Message string `json:"message"`

	// Prize amount credited to the balance
	// default: 512.34
	PrizeAmount float64 `json:"prize_amount"`

	// Prize as a percentage of the balance before the spin
	// default: 5.12
	PrizePercentage float64 `json:"prize_percentage"`

	// Cash balance after the credit
	// default: 10512.34
	NewBalance float64 `json:"new_balance"`
}

// SpinErrorResponse represents an error response for a lucky-wheel spin
// swagger:model SpinErrorResponse
type SpinErrorResponse struct {
	// Error message
	// default: Already spun today
	Error string `json:"error"`
}

// NewSpinHandler returns an HTTP handler for the daily lucky-wheel spin.
// @Summary Spin the lucky wheel
// @Description Credits a random prize of 1-10% of the current balance, once per account per UTC calendar day.
// @Tags reward
// @Produce json
// @Success 200 {object} handlers.SpinResponse "Prize credited"
// @Failure 401 {object} handlers.SpinErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.SpinErrorResponse "Account not found"
// @Failure 409 {object} handlers.SpinErrorResponse "Already spun today"
// @Router /wheel/spin [post]
// @Security BearerAuth
func NewSpinHandler(
	svc Spinner,
	tokenGetter SpinTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("failed to get token from request", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(SpinErrorResponse{Error: "Unauthorized"})
			return
		}

		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(SpinErrorResponse{Error: "Unauthorized"})
			return
		}

		result, err := svc.Spin(ctx, claims.UserID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrAlreadySpun):
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(SpinErrorResponse{Error: "Already spun today"})
			case errors.Is(err, services.ErrAccountNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(SpinErrorResponse{Error: "Account not found"})
			default:
				logger.Log.Errorw("failed to spin", "accountID", claims.UserID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(SpinErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(SpinResponse{
			Message:         "Congratulations!",
			PrizeAmount:     result.PrizeAmount,
			PrizePercentage: result.PrizePercentage,
			NewBalance:      result.NewBalance,
		})
	}
}
