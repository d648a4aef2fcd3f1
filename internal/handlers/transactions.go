package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/mkravets/tradesim/internal/jwt"
	"github.com/mkravets/tradesim/internal/logger"
	"github.com/mkravets/tradesim/internal/models"
)

// TransactionsTokener defines only the methods needed by this handler.
type TransactionsTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// TransactionLister defines the interface that the repository must implement.
type TransactionLister interface {
	ListByAccountID(ctx context.Context, accountID uuid.UUID, limit int) ([]models.TransactionDB, error)
}

// TransactionsResponse represents the transaction history response
// swagger:model TransactionsResponse
type TransactionsResponse struct {
	// Transactions, most recent first
	Transactions []models.TransactionDB `json:"transactions"`
}

// TransactionsErrorResponse represents an error response for transaction history
// swagger:model TransactionsErrorResponse
type TransactionsErrorResponse struct {
	// Error message
	// default: Unauthorized
	Error string `json:"error"`
}

// NewGetTransactionsHandler returns an HTTP handler for the trade history.
// @Summary Get transaction history
// @Description Returns the account's trade log, most recent first. The optional limit query parameter caps the row count.
// @Tags trading
// @Produce json
// @Param limit query int false "Maximum rows to return" default(50)
// @Success 200 {object} handlers.TransactionsResponse "Transaction history"
// @Failure 401 {object} handlers.TransactionsErrorResponse "Unauthorized"
// @Failure 500 {object} handlers.TransactionsErrorResponse "Internal server error"
// @Router /transactions [get]
// @Security BearerAuth
func NewGetTransactionsHandler(
	lister TransactionLister,
	tokenGetter TransactionsTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Error("unauthorized transactions request: missing or invalid token")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(TransactionsErrorResponse{Error: "Unauthorized"})
			return
		}

		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(TransactionsErrorResponse{Error: "Unauthorized"})
			return
		}

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil || limit < 0 {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(TransactionsErrorResponse{Error: "Invalid limit"})
				return
			}
		}

		transactions, err := lister.ListByAccountID(ctx, claims.UserID, limit)
		if err != nil {
			logger.Log.Errorw("failed to list transactions", "accountID", claims.UserID, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(TransactionsErrorResponse{Error: "Internal server error"})
			return
		}
		if transactions == nil {
			transactions = []models.TransactionDB{}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(TransactionsResponse{Transactions: transactions})
	}
}
