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

// TradeTokener defines only the methods needed by this handler.
type TradeTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// TradeExecutor defines the interface that the service must implement.
type TradeExecutor interface {
	ExecuteTrade(ctx context.Context, accountID uuid.UUID, symbol string, quantity, amount, price float64, action string) (float64, error)
}

// TradeRequest represents the JSON body for executing a trade
// swagger:model TradeRequest
type TradeRequest struct {
	// Asset symbol
	// required: true
	// default: BTC-USD
	Symbol string `json:"symbol"`

	// Units to buy or sell
	// required: true
	// default: 0.01
	Quantity float64 `json:"quantity"`

	// Cash amount moved by the trade
	// required: true
	// default: 600.0
	Amount float64 `json:"amount"`

	// Execution price
	// required: true
	// default: 60000.0
	Price float64 `json:"price"`

	// Trade action, "buy" or "sell"
	// required: true
	// default: buy
	Action string `json:"action"`
}

// TradeResponse represents a successful trade response
// swagger:model TradeResponse
type TradeResponse struct {
	// Success message
	// default: Trade executed successfully
	Message string `json:"message"`

	// Cash balance after the trade
	// default: 9400.0
	NewBalance float64 `json:"new_balance"`
}

// TradeErrorResponse represents an error response for a trade
// swagger:model TradeErrorResponse
type TradeErrorResponse struct {
	// Error message
	// default: Insufficient funds
	Error string `json:"error"`
}

// NewTradeHandler returns an HTTP handler for executing buy and sell trades.
// @Summary Execute a trade
// @Description Buys or sells an asset. The balance check, balance update, position change and transaction log commit atomically.
// @Tags trading
// @Accept json
// @Produce json
// @Param tradeRequest body handlers.TradeRequest true "Trade Request"
// @Success 200 {object} handlers.TradeResponse "Trade executed"
// @Failure 400 {object} handlers.TradeErrorResponse "Invalid trade / insufficient funds or holdings"
// @Failure 401 {object} handlers.TradeErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.TradeErrorResponse "Account not found"
// @Router /trade [post]
// @Security BearerAuth
func NewTradeHandler(
	svc TradeExecutor,
	tokenGetter TradeTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("failed to get token from request", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(TradeErrorResponse{Error: "Unauthorized"})
			return
		}

		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(TradeErrorResponse{Error: "Unauthorized"})
			return
		}

		var req TradeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode trade request", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TradeErrorResponse{Error: "Invalid request body"})
			return
		}

		if req.Symbol == "" {
			logger.Log.Warnw("trade request without symbol")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TradeErrorResponse{Error: "Invalid trade"})
			return
		}
		if req.Action != models.ActionBuy && req.Action != models.ActionSell {
			logger.Log.Warnw("invalid trade action", "action", req.Action)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TradeErrorResponse{Error: "Invalid trade"})
			return
		}

		newBalance, err := svc.ExecuteTrade(ctx, claims.UserID, req.Symbol, req.Quantity, req.Amount, req.Price, req.Action)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidTrade):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(TradeErrorResponse{Error: "Invalid trade"})
			case errors.Is(err, services.ErrInsufficientFunds):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(TradeErrorResponse{Error: "Insufficient funds"})
			case errors.Is(err, services.ErrInsufficientHoldings):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(TradeErrorResponse{Error: "Insufficient holdings"})
			case errors.Is(err, services.ErrAccountNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(TradeErrorResponse{Error: "Account not found"})
			default:
				logger.Log.Errorw("failed to execute trade", "accountID", claims.UserID, "symbol", req.Symbol, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(TradeErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(TradeResponse{
			Message:    "Trade executed successfully",
			NewBalance: newBalance,
		})
	}
}
