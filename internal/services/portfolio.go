package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/mkravets/tradesim/internal/logger"
	"github.com/mkravets/tradesim/internal/models"
)

// PositionLister lists an account's positions.
type PositionLister interface {
	ListByAccountID(ctx context.Context, accountID uuid.UUID) ([]models.PositionDB, error)
}

// BalanceReader reads an account's cash balance without locking.
type BalanceReader interface {
	GetBalance(ctx context.Context, accountID uuid.UUID) (float64, error)
}

// PortfolioService assembles the portfolio read model: positions valued at
// their last-known price plus the cash balance. Valuation fields are derived
// on every read, never stored.
type PortfolioService struct {
	positions PositionLister
	balances  BalanceReader
}

// NewPortfolioService creates a new PortfolioService.
func NewPortfolioService(positions PositionLister, balances BalanceReader) *PortfolioService {
	return &PortfolioService{
		positions: positions,
		balances:  balances,
	}
}

// GetBalance returns the account's cash balance.
func (s *PortfolioService) GetBalance(ctx context.Context, accountID uuid.UUID) (float64, error) {
	balance, err := s.balances.GetBalance(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrAccountNotFound
		}
		logger.Log.Errorw("failed to read balance", "accountID", accountID, "error", err)
		return 0, err
	}
	return balance, nil
}

// GetPortfolio returns the account's positions with valuation and cash balance.
func (s *PortfolioService) GetPortfolio(ctx context.Context, accountID uuid.UUID) (*models.PortfolioView, error) {
	balance, err := s.balances.GetBalance(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		logger.Log.Errorw("failed to read balance", "accountID", accountID, "error", err)
		return nil, err
	}

	positions, err := s.positions.ListByAccountID(ctx, accountID)
	if err != nil {
		logger.Log.Errorw("failed to list positions", "accountID", accountID, "error", err)
		return nil, err
	}

	view := &models.PortfolioView{
		CashBalance: balance,
		Positions:   make([]models.PositionView, 0, len(positions)),
		TotalValue:  balance,
	}

	for _, p := range positions {
		currentValue := p.Quantity * p.LastPrice
		view.Positions = append(view.Positions, models.PositionView{
			Symbol:        p.Symbol,
			Quantity:      p.Quantity,
			TotalInvested: p.TotalInvested,
			LastPrice:     p.LastPrice,
			CurrentValue:  currentValue,
			UnrealizedPL:  currentValue - p.TotalInvested,
		})
		view.TotalValue += currentValue
	}

	return view, nil
}
