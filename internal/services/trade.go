package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mkravets/tradesim/internal/logger"
	"github.com/mkravets/tradesim/internal/models"
	"github.com/segmentio/kafka-go"
)

// DefaultSellEpsilon absorbs floating-point rounding when deciding whether a
// sell emptied the position.
const DefaultSellEpsilon = 1e-8

// TxRunner runs a function inside a single storage transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// BalanceStore reads and writes the account cash balance.
type BalanceStore interface {
	GetBalanceForUpdate(ctx context.Context, accountID uuid.UUID) (float64, error)
	SetBalance(ctx context.Context, accountID uuid.UUID, balance float64) error
}

// PositionStore reads and writes portfolio positions.
type PositionStore interface {
	GetForUpdate(ctx context.Context, accountID uuid.UUID, symbol string) (*models.PositionDB, error)
	Upsert(ctx context.Context, accountID uuid.UUID, symbol string, quantityDelta, amountDelta, currentPrice float64) (float64, error)
	Delete(ctx context.Context, accountID uuid.UUID, symbol string) error
}

// TransactionAppender appends immutable trade log rows.
type TransactionAppender interface {
	Append(ctx context.Context, t models.TransactionDB) (uuid.UUID, error)
}

// AccountSerializer serializes balance-mutating operations per account.
type AccountSerializer interface {
	Lock(accountID uuid.UUID)
	Unlock(accountID uuid.UUID)
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// TradeService executes buy and sell trades. Balance check, balance
// mutation, position upsert and transaction append all happen inside one
// storage transaction, and trades on the same account are serialized through
// the account locker, so a trade is all-or-nothing and never races another.
type TradeService struct {
	tx        TxRunner
	balances  BalanceStore
	positions PositionStore
	trades    TransactionAppender
	locks     AccountSerializer
	kafka     KafkaWriter
	epsilon   float64
}

// NewTradeService creates a new TradeService.
func NewTradeService(
	tx TxRunner,
	balances BalanceStore,
	positions PositionStore,
	trades TransactionAppender,
	locks AccountSerializer,
	kafka KafkaWriter,
	epsilon float64,
) *TradeService {
	if epsilon <= 0 {
		epsilon = DefaultSellEpsilon
	}
	return &TradeService{
		tx:        tx,
		balances:  balances,
		positions: positions,
		trades:    trades,
		locks:     locks,
		kafka:     kafka,
		epsilon:   epsilon,
	}
}

// ExecuteTrade performs one buy or sell and returns the resulting cash balance.
func (s *TradeService) ExecuteTrade(ctx context.Context, accountID uuid.UUID, symbol string, quantity, amount, price float64, action string) (float64, error) {
	if quantity <= 0 || amount <= 0 || price <= 0 {
		return 0, ErrInvalidTrade
	}
	if action != models.ActionBuy && action != models.ActionSell {
		return 0, ErrInvalidTrade
	}

	s.locks.Lock(accountID)
	defer s.locks.Unlock(accountID)

	var newBalance float64
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		balance, err := s.balances.GetBalanceForUpdate(ctx, accountID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAccountNotFound
			}
			return err
		}

		quantityDelta, amountDelta := quantity, amount
		if action == models.ActionBuy {
			if amount > balance {
				return ErrInsufficientFunds
			}
			newBalance = balance - amount
		} else {
			position, err := s.positions.GetForUpdate(ctx, accountID, symbol)
			if err != nil {
				return err
			}
			var available float64
			if position != nil {
				available = position.Quantity
			}
			if quantity > available+s.epsilon {
				return ErrInsufficientHoldings
			}
			newBalance = balance + amount
			quantityDelta, amountDelta = -quantity, -amount
		}

		if err := s.balances.SetBalance(ctx, accountID, newBalance); err != nil {
			return err
		}

		remaining, err := s.positions.Upsert(ctx, accountID, symbol, quantityDelta, amountDelta, price)
		if err != nil {
			return err
		}
		if remaining <= s.epsilon {
			if err := s.positions.Delete(ctx, accountID, symbol); err != nil {
				return err
			}
		}

		_, err = s.trades.Append(ctx, models.TransactionDB{
			AccountID: accountID,
			Symbol:    symbol,
			Quantity:  quantity,
			Amount:    amount,
			Action:    action,
			Price:     price,
		})
		return err
	})
	if err != nil {
		logger.Log.Errorw("trade failed",
			"accountID", accountID, "symbol", symbol, "action", action,
			"quantity", quantity, "amount", amount, "error", err)
		return 0, err
	}

	s.publishEvent(ctx, models.TradeEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().Unix(),
		AccountID: accountID.String(),
		Symbol:    symbol,
		Quantity:  quantity,
		Amount:    amount,
		Price:     price,
		Operation: action,
	})

	return newBalance, nil
}

// publishEvent publishes a trade event to the audit stream, fire-and-forget.
func (s *TradeService) publishEvent(ctx context.Context, event models.TradeEvent) {
	publishEvent(ctx, s.kafka, event)
}

func publishEvent(ctx context.Context, writer KafkaWriter, event models.TradeEvent) {
	if writer == nil {
		logger.Log.Warnw("Kafka writer not configured, skipping publishing", "event_id", event.EventID)
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("failed to marshal event for Kafka", "event_id", event.EventID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.EventID),
		Value: data,
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish event to Kafka", "event_id", event.EventID, "error", err)
	} else {
		logger.Log.Infow("event published to Kafka", "event_id", event.EventID, "operation", event.Operation, "amount", event.Amount)
	}
}
