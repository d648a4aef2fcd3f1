package services

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mkravets/tradesim/internal/logger"
	"github.com/mkravets/tradesim/internal/models"
)

// Prize percentage bounds: uniform draw from [1, 10).
const (
	prizePercentMin  = 1.0
	prizePercentSpan = 9.0
)

// SpinStore reads and overwrites the per-account lucky-wheel record.
type SpinStore interface {
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*models.SpinDB, error)
	Upsert(ctx context.Context, accountID uuid.UUID, spinDate time.Time, prizeAmount, prizePercentage float64) error
}

// RewardService credits a randomized daily bonus. One spin per account per
// calendar day; the balance credit and the spin record overwrite commit
// together, serialized per account like trades.
type RewardService struct {
	tx       TxRunner
	balances BalanceStore
	spins    SpinStore
	locks    AccountSerializer
	kafka    KafkaWriter
	now      func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRewardService creates a new RewardService.
func NewRewardService(
	tx TxRunner,
	balances BalanceStore,
	spins SpinStore,
	locks AccountSerializer,
	kafka KafkaWriter,
) *RewardService {
	return &RewardService{
		tx:       tx,
		balances: balances,
		spins:    spins,
		locks:    locks,
		kafka:    kafka,
		now:      time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Spin performs the daily lucky-wheel draw for the account.
func (s *RewardService) Spin(ctx context.Context, accountID uuid.UUID) (*models.SpinResult, error) {
	s.locks.Lock(accountID)
	defer s.locks.Unlock(accountID)

	today := s.now().UTC()

	var result models.SpinResult
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		balance, err := s.balances.GetBalanceForUpdate(ctx, accountID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAccountNotFound
			}
			return err
		}

		spin, err := s.spins.GetByAccountID(ctx, accountID)
		if err != nil {
			return err
		}
		if spin != nil && sameCalendarDay(spin.LastSpinDate, today) {
			return ErrAlreadySpun
		}

		percentage := s.drawPercentage()
		amount := round2(balance * percentage / 100)

		result = models.SpinResult{
			PrizeAmount:     amount,
			PrizePercentage: percentage,
			NewBalance:      balance + amount,
		}

		if err := s.balances.SetBalance(ctx, accountID, result.NewBalance); err != nil {
			return err
		}
		return s.spins.Upsert(ctx, accountID, today, amount, percentage)
	})
	if err != nil {
		if !errors.Is(err, ErrAlreadySpun) {
			logger.Log.Errorw("spin failed", "accountID", accountID, "error", err)
		}
		return nil, err
	}

	publishEvent(ctx, s.kafka, models.TradeEvent{
		EventID:   uuid.NewString(),
		Timestamp: s.now().Unix(),
		AccountID: accountID.String(),
		Amount:    result.PrizeAmount,
		Operation: "wheel_prize",
	})

	return &result, nil
}

// drawPercentage draws the prize percentage uniformly from [1, 10).
func (s *RewardService) drawPercentage() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return prizePercentMin + s.rnd.Float64()*prizePercentSpan
}

// sameCalendarDay compares two instants by calendar date only, in UTC.
// Eligibility resets at the midnight boundary, not after 24 elapsed hours.
func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
