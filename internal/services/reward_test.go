package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/mkravets/tradesim/internal/models"
	"github.com/stretchr/testify/assert"
)

func newRewardService(tx *MockTxRunner, balances *MockBalanceStore, spins *MockSpinStore, kafka KafkaWriter, now time.Time) *RewardService {
	svc := NewRewardService(tx, balances, spins, NewAccountLocker(), kafka)
	svc.now = func() time.Time { return now }
	return svc
}

func TestRewardService_FirstSpin(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tx := NewMockTxRunner(ctrl)
	balances := NewMockBalanceStore(ctrl)
	spins := NewMockSpinStore(ctrl)
	kafka := NewMockKafkaWriter(ctrl)

	passthroughTx(tx)
	balances.EXPECT().GetBalanceForUpdate(gomock.Any(), accountID).Return(10000.0, nil)
	spins.EXPECT().GetByAccountID(gomock.Any(), accountID).Return(nil, nil)
	balances.EXPECT().SetBalance(gomock.Any(), accountID, gomock.Any()).Return(nil)
	spins.EXPECT().Upsert(gomock.Any(), accountID, gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	kafka.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(nil)

	svc := newRewardService(tx, balances, spins, kafka, now)
	result, err := svc.Spin(ctx, accountID)

	assert.NoError(t, err)
	assert.GreaterOrEqual(t, result.PrizePercentage, 1.0)
	assert.Less(t, result.PrizePercentage, 10.0)
	assert.GreaterOrEqual(t, result.PrizeAmount, 100.0)
	assert.Less(t, result.PrizeAmount, 1000.0)
	assert.Equal(t, 10000.0+result.PrizeAmount, result.NewBalance)
}

func TestRewardService_SecondSpinSameDay(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()
	now := time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tx := NewMockTxRunner(ctrl)
	balances := NewMockBalanceStore(ctrl)
	spins := NewMockSpinStore(ctrl)

	passthroughTx(tx)
	balances.EXPECT().GetBalanceForUpdate(gomock.Any(), accountID).Return(10500.0, nil)
	spins.EXPECT().GetByAccountID(gomock.Any(), accountID).Return(&models.SpinDB{
		AccountID:    accountID,
		LastSpinDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	}, nil)

	svc := newRewardService(tx, balances, spins, nil, now)
	result, err := svc.Spin(ctx, accountID)

	assert.ErrorIs(t, err, ErrAlreadySpun)
	assert.Nil(t, result)
}

func TestRewardService_SpinNextCalendarDay(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()
	// One minute past UTC midnight: eligibility resets at the date
	// boundary even though far fewer than 24 hours have elapsed.
	now := time.Date(2025, 6, 16, 0, 1, 0, 0, time.UTC)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tx := NewMockTxRunner(ctrl)
	balances := NewMockBalanceStore(ctrl)
	spins := NewMockSpinStore(ctrl)

	passthroughTx(tx)
	balances.EXPECT().GetBalanceForUpdate(gomock.Any(), accountID).Return(10500.0, nil)
	spins.EXPECT().GetByAccountID(gomock.Any(), accountID).Return(&models.SpinDB{
		AccountID:    accountID,
		LastSpinDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	}, nil)
	balances.EXPECT().SetBalance(gomock.Any(), accountID, gomock.Any()).Return(nil)
	spins.EXPECT().Upsert(gomock.Any(), accountID, gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	svc := newRewardService(tx, balances, spins, nil, now)
	result, err := svc.Spin(ctx, accountID)

	assert.NoError(t, err)
	assert.NotNil(t, result)
}

func TestRewardService_AccountNotFound(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tx := NewMockTxRunner(ctrl)
	balances := NewMockBalanceStore(ctrl)
	spins := NewMockSpinStore(ctrl)

	passthroughTx(tx)
	balances.EXPECT().GetBalanceForUpdate(gomock.Any(), accountID).Return(0.0, sql.ErrNoRows)

	svc := newRewardService(tx, balances, spins, nil, time.Now())
	_, err := svc.Spin(ctx, accountID)

	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestRewardService_PrizeRoundedToCents(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tx := NewMockTxRunner(ctrl)
	balances := NewMockBalanceStore(ctrl)
	spins := NewMockSpinStore(ctrl)

	passthroughTx(tx)
	balances.EXPECT().GetBalanceForUpdate(gomock.Any(), accountID).Return(1234.56, nil)
	spins.EXPECT().GetByAccountID(gomock.Any(), accountID).Return(nil, nil)
	balances.EXPECT().SetBalance(gomock.Any(), accountID, gomock.Any()).Return(nil)
	spins.EXPECT().Upsert(gomock.Any(), accountID, gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	svc := newRewardService(tx, balances, spins, nil, time.Now())
	result, err := svc.Spin(ctx, accountID)

	assert.NoError(t, err)
	assert.Equal(t, round2(result.PrizeAmount), result.PrizeAmount)
}

func TestSameCalendarDay(t *testing.T) {
	base := time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC)

	assert.True(t, sameCalendarDay(base, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.False(t, sameCalendarDay(base, base.Add(time.Second)))
	assert.False(t, sameCalendarDay(base, base.AddDate(0, 0, -1)))

	// Comparison normalizes to UTC.
	offset := time.FixedZone("UTC+3", 3*60*60)
	assert.True(t, sameCalendarDay(base, time.Date(2025, 6, 16, 1, 0, 0, 0, offset)))
}
