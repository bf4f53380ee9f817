package ledger

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JericoFX/advance-manager/internal/entities"
	"github.com/JericoFX/advance-manager/internal/repositories/memory"
)

func newTestLedger(t *testing.T, funds int64) (*Ledger, int64) {
	t.Helper()
	repo := memory.NewBusinessRepository(memory.NewStore())
	id, err := repo.Create(context.Background(), &entities.Business{
		Name: "Bean Machine", Owner: "OWNER1", JobName: "beanmachine", Funds: funds,
	})
	require.NoError(t, err)
	return NewLedger(repo), id
}

func TestRoundAmount(t *testing.T) {
	tests := []struct {
		in      float64
		want    int64
		wantErr bool
	}{
		{100, 100, false},
		{99.5, 100, false},
		{99.49, 99, false},
		{0.5, 1, false},
		{0.4, 0, true},
		{0, 0, true},
		{-5, 0, true},
		{math.NaN(), 0, true},
		{math.Inf(1), 0, true},
		{1e30, 0, true},
	}

	for _, tt := range tests {
		got, err := RoundAmount(tt.in)
		if tt.wantErr {
			assert.True(t, errors.Is(err, entities.ErrInvalidInput), "RoundAmount(%v)", tt.in)
			continue
		}
		require.NoError(t, err, "RoundAmount(%v)", tt.in)
		assert.Equal(t, tt.want, got, "RoundAmount(%v)", tt.in)
	}
}

func TestLedger_DepositWithdrawRoundTrip(t *testing.T) {
	l, id := newTestLedger(t, 500)
	ctx := context.Background()

	require.NoError(t, l.Deposit(ctx, id, 250))
	require.NoError(t, l.Withdraw(ctx, id, 250))

	funds, err := l.GetFunds(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(500), funds)
}

func TestLedger_Errors(t *testing.T) {
	l, id := newTestLedger(t, 100)
	ctx := context.Background()

	assert.True(t, errors.Is(l.Deposit(ctx, id, 0), entities.ErrInvalidInput))
	assert.True(t, errors.Is(l.Withdraw(ctx, id, -1), entities.ErrInvalidInput))
	assert.True(t, errors.Is(l.SetFunds(ctx, id, -1), entities.ErrInvalidInput))

	assert.True(t, errors.Is(l.Deposit(ctx, 999, 10), entities.ErrNotFound))
	assert.True(t, errors.Is(l.Withdraw(ctx, 999, 10), entities.ErrNotFound))
	assert.True(t, errors.Is(l.SetFunds(ctx, 999, 10), entities.ErrNotFound))

	err := l.Withdraw(ctx, id, 101)
	assert.True(t, errors.Is(err, entities.ErrInsufficientFunds))
	funds, _ := l.GetFunds(ctx, id)
	assert.Equal(t, int64(100), funds, "failed withdrawal has no effect")
}

func TestLedger_SetAndGetFunds(t *testing.T) {
	l, id := newTestLedger(t, 100)
	ctx := context.Background()

	require.NoError(t, l.SetFunds(ctx, id, 0))
	funds, err := l.GetFunds(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), funds)

	funds, err = l.GetFunds(ctx, 999)
	require.NoError(t, err)
	assert.Equal(t, int64(0), funds, "absent business reads as zero")
}

func TestLedger_ConcurrentWithdrawals(t *testing.T) {
	l, id := newTestLedger(t, 1000)
	ctx := context.Background()

	var wg sync.WaitGroup
	var succeeded, insufficient int64
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.Withdraw(ctx, id, 700)
			switch {
			case err == nil:
				atomic.AddInt64(&succeeded, 1)
			case errors.Is(err, entities.ErrInsufficientFunds):
				atomic.AddInt64(&insufficient, 1)
			}
		}()
	}
	wg.Wait()

	funds, _ := l.GetFunds(ctx, id)
	assert.Equal(t, int64(1), succeeded)
	assert.Equal(t, int64(1), insufficient)
	assert.Equal(t, int64(300), funds)
}

func TestLedger_ConcurrentMixedNeverNegative(t *testing.T) {
	l, id := newTestLedger(t, 100)
	ctx := context.Background()

	var wg sync.WaitGroup
	var withdrawn, deposited int64
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if l.Withdraw(ctx, id, 30) == nil {
				atomic.AddInt64(&withdrawn, 30)
			}
		}()
		go func() {
			defer wg.Done()
			if l.Deposit(ctx, id, 10) == nil {
				atomic.AddInt64(&deposited, 10)
			}
		}()
	}
	wg.Wait()

	funds, _ := l.GetFunds(ctx, id)
	assert.GreaterOrEqual(t, funds, int64(0))
	assert.Equal(t, 100+deposited-withdrawn, funds, "money is neither created nor destroyed")
}
