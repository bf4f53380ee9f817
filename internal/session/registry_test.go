package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JericoFX/advance-manager/internal/actors"
	"github.com/JericoFX/advance-manager/internal/entities"
)

func TestRegistry_ConnectAndLookup(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	require.NoError(t, r.Connect(actors.Actor{CitizenID: "ABC123", SessionID: "7", Job: "police", Grade: 2, Cash: 500}))

	byCitizen, ok := r.ByCitizenID(ctx, "ABC123")
	require.True(t, ok)
	assert.Equal(t, "police", byCitizen.Job)

	bySession, ok := r.BySession(ctx, "7")
	require.True(t, ok)
	assert.Equal(t, "ABC123", bySession.CitizenID)

	// Returned actors are copies
	bySession.Cash = 0
	again, _ := r.ByCitizenID(ctx, "ABC123")
	assert.Equal(t, int64(500), again.Cash)
}

func TestRegistry_Reconnect(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	require.NoError(t, r.Connect(actors.Actor{CitizenID: "ABC123", SessionID: "7"}))
	require.NoError(t, r.Connect(actors.Actor{CitizenID: "ABC123", SessionID: "9"}))

	_, ok := r.BySession(ctx, "7")
	assert.False(t, ok, "old session should be unbound")
	_, ok = r.BySession(ctx, "9")
	assert.True(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ConnectValidation(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		name  string
		actor actors.Actor
	}{
		{"missing citizen", actors.Actor{SessionID: "1"}},
		{"missing session", actors.Actor{CitizenID: "A"}},
		{"negative cash", actors.Actor{CitizenID: "A", SessionID: "1", Cash: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Connect(tt.actor)
			assert.True(t, errors.Is(err, entities.ErrInvalidInput))
		})
	}
}

func TestRegistry_Disconnect(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Connect(actors.Actor{CitizenID: "ABC123", SessionID: "7"}))

	actor, ok := r.Disconnect("7")
	require.True(t, ok)
	assert.Equal(t, "ABC123", actor.CitizenID)

	_, ok = r.ByCitizenID(context.Background(), "ABC123")
	assert.False(t, ok)

	_, ok = r.Disconnect("7")
	assert.False(t, ok)
}

func TestRegistry_JobAssignment(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()
	require.NoError(t, r.Connect(actors.Actor{CitizenID: "ABC123", SessionID: "7"}))

	require.NoError(t, r.SetJobAssignment(ctx, "ABC123", "police", 4))
	actor, _ := r.ByCitizenID(ctx, "ABC123")
	assert.True(t, actor.HoldsJob("police"))
	assert.Equal(t, 4, actor.Grade)

	require.NoError(t, r.ClearJobAssignment(ctx, "ABC123"))
	actor, _ = r.ByCitizenID(ctx, "ABC123")
	assert.Equal(t, entities.UnemployedJob, actor.Job)
	assert.Equal(t, 0, actor.Grade)

	err := r.SetJobAssignment(ctx, "offline", "police", 1)
	assert.True(t, errors.Is(err, entities.ErrNotFound))
}

func TestRegistry_Wallet(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()
	require.NoError(t, r.Connect(actors.Actor{CitizenID: "ABC123", SessionID: "7", Cash: 100}))

	require.NoError(t, r.Debit(ctx, "ABC123", 60))
	err := r.Debit(ctx, "ABC123", 60)
	assert.True(t, errors.Is(err, entities.ErrInsufficientFunds))

	require.NoError(t, r.Credit(ctx, "ABC123", 10))
	actor, _ := r.ByCitizenID(ctx, "ABC123")
	assert.Equal(t, int64(50), actor.Cash)

	assert.True(t, errors.Is(r.Debit(ctx, "ABC123", 0), entities.ErrInvalidInput))
	assert.True(t, errors.Is(r.Credit(ctx, "nobody", 5), entities.ErrNotFound))
}

func TestRegistry_ConcurrentDebits(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()
	require.NoError(t, r.Connect(actors.Actor{CitizenID: "ABC123", SessionID: "7", Cash: 1000}))

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Debit(ctx, "ABC123", 30) == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	actor, _ := r.ByCitizenID(ctx, "ABC123")
	assert.Equal(t, 33, succeeded)
	assert.Equal(t, int64(1000-33*30), actor.Cash)
}

func TestRegistry_SetCash(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()
	require.NoError(t, r.Connect(actors.Actor{CitizenID: "ABC123", SessionID: "7", Cash: 500}))

	require.NoError(t, r.SetCash(ctx, "ABC123", 120))
	actor, _ := r.ByCitizenID(ctx, "ABC123")
	assert.Equal(t, int64(120), actor.Cash)

	assert.True(t, errors.Is(r.SetCash(ctx, "ABC123", -1), entities.ErrInvalidInput))
	assert.True(t, errors.Is(r.SetCash(ctx, "NOPE", 1), entities.ErrNotFound))
}
