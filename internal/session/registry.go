// Package session keeps the in-process record of connected actors. The
// transport feeds it on connect and disconnect; the services read it through
// the actors.Directory interface. Its wallet and job mutations only change
// this record: in production they go through the host bridge, which updates
// the record after the host has applied them.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/JericoFX/advance-manager/internal/actors"
	"github.com/JericoFX/advance-manager/internal/entities"
)

// Registry is an in-memory actor directory and wallet
type Registry struct {
	mu        sync.RWMutex
	byCitizen map[string]*actors.Actor
	bySession map[string]string // session -> citizen
}

var (
	_ actors.Directory = (*Registry)(nil)
	_ actors.Wallet    = (*Registry)(nil)
)

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		byCitizen: make(map[string]*actors.Actor),
		bySession: make(map[string]string),
	}
}

// Connect registers or replaces an actor. A previous session of the same
// citizen is unbound.
func (r *Registry) Connect(actor actors.Actor) error {
	if actor.CitizenID == "" || actor.SessionID == "" {
		return fmt.Errorf("%w: citizen ID and session ID are required", entities.ErrInvalidInput)
	}
	if actor.Cash < 0 {
		return fmt.Errorf("%w: cash cannot be negative", entities.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byCitizen[actor.CitizenID]; ok {
		delete(r.bySession, prev.SessionID)
	}
	if prevCitizen, ok := r.bySession[actor.SessionID]; ok && prevCitizen != actor.CitizenID {
		delete(r.byCitizen, prevCitizen)
	}

	a := actor
	r.byCitizen[a.CitizenID] = &a
	r.bySession[a.SessionID] = a.CitizenID
	return nil
}

// Disconnect removes the actor bound to sessionID and returns it
func (r *Registry) Disconnect(sessionID string) (*actors.Actor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	citizenID, ok := r.bySession[sessionID]
	if !ok {
		return nil, false
	}
	delete(r.bySession, sessionID)

	actor := r.byCitizen[citizenID]
	delete(r.byCitizen, citizenID)
	if actor == nil {
		return nil, false
	}
	out := *actor
	return &out, true
}

// Len returns the number of connected actors
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byCitizen)
}

// ByCitizenID implements actors.Directory
func (r *Registry) ByCitizenID(ctx context.Context, citizenID string) (*actors.Actor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	actor, ok := r.byCitizen[citizenID]
	if !ok {
		return nil, false
	}
	out := *actor
	return &out, true
}

// BySession implements actors.Directory
func (r *Registry) BySession(ctx context.Context, sessionID string) (*actors.Actor, bool) {
	r.mu.RLock()
	citizenID, ok := r.bySession[sessionID]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return r.ByCitizenID(ctx, citizenID)
}

// SetJobAssignment implements actors.Directory
func (r *Registry) SetJobAssignment(ctx context.Context, citizenID, job string, grade int) error {
	return r.update(citizenID, func(a *actors.Actor) error {
		a.Job = job
		a.Grade = grade
		return nil
	})
}

// ClearJobAssignment implements actors.Directory
func (r *Registry) ClearJobAssignment(ctx context.Context, citizenID string) error {
	return r.SetJobAssignment(ctx, citizenID, entities.UnemployedJob, 0)
}

// Debit implements actors.Wallet
func (r *Registry) Debit(ctx context.Context, citizenID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: debit amount must be positive", entities.ErrInvalidInput)
	}
	return r.update(citizenID, func(a *actors.Actor) error {
		if a.Cash < amount {
			return fmt.Errorf("%w: wallet balance %d below %d", entities.ErrInsufficientFunds, a.Cash, amount)
		}
		a.Cash -= amount
		return nil
	})
}

// Credit implements actors.Wallet
func (r *Registry) Credit(ctx context.Context, citizenID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: credit amount must be positive", entities.ErrInvalidInput)
	}
	return r.update(citizenID, func(a *actors.Actor) error {
		a.Cash += amount
		return nil
	})
}

// SetCash replaces the recorded balance with the figure reported by the host
func (r *Registry) SetCash(ctx context.Context, citizenID string, cash int64) error {
	if cash < 0 {
		return fmt.Errorf("%w: cash cannot be negative", entities.ErrInvalidInput)
	}
	return r.update(citizenID, func(a *actors.Actor) error {
		a.Cash = cash
		return nil
	})
}

func (r *Registry) update(citizenID string, fn func(a *actors.Actor) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	actor, ok := r.byCitizen[citizenID]
	if !ok {
		return fmt.Errorf("%w: actor %s is not connected", entities.ErrNotFound, citizenID)
	}
	return fn(actor)
}
