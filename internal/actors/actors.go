// Package actors describes the host framework's view of connected players:
// who they are, which job and grade they currently hold, and their cash.
package actors

import "context"

// Actor is a resolved, currently connected player
type Actor struct {
	CitizenID string // Persistent person identifier
	SessionID string // Transient connection identifier
	Name      string
	Job       string // Current job name
	Grade     int    // Current grade within Job
	Cash      int64  // Personal wallet balance
	Admin     bool   // Host framework admin flag
}

// HoldsJob reports whether the actor currently has job
func (a *Actor) HoldsJob(job string) bool {
	return a != nil && job != "" && a.Job == job
}

// Directory resolves actors and syncs their live job assignment
type Directory interface {
	// ByCitizenID returns the connected actor for a person, or false if offline
	ByCitizenID(ctx context.Context, citizenID string) (*Actor, bool)

	// BySession returns the actor bound to a session, or false if unknown
	BySession(ctx context.Context, sessionID string) (*Actor, bool)

	// SetJobAssignment sets the live job and grade of a connected actor
	SetJobAssignment(ctx context.Context, citizenID, job string, grade int) error

	// ClearJobAssignment resets a connected actor to the unemployed job
	ClearJobAssignment(ctx context.Context, citizenID string) error
}

// Wallet moves cash in and out of an actor's personal balance
type Wallet interface {
	// Debit removes amount; entities.ErrInsufficientFunds if the balance is short
	Debit(ctx context.Context, citizenID string, amount int64) error

	// Credit adds amount
	Credit(ctx context.Context, citizenID string, amount int64) error
}
