// Package ratelimit enforces fixed per-actor, per-action cooldowns.
// After a permitted attempt the same actor may not repeat the action until
// its interval has elapsed. Denied attempts change nothing. Actions without
// a configured interval are always permitted.
package ratelimit

import (
	"context"
	"time"
)

// Limiter is the cooldown check used by the coordinator
type Limiter interface {
	// Allow reports whether actor may perform action now, and if so starts
	// the action's cooldown
	Allow(ctx context.Context, actor, action string) bool

	// Forget discards all state held for actor
	Forget(ctx context.Context, actor string)
}

// Intervals maps action names to cooldowns
type Intervals map[string]time.Duration

// Lookup returns the cooldown of action, or false if it is not limited
func (i Intervals) Lookup(action string) (time.Duration, bool) {
	d, ok := i[action]
	if !ok || d <= 0 {
		return 0, false
	}
	return d, true
}

func (i Intervals) clone() Intervals {
	out := make(Intervals, len(i))
	for k, v := range i {
		out[k] = v
	}
	return out
}
