package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Memory keeps one token bucket per (actor, action) in process. Each bucket
// holds a single token refilled once per interval, which makes it a
// cooldown: a permitted attempt empties it and a denied attempt leaves it
// untouched.
type Memory struct {
	mu        sync.Mutex
	limiters  map[string]map[string]*rate.Limiter // actor -> action -> limiter
	intervals Intervals
	now       func() time.Time
}

var _ Limiter = (*Memory)(nil)

// NewMemory creates a Memory limiter. A nil clock uses time.Now.
func NewMemory(intervals Intervals, now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{
		limiters:  make(map[string]map[string]*rate.Limiter),
		intervals: intervals.clone(),
		now:       now,
	}
}

// Allow implements Limiter
func (m *Memory) Allow(ctx context.Context, actor, action string) bool {
	interval, ok := m.intervals.Lookup(action)
	if !ok {
		return true
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLimiter(actor, action, interval).AllowN(m.now(), 1)
}

// getLimiter returns the limiter for actor and action (lock held)
func (m *Memory) getLimiter(actor, action string, interval time.Duration) *rate.Limiter {
	actions, exists := m.limiters[actor]
	if !exists {
		actions = make(map[string]*rate.Limiter)
		m.limiters[actor] = actions
	}

	limiter, exists := actions[action]
	if !exists {
		limiter = rate.NewLimiter(rate.Every(interval), 1)
		actions[action] = limiter
	}
	return limiter
}

// Forget implements Limiter
func (m *Memory) Forget(ctx context.Context, actor string) {
	m.mu.Lock()
	delete(m.limiters, actor)
	m.mu.Unlock()
}

// Actors returns the number of actors with limiter state
func (m *Memory) Actors() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.limiters)
}
