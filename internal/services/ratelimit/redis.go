package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultRedisPrefix namespaces the cooldown keys
const DefaultRedisPrefix = "am:rl:"

// Redis shares cooldowns between instances. A permitted attempt is a
// successful SET NX with the interval as expiry; while the key lives every
// other attempt fails the NX. When Redis is unreachable the in-process
// Fallback decides.
type Redis struct {
	Client    *redis.Client
	Prefix    string
	Fallback  *Memory
	Timeout   time.Duration
	intervals Intervals
	logger    *zap.Logger
}

var _ Limiter = (*Redis)(nil)

// NewRedis creates a Redis limiter with an in-memory fallback
func NewRedis(client *redis.Client, intervals Intervals, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{
		Client:    client,
		Prefix:    DefaultRedisPrefix,
		Fallback:  NewMemory(intervals, nil),
		Timeout:   2 * time.Second,
		intervals: intervals.clone(),
		logger:    logger.Named("ratelimit"),
	}
}

func (l *Redis) key(actor, action string) string {
	return l.Prefix + actor + ":" + action
}

// Allow implements Limiter
func (l *Redis) Allow(ctx context.Context, actor, action string) bool {
	interval, ok := l.intervals.Lookup(action)
	if !ok {
		return true
	}
	if l.Client == nil {
		return l.Fallback.Allow(ctx, actor, action)
	}

	ctx, cancel := context.WithTimeout(ctx, l.Timeout)
	defer cancel()

	set, err := l.Client.SetNX(ctx, l.key(actor, action), 1, interval).Result()
	if err != nil {
		l.logger.Warn("redis unavailable, using local limiter", zap.Error(err))
		return l.Fallback.Allow(ctx, actor, action)
	}
	return set
}

// Forget implements Limiter
func (l *Redis) Forget(ctx context.Context, actor string) {
	l.Fallback.Forget(ctx, actor)
	if l.Client == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, l.Timeout)
	defer cancel()

	iter := l.Client.Scan(ctx, 0, l.Prefix+actor+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		l.logger.Warn("failed to scan limiter keys", zap.String("actor", actor), zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := l.Client.Del(ctx, keys...).Err(); err != nil {
		l.logger.Warn("failed to delete limiter keys", zap.String("actor", actor), zap.Error(err))
	}
}
