package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultReloadInterval is the full-reload backstop when none is configured
const DefaultReloadInterval = 15 * time.Minute

// Reloader periodically rebuilds the whole directory cache
type Reloader struct {
	directory *Directory
	cron      *cron.Cron
	timeout   time.Duration
	logger    *zap.Logger
}

// NewReloader schedules ReloadAll every interval. Call Start to begin.
func NewReloader(directory *Directory, interval time.Duration, logger *zap.Logger) (*Reloader, error) {
	if interval <= 0 {
		interval = DefaultReloadInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Reloader{
		directory: directory,
		cron:      cron.New(),
		timeout:   interval / 2,
		logger:    logger.Named("reloader"),
	}
	if _, err := r.cron.AddFunc(fmt.Sprintf("@every %s", interval), r.run); err != nil {
		return nil, fmt.Errorf("failed to schedule directory reload: %w", err)
	}
	return r, nil
}

func (r *Reloader) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	start := time.Now()
	if err := r.directory.ReloadAll(ctx); err != nil {
		r.logger.Error("directory reload failed", zap.Error(err))
		return
	}
	r.logger.Info("directory reloaded", zap.Duration("took", time.Since(start)))
}

// Start begins the schedule
func (r *Reloader) Start() {
	r.cron.Start()
}

// Stop halts the schedule and waits for a running reload to finish or ctx
// to expire
func (r *Reloader) Stop(ctx context.Context) {
	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
	}
}
