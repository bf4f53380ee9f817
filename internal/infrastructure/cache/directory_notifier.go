package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// EmployeesChangedChannel is the NOTIFY channel raised by the
// business_employees trigger. The payload is the business ID.
const EmployeesChangedChannel = "business_employees_changed"

// Refresher is the directory cache driven by notifications
type Refresher interface {
	Refresh(ctx context.Context, businessID int64) error
	Invalidate(ctx context.Context, businessID int64)
	ReloadAll(ctx context.Context) error
}

// DirectoryNotifier keeps the employee directory cache consistent across
// instances. It uses PostgreSQL LISTEN/NOTIFY to refresh a business's entry
// as soon as any instance writes to it; the periodic full reload remains the
// fallback for anything missed.
type DirectoryNotifier struct {
	mu        sync.RWMutex
	target    Refresher
	listener  *pq.Listener
	connStr   string
	timeout   time.Duration
	logger    *zap.Logger
	stopCh    chan struct{}
	stopped   bool
	lastEvent time.Time
	received  uint64
}

// NewDirectoryNotifier creates a new DirectoryNotifier.
// connStr is the PostgreSQL connection string for LISTEN/NOTIFY.
func NewDirectoryNotifier(target Refresher, connStr string, logger *zap.Logger) *DirectoryNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryNotifier{
		target:  target,
		connStr: connStr,
		timeout: 5 * time.Second,
		logger:  logger.Named("notifier"),
		stopCh:  make(chan struct{}),
	}
}

// Start begins listening for employee changes
func (n *DirectoryNotifier) Start(ctx context.Context) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			// The reload schedule covers the gap until the listener reconnects
			n.logger.Warn("listener problem", zap.Int("event", int(ev)), zap.Error(err))
		}
	}

	n.listener = pq.NewListener(n.connStr, 10*time.Second, time.Minute, reportProblem)
	if err := n.listener.Listen(EmployeesChangedChannel); err != nil {
		n.listener.Close()
		return fmt.Errorf("failed to listen on %s: %w", EmployeesChangedChannel, err)
	}

	go n.handleNotifications()
	return nil
}

// Stop stops listening and cleans up resources
func (n *DirectoryNotifier) Stop() error {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return nil
	}
	n.stopped = true
	close(n.stopCh)
	n.mu.Unlock()

	if n.listener != nil {
		return n.listener.Close()
	}
	return nil
}

// handleNotifications processes incoming NOTIFY events
func (n *DirectoryNotifier) handleNotifications() {
	for {
		select {
		case <-n.stopCh:
			return
		case notification := <-n.listener.Notify:
			n.handle(notification)
		case <-time.After(90 * time.Second):
			// Periodic ping to keep connection alive
			go func() {
				if err := n.listener.Ping(); err != nil {
					n.logger.Warn("listener ping failed", zap.Error(err))
				}
			}()
		}
	}
}

// handle applies one notification. A nil notification means the connection
// was re-established and events may have been lost, so everything reloads.
func (n *DirectoryNotifier) handle(notification *pq.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	n.mu.Lock()
	n.lastEvent = time.Now()
	n.received++
	n.mu.Unlock()

	if notification == nil {
		if err := n.target.ReloadAll(ctx); err != nil {
			n.logger.Error("reload after reconnect failed", zap.Error(err))
		}
		return
	}

	businessID, err := strconv.ParseInt(notification.Extra, 10, 64)
	if err != nil {
		n.logger.Warn("ignoring malformed notification payload",
			zap.String("channel", notification.Channel),
			zap.String("payload", notification.Extra),
		)
		return
	}

	if err := n.target.Refresh(ctx, businessID); err != nil {
		n.logger.Warn("refresh on notification failed, dropping entry",
			zap.Int64("business_id", businessID),
			zap.Error(err),
		)
		n.target.Invalidate(ctx, businessID)
	}
}

// Received returns how many notifications were handled and when the last one arrived
func (n *DirectoryNotifier) Received() (uint64, time.Time) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.received, n.lastEvent
}
