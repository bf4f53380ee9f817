package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JericoFX/advance-manager/internal/actors"
	"github.com/JericoFX/advance-manager/internal/entities"
	"github.com/JericoFX/advance-manager/internal/infrastructure/metrics"
	"github.com/JericoFX/advance-manager/internal/repositories"
	"github.com/JericoFX/advance-manager/internal/services/authorization"
	"github.com/JericoFX/advance-manager/internal/services/directory"
	"github.com/JericoFX/advance-manager/internal/services/jobs"
	"github.com/JericoFX/advance-manager/internal/services/ledger"
	"github.com/JericoFX/advance-manager/internal/services/ratelimit"
)

// Sessions is the connection registry fed by ActorConnected/ActorDropped
type Sessions interface {
	actors.Directory
	Connect(actor actors.Actor) error
	Disconnect(sessionID string) (*actors.Actor, bool)
}

// Dependencies groups the collaborators of a Coordinator
type Dependencies struct {
	Businesses repositories.BusinessRepository
	Ledger     ledger.LedgerInterface
	Transfers  *ledger.Transfers
	Directory  directory.DirectoryInterface
	Gate       authorization.GateInterface
	Jobs       jobs.AdapterInterface
	Limiter    ratelimit.Limiter
	Sessions   Sessions
	Recorder   metrics.Recorder
	Logger     *zap.Logger
}

// Coordinator is the boundary facade. Every operation validates its
// request, resolves the calling actor, applies the cooldown, authorizes,
// performs the domain operation, and returns a Result. It never panics and
// never returns a Go error to the transport.
type Coordinator struct {
	businesses repositories.BusinessRepository
	ledger     ledger.LedgerInterface
	transfers  *ledger.Transfers
	directory  directory.DirectoryInterface
	gate       authorization.GateInterface
	jobs       jobs.AdapterInterface
	limiter    ratelimit.Limiter
	sessions   Sessions
	recorder   metrics.Recorder
	logger     *zap.Logger
}

// New creates a new Coordinator
func New(deps Dependencies) *Coordinator {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Recorder == nil {
		deps.Recorder = metrics.Nop{}
	}
	return &Coordinator{
		businesses: deps.Businesses,
		ledger:     deps.Ledger,
		transfers:  deps.Transfers,
		directory:  deps.Directory,
		gate:       deps.Gate,
		jobs:       deps.Jobs,
		limiter:    deps.Limiter,
		sessions:   deps.Sessions,
		recorder:   deps.Recorder,
		logger:     deps.Logger.Named("coordinator"),
	}
}

// call carries one request through the pipeline
type call struct {
	requestID string
	action    string
	actor     *actors.Actor
	logger    *zap.Logger
}

// handler performs the authorized domain work of one operation
type handler func(ctx context.Context, c *call) (data any, message string, err error)

// run executes the shared pipeline: validate, resolve actor, rate limit,
// then fn (which authorizes and performs the operation).
func (co *Coordinator) run(ctx context.Context, action, sessionID string, req any, fn handler) (res Result) {
	c := &call{requestID: uuid.NewString(), action: action}
	c.logger = co.logger.With(zap.String("request_id", c.requestID), zap.String("action", action))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("operation panicked", zap.Any("panic", r), zap.Stack("stack"))
			res = Result{Code: CodeInternal, Message: "internal error", RequestID: c.requestID}
		}
	}()

	if err := validateStruct(req); err != nil {
		return co.fail(c, err)
	}

	actor, ok := co.sessions.BySession(ctx, sessionID)
	if !ok {
		return co.fail(c, fmt.Errorf("%w: unknown session", entities.ErrPermissionDenied))
	}
	c.actor = actor
	c.logger = c.logger.With(zap.String("citizen_id", actor.CitizenID))

	if !co.limiter.Allow(ctx, actor.CitizenID, action) {
		co.recorder.RecordRateLimited(action)
		return co.fail(c, entities.ErrRateLimited)
	}

	data, message, err := fn(ctx, c)
	if err != nil {
		return co.fail(c, err)
	}

	c.logger.Debug("operation succeeded", zap.Duration("took", time.Since(start)))
	return Result{Success: true, Code: CodeOK, Message: message, Data: data, RequestID: c.requestID}
}

// runAnonymous is run without actor resolution or rate limiting, for the
// session lifecycle operations that create or remove the actor itself.
func (co *Coordinator) runAnonymous(ctx context.Context, action string, req any, fn handler) (res Result) {
	c := &call{requestID: uuid.NewString(), action: action}
	c.logger = co.logger.With(zap.String("request_id", c.requestID), zap.String("action", action))

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("operation panicked", zap.Any("panic", r), zap.Stack("stack"))
			res = Result{Code: CodeInternal, Message: "internal error", RequestID: c.requestID}
		}
	}()

	if err := validateStruct(req); err != nil {
		return co.fail(c, err)
	}

	data, message, err := fn(ctx, c)
	if err != nil {
		return co.fail(c, err)
	}
	return Result{Success: true, Code: CodeOK, Message: message, Data: data, RequestID: c.requestID}
}

func (co *Coordinator) fail(c *call, err error) Result {
	code, message := classify(err)
	switch code {
	case CodeInternal:
		c.logger.Error("operation failed", zap.Error(err))
	case CodeConsistencyFailure:
		// Already reported on the consistency logger
		c.logger.Warn("operation failed", zap.Error(err))
	default:
		c.logger.Debug("operation rejected", zap.String("code", string(code)), zap.Error(err))
	}
	return Result{Code: code, Message: message, RequestID: c.requestID}
}

// authorize runs the gate for the call's actor
func (co *Coordinator) authorize(ctx context.Context, c *call, businessID int64, permissions ...string) error {
	if co.gate.Authorize(ctx, c.actor.CitizenID, businessID, permissions...) {
		return nil
	}
	co.recorder.RecordDenied(c.action)
	return fmt.Errorf("%w: %s on business %d", entities.ErrPermissionDenied, c.action, businessID)
}

// checkGradeCeiling stops non-owners from assigning a grade above their own
func (co *Coordinator) checkGradeCeiling(ctx context.Context, c *call, businessID int64, grade int) error {
	business, err := co.businesses.GetByID(ctx, businessID)
	if err != nil {
		return err
	}
	if business.IsOwner(c.actor.CitizenID) {
		return nil
	}
	if grade > c.actor.Grade {
		co.recorder.RecordDenied(c.action)
		return fmt.Errorf("%w: cannot assign grade %d above own grade %d", entities.ErrPermissionDenied, grade, c.actor.Grade)
	}
	return nil
}

func toBusinessData(b *entities.Business, withFunds bool) BusinessData {
	data := BusinessData{ID: b.ID, Name: b.Name, Owner: b.Owner, JobName: b.JobName}
	if withFunds {
		data.Funds = b.Funds
	}
	return data
}
