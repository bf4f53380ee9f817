// Package hostbridge applies wallet and job changes on the game host.
//
// The host owns player cash and live job assignments. Every mutation is a
// unary call to HostServiceName carrying a google.protobuf.Struct, and the
// local session record is updated only after the host confirms. Reads are
// served from the session record, which the host keeps current through
// ActorConnected.
package hostbridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JericoFX/advance-manager/internal/actors"
	"github.com/JericoFX/advance-manager/internal/entities"
	"github.com/JericoFX/advance-manager/internal/infrastructure/logging"
)

// HostServiceName is the service the game host exposes to this server
const HostServiceName = "advancemanager.host.v1.HostService"

// Host methods
const (
	MethodAddCash    = "AddCash"
	MethodRemoveCash = "RemoveCash"
	MethodSetJob     = "SetJob"
	MethodClearJob   = "ClearJob"
)

// Result codes the host may answer with
const (
	HostCodeInsufficientFunds = "insufficient_funds"
	HostCodeNotFound          = "not_found"
)

var (
	// ErrHostUnavailable means the call did not reach the host or timed out.
	// The change may or may not have been applied.
	ErrHostUnavailable = errors.New("host unavailable")

	// ErrHostRejected means the host refused the change
	ErrHostRejected = errors.New("host rejected change")
)

// DefaultTimeout bounds every host call
const DefaultTimeout = 3 * time.Second

// Local is the session record mirrored after each confirmed change
type Local interface {
	actors.Directory
	SetCash(ctx context.Context, citizenID string, cash int64) error
}

// Bridge implements actors.Wallet and actors.Directory against the host
type Bridge struct {
	conn        grpc.ClientConnInterface
	local       Local
	timeout     time.Duration
	logger      *zap.Logger
	consistency *zap.Logger
}

var (
	_ actors.Wallet    = (*Bridge)(nil)
	_ actors.Directory = (*Bridge)(nil)
)

// New creates a Bridge. A zero timeout uses DefaultTimeout.
func New(conn grpc.ClientConnInterface, local Local, timeout time.Duration, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Bridge{
		conn:        conn,
		local:       local,
		timeout:     timeout,
		logger:      logger.Named("host"),
		consistency: logging.Consistency(logger),
	}
}

// ByCitizenID implements actors.Directory
func (b *Bridge) ByCitizenID(ctx context.Context, citizenID string) (*actors.Actor, bool) {
	return b.local.ByCitizenID(ctx, citizenID)
}

// BySession implements actors.Directory
func (b *Bridge) BySession(ctx context.Context, sessionID string) (*actors.Actor, bool) {
	return b.local.BySession(ctx, sessionID)
}

// SetJobAssignment implements actors.Directory
func (b *Bridge) SetJobAssignment(ctx context.Context, citizenID, job string, grade int) error {
	if _, err := b.call(ctx, MethodSetJob, map[string]any{
		"citizenId": citizenID,
		"job":       job,
		"grade":     grade,
	}); err != nil {
		return err
	}
	return b.local.SetJobAssignment(ctx, citizenID, job, grade)
}

// ClearJobAssignment implements actors.Directory
func (b *Bridge) ClearJobAssignment(ctx context.Context, citizenID string) error {
	if _, err := b.call(ctx, MethodClearJob, map[string]any{"citizenId": citizenID}); err != nil {
		return err
	}
	return b.local.ClearJobAssignment(ctx, citizenID)
}

// Debit implements actors.Wallet
func (b *Bridge) Debit(ctx context.Context, citizenID string, amount int64) error {
	return b.moveCash(ctx, MethodRemoveCash, citizenID, amount)
}

// Credit implements actors.Wallet
func (b *Bridge) Credit(ctx context.Context, citizenID string, amount int64) error {
	return b.moveCash(ctx, MethodAddCash, citizenID, amount)
}

func (b *Bridge) moveCash(ctx context.Context, method, citizenID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: cash amount must be positive", entities.ErrInvalidInput)
	}

	out, err := b.call(ctx, method, map[string]any{
		"citizenId": citizenID,
		"amount":    amount,
	})
	if err != nil {
		return err
	}

	// The host reports the resulting balance; mirror it when present
	if v, ok := out.GetFields()["cash"]; ok {
		if err := b.local.SetCash(ctx, citizenID, int64(v.GetNumberValue())); err != nil {
			b.logger.Debug("cash applied on host but not mirrored", zap.String("citizen_id", citizenID), zap.Error(err))
		}
	}
	return nil
}

// call performs one host method. Every call carries a fresh requestId the
// host can use to drop duplicates.
func (b *Bridge) call(ctx context.Context, method string, fields map[string]any) (*structpb.Struct, error) {
	requestID := uuid.NewString()
	fields["requestId"] = requestID

	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	out := new(structpb.Struct)
	if err := b.conn.Invoke(ctx, "/"+HostServiceName+"/"+method, in, out); err != nil {
		if ambiguous(err) {
			b.consistency.Error("host call outcome unknown",
				zap.String("method", method),
				zap.String("host_request_id", requestID),
				zap.Any("request", fields),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrHostUnavailable, method, err)
	}

	resp := out.GetFields()
	if resp["success"].GetBoolValue() {
		return out, nil
	}

	message := resp["message"].GetStringValue()
	switch code := resp["code"].GetStringValue(); code {
	case HostCodeInsufficientFunds:
		return nil, fmt.Errorf("%w: %s", entities.ErrInsufficientFunds, message)
	case HostCodeNotFound:
		return nil, fmt.Errorf("%w: %s", entities.ErrNotFound, message)
	default:
		return nil, fmt.Errorf("%w: %s %s: %s", ErrHostRejected, method, code, message)
	}
}

// ambiguous reports transport failures after which the host may still have
// applied the change
func ambiguous(err error) bool {
	switch status.Code(err) {
	case codes.DeadlineExceeded, codes.Canceled, codes.Unknown, codes.Internal:
		return true
	}
	return false
}
