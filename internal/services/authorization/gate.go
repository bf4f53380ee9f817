package authorization

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/JericoFX/advance-manager/internal/actors"
	"github.com/JericoFX/advance-manager/internal/entities"
	"github.com/JericoFX/advance-manager/internal/repositories"
	"github.com/JericoFX/advance-manager/internal/services/jobs"
)

// GateInterface defines the authorization entry point used by the coordinator
type GateInterface interface {
	Authorize(ctx context.Context, citizenID string, businessID int64, permissions ...string) bool
	InvalidateMatrix(ctx context.Context, businessID int64)
}

// Gate decides whether an actor may act on a business. Every failure to
// resolve a collaborator denies.
type Gate struct {
	businesses repositories.BusinessRepository
	jobs       jobs.AdapterInterface
	matrices   *MatrixCache
	actors     actors.Directory
	logger     *zap.Logger
}

// NewGate creates a new Gate
func NewGate(
	businesses repositories.BusinessRepository,
	jobAdapter jobs.AdapterInterface,
	matrices *MatrixCache,
	directory actors.Directory,
	logger *zap.Logger,
) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	if matrices == nil {
		matrices = NewMatrixCache(0, false, logger)
	}
	return &Gate{
		businesses: businesses,
		jobs:       jobAdapter,
		matrices:   matrices,
		actors:     directory,
		logger:     logger.Named("gate"),
	}
}

// Authorize reports whether citizenID may act on businessID.
// With no permissions the actor must hold a boss grade; with several, every
// one must be granted. Owners are always allowed.
func (g *Gate) Authorize(ctx context.Context, citizenID string, businessID int64, permissions ...string) bool {
	allowed, reason := g.decide(ctx, citizenID, businessID, permissions)
	if !allowed {
		g.logger.Debug("authorization denied",
			zap.String("citizen_id", citizenID),
			zap.Int64("business_id", businessID),
			zap.Strings("permissions", permissions),
			zap.String("reason", reason),
		)
	}
	return allowed
}

// InvalidateMatrix drops the cached matrix after an override edit
func (g *Gate) InvalidateMatrix(ctx context.Context, businessID int64) {
	g.matrices.Invalidate(ctx, businessID)
}

func (g *Gate) decide(ctx context.Context, citizenID string, businessID int64, permissions []string) (bool, string) {
	if citizenID == "" {
		return false, "no actor"
	}

	business, err := g.businesses.GetByID(ctx, businessID)
	if err != nil {
		if !errors.Is(err, entities.ErrNotFound) {
			g.logger.Warn("failed to load business for authorization", zap.Int64("business_id", businessID), zap.Error(err))
		}
		return false, "business unavailable"
	}

	if business.IsOwner(citizenID) {
		return true, "owner"
	}

	actor, ok := g.actors.ByCitizenID(ctx, citizenID)
	if !ok || !actor.HoldsJob(business.JobName) {
		return false, "actor does not hold the business job"
	}

	job, err := g.jobs.Resolve(ctx, business.JobName)
	if err != nil {
		if !errors.Is(err, entities.ErrNotFound) {
			g.logger.Warn("failed to resolve job for authorization", zap.String("job", business.JobName), zap.Error(err))
		}
		return false, "job unavailable"
	}
	if !job.HasGrade(actor.Grade) {
		return false, "grade not in job schema"
	}

	isBoss := job.IsBossGrade(actor.Grade)
	if len(permissions) == 0 {
		return isBoss, "boss grade required"
	}
	if isBoss {
		return true, "boss"
	}

	matrix := g.matrices.Get(ctx, business, job)
	for _, perm := range permissions {
		if !matrix.IsGranted(actor.Grade, perm) {
			return false, "missing permission " + perm
		}
	}
	return true, "granted"
}
