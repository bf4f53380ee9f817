package coordinator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JericoFX/advance-manager/internal/actors"
	"github.com/JericoFX/advance-manager/internal/entities"
)

// Session lifecycle action names
const (
	ActionConnect    = "actorConnected"
	ActionDisconnect = "actorDropped"
)

// ActorConnected registers an actor that joined the server
func (co *Coordinator) ActorConnected(ctx context.Context, req ConnectRequest) Result {
	return co.runAnonymous(ctx, ActionConnect, req, func(ctx context.Context, c *call) (any, string, error) {
		job := req.Job
		if job == "" {
			job = entities.UnemployedJob
		}
		err := co.sessions.Connect(actors.Actor{
			CitizenID: req.CitizenID,
			SessionID: req.SessionID,
			Name:      req.Name,
			Job:       job,
			Grade:     req.Grade,
			Cash:      req.Cash,
			Admin:     req.Admin,
		})
		if err != nil {
			return nil, "", err
		}
		c.logger.Debug("actor connected", zap.String("citizen_id", req.CitizenID), zap.String("session_id", req.SessionID))
		return nil, "connected", nil
	})
}

// ActorDropped unregisters a disconnected actor and discards their cooldowns
func (co *Coordinator) ActorDropped(ctx context.Context, req SessionRequest) Result {
	return co.runAnonymous(ctx, ActionDisconnect, req, func(ctx context.Context, c *call) (any, string, error) {
		actor, ok := co.sessions.Disconnect(req.SessionID)
		if !ok {
			return nil, "", fmt.Errorf("%w: unknown session", entities.ErrNotFound)
		}
		co.limiter.Forget(ctx, actor.CitizenID)
		c.logger.Debug("actor dropped", zap.String("citizen_id", actor.CitizenID))
		return nil, "disconnected", nil
	})
}
