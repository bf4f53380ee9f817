package coordinator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/JericoFX/advance-manager/internal/entities"
	"github.com/JericoFX/advance-manager/internal/services/authorization"
)

// CreateBusiness creates a business owned by the calling actor
func (co *Coordinator) CreateBusiness(ctx context.Context, req CreateBusinessRequest) Result {
	return co.run(ctx, ActionCreateBusiness, req.SessionID, req, func(ctx context.Context, c *call) (any, string, error) {
		if _, err := co.jobs.Resolve(ctx, req.JobName); err != nil {
			return nil, "", err
		}

		business := &entities.Business{
			Name:     req.Name,
			Owner:    c.actor.CitizenID,
			JobName:  req.JobName,
			Metadata: map[string]any{},
		}
		id, err := co.businesses.Create(ctx, business)
		if err != nil {
			return nil, "", err
		}
		business.ID = id

		c.logger.Info("business created", zap.Int64("business_id", id), zap.String("job", req.JobName))
		return toBusinessData(business, true), "business created", nil
	})
}

// GetBusiness returns the public view of a business. The balance is
// included only for actors holding the finance permission.
func (co *Coordinator) GetBusiness(ctx context.Context, req BusinessRequest) Result {
	return co.run(ctx, ActionGetBusiness, req.SessionID, req, func(ctx context.Context, c *call) (any, string, error) {
		business, err := co.businesses.GetByID(ctx, req.BusinessID)
		if err != nil {
			return nil, "", err
		}
		withFunds := co.gate.Authorize(ctx, c.actor.CitizenID, req.BusinessID, entities.PermissionFinance)
		return toBusinessData(business, withFunds), "", nil
	})
}

// ListOwnedBusinesses lists the businesses owned by the calling actor
func (co *Coordinator) ListOwnedBusinesses(ctx context.Context, req SessionRequest) Result {
	return co.run(ctx, ActionListBusinesses, req.SessionID, req, func(ctx context.Context, c *call) (any, string, error) {
		owned, err := co.businesses.ListByOwner(ctx, c.actor.CitizenID)
		if err != nil {
			return nil, "", err
		}
		out := make([]BusinessData, 0, len(owned))
		for _, b := range owned {
			out = append(out, toBusinessData(b, true))
		}
		return out, "", nil
	})
}

// GetGradeMetadata lists the grades of the business's job for actors who
// may hire or manage staff
func (co *Coordinator) GetGradeMetadata(ctx context.Context, req BusinessRequest) Result {
	return co.run(ctx, ActionGradeMetadata, req.SessionID, req, func(ctx context.Context, c *call) (any, string, error) {
		if !co.gate.Authorize(ctx, c.actor.CitizenID, req.BusinessID, entities.PermissionHiring) &&
			!co.gate.Authorize(ctx, c.actor.CitizenID, req.BusinessID, entities.PermissionManage) {
			co.recorder.RecordDenied(c.action)
			return nil, "", fmt.Errorf("%w: grade list", entities.ErrPermissionDenied)
		}
		business, err := co.businesses.GetByID(ctx, req.BusinessID)
		if err != nil {
			return nil, "", err
		}
		rows, err := co.jobs.GradeMetadata(ctx, business.JobName)
		if err != nil {
			return nil, "", err
		}
		return rows, "", nil
	})
}

// GetWageLimits returns the global wage bounds
func (co *Coordinator) GetWageLimits(ctx context.Context, req SessionRequest) Result {
	return co.run(ctx, ActionWageLimits, req.SessionID, req, func(ctx context.Context, c *call) (any, string, error) {
		lo, hi := co.jobs.WageLimits()
		return WageLimits{Min: lo, Max: hi}, "", nil
	})
}

// CanPerform reports whether the calling actor holds every listed
// permission on the business; an empty list asks for a boss grade.
func (co *Coordinator) CanPerform(ctx context.Context, req CanPerformRequest) Result {
	return co.run(ctx, ActionCheckPerm, req.SessionID, req, func(ctx context.Context, c *call) (any, string, error) {
		allowed := co.gate.Authorize(ctx, c.actor.CitizenID, req.BusinessID, req.Permissions...)
		return map[string]bool{"allowed": allowed}, "", nil
	})
}

// SetPermissionOverrides replaces the permission overrides of a business.
// Only the owner may edit them. Malformed entries reject the whole edit, and
// an empty map removes every override.
func (co *Coordinator) SetPermissionOverrides(ctx context.Context, req SetPermissionsRequest) Result {
	return co.run(ctx, ActionSetPermissions, req.SessionID, req, func(ctx context.Context, c *call) (any, string, error) {
		business, err := co.businesses.GetByID(ctx, req.BusinessID)
		if err != nil {
			return nil, "", err
		}
		if !business.IsOwner(c.actor.CitizenID) {
			co.recorder.RecordDenied(c.action)
			return nil, "", fmt.Errorf("%w: only the owner may edit permissions", entities.ErrPermissionDenied)
		}

		overrides, warnings := authorization.ParseOverrides(req.Overrides)
		if len(warnings) > 0 {
			return nil, "", fmt.Errorf("%w: %s", entities.ErrInvalidInput, strings.Join(warnings, "; "))
		}

		metadata := business.Clone().Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		if len(req.Overrides) == 0 {
			delete(metadata, entities.MetadataPermissionsKey)
		} else {
			metadata[entities.MetadataPermissionsKey] = req.Overrides
		}
		if err := co.businesses.UpdateMetadata(ctx, req.BusinessID, metadata); err != nil {
			return nil, "", err
		}
		co.gate.InvalidateMatrix(ctx, req.BusinessID)

		c.logger.Info("permission overrides updated", zap.Int64("business_id", req.BusinessID), zap.Int("entries", len(overrides)))
		return PermissionsData{BusinessID: req.BusinessID, Grants: authorization.GrantsByGrade(overrides)}, "permissions updated", nil
	})
}
