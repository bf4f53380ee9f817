package coordinator

import (
	"context"

	"github.com/JericoFX/advance-manager/internal/entities"
	"github.com/JericoFX/advance-manager/internal/services/directory"
)

// HireEmployee hires a person into the business
func (co *Coordinator) HireEmployee(ctx context.Context, req HireRequest) Result {
	return co.run(ctx, ActionHire, req.SessionID, req, func(ctx context.Context, c *call) (any, string, error) {
		if err := co.authorize(ctx, c, req.BusinessID, entities.PermissionHiring); err != nil {
			return nil, "", err
		}
		if err := co.checkGradeCeiling(ctx, c, req.BusinessID, req.Grade); err != nil {
			return nil, "", err
		}
		employee, err := co.directory.Hire(ctx, directory.HireRequest{
			BusinessID:    req.BusinessID,
			CitizenID:     req.CitizenID,
			Name:          req.Name,
			Grade:         req.Grade,
			RequestedWage: req.Wage,
		})
		if err != nil {
			return nil, "", err
		}
		return employee, "employee hired", nil
	})
}

// FireEmployee removes a person from the business
func (co *Coordinator) FireEmployee(ctx context.Context, req EmployeeRequest) Result {
	return co.run(ctx, ActionFire, req.SessionID, req, func(ctx context.Context, c *call) (any, string, error) {
		if err := co.authorize(ctx, c, req.BusinessID, entities.PermissionHiring); err != nil {
			return nil, "", err
		}
		if err := co.directory.Fire(ctx, req.BusinessID, req.CitizenID); err != nil {
			return nil, "", err
		}
		return nil, "employee fired", nil
	})
}

// UpdateGrade changes an employee's grade
func (co *Coordinator) UpdateGrade(ctx context.Context, req UpdateGradeRequest) Result {
	return co.run(ctx, ActionUpdateGrade, req.SessionID, req, func(ctx context.Context, c *call) (any, string, error) {
		if err := co.authorize(ctx, c, req.BusinessID, entities.PermissionManage); err != nil {
			return nil, "", err
		}
		if err := co.checkGradeCeiling(ctx, c, req.BusinessID, req.Grade); err != nil {
			return nil, "", err
		}
		employee, err := co.directory.UpdateGrade(ctx, req.BusinessID, req.CitizenID, req.Grade)
		if err != nil {
			return nil, "", err
		}
		return employee, "grade updated", nil
	})
}

// UpdateWage changes an employee's wage
func (co *Coordinator) UpdateWage(ctx context.Context, req UpdateWageRequest) Result {
	return co.run(ctx, ActionUpdateWage, req.SessionID, req, func(ctx context.Context, c *call) (any, string, error) {
		if err := co.authorize(ctx, c, req.BusinessID, entities.PermissionManage); err != nil {
			return nil, "", err
		}
		employee, err := co.directory.UpdateWage(ctx, req.BusinessID, req.CitizenID, req.Wage)
		if err != nil {
			return nil, "", err
		}
		return employee, "wage updated", nil
	})
}

// GetEmployees lists the business's employees
func (co *Coordinator) GetEmployees(ctx context.Context, req BusinessRequest) Result {
	return co.run(ctx, ActionGetEmployees, req.SessionID, req, func(ctx context.Context, c *call) (any, string, error) {
		if err := co.authorize(ctx, c, req.BusinessID, entities.PermissionEmployees); err != nil {
			return nil, "", err
		}
		list, err := co.directory.GetAll(ctx, req.BusinessID)
		if err != nil {
			return nil, "", err
		}
		return list, "", nil
	})
}

// GetEmployee returns one employee of the business
func (co *Coordinator) GetEmployee(ctx context.Context, req EmployeeRequest) Result {
	return co.run(ctx, ActionGetEmployees, req.SessionID, req, func(ctx context.Context, c *call) (any, string, error) {
		if err := co.authorize(ctx, c, req.BusinessID, entities.PermissionEmployees); err != nil {
			return nil, "", err
		}
		employee, err := co.directory.Get(ctx, req.BusinessID, req.CitizenID)
		if err != nil {
			return nil, "", err
		}
		return employee, "", nil
	})
}
