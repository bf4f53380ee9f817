package repositories

import (
	"context"

	"github.com/JericoFX/advance-manager/internal/entities"
)

// EmployeeRepository defines the interface for employee data access.
// Returned employees carry the denormalized business and job names.
type EmployeeRepository interface {
	// Create inserts an employee row and returns its ID.
	// Returns entities.ErrAlreadyHired if (business, citizen) already exists.
	Create(ctx context.Context, employee *entities.Employee) (int64, error)

	// Get retrieves one employee; ErrNotFound if absent
	Get(ctx context.Context, businessID int64, citizenID string) (*entities.Employee, error)

	// ListByBusiness retrieves the employees of one business ordered by grade desc, name
	ListByBusiness(ctx context.Context, businessID int64) ([]entities.Employee, error)

	// ListAll retrieves every employee of every business
	ListAll(ctx context.Context) ([]entities.Employee, error)

	// UpdateGrade sets grade and wage together; ErrNotFound if absent
	UpdateGrade(ctx context.Context, businessID int64, citizenID string, grade int, wage int64) error

	// UpdateWage sets the wage; ErrNotFound if absent
	UpdateWage(ctx context.Context, businessID int64, citizenID string, wage int64) error

	// Delete removes an employee row; ErrNotFound if absent
	Delete(ctx context.Context, businessID int64, citizenID string) error
}
