package repositories

import (
	"context"

	"github.com/JericoFX/advance-manager/internal/entities"
)

// BusinessRepository defines the interface for business data access
type BusinessRepository interface {
	// Create inserts a new business and returns its ID
	Create(ctx context.Context, business *entities.Business) (int64, error)

	// GetByID retrieves a business; ErrNotFound if absent
	GetByID(ctx context.Context, id int64) (*entities.Business, error)

	// List retrieves every business ordered by ID
	List(ctx context.Context) ([]*entities.Business, error)

	// ListByOwner retrieves the businesses owned by a citizen
	ListByOwner(ctx context.Context, owner string) ([]*entities.Business, error)

	// UpdateMetadata replaces the metadata blob of a business
	UpdateMetadata(ctx context.Context, id int64, metadata map[string]any) error

	// AddFunds increments funds in a single statement.
	// Returns false when no row was affected.
	AddFunds(ctx context.Context, id int64, amount int64) (bool, error)

	// SubtractFunds decrements funds only if the balance covers amount,
	// in a single conditional statement. Returns false when no row was affected.
	SubtractFunds(ctx context.Context, id int64, amount int64) (bool, error)

	// SetFunds sets an absolute balance. Returns false when no row was affected.
	SetFunds(ctx context.Context, id int64, amount int64) (bool, error)

	// GetFunds reads the balance; ErrNotFound if absent
	GetFunds(ctx context.Context, id int64) (int64, error)
}
