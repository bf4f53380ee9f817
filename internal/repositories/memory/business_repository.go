package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/JericoFX/advance-manager/internal/entities"
	"github.com/JericoFX/advance-manager/internal/repositories"
)

// BusinessRepository implements repositories.BusinessRepository over a Store
type BusinessRepository struct {
	store *Store
}

var _ repositories.BusinessRepository = (*BusinessRepository)(nil)

// NewBusinessRepository creates a new BusinessRepository
func NewBusinessRepository(store *Store) *BusinessRepository {
	return &BusinessRepository{store: store}
}

// Create inserts a new business and returns its ID
func (r *BusinessRepository) Create(ctx context.Context, business *entities.Business) (int64, error) {
	if err := business.Validate(); err != nil {
		return 0, err
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextBizID++
	row := business.Clone()
	row.ID = s.nextBizID
	if row.Metadata == nil {
		row.Metadata = map[string]any{}
	}
	row.CreatedAt = s.now()
	row.UpdatedAt = row.CreatedAt
	s.businesses[row.ID] = row
	return row.ID, nil
}

// GetByID retrieves a business
func (r *BusinessRepository) GetByID(ctx context.Context, id int64) (*entities.Business, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.businesses[id]
	if !ok {
		return nil, fmt.Errorf("%w: business %d", repositories.ErrNotFound, id)
	}
	return row.Clone(), nil
}

// List retrieves every business ordered by ID
func (r *BusinessRepository) List(ctx context.Context) ([]*entities.Business, error) {
	return r.filter(func(*entities.Business) bool { return true }), nil
}

// ListByOwner retrieves the businesses owned by a citizen
func (r *BusinessRepository) ListByOwner(ctx context.Context, owner string) ([]*entities.Business, error) {
	return r.filter(func(b *entities.Business) bool { return b.Owner == owner }), nil
}

func (r *BusinessRepository) filter(keep func(*entities.Business) bool) []*entities.Business {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entities.Business, 0, len(s.businesses))
	for _, row := range s.businesses {
		if keep(row) {
			out = append(out, row.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UpdateMetadata replaces the metadata blob of a business
func (r *BusinessRepository) UpdateMetadata(ctx context.Context, id int64, metadata map[string]any) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.businesses[id]
	if !ok {
		return fmt.Errorf("%w: business %d", repositories.ErrNotFound, id)
	}
	row.Metadata = (&entities.Business{Metadata: metadata}).Clone().Metadata
	if row.Metadata == nil {
		row.Metadata = map[string]any{}
	}
	row.UpdatedAt = s.now()
	return nil
}

// AddFunds increments funds
func (r *BusinessRepository) AddFunds(ctx context.Context, id int64, amount int64) (bool, error) {
	return r.mutateFunds(id, func(funds int64) (int64, bool) { return funds + amount, true })
}

// SubtractFunds decrements funds only if the balance covers amount
func (r *BusinessRepository) SubtractFunds(ctx context.Context, id int64, amount int64) (bool, error) {
	return r.mutateFunds(id, func(funds int64) (int64, bool) {
		if funds < amount {
			return funds, false
		}
		return funds - amount, true
	})
}

// SetFunds sets an absolute balance
func (r *BusinessRepository) SetFunds(ctx context.Context, id int64, amount int64) (bool, error) {
	return r.mutateFunds(id, func(int64) (int64, bool) { return amount, true })
}

// mutateFunds applies fn under the store lock, mirroring a single
// conditional UPDATE: no row matched means false.
func (r *BusinessRepository) mutateFunds(id int64, fn func(funds int64) (int64, bool)) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.businesses[id]
	if !ok {
		return false, nil
	}
	next, apply := fn(row.Funds)
	if !apply {
		return false, nil
	}
	if next < 0 {
		return false, fmt.Errorf("funds would become negative for business %d", id)
	}
	row.Funds = next
	row.UpdatedAt = s.now()
	return true, nil
}

// GetFunds reads the balance
func (r *BusinessRepository) GetFunds(ctx context.Context, id int64) (int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.businesses[id]
	if !ok {
		return 0, fmt.Errorf("%w: business %d", repositories.ErrNotFound, id)
	}
	return row.Funds, nil
}
