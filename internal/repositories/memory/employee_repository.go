package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/JericoFX/advance-manager/internal/entities"
	"github.com/JericoFX/advance-manager/internal/repositories"
)

// EmployeeRepository implements repositories.EmployeeRepository over a Store
type EmployeeRepository struct {
	store *Store
}

var _ repositories.EmployeeRepository = (*EmployeeRepository)(nil)

// NewEmployeeRepository creates a new EmployeeRepository
func NewEmployeeRepository(store *Store) *EmployeeRepository {
	return &EmployeeRepository{store: store}
}

// Create inserts an employee row and returns its ID
func (r *EmployeeRepository) Create(ctx context.Context, employee *entities.Employee) (int64, error) {
	if err := employee.Validate(); err != nil {
		return 0, err
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.businesses[employee.BusinessID]; !ok {
		return 0, fmt.Errorf("%w: business %d", repositories.ErrNotFound, employee.BusinessID)
	}
	rows, ok := s.employees[employee.BusinessID]
	if !ok {
		rows = make(map[string]*entities.Employee)
		s.employees[employee.BusinessID] = rows
	}
	if _, exists := rows[employee.CitizenID]; exists {
		return 0, fmt.Errorf("%w: %s", entities.ErrAlreadyHired, employee.String())
	}

	s.nextEmpID++
	row := *employee
	row.ID = s.nextEmpID
	row.HiredAt = s.now()
	row.UpdatedAt = row.HiredAt
	rows[row.CitizenID] = &row
	return row.ID, nil
}

// Get retrieves one employee
func (r *EmployeeRepository) Get(ctx context.Context, businessID int64, citizenID string) (*entities.Employee, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.employees[businessID][citizenID]
	if !ok {
		return nil, fmt.Errorf("%w: employee %d:%s", repositories.ErrNotFound, businessID, citizenID)
	}
	out := s.denormalize(row)
	return &out, nil
}

// ListByBusiness retrieves the employees of one business ordered by grade desc, name
func (r *EmployeeRepository) ListByBusiness(ctx context.Context, businessID int64) ([]entities.Employee, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.Employee, 0, len(s.employees[businessID]))
	for _, row := range s.employees[businessID] {
		out = append(out, s.denormalize(row))
	}
	sortEmployees(out)
	return out, nil
}

// ListAll retrieves every employee of every business
func (r *EmployeeRepository) ListAll(ctx context.Context) ([]entities.Employee, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.Employee, 0)
	for _, rows := range s.employees {
		for _, row := range rows {
			out = append(out, s.denormalize(row))
		}
	}
	sortEmployees(out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].BusinessID < out[j].BusinessID })
	return out, nil
}

// UpdateGrade sets grade and wage together
func (r *EmployeeRepository) UpdateGrade(ctx context.Context, businessID int64, citizenID string, grade int, wage int64) error {
	return r.update(businessID, citizenID, func(e *entities.Employee) {
		e.Grade = grade
		e.Wage = wage
	})
}

// UpdateWage sets the wage
func (r *EmployeeRepository) UpdateWage(ctx context.Context, businessID int64, citizenID string, wage int64) error {
	return r.update(businessID, citizenID, func(e *entities.Employee) {
		e.Wage = wage
	})
}

// Delete removes an employee row
func (r *EmployeeRepository) Delete(ctx context.Context, businessID int64, citizenID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[businessID][citizenID]; !ok {
		return fmt.Errorf("%w: employee %d:%s", repositories.ErrNotFound, businessID, citizenID)
	}
	delete(s.employees[businessID], citizenID)
	return nil
}

func (r *EmployeeRepository) update(businessID int64, citizenID string, fn func(e *entities.Employee)) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.employees[businessID][citizenID]
	if !ok {
		return fmt.Errorf("%w: employee %d:%s", repositories.ErrNotFound, businessID, citizenID)
	}
	fn(row)
	row.UpdatedAt = s.now()
	return nil
}

// denormalize copies a row and fills in the business columns (lock held)
func (s *Store) denormalize(row *entities.Employee) entities.Employee {
	out := *row
	if b, ok := s.businesses[row.BusinessID]; ok {
		out.BusinessName = b.Name
		out.JobName = b.JobName
	}
	return out
}

func sortEmployees(list []entities.Employee) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Grade != list[j].Grade {
			return list[i].Grade > list[j].Grade
		}
		return list[i].Name < list[j].Name
	})
}
