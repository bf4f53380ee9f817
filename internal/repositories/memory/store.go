// Package memory provides in-process implementations of the repositories,
// used by tests and by STORE_DRIVER=memory deployments.
package memory

import (
	"sync"
	"time"

	"github.com/JericoFX/advance-manager/internal/entities"
)

// Store holds the businesses and employees tables. The two repositories
// share one Store so employee rows can carry the business name, and
// deleting a business cascades to its employees.
type Store struct {
	mu         sync.RWMutex
	businesses map[int64]*entities.Business
	employees  map[int64]map[string]*entities.Employee // business -> citizen -> row
	nextBizID  int64
	nextEmpID  int64
	now        func() time.Time
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		businesses: make(map[int64]*entities.Business),
		employees:  make(map[int64]map[string]*entities.Employee),
		now:        time.Now,
	}
}

// DeleteBusiness removes a business and its employees
func (s *Store) DeleteBusiness(id int64) {
	s.mu.Lock()
	delete(s.businesses, id)
	delete(s.employees, id)
	s.mu.Unlock()
}
