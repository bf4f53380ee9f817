package entities

import (
	"fmt"
	"time"
)

// Global wage bounds applied to every wage write
const (
	MinWage int64 = 0
	MaxWage int64 = 10000
)

// Employee represents a person employed by a business
// Key: (BusinessID, CitizenID)
type Employee struct {
	ID           int64  // Row identifier
	BusinessID   int64  // Employing business
	CitizenID    string // Person identifier
	Name         string // Denormalized display name
	Grade        int    // Grade within the business's job
	Wage         int64  // Wage in minor currency units, within [MinWage, MaxWage]
	BusinessName string // Denormalized for the read model
	JobName      string // Denormalized for the read model
	HiredAt      time.Time
	UpdatedAt    time.Time
}

// Validate checks if the employee row is valid for writing
func (e *Employee) Validate() error {
	if e.BusinessID <= 0 {
		return fmt.Errorf("%w: business ID must be positive", ErrInvalidInput)
	}
	if e.CitizenID == "" {
		return fmt.Errorf("%w: citizen ID is required", ErrInvalidInput)
	}
	if e.Wage < MinWage || e.Wage > MaxWage {
		return fmt.Errorf("%w: wage %d outside [%d, %d]", ErrInvalidInput, e.Wage, MinWage, MaxWage)
	}
	return nil
}

// String returns a string representation of the employee key
// Format: business_id:citizen_id
func (e *Employee) String() string {
	return fmt.Sprintf("%d:%s", e.BusinessID, e.CitizenID)
}

// ClampWage bounds a wage to [MinWage, MaxWage]
func ClampWage(wage int64) int64 {
	if wage < MinWage {
		return MinWage
	}
	if wage > MaxWage {
		return MaxWage
	}
	return wage
}

// CloneEmployees returns a copy of the slice; Employee holds only values so
// copying elements is a deep copy.
func CloneEmployees(in []Employee) []Employee {
	if in == nil {
		return nil
	}
	out := make([]Employee, len(in))
	copy(out, in)
	return out
}
