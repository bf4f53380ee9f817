package jobs

import (
	"context"
	"fmt"

	"github.com/JericoFX/advance-manager/internal/entities"
)

// Source is the external, read-only job directory
type Source interface {
	// Lookup returns the current definition of a job, or false if unknown
	Lookup(ctx context.Context, name string) (*entities.JobInfo, bool, error)
}

// AdapterInterface defines the job schema operations used by the other services
type AdapterInterface interface {
	Resolve(ctx context.Context, jobName string) (*entities.JobInfo, error)
	GradeMetadata(ctx context.Context, jobName string) ([]entities.GradeMetadata, error)
	WageLimits() (min, max int64)
}

// Adapter translates the job directory into normalized JobInfo values.
// It never caches: job definitions may change at runtime and every
// authorization and hiring decision must see the current state.
type Adapter struct {
	source Source
}

// NewAdapter creates a new Adapter over source
func NewAdapter(source Source) *Adapter {
	return &Adapter{source: source}
}

// Resolve returns the job definition, or entities.ErrNotFound
func (a *Adapter) Resolve(ctx context.Context, jobName string) (*entities.JobInfo, error) {
	if jobName == "" {
		return nil, fmt.Errorf("%w: job name is required", entities.ErrInvalidInput)
	}

	job, ok, err := a.source.Lookup(ctx, jobName)
	if err != nil {
		return nil, fmt.Errorf("failed to look up job %q: %w", jobName, err)
	}
	if !ok || job == nil {
		return nil, fmt.Errorf("%w: job %q", entities.ErrNotFound, jobName)
	}

	// Sources may hand out shared definitions
	job = job.Clone()
	if job.Name == "" {
		job.Name = jobName
	}
	return entities.NewJobInfo(job.Name, job.Label, job.Grades), nil
}

// GradeMetadata lists the job's grades ordered by grade number
func (a *Adapter) GradeMetadata(ctx context.Context, jobName string) ([]entities.GradeMetadata, error) {
	job, err := a.Resolve(ctx, jobName)
	if err != nil {
		return nil, err
	}
	return job.GradeMetadata(), nil
}

// WageLimits returns the global wage bounds
func (a *Adapter) WageLimits() (min, max int64) {
	return entities.MinWage, entities.MaxWage
}
