package jobs

import (
	"context"
	"sync"

	"github.com/JericoFX/advance-manager/internal/entities"
)

// StaticSource is an in-memory job directory
type StaticSource struct {
	mu   sync.RWMutex
	jobs map[string]*entities.JobInfo
}

// NewStaticSource creates a StaticSource seeded with jobs
func NewStaticSource(jobs ...*entities.JobInfo) *StaticSource {
	s := &StaticSource{jobs: make(map[string]*entities.JobInfo)}
	for _, job := range jobs {
		s.Put(job)
	}
	return s
}

// Put adds or replaces a job definition
func (s *StaticSource) Put(job *entities.JobInfo) {
	if job == nil {
		return
	}
	s.mu.Lock()
	s.jobs[job.Name] = job.Clone()
	s.mu.Unlock()
}

// Remove deletes a job definition
func (s *StaticSource) Remove(name string) {
	s.mu.Lock()
	delete(s.jobs, name)
	s.mu.Unlock()
}

// Replace swaps the whole catalog
func (s *StaticSource) Replace(jobs map[string]*entities.JobInfo) {
	next := make(map[string]*entities.JobInfo, len(jobs))
	for name, job := range jobs {
		next[name] = job.Clone()
	}
	s.mu.Lock()
	s.jobs = next
	s.mu.Unlock()
}

// Len returns the number of jobs currently known
func (s *StaticSource) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Lookup implements Source
func (s *StaticSource) Lookup(ctx context.Context, name string) (*entities.JobInfo, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[name]
	if !ok {
		return nil, false, nil
	}
	return job.Clone(), true, nil
}
