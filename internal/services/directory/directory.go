package directory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/JericoFX/advance-manager/internal/actors"
	"github.com/JericoFX/advance-manager/internal/entities"
	"github.com/JericoFX/advance-manager/internal/repositories"
	"github.com/JericoFX/advance-manager/internal/services/jobs"
	"github.com/JericoFX/advance-manager/pkg/cache"
	"github.com/JericoFX/advance-manager/pkg/cache/memorycache"
)

// DirectoryInterface defines the employee operations used by the coordinator
type DirectoryInterface interface {
	Hire(ctx context.Context, req HireRequest) (*entities.Employee, error)
	Fire(ctx context.Context, businessID int64, citizenID string) error
	UpdateGrade(ctx context.Context, businessID int64, citizenID string, grade int) (*entities.Employee, error)
	UpdateWage(ctx context.Context, businessID int64, citizenID string, wage int64) (*entities.Employee, error)
	GetAll(ctx context.Context, businessID int64) ([]entities.Employee, error)
	Get(ctx context.Context, businessID int64, citizenID string) (*entities.Employee, error)
	IsEmployed(ctx context.Context, businessID int64, citizenID string) (bool, error)
	GetGrade(ctx context.Context, businessID int64, citizenID string) (int, error)
}

// Entry is the cached employee list of one business
type Entry struct {
	Employees   []entities.Employee
	RefreshedAt time.Time
}

// HireRequest contains the parameters for a hire
type HireRequest struct {
	BusinessID    int64
	CitizenID     string
	Name          string // Display name, taken from the live actor when empty
	Grade         int
	RequestedWage int64 // Used only when the job defines no payment for Grade
}

// Directory owns the employment records and their read cache.
// Writes go to the store, then the business's cache entry is rebuilt before
// the call returns. Reads are served from the cache and fall back to the
// store on a miss.
//
// Every business has a generation that refreshes and invalidations advance.
// A load may only populate the cache if the generation it started under is
// still current, so a slow read can never overwrite a newer entry.
type Directory struct {
	businesses repositories.BusinessRepository
	employees  repositories.EmployeeRepository
	jobs       jobs.AdapterInterface
	actors     actors.Directory
	cache      cache.Cache[*Entry]
	logger     *zap.Logger
	now        func() time.Time

	genMu       sync.Mutex
	generations map[int64]uint64
}

// Config configures a Directory
type Config struct {
	EntryTTL      time.Duration // Zero keeps entries until the next refresh
	EnableMetrics bool
}

// New creates a new Directory
func New(
	businesses repositories.BusinessRepository,
	employees repositories.EmployeeRepository,
	jobAdapter jobs.AdapterInterface,
	directory actors.Directory,
	cfg Config,
	logger *zap.Logger,
) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{
		businesses: businesses,
		employees:  employees,
		jobs:       jobAdapter,
		actors:     directory,
		cache: memorycache.New[*Entry](&memorycache.Config{
			DefaultTTL:    cfg.EntryTTL,
			EnableMetrics: cfg.EnableMetrics,
		}),
		logger:      logger.Named("directory"),
		now:         time.Now,
		generations: make(map[int64]uint64),
	}
}

func cacheKey(businessID int64) string {
	return strconv.FormatInt(businessID, 10)
}

// generation returns the current generation of a business's entry
func (d *Directory) generation(businessID int64) uint64 {
	d.genMu.Lock()
	defer d.genMu.Unlock()
	return d.generations[businessID]
}

// advance starts a new generation, fencing off loads already in flight
func (d *Directory) advance(businessID int64) uint64 {
	d.genMu.Lock()
	defer d.genMu.Unlock()
	d.generations[businessID]++
	return d.generations[businessID]
}

// storeIfCurrent caches list only if no refresh or invalidation started
// after gen was taken. It reports whether the entry was stored.
func (d *Directory) storeIfCurrent(ctx context.Context, businessID int64, gen uint64, list []entities.Employee, at time.Time) bool {
	d.genMu.Lock()
	defer d.genMu.Unlock()
	if d.generations[businessID] != gen {
		return false
	}
	_ = d.cache.Set(ctx, cacheKey(businessID), &Entry{Employees: list, RefreshedAt: at}, 0)
	return true
}

// deleteIfCurrent drops an entry only if gen is still current
func (d *Directory) deleteIfCurrent(ctx context.Context, businessID int64, gen uint64) {
	d.genMu.Lock()
	defer d.genMu.Unlock()
	if d.generations[businessID] == gen {
		_ = d.cache.Delete(ctx, cacheKey(businessID))
	}
}

// resolveJob loads the business and its job schema
func (d *Directory) resolveJob(ctx context.Context, businessID int64) (*entities.Business, *entities.JobInfo, error) {
	business, err := d.businesses.GetByID(ctx, businessID)
	if err != nil {
		return nil, nil, err
	}
	job, err := d.jobs.Resolve(ctx, business.JobName)
	if err != nil {
		return nil, nil, err
	}
	return business, job, nil
}

// Hire employs a person at a grade of the business's job. The stored wage is
// the job's payment for the grade when defined, otherwise the requested wage
// clamped to the wage bounds.
func (d *Directory) Hire(ctx context.Context, req HireRequest) (*entities.Employee, error) {
	if req.CitizenID == "" {
		return nil, fmt.Errorf("%w: citizen ID is required", entities.ErrInvalidInput)
	}

	business, job, err := d.resolveJob(ctx, req.BusinessID)
	if err != nil {
		return nil, err
	}
	if !job.HasGrade(req.Grade) {
		return nil, fmt.Errorf("%w: grade %d is not defined for job %s", entities.ErrInvalidGrade, req.Grade, job.Name)
	}

	if _, err := d.employees.Get(ctx, req.BusinessID, req.CitizenID); err == nil {
		return nil, fmt.Errorf("%w: %s already works for business %d", entities.ErrAlreadyHired, req.CitizenID, req.BusinessID)
	} else if !errors.Is(err, entities.ErrNotFound) {
		return nil, fmt.Errorf("failed to check employment: %w", err)
	}

	employee := &entities.Employee{
		BusinessID: req.BusinessID,
		CitizenID:  req.CitizenID,
		Name:       req.Name,
		Grade:      req.Grade,
		Wage:       job.ResolveWage(req.Grade, req.RequestedWage),
	}

	if actor, ok := d.actors.ByCitizenID(ctx, req.CitizenID); ok {
		if employee.Name == "" {
			employee.Name = actor.Name
		}
		d.syncAssignment(ctx, req.CitizenID, job.Name, req.Grade)
	} else {
		d.logger.Info("hired actor is offline, skipping job assignment",
			zap.Int64("business_id", req.BusinessID),
			zap.String("citizen_id", req.CitizenID),
		)
	}

	id, err := d.employees.Create(ctx, employee)
	if err != nil {
		return nil, err
	}
	employee.ID = id
	employee.BusinessName = business.Name
	employee.JobName = business.JobName

	d.refreshAfterWrite(ctx, req.BusinessID)
	return employee, nil
}

// Fire removes a person from the business and resets their live job
func (d *Directory) Fire(ctx context.Context, businessID int64, citizenID string) error {
	business, err := d.businesses.GetByID(ctx, businessID)
	if err != nil {
		return err
	}
	if err := d.employees.Delete(ctx, businessID, citizenID); err != nil {
		return err
	}

	// Only reset actors still working this business's job
	if actor, ok := d.actors.ByCitizenID(ctx, citizenID); ok && actor.HoldsJob(business.JobName) {
		if err := d.actors.ClearJobAssignment(ctx, citizenID); err != nil {
			d.logger.Warn("failed to clear job assignment",
				zap.String("citizen_id", citizenID),
				zap.Error(err),
			)
		}
	}

	d.refreshAfterWrite(ctx, businessID)
	return nil
}

// UpdateGrade moves an employee to another grade of the job. The wage is
// recomputed from the job, keeping the previous wage when the job defines
// no payment for the new grade.
func (d *Directory) UpdateGrade(ctx context.Context, businessID int64, citizenID string, grade int) (*entities.Employee, error) {
	_, job, err := d.resolveJob(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if !job.HasGrade(grade) {
		return nil, fmt.Errorf("%w: grade %d is not defined for job %s", entities.ErrInvalidGrade, grade, job.Name)
	}

	current, err := d.employees.Get(ctx, businessID, citizenID)
	if err != nil {
		return nil, err
	}

	wage := job.ResolveWage(grade, current.Wage)
	if err := d.employees.UpdateGrade(ctx, businessID, citizenID, grade, wage); err != nil {
		return nil, err
	}

	if _, ok := d.actors.ByCitizenID(ctx, citizenID); ok {
		d.syncAssignment(ctx, citizenID, job.Name, grade)
	}

	d.refreshAfterWrite(ctx, businessID)
	current.Grade = grade
	current.Wage = wage
	return current, nil
}

// UpdateWage sets an employee's wage, clamped to the wage bounds
func (d *Directory) UpdateWage(ctx context.Context, businessID int64, citizenID string, wage int64) (*entities.Employee, error) {
	wage = entities.ClampWage(wage)
	if err := d.employees.UpdateWage(ctx, businessID, citizenID, wage); err != nil {
		return nil, err
	}

	d.refreshAfterWrite(ctx, businessID)
	return d.Get(ctx, businessID, citizenID)
}

func (d *Directory) syncAssignment(ctx context.Context, citizenID, job string, grade int) {
	if err := d.actors.SetJobAssignment(ctx, citizenID, job, grade); err != nil {
		d.logger.Warn("failed to sync job assignment",
			zap.String("citizen_id", citizenID),
			zap.String("job", job),
			zap.Int("grade", grade),
			zap.Error(err),
		)
	}
}

// refreshAfterWrite rebuilds one entry after a committed write. On failure
// the entry is dropped so the next read goes to the store.
func (d *Directory) refreshAfterWrite(ctx context.Context, businessID int64) {
	if err := d.Refresh(ctx, businessID); err != nil {
		d.logger.Warn("failed to refresh directory entry", zap.Int64("business_id", businessID), zap.Error(err))
		d.Invalidate(ctx, businessID)
	}
}

// Refresh reloads one business's entry from the store. If a newer refresh
// starts while this one is loading, the newer one owns the entry.
func (d *Directory) Refresh(ctx context.Context, businessID int64) error {
	gen := d.advance(businessID)
	list, err := d.employees.ListByBusiness(ctx, businessID)
	if err != nil {
		return fmt.Errorf("failed to load employees of business %d: %w", businessID, err)
	}
	if !d.storeIfCurrent(ctx, businessID, gen, list, d.now()) {
		d.logger.Debug("discarded superseded refresh", zap.Int64("business_id", businessID))
	}
	return nil
}

// ReloadAll rebuilds the whole cache from the store
func (d *Directory) ReloadAll(ctx context.Context) error {
	// Generations are captured before the load; businesses written to in the
	// meantime keep the entry their own refresh produced.
	d.genMu.Lock()
	started := make(map[int64]uint64, len(d.generations))
	for id, gen := range d.generations {
		started[id] = gen
	}
	d.genMu.Unlock()

	all, err := d.employees.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load employees: %w", err)
	}

	grouped := make(map[int64][]entities.Employee)
	for _, e := range all {
		grouped[e.BusinessID] = append(grouped[e.BusinessID], e)
	}

	// Businesses that lost their last employee must not keep a stale entry
	stale := make([]int64, 0)
	malformed := make([]string, 0)
	d.cache.Range(ctx, func(key string, _ *Entry) bool {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			malformed = append(malformed, key)
			return true
		}
		if _, ok := grouped[id]; !ok {
			stale = append(stale, id)
		}
		return true
	})
	for _, key := range malformed {
		_ = d.cache.Delete(ctx, key)
	}
	for _, id := range stale {
		d.deleteIfCurrent(ctx, id, started[id])
	}

	now := d.now()
	for businessID, list := range grouped {
		d.storeIfCurrent(ctx, businessID, started[businessID], list, now)
	}

	d.logger.Debug("directory reloaded", zap.Int("businesses", len(grouped)), zap.Int("employees", len(all)))
	return nil
}

// Invalidate drops one business's entry and fences off loads in flight
func (d *Directory) Invalidate(ctx context.Context, businessID int64) {
	d.genMu.Lock()
	defer d.genMu.Unlock()
	d.generations[businessID]++
	_ = d.cache.Delete(ctx, cacheKey(businessID))
}

// entry returns the cached employee list, loading it on a miss.
// The returned slice is shared and must not be modified.
func (d *Directory) entry(ctx context.Context, businessID int64) ([]entities.Employee, error) {
	if e, ok := d.cache.Get(ctx, cacheKey(businessID)); ok {
		return e.Employees, nil
	}

	gen := d.generation(businessID)
	list, err := d.employees.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to load employees of business %d: %w", businessID, err)
	}
	d.storeIfCurrent(ctx, businessID, gen, list, d.now())
	return list, nil
}

// GetAll returns a copy of the business's employees
func (d *Directory) GetAll(ctx context.Context, businessID int64) ([]entities.Employee, error) {
	list, err := d.entry(ctx, businessID)
	if err != nil {
		return nil, err
	}
	out := entities.CloneEmployees(list)
	if out == nil {
		out = []entities.Employee{}
	}
	return out, nil
}

// Get returns a copy of one employee, or entities.ErrNotFound
func (d *Directory) Get(ctx context.Context, businessID int64, citizenID string) (*entities.Employee, error) {
	list, err := d.entry(ctx, businessID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].CitizenID == citizenID {
			e := list[i]
			return &e, nil
		}
	}
	return nil, fmt.Errorf("%w: employee %d:%s", entities.ErrNotFound, businessID, citizenID)
}

// IsEmployed reports whether the person works for the business
func (d *Directory) IsEmployed(ctx context.Context, businessID int64, citizenID string) (bool, error) {
	_, err := d.Get(ctx, businessID, citizenID)
	if errors.Is(err, entities.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// GetGrade returns the person's stored grade
func (d *Directory) GetGrade(ctx context.Context, businessID int64, citizenID string) (int, error) {
	e, err := d.Get(ctx, businessID, citizenID)
	if err != nil {
		return 0, err
	}
	return e.Grade, nil
}

// Snapshot returns a deep copy of every cached entry
func (d *Directory) Snapshot(ctx context.Context) map[int64]Entry {
	out := make(map[int64]Entry)
	d.cache.Range(ctx, func(key string, e *Entry) bool {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return true
		}
		out[id] = Entry{Employees: entities.CloneEmployees(e.Employees), RefreshedAt: e.RefreshedAt}
		return true
	})
	return out
}

// CachedBusinessIDs lists the businesses that currently have an entry
func (d *Directory) CachedBusinessIDs(ctx context.Context) []int64 {
	ids := make([]int64, 0)
	for id := range d.Snapshot(ctx) {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Metrics exposes cache statistics for the metrics collector
func (d *Directory) Metrics() *cache.Metrics {
	return d.cache.Metrics()
}
