package authorization

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/JericoFX/advance-manager/internal/entities"
	"github.com/JericoFX/advance-manager/pkg/cache"
	"github.com/JericoFX/advance-manager/pkg/cache/memorycache"
)

// cachedMatrix pairs a built matrix with the signature of its inputs
type cachedMatrix struct {
	source string
	matrix *Matrix
}

// MatrixCache keeps one matrix per business. The inputs (business overrides
// and job grade defaults) are fingerprinted on every lookup and the matrix
// is rebuilt only when the fingerprint differs from the cached one.
type MatrixCache struct {
	cache  cache.Cache[*cachedMatrix]
	build  func(*entities.Business, *entities.JobInfo) *Matrix
	logger *zap.Logger
}

// NewMatrixCache creates a MatrixCache bounded to maxEntries businesses
// (zero for unbounded).
func NewMatrixCache(maxEntries int, enableMetrics bool, logger *zap.Logger) *MatrixCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatrixCache{
		cache: memorycache.New[*cachedMatrix](&memorycache.Config{
			MaxEntries:    maxEntries,
			EnableMetrics: enableMetrics,
		}),
		build:  BuildMatrix,
		logger: logger.Named("matrix"),
	}
}

// Get returns the effective matrix for business under job
func (c *MatrixCache) Get(ctx context.Context, business *entities.Business, job *entities.JobInfo) *Matrix {
	key := strconv.FormatInt(business.ID, 10)
	source := SourceSignature(business, job)

	if cached, ok := c.cache.Get(ctx, key); ok && cached.source == source {
		return cached.matrix
	}

	fresh := c.build(business, job)
	for _, w := range fresh.Warnings() {
		c.logger.Warn("ignoring malformed permission override",
			zap.Int64("business_id", business.ID),
			zap.String("detail", w),
		)
	}
	_ = c.cache.Set(ctx, key, &cachedMatrix{source: source, matrix: fresh}, 0)
	return fresh
}

// Invalidate drops the cached matrix of a business
func (c *MatrixCache) Invalidate(ctx context.Context, businessID int64) {
	_ = c.cache.Delete(ctx, strconv.FormatInt(businessID, 10))
}

// Metrics exposes cache statistics for the metrics collector
func (c *MatrixCache) Metrics() *cache.Metrics {
	return c.cache.Metrics()
}

// SourceSignature fingerprints the inputs of BuildMatrix without building
// it: the job's grade defaults and the normalized overrides, each reduced to
// sorted lines so that key and list order never matter.
func SourceSignature(business *entities.Business, job *entities.JobInfo) string {
	h := sha256.New()

	if job != nil {
		writeLine(h, "job", job.Name)
		for _, level := range job.SortedLevels() {
			grade := job.Grades[level]
			key := strconv.Itoa(level)
			writeLine(h, "grade", key, strconv.FormatBool(grade.IsBoss), strconv.FormatBool(grade.Permissions.All))

			names := append([]string(nil), grade.Permissions.Names...)
			sort.Strings(names)
			for _, name := range names {
				writeLine(h, "default", key, name)
			}
		}
	}

	if business != nil {
		overrides, _ := ParseOverrides(business.PermissionOverrides())
		pairs := make([]string, 0, len(overrides))
		for _, o := range overrides {
			for _, v := range o.Values {
				switch o.Kind {
				case GradeKeyed:
					pairs = append(pairs, o.Key+"\x00"+v)
				case PermissionKeyed:
					pairs = append(pairs, v+"\x00"+o.Key)
				}
			}
		}
		sort.Strings(pairs)
		for _, pair := range pairs {
			writeLine(h, "override", pair)
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}

func writeLine(h hash.Hash, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(f))
	}
	h.Write([]byte{'\n'})
}
