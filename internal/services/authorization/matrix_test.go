package authorization

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JericoFX/advance-manager/internal/entities"
)

func TestBuildMatrix_JobDefaults(t *testing.T) {
	m := BuildMatrix(businessWithOverrides(nil), policeJob())

	assert.True(t, m.IsGranted(3, "hiring"))
	assert.True(t, m.IsGranted(2, "employees"))
	assert.False(t, m.IsGranted(2, "hiring"))
	assert.False(t, m.IsGranted(0, "finance"))
	assert.Equal(t, []string{"employees", "hiring"}, m.Permissions("3"))
}

func TestBuildMatrix_AllShorthand(t *testing.T) {
	job := policeJob()
	g := job.Grades[1]
	g.Permissions = entities.PermissionGrant{All: true}
	job.Grades[1] = g

	m := BuildMatrix(businessWithOverrides(nil), job)
	assert.True(t, m.IsGranted(1, "finance"))
	assert.True(t, m.IsGranted(1, "anything"))
	assert.False(t, m.IsGranted(1, entities.PermissionBoss), "wildcards never grant boss")
}

func TestBuildMatrix_OverridesAreAdditive(t *testing.T) {
	m := BuildMatrix(businessWithOverrides(map[string]any{
		"2":       []any{"finance"},
		"manage":  []any{float64(1)},
		"3":       []any{},
		"hiring":  false,
		"unknown": "not-a-grade",
	}), policeJob())

	assert.True(t, m.IsGranted(2, "finance"), "grade-keyed override")
	assert.True(t, m.IsGranted(2, "employees"), "job default kept")
	assert.True(t, m.IsGranted(1, "manage"), "permission-keyed override")
	assert.True(t, m.IsGranted(3, "hiring"), "empty override does not revoke")
	assert.Len(t, m.Warnings(), 1)
}

func TestMatrix_IsGrantedLookupOrder(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		grade     int
		perm      string
		want      bool
	}{
		{"exact", map[string]any{"1": []any{"finance"}}, 1, "finance", true},
		{"grade wildcard permission", map[string]any{"1": true}, 1, "finance", true},
		{"wildcard grade", map[string]any{"*": []any{"finance"}}, 0, "finance", true},
		{"wildcard grade other permission", map[string]any{"*": []any{"finance"}}, 0, "manage", false},
		{"wildcard both", map[string]any{"*": true}, 0, "manage", true},
		{"permission keyed true", map[string]any{"finance": true}, 1, "finance", true},
		{"nothing", nil, 1, "finance", false},
		{"boss ignores overrides", map[string]any{"*": true, "boss": true}, 1, entities.PermissionBoss, false},
		{"boss grade is boss", nil, 4, entities.PermissionBoss, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := BuildMatrix(businessWithOverrides(tt.overrides), policeJob())
			assert.Equal(t, tt.want, m.IsGranted(tt.grade, tt.perm))
		})
	}
}

func TestSourceSignature(t *testing.T) {
	job := policeJob()

	a := SourceSignature(businessWithOverrides(map[string]any{"1": []any{"finance", "manage"}}), job)
	b := SourceSignature(businessWithOverrides(map[string]any{"1": []any{"manage", "finance"}}), job)
	c := SourceSignature(businessWithOverrides(map[string]any{"finance": []any{1}, "manage": []any{"1"}}), job)
	d := SourceSignature(businessWithOverrides(map[string]any{"1": []any{"finance"}}), job)

	assert.Equal(t, a, b, "list order does not matter")
	assert.Equal(t, a, c, "equivalent shapes match")
	assert.NotEqual(t, a, d)

	changed := policeJob()
	g := changed.Grades[0]
	g.Permissions = entities.PermissionGrant{Names: []string{"finance"}}
	changed.Grades[0] = g
	e := SourceSignature(businessWithOverrides(map[string]any{"1": []any{"finance"}}), changed)
	assert.NotEqual(t, d, e, "job defaults are part of the signature")

	boss := policeJob()
	g = boss.Grades[3]
	g.IsBoss = true
	boss.Grades[3] = g
	assert.NotEqual(t, d, SourceSignature(businessWithOverrides(map[string]any{"1": []any{"finance"}}), boss))
}

func TestMatrixCache_BuildsOnlyWhenInputsChange(t *testing.T) {
	matrices := NewMatrixCache(10, true, nil)
	builds := 0
	matrices.build = func(b *entities.Business, j *entities.JobInfo) *Matrix {
		builds++
		return BuildMatrix(b, j)
	}
	ctx := context.Background()
	job := policeJob()
	business := businessWithOverrides(map[string]any{"1": []any{"finance"}})

	first := matrices.Get(ctx, business, job)
	for i := 0; i < 5; i++ {
		assert.Same(t, first, matrices.Get(ctx, business, job))
	}
	assert.Equal(t, 1, builds, "hits must not rebuild")

	// Same grants in another order is still a hit
	business.Metadata[entities.MetadataPermissionsKey] = map[string]any{"finance": []any{1}}
	assert.Same(t, first, matrices.Get(ctx, business, job))
	assert.Equal(t, 1, builds)

	business.Metadata[entities.MetadataPermissionsKey] = map[string]any{"1": []any{"finance", "manage"}}
	second := matrices.Get(ctx, business, job)
	assert.Equal(t, 2, builds)
	assert.True(t, second.IsGranted(1, "manage"))

	// A catalog edit rebuilds as well
	edited := policeJob()
	g := edited.Grades[0]
	g.Permissions = entities.PermissionGrant{Names: []string{"finance"}}
	edited.Grades[0] = g
	third := matrices.Get(ctx, business, edited)
	assert.Equal(t, 3, builds)
	assert.True(t, third.IsGranted(0, "finance"))

	matrices.Invalidate(ctx, business.ID)
	matrices.Get(ctx, business, edited)
	assert.Equal(t, 4, builds)

	metrics := matrices.Metrics()
	assert.Equal(t, uint64(8), metrics.Hits, "stale entries are found, then replaced")
	assert.Equal(t, uint64(2), metrics.Misses)
}
