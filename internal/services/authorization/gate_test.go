package authorization

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JericoFX/advance-manager/internal/actors"
	"github.com/JericoFX/advance-manager/internal/entities"
	"github.com/JericoFX/advance-manager/internal/repositories/memory"
	"github.com/JericoFX/advance-manager/internal/services/jobs"
	"github.com/JericoFX/advance-manager/internal/session"
)

type gateFixture struct {
	gate       *Gate
	registry   *session.Registry
	businesses *memory.BusinessRepository
	source     *jobs.StaticSource
	businessID int64
}

func newGateFixture(t *testing.T, overrides map[string]any) *gateFixture {
	t.Helper()
	store := memory.NewStore()
	businesses := memory.NewBusinessRepository(store)
	source := jobs.NewStaticSource(policeJob())
	registry := session.NewRegistry()

	b := businessWithOverrides(overrides)
	id, err := businesses.Create(context.Background(), b)
	require.NoError(t, err)

	return &gateFixture{
		gate:       NewGate(businesses, jobs.NewAdapter(source), NewMatrixCache(0, false, nil), registry, nil),
		registry:   registry,
		businesses: businesses,
		source:     source,
		businessID: id,
	}
}

func (f *gateFixture) connect(t *testing.T, citizenID, job string, grade int) {
	t.Helper()
	require.NoError(t, f.registry.Connect(actors.Actor{
		CitizenID: citizenID, SessionID: "s-" + citizenID, Job: job, Grade: grade,
	}))
}

func TestGate_Authorize(t *testing.T) {
	f := newGateFixture(t, map[string]any{"1": []any{"finance"}})
	f.connect(t, "CHIEF", "police", 4)
	f.connect(t, "SGT", "police", 3)
	f.connect(t, "OFFICER", "police", 1)
	f.connect(t, "MECHANIC", "mechanic", 4)
	f.connect(t, "GHOST", "police", 9)
	ctx := context.Background()

	tests := []struct {
		name        string
		citizenID   string
		permissions []string
		want        bool
	}{
		{"owner offline any permission", "OWNER1", []string{"finance", "hiring"}, true},
		{"owner no permission", "OWNER1", nil, true},
		{"boss implicit everything", "CHIEF", []string{"finance", "manage"}, true},
		{"boss without permission", "CHIEF", nil, true},
		{"non-boss without permission", "SGT", nil, false},
		{"job default", "SGT", []string{"hiring"}, true},
		{"conjunctive all granted", "SGT", []string{"hiring", "employees"}, true},
		{"conjunctive one missing", "SGT", []string{"hiring", "finance"}, false},
		{"override grant", "OFFICER", []string{"finance"}, true},
		{"boss literal for non-boss", "SGT", []string{entities.PermissionBoss}, false},
		{"boss literal for boss", "CHIEF", []string{entities.PermissionBoss}, true},
		{"different job", "MECHANIC", []string{"finance"}, false},
		{"grade not in schema", "GHOST", []string{"finance"}, false},
		{"offline non-owner", "NOBODY", []string{"finance"}, false},
		{"empty actor", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.gate.Authorize(ctx, tt.citizenID, f.businessID, tt.permissions...))
		})
	}
}

func TestGate_MissingBusinessFailsClosed(t *testing.T) {
	f := newGateFixture(t, nil)
	f.connect(t, "CHIEF", "police", 4)

	assert.False(t, f.gate.Authorize(context.Background(), "OWNER1", 999))
	assert.False(t, f.gate.Authorize(context.Background(), "CHIEF", 999, "finance"))
}

func TestGate_MissingJobFailsClosed(t *testing.T) {
	f := newGateFixture(t, nil)
	f.connect(t, "CHIEF", "police", 4)
	f.source.Remove("police")

	assert.False(t, f.gate.Authorize(context.Background(), "CHIEF", f.businessID))
	assert.True(t, f.gate.Authorize(context.Background(), "OWNER1", f.businessID), "owners do not depend on the job schema")
}

func TestGate_SeesOverrideEdits(t *testing.T) {
	f := newGateFixture(t, nil)
	f.connect(t, "OFFICER", "police", 1)
	ctx := context.Background()

	assert.False(t, f.gate.Authorize(ctx, "OFFICER", f.businessID, "manage"))

	require.NoError(t, f.businesses.UpdateMetadata(ctx, f.businessID, map[string]any{
		entities.MetadataPermissionsKey: map[string]any{"manage": []any{1}},
	}))
	assert.True(t, f.gate.Authorize(ctx, "OFFICER", f.businessID, "manage"))
}

func TestGate_SeesSchemaEdits(t *testing.T) {
	f := newGateFixture(t, nil)
	f.connect(t, "SGT", "police", 3)
	ctx := context.Background()

	assert.False(t, f.gate.Authorize(ctx, "SGT", f.businessID))

	job := policeJob()
	g := job.Grades[3]
	g.IsBoss = true
	job.Grades[3] = g
	f.source.Put(entities.NewJobInfo(job.Name, job.Label, job.Grades))

	assert.True(t, f.gate.Authorize(ctx, "SGT", f.businessID))
}
