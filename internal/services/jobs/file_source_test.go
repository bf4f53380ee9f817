package jobs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `
jobs:
  police:
    label: Police
    grades:
      0: { name: Recruit, payment: 50 }
      3: { name: Sergeant, permissions: [hiring, employees] }
      4: { name: Chief, payment: 75, isboss: true, permissions: true }
  mechanic:
    label: Mechanic
    grades:
      0: { name: Apprentice }
`

func TestParseCatalog(t *testing.T) {
	jobs, err := ParseCatalog([]byte(catalogYAML))
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	police := jobs["police"]
	require.NotNil(t, police)
	assert.Equal(t, "Police", police.Label)
	require.NotNil(t, police.BossGrade)
	assert.Equal(t, 4, *police.BossGrade)

	sergeant, ok := police.GetGrade(3)
	require.True(t, ok)
	assert.Equal(t, []string{"hiring", "employees"}, sergeant.Permissions.Names)
	assert.False(t, sergeant.Permissions.All)
	assert.Nil(t, sergeant.Payment)

	chief, _ := police.GetGrade(4)
	assert.True(t, chief.Permissions.All)
	require.NotNil(t, chief.Payment)
	assert.Equal(t, int64(75), *chief.Payment)

	assert.Nil(t, jobs["mechanic"].BossGrade)
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"non-numeric grade", "jobs:\n  police:\n    grades:\n      chief: { name: Chief }\n"},
		{"permissions map", "jobs:\n  police:\n    grades:\n      0: { permissions: { a: b } }\n"},
		{"permissions string", "jobs:\n  police:\n    grades:\n      0: { permissions: sometimes }\n"},
		{"not yaml", "jobs: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestFileSource_LoadAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o600))

	source, err := NewFileSource(path, nil)
	require.NoError(t, err)

	ctx := context.Background()
	_, ok, err := source.Lookup(ctx, "police")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("jobs:\n  taxi:\n    grades:\n      0: { name: Driver }\n"), 0o600))
	require.NoError(t, source.Reload())

	_, ok, _ = source.Lookup(ctx, "police")
	assert.False(t, ok)
	_, ok, _ = source.Lookup(ctx, "taxi")
	assert.True(t, ok)

	// A broken file keeps the previous catalog
	require.NoError(t, os.WriteFile(path, []byte("jobs: [\n"), 0o600))
	assert.Error(t, source.Reload())
	_, ok, _ = source.Lookup(ctx, "taxi")
	assert.True(t, ok)
}

func TestFileSource_MissingFile(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}

func TestFileSource_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o600))

	source, err := NewFileSource(path, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, source.Watch(ctx))
	defer source.Close()

	require.NoError(t, os.WriteFile(path, []byte("jobs:\n  taxi:\n    grades:\n      0: { name: Driver }\n"), 0o600))

	adapter := NewAdapter(source)
	assert.Eventually(t, func() bool {
		_, err := adapter.Resolve(ctx, "taxi")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
}
