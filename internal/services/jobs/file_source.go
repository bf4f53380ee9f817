package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/JericoFX/advance-manager/internal/entities"
)

// catalogDocument is the on-disk layout of the job catalog:
//
//	jobs:
//	  police:
//	    label: Police
//	    grades:
//	      0: { name: Recruit, payment: 50 }
//	      4: { name: Chief, payment: 75, isboss: true, permissions: true }
//	      3: { name: Sergeant, permissions: [hiring, employees] }
type catalogDocument struct {
	Jobs map[string]jobDocument `yaml:"jobs"`
}

type jobDocument struct {
	Label  string                   `yaml:"label"`
	Grades map[string]gradeDocument `yaml:"grades"`
}

type gradeDocument struct {
	Name        string          `yaml:"name"`
	Payment     *int64          `yaml:"payment"`
	IsBoss      bool            `yaml:"isboss"`
	Permissions permissionsNode `yaml:"permissions"`
}

// permissionsNode accepts either a list of names or a boolean
type permissionsNode struct {
	entities.PermissionGrant
}

func (p *permissionsNode) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var all bool
		if err := value.Decode(&all); err != nil {
			return fmt.Errorf("permissions must be a list or a boolean: %w", err)
		}
		p.All = all
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := value.Decode(&names); err != nil {
			return fmt.Errorf("permissions must be a list of names: %w", err)
		}
		p.Names = names
		return nil
	default:
		return fmt.Errorf("permissions must be a list or a boolean (line %d)", value.Line)
	}
}

// ParseCatalog decodes a YAML job catalog
func ParseCatalog(data []byte) (map[string]*entities.JobInfo, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse job catalog: %w", err)
	}

	jobs := make(map[string]*entities.JobInfo, len(doc.Jobs))
	for name, jd := range doc.Jobs {
		grades := make(map[int]entities.Grade, len(jd.Grades))
		for key, gd := range jd.Grades {
			level, err := strconv.Atoi(key)
			if err != nil {
				return nil, fmt.Errorf("job %q: grade key %q is not a number", name, key)
			}
			grades[level] = entities.Grade{
				Level:       level,
				Label:       gd.Name,
				Payment:     gd.Payment,
				IsBoss:      gd.IsBoss,
				Permissions: gd.Permissions.PermissionGrant,
			}
		}
		jobs[name] = entities.NewJobInfo(name, jd.Label, grades)
	}
	return jobs, nil
}

// FileSource serves the job catalog from a YAML file and optionally
// reloads it when the file changes on disk.
type FileSource struct {
	path    string
	catalog *StaticSource
	logger  *zap.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewFileSource loads path once. A nil logger disables logging.
func NewFileSource(path string, logger *zap.Logger) (*FileSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fs := &FileSource{
		path:    path,
		catalog: NewStaticSource(),
		logger:  logger.Named("jobs"),
	}
	if err := fs.Reload(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Lookup implements Source
func (f *FileSource) Lookup(ctx context.Context, name string) (*entities.JobInfo, bool, error) {
	return f.catalog.Lookup(ctx, name)
}

// Reload re-reads the file. On error the previous catalog stays in place.
func (f *FileSource) Reload() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("failed to read job catalog %s: %w", f.path, err)
	}
	jobs, err := ParseCatalog(data)
	if err != nil {
		return err
	}
	f.catalog.Replace(jobs)
	f.logger.Info("job catalog loaded", zap.String("path", f.path), zap.Int("jobs", len(jobs)))
	return nil
}

// Watch starts reloading the catalog on file changes until ctx is done or
// Close is called. The parent directory is watched so that editors that
// replace the file by rename are handled.
func (f *FileSource) Watch(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", f.path, err)
	}

	f.watcher = watcher
	f.done = make(chan struct{})
	go f.watchLoop(ctx, watcher, f.done)
	return nil
}

func (f *FileSource) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	target := filepath.Clean(f.path)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := f.Reload(); err != nil {
				f.logger.Warn("job catalog reload failed, keeping previous catalog", zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			f.logger.Warn("job catalog watcher error", zap.Error(err))
		}
	}
}

// Close stops watching
func (f *FileSource) Close() error {
	f.mu.Lock()
	watcher, done := f.watcher, f.done
	f.watcher, f.done = nil, nil
	f.mu.Unlock()

	if watcher == nil {
		return nil
	}
	err := watcher.Close()
	<-done
	return err
}
