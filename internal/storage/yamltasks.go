package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/valter-silva-au/skillpulse/pkg/models"
	"gopkg.in/yaml.v3"
)

// taskFile represents the top-level structure of tasks.yaml.
type taskFile struct {
	Version string                 `yaml:"version"`
	Tasks   map[string]models.Task `yaml:"tasks"`
}

// yamlTaskStore keeps every task in a single tasks.yaml file. Each
// operation reads and rewrites the file under a file lock, so several
// processes can share one base path.
type yamlTaskStore struct {
	basePath string
	mu       sync.Mutex
}

// NewYAMLTaskStore creates a TaskStore backed by tasks.yaml in basePath.
func NewYAMLTaskStore(basePath string) TaskStore {
	return &yamlTaskStore{basePath: basePath}
}

func (s *yamlTaskStore) filePath() string {
	return filepath.Join(s.basePath, "tasks.yaml")
}

func (s *yamlTaskStore) Find(ctx context.Context, q models.TaskQuery) ([]models.Task, error) {
	var page []models.Task
	err := s.withFile(ctx, false, func(f *taskFile) error {
		all := make([]models.Task, 0, len(f.Tasks))
		for _, t := range f.Tasks {
			all = append(all, t)
		}
		page = pageTasks(all, q)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("finding tasks: %w", err)
	}
	return page, nil
}

func (s *yamlTaskStore) Insert(ctx context.Context, task models.Task) error {
	if task.ID == "" {
		return fmt.Errorf("inserting task: ID must not be empty")
	}
	err := s.withFile(ctx, true, func(f *taskFile) error {
		if _, exists := f.Tasks[task.ID]; exists {
			return fmt.Errorf("task %s %w", task.ID, ErrDuplicate)
		}
		f.Tasks[task.ID] = task
		return nil
	})
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (s *yamlTaskStore) Update(ctx context.Context, userID, id string, fields models.TaskFields) error {
	err := s.withFile(ctx, true, func(f *taskFile) error {
		existing, exists := f.Tasks[id]
		if !exists || existing.UserID != userID {
			return fmt.Errorf("task %s %w", id, ErrNotFound)
		}
		existing.Description = fields.Description
		existing.StartTime = fields.StartTime
		existing.EndTime = fields.EndTime
		f.Tasks[id] = existing
		return nil
	})
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	return nil
}

func (s *yamlTaskStore) Delete(ctx context.Context, userID, id string) error {
	err := s.withFile(ctx, true, func(f *taskFile) error {
		existing, exists := f.Tasks[id]
		if !exists || existing.UserID != userID {
			return fmt.Errorf("task %s %w", id, ErrNotFound)
		}
		delete(f.Tasks, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return nil
}

func (s *yamlTaskStore) IDsWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var ids []string
	err := s.withFile(ctx, false, func(f *taskFile) error {
		for id := range f.Tasks {
			if strings.HasPrefix(id, prefix) {
				ids = append(ids, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing task IDs: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *yamlTaskStore) Close(context.Context) error {
	return nil
}

// withFile loads tasks.yaml under the lock, runs fn, and writes the file
// back when write is true and fn succeeded.
func (s *yamlTaskStore) withFile(ctx context.Context, write bool, fn func(*taskFile) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.basePath, 0o750); err != nil {
		return fmt.Errorf("creating base path: %w", err)
	}
	unlock, err := lockFile(s.filePath() + ".lock")
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	f, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		return err
	}
	if !write {
		return nil
	}
	return s.save(f)
}

func (s *yamlTaskStore) load() (*taskFile, error) {
	data, err := os.ReadFile(s.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return &taskFile{Version: "1.0", Tasks: make(map[string]models.Task)}, nil
		}
		return nil, fmt.Errorf("loading tasks: %w", err)
	}

	var f taskFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("loading tasks: parsing YAML: %w", err)
	}
	if f.Tasks == nil {
		f.Tasks = make(map[string]models.Task)
	}
	return &f, nil
}

func (s *yamlTaskStore) save(f *taskFile) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("saving tasks: marshalling YAML: %w", err)
	}
	if err := writeFileAtomic(s.filePath(), data, 0o600); err != nil {
		return fmt.Errorf("saving tasks: %w", err)
	}
	return nil
}
