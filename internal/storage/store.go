package storage

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dori/ticklist/internal/model"
)

// DefaultKey is the key the task list is stored under
const DefaultKey = "todo_app_tasks_v1"

// TaskStore reads and writes the whole task list under one key
type TaskStore struct {
	kv     KV
	key    string
	logger *slog.Logger
	now    func() time.Time
}

// NewTaskStore binds kv to key. An empty key selects DefaultKey.
func NewTaskStore(kv KV, key string, logger *slog.Logger) *TaskStore {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{
		kv:     kv,
		key:    key,
		logger: logger,
		now:    time.Now,
	}
}

// Key returns the storage key
func (s *TaskStore) Key() string {
	return s.key
}

// Load returns the stored task list. Read failures and malformed data are
// logged and yield an empty list.
func (s *TaskStore) Load() []model.Task {
	raw, ok, err := s.kv.Get(s.key)
	if err != nil {
		s.logger.Warn("storage: load failed",
			slog.String("key", s.key),
			slog.String("error", err.Error()))
		return []model.Task{}
	}
	if !ok {
		return []model.Task{}
	}

	tasks := Decode([]byte(raw), s.now())
	s.logger.Debug("storage: loaded tasks",
		slog.String("key", s.key),
		slog.Int("count", len(tasks)))
	return tasks
}

// Save overwrites the stored task list
func (s *TaskStore) Save(tasks []model.Task) error {
	data, err := Encode(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := s.kv.Set(s.key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", s.key, err)
	}
	return nil
}
