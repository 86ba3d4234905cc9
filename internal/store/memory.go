package store

import (
	"context"
	"sync"

	"github.com/Makepad-fr/tada/internal/model"
)

// Memory keeps everything in process. Used for tests and `--store memory`.
type Memory struct {
	mu      sync.RWMutex
	tasks   []model.Task
	folders []model.Folder
}

func NewMemory(seed ...model.Task) *Memory {
	m := &Memory{}
	for _, t := range seed {
		m.tasks = append(m.tasks, t.Clone())
	}
	return m
}

func (m *Memory) List(ctx context.Context, folderID *string) ([]model.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return FilterFolder(m.tasks, folderID), nil
}

func (m *Memory) Get(ctx context.Context, id string) (model.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.index(id); i >= 0 {
		return m.tasks[i].Clone(), nil
	}
	return model.Task{}, TaskNotFound(id)
}

func (m *Memory) Create(ctx context.Context, t model.Task) (model.Task, error) {
	t, err := PrepareNew(t)
	if err != nil {
		return model.Task{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index(t.ID) >= 0 {
		return model.Task{}, TaskExists(t.ID)
	}
	m.tasks = append(m.tasks, t)
	return t.Clone(), nil
}

func (m *Memory) Update(ctx context.Context, id string, changes model.Patch) (model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return model.Task{}, TaskNotFound(id)
	}
	next, err := ApplyPatch(m.tasks[i], changes)
	if err != nil {
		return model.Task{}, err
	}
	m.tasks[i] = next
	return next.Clone(), nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return TaskNotFound(id)
	}
	m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
	return nil
}

func (m *Memory) Folders(ctx context.Context) ([]model.Folder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Folder, len(m.folders))
	copy(out, m.folders)
	return out, nil
}

func (m *Memory) CreateFolder(ctx context.Context, name string) (model.Folder, error) {
	f, err := NewFolder(name)
	if err != nil {
		return model.Folder{}, err
	}
	m.mu.Lock()
	m.folders = append(m.folders, f)
	m.mu.Unlock()
	return f, nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) index(id string) int {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
