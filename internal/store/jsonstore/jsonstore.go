package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
)

// JSON-backed storage. Single file, human-readable, portable.
// One process at a time; the mutex only serializes goroutines.

const DataFileName = "tasks.json"

type document struct {
	Version int            `json:"version"`
	Folders []model.Folder `json:"folders"`
	Tasks   []model.Task   `json:"tasks"`
}

type Store struct {
	path string
	mu   sync.Mutex
}

// Open uses the file at path, creating its directory if needed. The file
// itself is created on first write.
func Open(path string) (*Store, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getwd: %w", err)
		}
		path = filepath.Join(wd, DataFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	return &Store{path: path}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) List(ctx context.Context, folderID *string) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return store.FilterFolder(doc.Tasks, folderID), nil
}

func (s *Store) Get(ctx context.Context, id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return model.Task{}, err
	}
	i := indexOf(doc.Tasks, id)
	if i < 0 {
		return model.Task{}, store.TaskNotFound(id)
	}
	return doc.Tasks[i], nil
}

func (s *Store) Create(ctx context.Context, t model.Task) (model.Task, error) {
	t, err := store.PrepareNew(t)
	if err != nil {
		return model.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return model.Task{}, err
	}
	if indexOf(doc.Tasks, t.ID) >= 0 {
		return model.Task{}, store.TaskExists(t.ID)
	}
	doc.Tasks = append(doc.Tasks, t)
	if err := s.save(doc); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (s *Store) Update(ctx context.Context, id string, changes model.Patch) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return model.Task{}, err
	}
	i := indexOf(doc.Tasks, id)
	if i < 0 {
		return model.Task{}, store.TaskNotFound(id)
	}
	next, err := store.ApplyPatch(doc.Tasks[i], changes)
	if err != nil {
		return model.Task{}, err
	}
	doc.Tasks[i] = next
	if err := s.save(doc); err != nil {
		return model.Task{}, err
	}
	return next, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	i := indexOf(doc.Tasks, id)
	if i < 0 {
		return store.TaskNotFound(id)
	}
	doc.Tasks = append(doc.Tasks[:i], doc.Tasks[i+1:]...)
	return s.save(doc)
}

func (s *Store) Folders(ctx context.Context) ([]model.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Folders, nil
}

func (s *Store) CreateFolder(ctx context.Context, name string) (model.Folder, error) {
	f, err := store.NewFolder(name)
	if err != nil {
		return model.Folder{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return model.Folder{}, err
	}
	doc.Folders = append(doc.Folders, f)
	if err := s.save(doc); err != nil {
		return model.Folder{}, err
	}
	return f, nil
}

func (s *Store) Close() error { return nil }

func (s *Store) load() (document, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return document{Version: 1, Folders: []model.Folder{}, Tasks: []model.Task{}}, nil
		}
		return document{}, fmt.Errorf("read file: %w", err)
	}
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return document{}, fmt.Errorf("json unmarshal: %w", err)
	}
	for i := range doc.Tasks {
		if doc.Tasks[i].Subtasks == nil {
			doc.Tasks[i].Subtasks = []model.Subtask{}
		}
	}
	return doc, nil
}

// save writes through a temp file so a crash never leaves a truncated file.
func (s *Store) save(doc document) error {
	doc.Version = 1
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func indexOf(tasks []model.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
