package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Makepad-fr/tada/internal/model"
)

// Store is the document-style data layer every backend implements. It owns
// the single authoritative copy of each task.
type Store interface {
	// List returns the tasks in creation order; a nil folderID returns all.
	List(ctx context.Context, folderID *string) ([]model.Task, error)
	Get(ctx context.Context, id string) (model.Task, error)
	Create(ctx context.Context, t model.Task) (model.Task, error)
	// Update shallow-merges changes onto the stored task and returns it.
	Update(ctx context.Context, id string, changes model.Patch) (model.Task, error)
	Delete(ctx context.Context, id string) error

	Folders(ctx context.Context) ([]model.Folder, error)
	CreateFolder(ctx context.Context, name string) (model.Folder, error)

	Close() error
}

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
)

// NotFoundError matches ErrNotFound with errors.Is.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e NotFoundError) Is(target error) bool { return target == ErrNotFound }

func TaskNotFound(id string) error { return NotFoundError{Kind: "task", ID: id} }

func FolderNotFound(id string) error { return NotFoundError{Kind: "folder", ID: id} }

// TaskExists is returned by Create for an id already in use.
func TaskExists(id string) error { return invalidf("task %s already exists", id) }

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// PrepareNew fills defaults on a task about to be created.
func PrepareNew(t model.Task) (model.Task, error) {
	t = t.Clone()
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return model.Task{}, invalidf("task name is empty")
	}
	if t.ID == "" {
		t.ID = model.NewID()
	}
	if t.Subtasks == nil {
		t.Subtasks = []model.Subtask{}
	}
	if err := validateSubtasks(t.Subtasks); err != nil {
		return model.Task{}, err
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	return t, nil
}

// ValidatePatch rejects patches that would break record invariants: an
// empty name, blank subtask text, or duplicate subtask identities.
func ValidatePatch(p model.Patch) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return invalidf("task name is empty")
	}
	if p.Subtasks != nil {
		return validateSubtasks(*p.Subtasks)
	}
	return nil
}

// ApplyPatch validates p and returns t with p merged and UpdatedAt stamped.
func ApplyPatch(t model.Task, p model.Patch) (model.Task, error) {
	if err := ValidatePatch(p); err != nil {
		return model.Task{}, err
	}
	out := t.Clone()
	p.ApplyTo(&out)
	if out.Subtasks == nil {
		out.Subtasks = []model.Subtask{}
	}
	out.UpdatedAt = time.Now().UTC()
	return out, nil
}

// NewFolder returns a folder with a fresh identity.
func NewFolder(name string) (model.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Folder{}, invalidf("folder name is empty")
	}
	return model.Folder{ID: model.NewID(), Name: name}, nil
}

func validateSubtasks(seq []model.Subtask) error {
	seen := make(map[string]bool, len(seq))
	for _, s := range seq {
		if s.ID == "" {
			return invalidf("subtask without id")
		}
		if seen[s.ID] {
			return invalidf("duplicate subtask id %s", s.ID)
		}
		seen[s.ID] = true
		if strings.TrimSpace(s.Text) == "" {
			return invalidf("subtask %s has empty text", s.ID)
		}
	}
	return nil
}

// FilterFolder keeps the tasks in folderID; nil keeps everything.
func FilterFolder(tasks []model.Task, folderID *string) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.InFolder(folderID) {
			out = append(out, t.Clone())
		}
	}
	return out
}
