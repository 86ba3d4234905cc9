package model

import "time"

// Task is the domain model for a todo entry.
// The data layer owns the authoritative copy; every surface only holds
// drafts derived from it.
type Task struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`

	// ParentTaskID is a back-reference, not ownership.
	ParentTaskID *string `json:"parentTaskId,omitempty"`
	FolderID     *string `json:"folderId,omitempty"`

	// Subtasks keep insertion order.
	Subtasks []Subtask `json:"subtasks"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Subtask is a checklist entry owned by a single task.
type Subtask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// NewTask returns a task with default field values and a fresh identity.
func NewTask(name string) Task {
	now := time.Now().UTC()
	return Task{
		ID:          NewID(),
		Name:        name,
		Description: "",
		Completed:   false,
		Subtasks:    []Subtask{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone returns a copy that shares no slices or pointers with t.
func (t Task) Clone() Task {
	out := t
	out.Subtasks = CloneSubtasks(t.Subtasks)
	if t.ParentTaskID != nil {
		v := *t.ParentTaskID
		out.ParentTaskID = &v
	}
	if t.FolderID != nil {
		v := *t.FolderID
		out.FolderID = &v
	}
	return out
}

// InFolder reports whether t belongs to folderID; nil means "all tasks".
func (t Task) InFolder(folderID *string) bool {
	if folderID == nil {
		return true
	}
	return t.FolderID != nil && *t.FolderID == *folderID
}

// Progress is derived from the subtask sequence on every call.
func (t Task) Progress() Progress {
	p := Progress{Total: len(t.Subtasks)}
	for _, s := range t.Subtasks {
		if s.Completed {
			p.Done++
		}
	}
	return p
}

// CloneSubtasks copies s, mapping nil to an empty sequence.
func CloneSubtasks(s []Subtask) []Subtask {
	out := make([]Subtask, len(s))
	copy(out, s)
	return out
}

// Progress is the completed/total count of a subtask sequence.
type Progress struct {
	Done  int
	Total int
}

// Fraction returns Done/Total, or 0 for an empty sequence.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Done) / float64(p.Total)
}
