package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Makepad-fr/tada/internal/editor"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
)

// syncChannel applies editor writes to the store immediately and feeds the
// stored record back into the session, so several commits in one command
// build on each other.
type syncChannel struct {
	ctx     context.Context
	st      store.Store
	session *editor.Session
	folder  *string

	created *model.Task
	err     error
}

func (c *syncChannel) Update(taskID string, changes model.Patch) {
	if c.err != nil {
		return
	}
	t, err := c.st.Update(c.ctx, taskID, changes)
	if err != nil {
		c.err = err
		if c.session != nil {
			c.session.WriteFailed(editor.WriteResult{TaskID: taskID, Op: editor.OpUpdate, Changes: changes, Err: err})
		}
		return
	}
	if c.session != nil {
		c.session.Apply(editor.Updated{Task: t})
	}
}

func (c *syncChannel) Delete(taskID string) {
	if c.err != nil {
		return
	}
	c.err = c.st.Delete(c.ctx, taskID)
}

func (c *syncChannel) AddTask(name string) {
	if c.err != nil {
		return
	}
	t := model.NewTask(name)
	t.FolderID = c.folder
	out, err := c.st.Create(c.ctx, t)
	if err != nil {
		c.err = err
		return
	}
	c.created = &out
}

// openSession resolves ref and opens it on a session wired to the store.
func openSession(ctx context.Context, st store.Store, ref string) (*editor.Session, *syncChannel, error) {
	t, err := resolveTask(ctx, st, ref)
	if err != nil {
		return nil, nil, err
	}
	ch := &syncChannel{ctx: ctx, st: st}
	s := editor.NewSession(ch)
	ch.session = s
	s.Apply(editor.Opened{Task: &t})
	return s, ch, nil
}

// resolveTask accepts a 1-based index into `tada ls`, a full id, or a
// unique id prefix.
func resolveTask(ctx context.Context, st store.Store, ref string) (model.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Task{}, usagef("empty task reference")
	}
	tasks, err := st.List(ctx, nil)
	if err != nil {
		return model.Task{}, fmt.Errorf("load: %w", err)
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(tasks) {
			return model.Task{}, usagef("index out of range: have %d, got %d (run `tada ls` to see valid indexes)", len(tasks), n)
		}
		return tasks[n-1], nil
	}
	var match []model.Task
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			match = append(match, t)
		}
	}
	switch len(match) {
	case 0:
		return model.Task{}, store.TaskNotFound(ref)
	case 1:
		return match[0], nil
	}
	return model.Task{}, usagef("ambiguous task id prefix %q matches %d tasks", ref, len(match))
}

// resolveSubtask accepts a 1-based index or a subtask id.
func resolveSubtask(t model.Task, ref string) (model.Subtask, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(t.Subtasks) {
			return model.Subtask{}, usagef("subtask index out of range: have %d, got %d", len(t.Subtasks), n)
		}
		return t.Subtasks[n-1], nil
	}
	for _, s := range t.Subtasks {
		if s.ID == ref {
			return s, nil
		}
	}
	return model.Subtask{}, store.NotFoundError{Kind: "subtask", ID: ref}
}

// resolveFolder accepts a folder id or a case-insensitive name. An empty
// ref means all tasks.
func resolveFolder(ctx context.Context, st store.Store, ref string) (*string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}
	folders, err := st.Folders(ctx)
	if err != nil {
		return nil, fmt.Errorf("folders: %w", err)
	}
	for _, f := range folders {
		if f.ID == ref || strings.EqualFold(f.Name, ref) {
			id := f.ID
			return &id, nil
		}
	}
	return nil, store.FolderNotFound(ref)
}
