package tui

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/editor"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
)

// writeDoneMsg carries the outcome of an update or delete back into the
// event loop. task is the authoritative record after a successful update.
type writeDoneMsg struct {
	res  editor.WriteResult
	task model.Task
}

type createdMsg struct {
	task model.Task
	err  error
}

var errQueueFull = errors.New("write queue full")

type job struct {
	create bool
	op     editor.Op
	taskID string
	patch  model.Patch
	name   string
	folder *string
}

// writer is the editing core's Channel and Creator inside the TUI. Calls
// return immediately; one goroutine applies jobs to the store in order, so
// whole-list subtask writes never overtake each other.
type writer struct {
	st      store.Store
	log     *slog.Logger
	jobs    chan job
	results chan tea.Msg

	// folder new tasks are created in; nil is "all tasks".
	folder *string
}

func newWriter(ctx context.Context, st store.Store, log *slog.Logger) *writer {
	w := &writer{
		st:      st,
		log:     log,
		jobs:    make(chan job, 256),
		results: make(chan tea.Msg, 256),
	}
	go w.run(ctx)
	return w
}

func (w *writer) Update(taskID string, changes model.Patch) {
	w.enqueue(job{op: editor.OpUpdate, taskID: taskID, patch: changes})
}

func (w *writer) Delete(taskID string) {
	w.enqueue(job{op: editor.OpDelete, taskID: taskID})
}

func (w *writer) AddTask(name string) {
	var folder *string
	if w.folder != nil {
		f := *w.folder
		folder = &f
	}
	w.enqueue(job{create: true, name: name, folder: folder})
}

func (w *writer) enqueue(j job) {
	select {
	case w.jobs <- j:
	default:
		w.log.Error("write queue full", "task", j.taskID)
		w.results <- w.failure(j, errQueueFull)
	}
}

// next waits for the following write outcome.
func (w *writer) next() tea.Cmd {
	return func() tea.Msg { return <-w.results }
}

func (w *writer) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-w.jobs:
			w.results <- w.apply(ctx, j)
		}
	}
}

func (w *writer) apply(ctx context.Context, j job) tea.Msg {
	if j.create {
		t := model.NewTask(j.name)
		t.FolderID = j.folder
		out, err := w.st.Create(ctx, t)
		if err != nil {
			w.log.Error("create task", "err", err)
		} else {
			w.log.Info("task created", "task", out.ID)
		}
		return createdMsg{task: out, err: err}
	}

	res := editor.WriteResult{TaskID: j.taskID, Op: j.op, Changes: j.patch}
	switch j.op {
	case editor.OpDelete:
		res.Err = w.st.Delete(ctx, j.taskID)
		w.logResult(res)
		return writeDoneMsg{res: res}
	default:
		t, err := w.st.Update(ctx, j.taskID, j.patch)
		res.Err = err
		w.logResult(res)
		return writeDoneMsg{res: res, task: t}
	}
}

func (w *writer) failure(j job, err error) tea.Msg {
	if j.create {
		return createdMsg{err: err}
	}
	return writeDoneMsg{res: editor.WriteResult{TaskID: j.taskID, Op: j.op, Changes: j.patch, Err: err}}
}

func (w *writer) logResult(res editor.WriteResult) {
	if res.Err != nil {
		w.log.Error("write failed", "task", res.TaskID, "op", res.Op.String(), "fields", res.Changes.Fields(), "err", res.Err)
		return
	}
	w.log.Info("write", "task", res.TaskID, "op", res.Op.String(), "fields", res.Changes.Fields())
}

var (
	_ editor.Channel = (*writer)(nil)
	_ editor.Creator = (*writer)(nil)
)
