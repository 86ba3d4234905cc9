package editor

import (
	"log/slog"
	"strings"

	"github.com/Makepad-fr/tada/internal/model"
)

// Session reconciles the authoritative record of one open task with the
// local drafts edited on a surface. Every write it issues carries only the
// field it changed.
type Session struct {
	ch      Channel
	onClose func()
	newID   func() string
	log     *slog.Logger

	task *model.Task // authoritative; nil when nothing is open

	title       Draft
	description Draft
	completed   Toggle
	subtasks    []model.Subtask
	subDrafts   map[string]*Draft

	err error
}

// Option configures a Session.
type Option func(*Session)

// WithCloseFunc is called after the open task is deleted or removed.
func WithCloseFunc(fn func()) Option {
	return func(s *Session) { s.onClose = fn }
}

// WithIDFunc overrides subtask identity generation.
func WithIDFunc(fn func() string) Option {
	return func(s *Session) { s.newID = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

func NewSession(ch Channel, opts ...Option) *Session {
	s := &Session{
		ch:        ch,
		newID:     model.NewID,
		log:       slog.Default(),
		subDrafts: map[string]*Draft{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Apply handles a record-delivery event.
func (s *Session) Apply(ev Event) {
	switch ev := ev.(type) {
	case Opened:
		if ev.Task == nil || strings.TrimSpace(ev.Task.ID) == "" {
			s.reset()
			return
		}
		if s.task != nil && s.task.ID == ev.Task.ID {
			s.refresh(*ev.Task)
			return
		}
		s.seed(*ev.Task)
	case Updated:
		if s.task == nil || s.task.ID != ev.Task.ID {
			return
		}
		s.refresh(ev.Task)
	case Removed:
		if s.task == nil || s.task.ID != ev.TaskID {
			return
		}
		s.reset()
		s.close()
	case Closed:
		s.reset()
	}
}

// Ready reports whether a task with an identity is open. Every mutating
// method is a no-op otherwise.
func (s *Session) Ready() bool { return s.task != nil && s.task.ID != "" }

// TaskID returns the open task's identity, or "".
func (s *Session) TaskID() string {
	if s.task == nil {
		return ""
	}
	return s.task.ID
}

// View returns the record as the surface should display it: authoritative
// fields overlaid with drafts and optimistic local state.
func (s *Session) View() (model.Task, bool) {
	if s.task == nil {
		return model.Task{}, false
	}
	out := s.task.Clone()
	out.Name = s.title.Value()
	out.Description = s.description.Value()
	out.Completed = s.completed.Value()
	out.Subtasks = model.CloneSubtasks(s.subtasks)
	return out, true
}

// Err returns the last write failure reported for the open task.
func (s *Session) Err() error { return s.err }

// ClearErr forgets the last write failure.
func (s *Session) ClearErr() { s.err = nil }

func (s *Session) Title() *Draft       { return &s.title }
func (s *Session) Description() *Draft { return &s.description }

// SetTitle, SetDescription and SetSubtaskText only touch drafts.
func (s *Session) SetTitle(v string) { s.title.Set(v) }

func (s *Session) SetDescription(v string) { s.description.Set(v) }

func (s *Session) SetSubtaskText(id, v string) {
	if d, ok := s.subDrafts[id]; ok {
		d.Set(v)
	}
}

func (s *Session) RevertTitle()       { s.title.Revert() }
func (s *Session) RevertDescription() { s.description.Revert() }

func (s *Session) RevertSubtask(id string) {
	if d, ok := s.subDrafts[id]; ok {
		d.Revert()
	}
}

// CommitTitle pushes the trimmed title when it differs from the
// authoritative name. An empty title is rejected and the draft reverts.
func (s *Session) CommitTitle() bool {
	if !s.Ready() {
		return false
	}
	v, changed := s.title.Commit()
	if v == "" {
		s.title.Revert()
		return false
	}
	if !changed {
		return false
	}
	s.update(model.NamePatch(v))
	return true
}

// CommitDescription pushes the trimmed description; empty is allowed.
func (s *Session) CommitDescription() bool {
	if !s.Ready() {
		return false
	}
	v, changed := s.description.Commit()
	if !changed {
		return false
	}
	s.update(model.DescriptionPatch(v))
	return true
}

// SubtaskDraft returns the text draft of the subtask with id.
func (s *Session) SubtaskDraft(id string) (*Draft, bool) {
	d, ok := s.subDrafts[id]
	return d, ok
}

// Subtasks returns the locally held sequence, including optimistic changes.
func (s *Session) Subtasks() []model.Subtask { return model.CloneSubtasks(s.subtasks) }

// Progress is derived from the local sequence.
func (s *Session) Progress() model.Progress { return Progress(s.subtasks) }

// CommitSubtask commits the text draft of one subtask. Text that trims to
// empty deletes the subtask.
func (s *Session) CommitSubtask(id string) bool {
	if !s.Ready() {
		return false
	}
	d, ok := s.subDrafts[id]
	if !ok {
		return false
	}
	v, changed := d.Commit()
	if v == "" {
		return s.DeleteSubtask(id)
	}
	if !changed {
		return false
	}
	return s.UpdateSubtask(id, model.SubtaskChanges{Text: &v})
}

// AddSubtask appends a subtask; empty text is a no-op.
func (s *Session) AddSubtask(text string) (model.Subtask, bool) {
	if !s.Ready() {
		return model.Subtask{}, false
	}
	next, ok := AddSubtask(s.subtasks, text, s.newID)
	if !ok {
		return model.Subtask{}, false
	}
	added := next[len(next)-1]
	s.writeSubtasks(next)
	return added, true
}

// UpdateSubtask merges changes into one entry. A text change that trims to
// empty is routed to DeleteSubtask.
func (s *Session) UpdateSubtask(id string, changes model.SubtaskChanges) bool {
	if !s.Ready() {
		return false
	}
	if changes.Text != nil {
		t := strings.TrimSpace(*changes.Text)
		if t == "" {
			return s.DeleteSubtask(id)
		}
		changes.Text = &t
	}
	next, ok := UpdateSubtask(s.subtasks, id, changes)
	if !ok {
		return false
	}
	s.writeSubtasks(next)
	return true
}

// ToggleSubtask flips one subtask's completion.
func (s *Session) ToggleSubtask(id string) bool {
	idx := indexOfSubtask(s.subtasks, id)
	if idx < 0 {
		return false
	}
	done := !s.subtasks[idx].Completed
	return s.UpdateSubtask(id, model.SubtaskChanges{Completed: &done})
}

// DeleteSubtask removes one entry; unknown ids are a no-op.
func (s *Session) DeleteSubtask(id string) bool {
	if !s.Ready() {
		return false
	}
	next, ok := DeleteSubtask(s.subtasks, id)
	if !ok {
		return false
	}
	s.writeSubtasks(next)
	return true
}

// Completed returns the locally observed completion.
func (s *Session) Completed() bool { return s.completed.Value() }

// ToggleCompleted flips completion locally, then issues the write.
func (s *Session) ToggleCompleted() bool {
	if !s.Ready() {
		return false
	}
	v := s.completed.Flip()
	s.update(model.CompletedPatch(v))
	return true
}

// DeleteTask removes the open task and closes the hosting surface.
func (s *Session) DeleteTask() bool {
	if !s.Ready() {
		return false
	}
	id := s.task.ID
	s.log.Debug("delete task", "task", id)
	s.ch.Delete(id)
	s.reset()
	s.close()
	return true
}

// WriteFailed reverts the optimistic state of the fields a failed write
// carried back to the authoritative record.
func (s *Session) WriteFailed(res WriteResult) {
	if res.Err == nil || s.task == nil || s.task.ID != res.TaskID {
		return
	}
	s.err = res.Err
	s.log.Warn("write failed; reverting", "task", res.TaskID, "op", res.Op.String(), "fields", res.Changes.Fields(), "err", res.Err)
	if res.Op != OpUpdate {
		return
	}
	c := res.Changes
	if c.Name != nil && s.title.Value() == *c.Name {
		s.title.Revert()
	}
	if c.Description != nil && s.description.Value() == *c.Description {
		s.description.Revert()
	}
	if c.Completed != nil {
		s.completed.Seed(s.task.Completed)
	}
	if c.Subtasks != nil {
		s.subtasks = model.CloneSubtasks(s.task.Subtasks)
		s.syncSubtaskDrafts(true)
	}
}

func (s *Session) update(p model.Patch) {
	s.log.Debug("commit", "task", s.task.ID, "fields", p.Fields())
	s.ch.Update(s.task.ID, p)
}

// writeSubtasks applies next locally so that the following mutation reads
// it, then pushes the whole sequence.
func (s *Session) writeSubtasks(next []model.Subtask) {
	s.subtasks = model.CloneSubtasks(next)
	s.syncSubtaskDrafts(false)
	s.update(model.SubtasksPatch(next))
}

func (s *Session) seed(t model.Task) {
	c := t.Clone()
	s.task = &c
	s.err = nil
	s.title.Seed(c.Name)
	s.description.Seed(c.Description)
	s.completed.Seed(c.Completed)
	s.subtasks = model.CloneSubtasks(c.Subtasks)
	s.subDrafts = map[string]*Draft{}
	s.syncSubtaskDrafts(true)
}

// refresh takes a new authoritative copy of the open task. Clean drafts
// follow it; drafts the user is still editing keep their text.
func (s *Session) refresh(t model.Task) {
	c := t.Clone()
	s.task = &c
	reseed := func(d *Draft, v string) {
		if d.Dirty() {
			d.Rebase(v)
			return
		}
		d.Seed(v)
	}
	reseed(&s.title, c.Name)
	reseed(&s.description, c.Description)
	s.completed.Seed(c.Completed)
	s.subtasks = model.CloneSubtasks(c.Subtasks)
	s.syncSubtaskDrafts(false)
}

// syncSubtaskDrafts keeps one draft per subtask in the local sequence.
func (s *Session) syncSubtaskDrafts(force bool) {
	keep := make(map[string]*Draft, len(s.subtasks))
	for _, st := range s.subtasks {
		d, ok := s.subDrafts[st.ID]
		switch {
		case !ok:
			d = &Draft{}
			d.Seed(st.Text)
		case force || !d.Dirty():
			d.Seed(st.Text)
		default:
			d.Rebase(st.Text)
		}
		keep[st.ID] = d
	}
	s.subDrafts = keep
}

func (s *Session) reset() {
	s.task = nil
	s.err = nil
	s.title = Draft{}
	s.description = Draft{}
	s.completed = Toggle{}
	s.subtasks = nil
	s.subDrafts = map[string]*Draft{}
}

func (s *Session) close() {
	if s.onClose != nil {
		s.onClose()
	}
}
