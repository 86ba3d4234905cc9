package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/editor"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/ui"
)

type field int

const (
	fieldTitle field = iota
	fieldDescription
	fieldCompleted
	fieldSubtask
	fieldNewSubtask
)

// taskEditor is the editing core rendered by every surface. Each instance
// owns its inputs; nothing is shared between surfaces except the Channel.
type taskEditor struct {
	session *editor.Session
	theme   ui.Theme

	title       textinput.Model
	description textarea.Model
	newSubtask  textinput.Model
	subInputs   map[string]*textinput.Model

	focus    field
	subIndex int

	// seeds holds the draft text last loaded into each input. The widgets
	// normalize what they are given (tabs become spaces), so an input is only
	// reloaded when its draft moves, and only keys that change the widget's
	// text are copied back into the draft.
	seeds map[string]string
}

const (
	seedTitle       = "title"
	seedDescription = "description"
)

func seedSubtask(id string) string { return "subtask:" + id }

func newTaskEditor(s *editor.Session, theme ui.Theme) *taskEditor {
	e := &taskEditor{
		session:   s,
		theme:     theme,
		subInputs: map[string]*textinput.Model{},
		seeds:     map[string]string{},
	}
	e.title = textinput.New()
	e.title.Prompt = ""
	e.title.Placeholder = "Task name"
	e.title.CharLimit = 0

	e.description = textarea.New()
	e.description.Placeholder = "Description (markdown)"
	e.description.ShowLineNumbers = false
	e.description.CharLimit = 0
	e.description.MaxHeight = 0
	e.description.SetHeight(4)

	e.newSubtask = textinput.New()
	e.newSubtask.Prompt = "+ "
	e.newSubtask.Placeholder = "Add subtask"
	e.newSubtask.CharLimit = 0
	return e
}

// open seeds the editor from t and focuses the title.
func (e *taskEditor) open(t model.Task) tea.Cmd {
	e.session.Apply(editor.Opened{Task: &t})
	e.newSubtask.SetValue("")
	e.focus = fieldTitle
	e.subIndex = 0
	e.syncInputs()
	return e.focusInput()
}

func (e *taskEditor) apply(ev editor.Event) {
	e.session.Apply(ev)
	e.syncInputs()
}

func (e *taskEditor) writeFailed(res editor.WriteResult) {
	e.session.WriteFailed(res)
	e.syncInputs()
}

// writeSucceeded drops a stale failure once a later write for the open task
// lands.
func (e *taskEditor) writeSucceeded(taskID string) {
	if e.session.TaskID() == taskID {
		e.session.ClearErr()
	}
}

func (e *taskEditor) setWidth(w int) {
	if w < 10 {
		w = 10
	}
	e.title.Width = w
	e.description.SetWidth(w)
	e.newSubtask.Width = w - 2
	for _, in := range e.subInputs {
		in.Width = w - 4
	}
}

// syncInputs loads session drafts into inputs whose draft changed since the
// last load, and keeps one input per subtask.
func (e *taskEditor) syncInputs() {
	e.load(seedTitle, e.session.Title().Value(), e.title.SetValue)
	e.load(seedDescription, e.session.Description().Value(), e.description.SetValue)

	subs := e.session.Subtasks()
	keep := make(map[string]*textinput.Model, len(subs))
	for _, st := range subs {
		in, ok := e.subInputs[st.ID]
		if !ok {
			ti := textinput.New()
			ti.Prompt = ""
			ti.CharLimit = 0
			in = &ti
			delete(e.seeds, seedSubtask(st.ID))
		}
		if d, ok := e.session.SubtaskDraft(st.ID); ok {
			e.load(seedSubtask(st.ID), d.Value(), in.SetValue)
		}
		keep[st.ID] = in
	}
	for id := range e.subInputs {
		if _, ok := keep[id]; !ok {
			delete(e.seeds, seedSubtask(id))
		}
	}
	e.subInputs = keep

	if len(subs) == 0 && e.focus == fieldSubtask {
		e.focus = fieldNewSubtask
	}
	e.subIndex = clampInt(e.subIndex, 0, max(len(subs)-1, 0))
	e.focusInput()
}

func (e *taskEditor) load(key, draft string, set func(string)) {
	if seed, ok := e.seeds[key]; ok && seed == draft {
		return
	}
	set(draft)
	e.seeds[key] = draft
}

// edited reports whether a key changed an input's text, and if so records
// the new text as that input's seed.
func (e *taskEditor) edited(key, before, after string) bool {
	if after == before {
		return false
	}
	e.seeds[key] = after
	return true
}

func (e *taskEditor) focusedSubtask() (model.Subtask, *textinput.Model, bool) {
	subs := e.session.Subtasks()
	if e.focus != fieldSubtask || e.subIndex >= len(subs) {
		return model.Subtask{}, nil, false
	}
	st := subs[e.subIndex]
	in, ok := e.subInputs[st.ID]
	return st, in, ok
}

// focusInput focuses exactly the input for the current field.
func (e *taskEditor) focusInput() tea.Cmd {
	e.title.Blur()
	e.description.Blur()
	e.newSubtask.Blur()
	for _, in := range e.subInputs {
		in.Blur()
	}
	switch e.focus {
	case fieldTitle:
		return e.title.Focus()
	case fieldDescription:
		return e.description.Focus()
	case fieldNewSubtask:
		return e.newSubtask.Focus()
	case fieldSubtask:
		if _, in, ok := e.focusedSubtask(); ok {
			return in.Focus()
		}
	}
	return nil
}

// blur commits the field losing focus.
func (e *taskEditor) blur() {
	switch e.focus {
	case fieldTitle:
		e.session.CommitTitle()
	case fieldDescription:
		e.session.CommitDescription()
	case fieldSubtask:
		if st, _, ok := e.focusedSubtask(); ok {
			e.session.CommitSubtask(st.ID)
		}
	}
}

// move shifts focus by delta through title, description, completion,
// each subtask and the add-subtask row.
func (e *taskEditor) move(delta int) tea.Cmd {
	e.blur()
	e.syncInputs()
	n := len(e.session.Subtasks())
	stops := 4 + n
	pos := e.position()
	pos = ((pos+delta)%stops + stops) % stops
	switch {
	case pos < 3:
		e.focus = field(pos)
	case pos < 3+n:
		e.focus = fieldSubtask
		e.subIndex = pos - 3
	default:
		e.focus = fieldNewSubtask
	}
	return e.focusInput()
}

func (e *taskEditor) position() int {
	switch e.focus {
	case fieldSubtask:
		return 3 + e.subIndex
	case fieldNewSubtask:
		return 3 + len(e.session.Subtasks())
	default:
		return int(e.focus)
	}
}

// dirty reports whether the focused field holds an uncommitted draft.
func (e *taskEditor) dirty() bool {
	switch e.focus {
	case fieldTitle:
		return e.session.Title().Dirty()
	case fieldDescription:
		return e.session.Description().Dirty()
	case fieldSubtask:
		if st, _, ok := e.focusedSubtask(); ok {
			if d, ok := e.session.SubtaskDraft(st.ID); ok {
				return d.Dirty()
			}
		}
	case fieldNewSubtask:
		return e.newSubtask.Value() != ""
	}
	return false
}

// revert discards the focused field's draft.
func (e *taskEditor) revert() {
	switch e.focus {
	case fieldTitle:
		e.session.RevertTitle()
	case fieldDescription:
		e.session.RevertDescription()
	case fieldSubtask:
		if st, _, ok := e.focusedSubtask(); ok {
			e.session.RevertSubtask(st.ID)
		}
	case fieldNewSubtask:
		e.newSubtask.SetValue("")
	}
	e.syncInputs()
}

// update handles a key while the surface is open. esc on a clean field
// reports done so the surface can close.
func (e *taskEditor) update(msg tea.KeyMsg) (cmd tea.Cmd, done bool) {
	if !e.session.Ready() {
		return nil, msg.String() == "esc"
	}
	switch msg.String() {
	case "tab":
		return e.move(1), false
	case "shift+tab":
		return e.move(-1), false
	case "esc":
		if e.dirty() {
			e.revert()
			return nil, false
		}
		return nil, true
	case "ctrl+x":
		e.session.DeleteTask()
		return nil, false
	}

	switch e.focus {
	case fieldTitle:
		if msg.String() == "enter" {
			e.session.CommitTitle()
			e.syncInputs()
			return nil, false
		}
		before := e.title.Value()
		e.title, cmd = e.title.Update(msg)
		if e.edited(seedTitle, before, e.title.Value()) {
			e.session.SetTitle(e.title.Value())
		}

	case fieldDescription:
		if msg.String() == "ctrl+s" {
			e.session.CommitDescription()
			e.syncInputs()
			return nil, false
		}
		before := e.description.Value()
		e.description, cmd = e.description.Update(msg)
		if e.edited(seedDescription, before, e.description.Value()) {
			e.session.SetDescription(e.description.Value())
		}

	case fieldCompleted:
		switch msg.String() {
		case " ", "enter":
			e.session.ToggleCompleted()
		}

	case fieldSubtask:
		st, in, ok := e.focusedSubtask()
		if !ok {
			return nil, false
		}
		switch msg.String() {
		case "enter":
			e.session.CommitSubtask(st.ID)
			e.syncInputs()
			return nil, false
		case "ctrl+t":
			e.session.ToggleSubtask(st.ID)
			e.syncInputs()
			return nil, false
		case "ctrl+d":
			e.session.DeleteSubtask(st.ID)
			e.syncInputs()
			return e.focusInput(), false
		}
		before := in.Value()
		*in, cmd = in.Update(msg)
		if e.edited(seedSubtask(st.ID), before, in.Value()) {
			e.session.SetSubtaskText(st.ID, in.Value())
		}

	case fieldNewSubtask:
		if msg.String() == "enter" {
			if _, ok := e.session.AddSubtask(e.newSubtask.Value()); ok {
				e.newSubtask.SetValue("")
				e.syncInputs()
			}
			return nil, false
		}
		e.newSubtask, cmd = e.newSubtask.Update(msg)
	}
	return cmd, false
}

func (e *taskEditor) view(width int) string {
	t := e.theme
	v, ok := e.session.View()
	if !ok {
		return t.Muted.Render("Nothing selected")
	}
	e.setWidth(width)

	label := func(f field, s string) string {
		if e.focus == f {
			return t.Accent.Render("› " + s)
		}
		return t.Muted.Render("  " + s)
	}

	var b strings.Builder
	b.WriteString(label(fieldTitle, "Name") + "\n")
	b.WriteString("  " + e.title.View() + "\n")
	b.WriteString(label(fieldDescription, "Description") + "\n")
	b.WriteString(e.description.View() + "\n")

	status := t.Pending.Render(t.Box(false) + " open")
	if v.Completed {
		status = t.Success.Render(t.Box(true) + " done")
	}
	b.WriteString(label(fieldCompleted, "Status") + "  " + status + "\n")

	p := editor.Progress(v.Subtasks)
	b.WriteString(label(fieldSubtask, "Subtasks") + "  " + t.Muted.Render(ui.ProgressBar(p.Done, p.Total, 10)) + "\n")
	for i, st := range v.Subtasks {
		in := e.subInputs[st.ID]
		box := t.Muted.Render(t.Box(false))
		if st.Completed {
			box = t.Success.Render(t.Box(true))
		}
		prefix := "  "
		if e.focus == fieldSubtask && e.subIndex == i {
			prefix = t.Selected.Render(">") + " "
		}
		text := st.Text
		if in != nil {
			text = in.View()
		}
		fmt.Fprintf(&b, "%s%s %s\n", prefix, box, text)
	}
	b.WriteString("  " + e.newSubtask.View())

	if err := e.session.Err(); err != nil {
		b.WriteString("\n" + t.Error.Render("save failed: "+err.Error()))
	}
	return b.String()
}
