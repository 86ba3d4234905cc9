package tui

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"

	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/ui"
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	mm, ok := next.(Model)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return mm
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		m = step(t, m, k)
	}
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = step(t, m, runes(string(r)))
	}
	return m
}

// settle feeds one finished write back into the model.
func settle(t *testing.T, m Model) Model {
	t.Helper()
	return step(t, m, m.w.next()())
}

func newModel(t *testing.T, st store.Store, surface string) Model {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	m := New(Options{Store: st, Surface: surface, Log: logging.Discard(), Context: ctx, Theme: ui.NewTheme("mono", "")})
	return step(t, m, m.load()())
}

func seeded(t *testing.T, names ...string) *store.Memory {
	t.Helper()
	mem := store.NewMemory()
	for _, n := range names {
		if _, err := mem.Create(context.Background(), model.NewTask(n)); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return mem
}

func storedNames(t *testing.T, st store.Store) []string {
	t.Helper()
	tasks, err := st.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var out []string
	for _, tk := range tasks {
		out = append(out, tk.Name)
	}
	return out
}

func TestTitleEdit_CommitsOnEnter(t *testing.T) {
	mem := seeded(t, "Buy milk")
	m := newModel(t, mem, "panel")

	m = press(t, m, keyEnter)
	if !m.surface().open {
		t.Fatalf("expected surface to open")
	}
	m = typeText(t, m, " today")
	m = press(t, m, keyEnter)
	m = settle(t, m)

	if got := storedNames(t, mem); len(got) != 1 || got[0] != "Buy milk today" {
		t.Fatalf("unexpected stored names %v", got)
	}
	if m.tasks[0].Name != "Buy milk today" {
		t.Fatalf("list should hold the stored record, got %q", m.tasks[0].Name)
	}
}

func TestTitleEdit_EscRevertsThenCloses(t *testing.T) {
	mem := seeded(t, "Buy milk")
	m := newModel(t, mem, "inline")

	m = press(t, m, keyEnter)
	m = typeText(t, m, "!!!")
	m = press(t, m, keyEsc)
	e := m.surface().editor
	if e.title.Value() != "Buy milk" || e.session.Title().Dirty() {
		t.Fatalf("esc should revert the title, got %q", e.title.Value())
	}
	if !m.surface().open {
		t.Fatalf("first esc only reverts")
	}
	m = press(t, m, keyEsc)
	if m.surface().open {
		t.Fatalf("second esc should close the surface")
	}
}

func TestBlur_CommitsDescription(t *testing.T) {
	mem := seeded(t, "Write report")
	m := newModel(t, mem, "drawer")

	m = press(t, m, keyEnter, keyTab)
	m = typeText(t, m, "quarterly")
	m = press(t, m, keyTab) // leave the description
	m = settle(t, m)

	tasks, _ := mem.List(context.Background(), nil)
	if tasks[0].Description != "quarterly" {
		t.Fatalf("expected description committed on blur, got %q", tasks[0].Description)
	}
	if m.surface().editor.focus != fieldCompleted {
		t.Fatalf("expected focus on status, got %v", m.surface().editor.focus)
	}
}

func TestSubtasks_AddToggleAndDeleteByEmptyText(t *testing.T) {
	mem := seeded(t, "Groceries")
	m := newModel(t, mem, "panel")

	// title -> description -> status -> add-subtask row
	m = press(t, m, keyEnter, keyTab, keyTab, keyTab)
	m = typeText(t, m, "buy milk")
	m = press(t, m, keyEnter)
	m = settle(t, m)

	tasks, _ := mem.List(context.Background(), nil)
	if len(tasks[0].Subtasks) != 1 || tasks[0].Subtasks[0].Text != "buy milk" || tasks[0].Subtasks[0].Completed {
		t.Fatalf("unexpected subtasks %+v", tasks[0].Subtasks)
	}

	// shift back onto the subtask row and toggle it
	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab}, tea.KeyMsg{Type: tea.KeyCtrlT})
	m = settle(t, m)
	tasks, _ = mem.List(context.Background(), nil)
	if !tasks[0].Subtasks[0].Completed {
		t.Fatalf("expected subtask toggled")
	}

	// clearing the text and committing deletes it
	for range "buy milk" {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	m = press(t, m, keyEnter)
	m = settle(t, m)
	tasks, _ = mem.List(context.Background(), nil)
	if len(tasks[0].Subtasks) != 0 {
		t.Fatalf("expected subtask removed, got %+v", tasks[0].Subtasks)
	}
}

func TestList_ToggleAndDelete(t *testing.T) {
	mem := seeded(t, "A", "B")
	m := newModel(t, mem, "panel")

	m = press(t, m, keySpace)
	if it := m.list.Items()[0].(taskItem); !it.task.Completed {
		t.Fatalf("toggle should show immediately")
	}
	m = settle(t, m)
	tasks, _ := mem.List(context.Background(), nil)
	if !tasks[0].Completed {
		t.Fatalf("expected completion stored")
	}

	m = press(t, m, runes("d"))
	if len(m.list.Items()) != 1 {
		t.Fatalf("expected row removed")
	}
	m = settle(t, m)
	if got := storedNames(t, mem); len(got) != 1 || got[0] != "B" {
		t.Fatalf("unexpected stored names %v", got)
	}
}

func TestNewTask_WhitespaceRejectedThenCreated(t *testing.T) {
	mem := seeded(t, "A")
	m := newModel(t, mem, "drawer")

	m = press(t, m, runes("n"))
	m = typeText(t, m, "   ")
	m = press(t, m, keyEnter)
	if !m.surface().open || !m.surface().composing {
		t.Fatalf("whitespace name must not close the form")
	}
	if got := storedNames(t, mem); len(got) != 1 {
		t.Fatalf("nothing should be created, got %v", got)
	}

	m = typeText(t, m, "Call dentist")
	m = press(t, m, keyEnter)
	if m.surface().open {
		t.Fatalf("submit should close the surface")
	}
	if m.surface().compose.composer.Value() != "" {
		t.Fatalf("composer should reset")
	}
	m = settle(t, m)
	if got := storedNames(t, mem); len(got) != 2 || got[1] != "Call dentist" {
		t.Fatalf("unexpected stored names %v", got)
	}
	if len(m.tasks) != 2 {
		t.Fatalf("created task should be listed")
	}
}

func TestNewTask_EscCancels(t *testing.T) {
	mem := seeded(t)
	m := newModel(t, mem, "inline")
	m = press(t, m, runes("n"))
	m = typeText(t, m, "half typed")
	m = press(t, m, keyEsc)
	if m.surface().open {
		t.Fatalf("esc should close the form")
	}
	m = press(t, m, runes("n"))
	if v := m.surface().compose.input.Value(); v != "" {
		t.Fatalf("cancel should discard the name, got %q", v)
	}
}

type failingStore struct {
	*store.Memory
}

func (f failingStore) Update(ctx context.Context, id string, p model.Patch) (model.Task, error) {
	return model.Task{}, errors.New("backend down")
}

func TestCursorKeys_NeverRewriteStoredText(t *testing.T) {
	long := strings.Repeat("n", 250)
	desc := "code:\n\tindented"
	task := model.NewTask(long)
	task.Description = desc
	mem := store.NewMemory(task)
	m := newModel(t, mem, "panel")

	keyLeft := tea.KeyMsg{Type: tea.KeyLeft}
	m = press(t, m, keyEnter, keyLeft, keyTab, keyLeft, keyTab)
	e := m.surface().editor
	if e.session.Title().Dirty() || e.session.Description().Dirty() {
		t.Fatalf("moving the cursor must not dirty a draft")
	}

	// Toggle completion so the writer has exactly one known job; any
	// spurious title or description write would come out first.
	m = press(t, m, keySpace)
	msg := m.w.next()()
	done, ok := msg.(writeDoneMsg)
	if !ok {
		t.Fatalf("unexpected message %T", msg)
	}
	if got := strings.Join(done.res.Changes.Fields(), ","); got != "completed" {
		t.Fatalf("expected only the completion write, got %q", got)
	}
	m = step(t, m, msg)

	stored, err := mem.Get(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Name != long || stored.Description != desc {
		t.Fatalf("stored text changed: name %d chars, description %q", len(stored.Name), stored.Description)
	}
}

func TestTyping_StillCommitsEdits(t *testing.T) {
	task := model.NewTask(strings.Repeat("n", 250))
	mem := store.NewMemory(task)
	m := newModel(t, mem, "inline")

	m = press(t, m, keyEnter)
	m = typeText(t, m, "!")
	m = press(t, m, keyEnter)
	m = settle(t, m)

	stored, _ := mem.Get(context.Background(), task.ID)
	if stored.Name != task.Name+"!" {
		t.Fatalf("expected the typed character appended, got %d chars", len(stored.Name))
	}
}

func TestWriteFailure_RevertsOptimisticToggle(t *testing.T) {
	st := failingStore{Memory: seeded(t, "A")}
	m := newModel(t, st, "panel")

	m = press(t, m, keyEnter, keyTab, keyTab, keySpace)
	e := m.surface().editor
	if !e.session.Completed() {
		t.Fatalf("toggle should flip locally first")
	}
	m = settle(t, m)
	if e.session.Completed() {
		t.Fatalf("failed write should revert the toggle")
	}
	if !strings.Contains(m.status, "backend down") {
		t.Fatalf("expected failure in status, got %q", m.status)
	}
	if e.session.Err() == nil {
		t.Fatalf("session should keep the failure")
	}
}

// failOnce fails the first Update and passes the rest through.
type failOnce struct {
	*store.Memory
	failed *atomic.Bool
}

func (f failOnce) Update(ctx context.Context, id string, p model.Patch) (model.Task, error) {
	if f.failed.CompareAndSwap(false, true) {
		return model.Task{}, errors.New("backend down")
	}
	return f.Memory.Update(ctx, id, p)
}

func TestWriteFailure_ClearedByLaterSave(t *testing.T) {
	st := failOnce{Memory: seeded(t, "A"), failed: &atomic.Bool{}}
	m := newModel(t, st, "panel")

	m = press(t, m, keyEnter, keyTab, keyTab, keySpace)
	m = settle(t, m)
	e := m.surface().editor
	if e.session.Err() == nil || !strings.Contains(e.view(60), "save failed") {
		t.Fatalf("expected the failure shown")
	}

	m = press(t, m, keySpace)
	m = settle(t, m)
	if e.session.Err() != nil || strings.Contains(e.view(60), "save failed") {
		t.Fatalf("a successful save should clear the failure, got %v", e.session.Err())
	}
	if !e.session.Completed() || m.status != "" {
		t.Fatalf("expected the retried toggle to stick, status %q", m.status)
	}
}

func TestFeed_LocalWritesArriveOnce(t *testing.T) {
	feed := store.NewFeed(seeded(t, "Groceries"), logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := New(Options{Store: feed, Feed: feed, Surface: "panel", Log: logging.Discard(), Context: ctx})
	defer m.Close()
	m = step(t, m, m.load()())

	m = press(t, m, keyEnter, keyTab, keyTab, keyTab)
	m = typeText(t, m, "bread")
	m = press(t, m, keyEnter)
	m = typeText(t, m, "milk")
	m = press(t, m, keyEnter)

	first, second := m.w.next()(), m.w.next()()
	c1, c2 := waitForChange(m.changes)(), waitForChange(m.changes)()

	// Changes land first; the older write result must not roll them back.
	for _, msg := range []tea.Msg{c1, c2, first, second} {
		m = step(t, m, msg)
	}
	if n := len(m.tasks[0].Subtasks); n != 2 {
		t.Fatalf("list rolled back to %d subtasks", n)
	}
	if n := len(m.surface().editor.session.Subtasks()); n != 2 {
		t.Fatalf("session rolled back to %d subtasks", n)
	}
}

func TestFeedChange_ReseedsCleanTitle(t *testing.T) {
	feed := store.NewFeed(seeded(t, "Old name"), logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := New(Options{Store: feed, Feed: feed, Surface: "panel", Log: logging.Discard(), Context: ctx})
	defer m.Close()
	m = step(t, m, m.load()())

	m = press(t, m, keyEnter)
	id := m.tasks[0].ID
	if _, err := feed.Update(ctx, id, model.NamePatch("New name")); err != nil {
		t.Fatalf("Update: %v", err)
	}
	m = step(t, m, waitForChange(m.changes)())

	if got := m.surface().editor.title.Value(); got != "New name" {
		t.Fatalf("clean title should follow the record, got %q", got)
	}
}

func TestFeedChange_RemovedClosesSurface(t *testing.T) {
	feed := store.NewFeed(seeded(t, "Doomed"), logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := New(Options{Store: feed, Feed: feed, Surface: "drawer", Log: logging.Discard(), Context: ctx})
	defer m.Close()
	m = step(t, m, m.load()())
	m = press(t, m, keyEnter)

	if err := feed.Delete(ctx, m.tasks[0].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	m = step(t, m, waitForChange(m.changes)())
	if m.surface().open || len(m.tasks) != 0 {
		t.Fatalf("removed task should close the surface and leave the list")
	}
}

func TestSwitchingTask_NeverLeaksDraft(t *testing.T) {
	mem := seeded(t, "Draft A", "Draft B")
	m := newModel(t, mem, "panel")

	m = press(t, m, keyEnter)
	m = typeText(t, m, " edited")
	b, _ := m.find(m.tasks[1].ID)
	m.surface().openTask(b)

	if got := m.surface().editor.title.Value(); got != "Draft B" {
		t.Fatalf("expected B's name, got %q", got)
	}
	if got := storedNames(t, mem); got[0] != "Draft A" {
		t.Fatalf("abandoned draft must not be written, got %v", got)
	}
}

func TestSurfaces_RenderTheSameCore(t *testing.T) {
	for _, kind := range []string{"inline", "drawer", "panel"} {
		mem := seeded(t, "Shared task")
		m := newModel(t, mem, kind)
		m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
		m = press(t, m, keyEnter)
		out := xansi.Strip(m.View())
		if !strings.Contains(out, "Shared task") || !strings.Contains(out, "Subtasks") {
			t.Fatalf("%s: expected editor content:\n%s", kind, out)
		}
		if m.active.String() != kind {
			t.Fatalf("expected %s surface, got %s", kind, m.active)
		}
	}
}

func TestFolderCycle_NewTasksLandInFolder(t *testing.T) {
	mem := seeded(t, "loose")
	f, _ := mem.CreateFolder(context.Background(), "work")
	m := newModel(t, mem, "panel")

	m = press(t, m, runes("f"))
	m = step(t, m, m.load()())
	if len(m.tasks) != 0 || m.folderName() != "Work" {
		t.Fatalf("expected empty Work folder, got %d tasks in %q", len(m.tasks), m.folderName())
	}
	m = press(t, m, runes("n"))
	m = typeText(t, m, "in folder")
	m = press(t, m, keyEnter)
	m = settle(t, m)

	tasks, _ := mem.List(context.Background(), &f.ID)
	if len(tasks) != 1 || tasks[0].Name != "in folder" {
		t.Fatalf("expected task created in folder, got %+v", tasks)
	}
}

func TestNormalizePane(t *testing.T) {
	out := normalizePane("abcdef\nxy", 4, 3)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "abc…" || lines[1] != "xy  " || lines[2] != "    " {
		t.Fatalf("unexpected pane %q", lines)
	}
}
