// Package tui is the interactive task list. Every edit goes through the
// editor package; the list only renders authoritative records.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/editor"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/ui"
)

type Options struct {
	Store store.Store
	// Feed, when set, delivers every change to the store, this program's
	// own writes included. Write results then only report failures.
	Feed    *store.Feed
	Surface string
	Theme   ui.Theme
	Log     *slog.Logger
	Context context.Context
}

type loadedMsg struct {
	tasks   []model.Task
	folders []model.Folder
	err     error
}

type changeMsg struct {
	change store.Change
}

type Model struct {
	ctx     context.Context
	st      store.Store
	feed    *store.Feed
	changes chan store.Change
	log     *slog.Logger
	theme   ui.Theme
	keys    keyMap
	w       *writer

	list      list.Model
	tasks     []model.Task
	folders   []model.Folder
	folderIdx int // -1 is all tasks
	folder    *string

	surfaces []*surface
	active   surfaceKind

	status        string
	width, height int
}

func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	theme := opts.Theme
	if theme.Name == "" {
		theme = ui.Current()
	}

	m := Model{
		ctx:       ctx,
		st:        opts.Store,
		feed:      opts.Feed,
		log:       log,
		theme:     theme,
		keys:      defaultKeys(),
		folderIdx: -1,
		active:    parseSurface(opts.Surface),
		width:     80,
		height:    24,
	}
	m.w = newWriter(ctx, opts.Store, log)
	for _, k := range surfaceKinds {
		m.surfaces = append(m.surfaces, newSurface(k, m.w, m.w, theme, log))
	}
	if m.feed != nil {
		m.changes = m.feed.Subscribe()
	}

	l := list.New(nil, itemDelegate{theme: theme}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = theme.Title
	l.Styles.HelpStyle = theme.Help
	l.Styles.PaginationStyle = theme.Help
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("task", "tasks")
	l.AdditionalShortHelpKeys = m.keys.short
	l.AdditionalFullHelpKeys = m.keys.short
	m.list = l
	m.refreshTitle()
	return m
}

// Run starts the program and blocks until it quits.
func Run(opts Options) error {
	m := New(opts)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}

// Close releases the feed subscription.
func (m Model) Close() {
	if m.feed != nil && m.changes != nil {
		m.feed.Unsubscribe(m.changes)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.load(), m.w.next()}
	if m.changes != nil {
		cmds = append(cmds, waitForChange(m.changes))
	}
	return tea.Batch(cmds...)
}

func (m Model) load() tea.Cmd {
	st, ctx, folder := m.st, m.ctx, m.folder
	return func() tea.Msg {
		tasks, err := st.List(ctx, folder)
		if err != nil {
			return loadedMsg{err: err}
		}
		folders, err := st.Folders(ctx)
		return loadedMsg{tasks: tasks, folders: folders, err: err}
	}
}

func waitForChange(ch chan store.Change) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return changeMsg{change: c}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.status = "load failed: " + msg.err.Error()
			m.log.Error("load tasks", "err", msg.err)
			return m, nil
		}
		m.tasks = msg.tasks
		m.folders = msg.folders
		m.setItems()
		return m, nil

	case writeDoneMsg:
		m.handleWrite(msg)
		if msg.res.Err != nil && msg.res.Op == editor.OpDelete {
			return m, tea.Batch(m.w.next(), m.load())
		}
		return m, m.w.next()

	case createdMsg:
		if msg.err != nil {
			m.status = "create failed: " + msg.err.Error()
		} else {
			m.status = ""
			m.upsert(msg.task)
			m.selectTask(msg.task.ID)
		}
		return m, m.w.next()

	case changeMsg:
		switch msg.change.Kind {
		case store.Deleted:
			m.remove(msg.change.Task.ID)
		default:
			m.upsert(msg.change.Task)
		}
		return m, waitForChange(m.changes)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if s := m.surface(); s.open {
			return m, s.update(msg)
		}
		if m.list.SettingFilter() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.list.IsFiltered() {
				break
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Open):
			if t, ok := m.selected(); ok {
				return m, m.surface().openTask(t)
			}
			return m, nil
		case key.Matches(msg, m.keys.New):
			return m, m.surface().openNew()
		case key.Matches(msg, m.keys.Toggle):
			m.toggleSelected()
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			m.deleteSelected()
			return m, nil
		case key.Matches(msg, m.keys.Folder):
			m.nextFolder()
			return m, m.load()
		case key.Matches(msg, m.keys.Surface):
			m.active = surfaceKinds[(int(m.active)+1)%len(surfaceKinds)]
			m.status = "surface: " + m.active.String()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleWrite(msg writeDoneMsg) {
	res := msg.res
	if res.Err != nil {
		m.status = "save failed: " + res.Err.Error()
		for _, s := range m.surfaces {
			s.editor.writeFailed(res)
		}
		if res.Op == editor.OpUpdate {
			// List rows were updated optimistically; restore the record.
			if t, ok := m.find(res.TaskID); ok {
				m.upsert(t)
			}
		}
		return
	}
	m.status = ""
	for _, s := range m.surfaces {
		s.editor.writeSucceeded(res.TaskID)
	}
	if m.feed != nil {
		return
	}
	if res.Op == editor.OpDelete {
		m.remove(res.TaskID)
		return
	}
	m.upsert(msg.task)
}

func (m Model) surface() *surface { return m.surfaces[m.active] }

func (m Model) selected() (model.Task, bool) {
	it, ok := m.list.SelectedItem().(taskItem)
	if !ok {
		return model.Task{}, false
	}
	t, ok := m.find(it.task.ID)
	return t, ok
}

func (m Model) find(id string) (model.Task, bool) {
	for _, t := range m.tasks {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return model.Task{}, false
}

// quickSession opens t on a throwaway session for list-level actions, so
// they issue the same minimal writes as the surfaces do.
func (m *Model) quickSession(t model.Task) *editor.Session {
	s := editor.NewSession(m.w, editor.WithLogger(m.log))
	s.Apply(editor.Opened{Task: &t})
	return s
}

func (m *Model) toggleSelected() {
	t, ok := m.selected()
	if !ok {
		return
	}
	s := m.quickSession(t)
	s.ToggleCompleted()
	// Show the flip now; the stored record replaces it when the write lands.
	t.Completed = s.Completed()
	m.setRow(t)
}

func (m *Model) deleteSelected() {
	t, ok := m.selected()
	if !ok {
		return
	}
	m.quickSession(t).DeleteTask()
	m.remove(t.ID)
}

// upsert records an authoritative task and re-delivers it to every surface.
func (m *Model) upsert(t model.Task) {
	for _, s := range m.surfaces {
		s.editor.apply(editor.Updated{Task: t})
	}
	if !t.InFolder(m.folder) {
		m.remove(t.ID)
		return
	}
	for i := range m.tasks {
		if m.tasks[i].ID == t.ID {
			m.tasks[i] = t.Clone()
			m.setItems()
			return
		}
	}
	m.tasks = append(m.tasks, t.Clone())
	m.setItems()
}

// setRow changes only what the list shows for t.
func (m *Model) setRow(t model.Task) {
	for i, it := range m.list.Items() {
		if ti, ok := it.(taskItem); ok && ti.task.ID == t.ID {
			m.list.SetItem(i, taskItem{task: t})
			return
		}
	}
}

func (m *Model) remove(id string) {
	for _, s := range m.surfaces {
		s.editor.apply(editor.Removed{TaskID: id})
	}
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			m.setItems()
			return
		}
	}
}

func (m *Model) selectTask(id string) {
	for i, it := range m.list.Items() {
		if ti, ok := it.(taskItem); ok && ti.task.ID == id {
			m.list.Select(i)
			return
		}
	}
}

func (m *Model) setItems() {
	idx := m.list.Index()
	m.list.SetItems(toItems(m.tasks))
	if n := len(m.list.Items()); n > 0 {
		m.list.Select(clampInt(idx, 0, n-1))
	}
	m.refreshTitle()
}

func (m *Model) nextFolder() {
	m.folderIdx++
	if m.folderIdx >= len(m.folders) {
		m.folderIdx = -1
	}
	if m.folderIdx < 0 {
		m.folder = nil
	} else {
		id := m.folders[m.folderIdx].ID
		m.folder = &id
	}
	m.w.folder = m.folder
	for _, s := range m.surfaces {
		s.setOpen(false)
	}
}

func (m Model) folderName() string {
	if m.folderIdx < 0 || m.folderIdx >= len(m.folders) {
		return "All tasks"
	}
	return m.folders[m.folderIdx].DisplayName()
}

func (m *Model) refreshTitle() {
	t := m.theme
	done, pending := stats(m.tasks)
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		t.Title.Render(m.folderName()),
		t.Success.Render(t.SymOK), done,
		t.Pending.Render("•"), pending,
		t.Accent.Render("Total"), len(m.tasks),
	)
}

func (m Model) View() string {
	w, h := m.width, m.height
	bodyH := h - 1
	lw, lh := m.surface().listSize(w, bodyH)
	m.list.SetSize(lw, lh)

	body := m.surface().render(m.list.View(), w, bodyH)

	status := m.theme.Muted.Render(fmt.Sprintf("%s • %s", m.active, m.folderName()))
	if m.status != "" {
		status = m.theme.Error.Render(m.status)
	}
	return strings.TrimRight(body, "\n") + "\n" + status
}
