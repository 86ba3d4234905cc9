package tui

import (
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tada/internal/editor"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/ui"
)

type surfaceKind int

const (
	inlineSurface surfaceKind = iota
	drawerSurface
	panelSurface
)

var surfaceKinds = []surfaceKind{inlineSurface, drawerSurface, panelSurface}

func (k surfaceKind) String() string {
	switch k {
	case inlineSurface:
		return "inline"
	case drawerSurface:
		return "drawer"
	default:
		return "panel"
	}
}

func parseSurface(s string) surfaceKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inline":
		return inlineSurface
	case "drawer":
		return drawerSurface
	default:
		return panelSurface
	}
}

// surface hosts the editing core. Surfaces differ only in their layout
// container, their visibility, and whether they show the new-task
// placeholder instead of a record.
type surface struct {
	kind      surfaceKind
	open      bool
	composing bool

	editor  *taskEditor
	compose *composeForm
	theme   ui.Theme
}

func newSurface(kind surfaceKind, ch editor.Channel, creator editor.Creator, theme ui.Theme, log *slog.Logger) *surface {
	s := &surface{kind: kind, theme: theme}
	session := editor.NewSession(ch, editor.WithLogger(log.With("surface", kind.String())), editor.WithCloseFunc(s.hide))
	s.editor = newTaskEditor(session, theme)
	s.compose = newComposeForm(editor.NewComposer(creator, s.hide), theme)
	return s
}

// setOpen is the visibility setter; closing discards the open record.
func (s *surface) setOpen(open bool) {
	if !open {
		s.editor.apply(editor.Closed{})
		s.hide()
		return
	}
	s.open = true
}

func (s *surface) hide() {
	s.open = false
	s.composing = false
}

func (s *surface) openTask(t model.Task) tea.Cmd {
	s.composing = false
	s.setOpen(true)
	return s.editor.open(t)
}

// openNew substitutes the new-task placeholder for a record.
func (s *surface) openNew() tea.Cmd {
	s.editor.apply(editor.Closed{})
	s.composing = true
	s.setOpen(true)
	return s.compose.start()
}

func (s *surface) taskID() string {
	if !s.open || s.composing {
		return ""
	}
	return s.editor.session.TaskID()
}

// update routes a key to the open content.
func (s *surface) update(msg tea.KeyMsg) tea.Cmd {
	if s.composing {
		return s.compose.update(msg)
	}
	cmd, done := s.editor.update(msg)
	if done {
		s.setOpen(false)
	}
	return cmd
}

func (s *surface) content(width int) string {
	if s.composing {
		return s.compose.view(width)
	}
	return s.editor.view(width)
}

func (s *surface) help() string {
	if s.composing {
		return "enter create • esc cancel"
	}
	return "tab next • enter save • ctrl+s save description • space toggle • ctrl+t/ctrl+d subtask done/delete • ctrl+x delete task • esc revert/close"
}

func (s *surface) box() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(s.theme.Border).
		BorderForeground(s.theme.BorderColor).
		Padding(0, 1)
}

// render lays the surface out around the list. The list is already sized by
// the caller through listSize.
func (s *surface) render(listView string, width, height int) string {
	if !s.open {
		return listView
	}
	help := s.theme.Help.Render(s.help())
	switch s.kind {
	case panelSurface:
		lw, pw := splitWidths(width)
		inner := s.content(pw - 4)
		if !s.composing && s.editor.focus != fieldDescription {
			if v, ok := s.editor.session.View(); ok && strings.TrimSpace(v.Description) != "" {
				inner += "\n\n" + s.theme.Muted.Render("Preview") + "\n" +
					renderMarkdown(v.Description, pw-4, s.theme.Name == "mono")
			}
		}
		panel := s.box().Width(pw - 2).Height(max(height-2, 1)).Render(inner + "\n\n" + help)
		return lipgloss.JoinHorizontal(lipgloss.Top,
			normalizePane(listView, lw, height),
			normalizePane(panel, pw, height),
		)
	case drawerSurface:
		drawer := lipgloss.NewStyle().
			Border(s.theme.Border, true, false, false, false).
			BorderForeground(s.theme.BorderColor).
			Width(width).
			Render(s.content(width-2) + "\n" + help)
		return listView + "\n" + drawer
	default:
		return listView + "\n" + s.box().Width(max(width-4, 10)).Render(s.content(width-6)+"\n"+help)
	}
}

// listSize returns the list dimensions left over by this surface.
func (s *surface) listSize(width, height int) (int, int) {
	if !s.open {
		return width, height
	}
	switch s.kind {
	case panelSurface:
		lw, _ := splitWidths(width)
		return lw, height
	case drawerSurface:
		return width, max(height/2, 3)
	default:
		if s.composing {
			return width, max(height-6, 3)
		}
		return width, max(height-20, 3)
	}
}

func splitWidths(width int) (list, panel int) {
	panel = max(width*2/5, 30)
	if panel > width-20 {
		panel = max(width-20, 10)
	}
	return width - panel, panel
}
