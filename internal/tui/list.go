package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/ui"
)

// taskItem adapts model.Task to list.Item.
type taskItem struct {
	task model.Task
}

func (i taskItem) Title() string       { return i.task.Name }
func (i taskItem) Description() string { return i.task.Description }
func (i taskItem) FilterValue() string { return i.task.Name }

// itemDelegate renders one line per task.
type itemDelegate struct {
	theme ui.Theme
}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(taskItem)
	if !ok {
		return
	}
	t := d.theme
	box := t.Muted.Render(t.Box(false))
	text := it.task.Name
	if it.task.Completed {
		box = t.Success.Render(t.Box(true))
		text = t.Done.Render(text)
	}
	line := fmt.Sprintf("%s %s", box, text)
	if p := it.task.Progress(); p.Total > 0 {
		line += " " + t.Muted.Render(fmt.Sprintf("(%d/%d)", p.Done, p.Total))
	}
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render(">") + " "
	}
	fmt.Fprint(w, prefix+line)
}

func toItems(tasks []model.Task) []list.Item {
	out := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskItem{task: t})
	}
	return out
}

// stats counts done and pending tasks for the header.
func stats(tasks []model.Task) (done, pending int) {
	for _, t := range tasks {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
