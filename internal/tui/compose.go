package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/editor"
	"github.com/Makepad-fr/tada/internal/ui"
)

// composeForm is the new-task placeholder a surface shows instead of a
// real record. Only the name is editable.
type composeForm struct {
	composer *editor.Composer
	input    textinput.Model
	theme    ui.Theme
}

func newComposeForm(c *editor.Composer, theme ui.Theme) *composeForm {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "New task name..."
	in.CharLimit = 200
	return &composeForm{composer: c, input: in, theme: theme}
}

func (f *composeForm) start() tea.Cmd {
	f.input.SetValue(f.composer.Value())
	return f.input.Focus()
}

func (f *composeForm) update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		f.composer.Set(f.input.Value())
		if f.composer.Submit() {
			f.input.SetValue("")
			f.input.Blur()
		}
		return nil
	case "esc":
		f.composer.Cancel()
		f.input.SetValue("")
		f.input.Blur()
		return nil
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	f.composer.Set(f.input.Value())
	return cmd
}

func (f *composeForm) view(width int) string {
	f.input.Width = max(width-4, 10)
	return f.theme.Title.Render("New task") + "\n" + f.input.View()
}
