package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme bundles palette, symbols and box borders.
type Theme struct {
	Name string

	Title, Muted, Accent, Success, Pending, Error lipgloss.Style
	Selected, Done, Help                          lipgloss.Style

	Border      lipgloss.Border
	BorderColor lipgloss.TerminalColor

	BoxChecked, BoxUnchecked string
	SymOK, SymFail           string
}

var current = NewTheme("classic", "")

// NewTheme builds the named theme. accent, when set, replaces the theme's
// accent color (any lipgloss color string, e.g. "205" or "#ff8800").
func NewTheme(name, accent string) Theme {
	var t Theme
	switch strings.ToLower(name) {
	case "neon":
		t = Theme{
			Name:         "neon",
			Title:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
			Muted:        lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
			Accent:       lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
			Success:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
			Pending:      lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
			Error:        lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			Border:       lipgloss.RoundedBorder(),
			BorderColor:  lipgloss.Color("13"),
			BoxChecked:   "◼",
			BoxUnchecked: "◻",
		}
	case "mono":
		t = Theme{
			Name:         "mono",
			Title:        lipgloss.NewStyle().Bold(true),
			Muted:        lipgloss.NewStyle(),
			Accent:       lipgloss.NewStyle().Underline(true),
			Success:      lipgloss.NewStyle(),
			Pending:      lipgloss.NewStyle(),
			Error:        lipgloss.NewStyle().Bold(true),
			Border:       lipgloss.ASCIIBorder(),
			BorderColor:  lipgloss.NoColor{},
			BoxChecked:   "[x]",
			BoxUnchecked: "[ ]",
		}
	default:
		t = Theme{
			Name:         "classic",
			Title:        lipgloss.NewStyle().Bold(true),
			Muted:        lipgloss.NewStyle().Faint(true),
			Accent:       lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
			Success:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			Pending:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			Error:        lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			Border:       lipgloss.RoundedBorder(),
			BorderColor:  lipgloss.Color("8"),
			BoxChecked:   "☑",
			BoxUnchecked: "☐",
		}
	}
	if t.Name != "mono" {
		t.SymOK, t.SymFail = "✔", "✖"
	} else {
		t.SymOK, t.SymFail = "ok", "error:"
	}
	if accent != "" {
		t.Accent = t.Accent.Foreground(lipgloss.Color(accent))
		t.BorderColor = lipgloss.Color(accent)
	}
	t.Selected = lipgloss.NewStyle().Bold(true).Reverse(true)
	t.Done = t.Muted.Strikethrough(true)
	t.Help = lipgloss.NewStyle().Faint(true)
	return t
}

func SetTheme(name, accent string) { current = NewTheme(name, accent) }

func Current() Theme { return current }

// Box returns the checkbox glyph for done.
func (t Theme) Box(done bool) string {
	if done {
		return t.BoxChecked
	}
	return t.BoxUnchecked
}
