package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestProgressBar(t *testing.T) {
	cases := []struct {
		done, total, width int
		want               string
	}{
		{0, 0, 5, "[░░░░░] 0/0"},
		{1, 2, 10, "[█████░░░░░] 1/2"},
		{3, 3, 5, "[█████] 3/3"},
		{1, 4, 2, "[█░░░░] 1/4"},
	}
	for _, c := range cases {
		if got := ProgressBar(c.done, c.total, c.width); got != c.want {
			t.Fatalf("ProgressBar(%d,%d,%d) = %q, want %q", c.done, c.total, c.width, got, c.want)
		}
	}
}

func TestPanel_FramesEveryLine(t *testing.T) {
	SetTheme("mono", "")
	defer SetTheme("classic", "")
	out := ansi.Strip(Panel([]string{"one", "three"}))
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
	w := ansi.StringWidth(lines[0])
	for _, ln := range lines {
		if ansi.StringWidth(ln) != w {
			t.Fatalf("ragged panel:\n%s", out)
		}
	}
	if !strings.Contains(lines[1], "one") || !strings.HasPrefix(lines[0], "+") {
		t.Fatalf("unexpected panel:\n%s", out)
	}
}

func TestNewTheme_AccentAndBoxes(t *testing.T) {
	th := NewTheme("neon", "205")
	if th.Name != "neon" || th.Box(true) != "◼" || th.Box(false) != "◻" {
		t.Fatalf("unexpected neon theme %+v", th)
	}
	if NewTheme("unknown", "").Name != "classic" {
		t.Fatalf("unknown names fall back to classic")
	}
}

func TestOKFail(t *testing.T) {
	SetColorForcing(false, true)
	var out bytes.Buffer
	OK(&out, "added")
	Fail(&out, "nope")
	s := ansi.Strip(out.String())
	if !strings.Contains(s, "✔ added") || !strings.Contains(s, "✖ nope") {
		t.Fatalf("unexpected output %q", s)
	}
}
