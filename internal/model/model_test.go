package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDisplayName_CapitalizesFirstLetterOnly(t *testing.T) {
	cases := map[string]string{
		"":           "",
		"work":       "Work",
		"WORK STUFF": "Work stuff",
		"eRRANDS":    "Errands",
		"été":        "Été",
	}
	for in, want := range cases {
		if got := DisplayName(in); got != want {
			t.Fatalf("DisplayName(%q): expected %q, got %q", in, want, got)
		}
	}

	f := Folder{ID: "f1", Name: "hOME"}
	if got := f.DisplayName(); got != "Home" {
		t.Fatalf("expected Home, got %q", got)
	}
	if f.Name != "hOME" {
		t.Fatalf("expected stored name to stay unchanged, got %q", f.Name)
	}
}

func TestNewTask_Defaults(t *testing.T) {
	task := NewTask("Call dentist")
	if task.ID == "" {
		t.Fatalf("expected an identity")
	}
	if task.Completed || task.Description != "" {
		t.Fatalf("unexpected defaults: %+v", task)
	}
	if task.Subtasks == nil || len(task.Subtasks) != 0 {
		t.Fatalf("expected empty (non-nil) subtasks, got %#v", task.Subtasks)
	}
}

func TestNewID_UniqueWithinSession(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 2000; i++ {
		id := NewID()
		if id == "" {
			t.Fatalf("expected non-empty id")
		}
		if seen[id] {
			t.Fatalf("duplicate id %q after %d draws", id, i)
		}
		seen[id] = true
	}
}

func TestPatch_ApplyToIsShallowAndDoesNotAlias(t *testing.T) {
	task := Task{ID: "t1", Name: "Old", Description: "keep", Subtasks: []Subtask{{ID: "s1", Text: "a"}}}
	next := []Subtask{{ID: "s1", Text: "a"}, {ID: "s2", Text: "b"}}
	p := SubtasksPatch(next)
	p.Name = NamePatch("New").Name

	p.ApplyTo(&task)
	if task.Name != "New" || task.Description != "keep" {
		t.Fatalf("unexpected merge result: %+v", task)
	}
	if len(task.Subtasks) != 2 {
		t.Fatalf("expected 2 subtasks, got %d", len(task.Subtasks))
	}

	next[0].Text = "mutated"
	(*p.Subtasks)[1].Text = "mutated"
	if task.Subtasks[0].Text != "a" || task.Subtasks[1].Text != "b" {
		t.Fatalf("expected applied subtasks to be detached from the patch, got %+v", task.Subtasks)
	}
}

func TestPatch_FieldsAndJSON(t *testing.T) {
	p := SubtasksPatch(nil)
	p.Completed = CompletedPatch(false).Completed
	if got := strings.Join(p.Fields(), ","); got != "completed,subtasks" {
		t.Fatalf("unexpected fields %q", got)
	}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(b); got != `{"completed":false,"subtasks":[]}` {
		t.Fatalf("unexpected json %s", got)
	}
	if !(Patch{}).IsEmpty() || p.IsEmpty() {
		t.Fatalf("IsEmpty mismatch")
	}
}

func TestProgress_DerivedFromSequence(t *testing.T) {
	task := Task{Subtasks: []Subtask{{ID: "a", Completed: true}, {ID: "b"}, {ID: "c", Completed: true}, {ID: "d"}}}
	p := task.Progress()
	if p.Done != 2 || p.Total != 4 {
		t.Fatalf("unexpected progress %+v", p)
	}
	if p.Fraction() != 0.5 {
		t.Fatalf("expected 0.5, got %v", p.Fraction())
	}
	if (Progress{}).Fraction() != 0 {
		t.Fatalf("expected 0 for empty sequence")
	}
}

func TestTask_InFolder(t *testing.T) {
	work := "work"
	home := "home"
	task := Task{ID: "t", FolderID: &work}
	if !task.InFolder(nil) || !task.InFolder(&work) || task.InFolder(&home) {
		t.Fatalf("InFolder mismatch")
	}
}
