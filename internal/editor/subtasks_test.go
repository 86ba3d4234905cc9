package editor

import (
	"testing"

	"github.com/Makepad-fr/tada/internal/model"
)

func TestAddSubtask_AppendsIncompleteEntry(t *testing.T) {
	seq := []model.Subtask{{ID: "a", Text: "first"}}
	got, ok := AddSubtask(seq, "  second ", func() string { return "b" })
	if !ok {
		t.Fatalf("expected add to succeed")
	}
	if len(got) != 2 || got[1].ID != "b" || got[1].Text != "second" || got[1].Completed {
		t.Fatalf("unexpected sequence %+v", got)
	}
	if len(seq) != 1 {
		t.Fatalf("expected input sequence untouched, got %+v", seq)
	}
}

func TestAddSubtask_RejectsBlank(t *testing.T) {
	got, ok := AddSubtask(nil, "   ", nil)
	if ok || len(got) != 0 {
		t.Fatalf("expected no-op, got ok=%v %+v", ok, got)
	}
}

func TestUpdateAndDeleteSubtask_UnknownIDIsNoop(t *testing.T) {
	seq := []model.Subtask{{ID: "a", Text: "x"}}
	done := true
	if _, ok := UpdateSubtask(seq, "zzz", model.SubtaskChanges{Completed: &done}); ok {
		t.Fatalf("expected update of unknown id to be a no-op")
	}
	if _, ok := DeleteSubtask(seq, "zzz"); ok {
		t.Fatalf("expected delete of unknown id to be a no-op")
	}
}

func TestUpdateSubtask_ShallowMergeKeepsOrder(t *testing.T) {
	seq := []model.Subtask{{ID: "a", Text: "x"}, {ID: "b", Text: "y"}, {ID: "c", Text: "z"}}
	done := true
	got, ok := UpdateSubtask(seq, "b", model.SubtaskChanges{Completed: &done})
	if !ok {
		t.Fatalf("expected update")
	}
	if got[1].Text != "y" || !got[1].Completed {
		t.Fatalf("unexpected merge %+v", got[1])
	}
	if got[0].ID != "a" || got[2].ID != "c" {
		t.Fatalf("expected order preserved, got %+v", got)
	}
	if seq[1].Completed {
		t.Fatalf("expected input sequence untouched")
	}
}

func TestProgress_Derived(t *testing.T) {
	p := Progress([]model.Subtask{{ID: "a", Completed: true}, {ID: "b"}})
	if p.Done != 1 || p.Total != 2 {
		t.Fatalf("unexpected progress %+v", p)
	}
}
