package store

import (
	"context"
	"errors"
	"testing"

	"github.com/Makepad-fr/tada/internal/model"
)

func TestMemory_CreateUpdateDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	created, err := m.Create(ctx, model.Task{Name: "  Call dentist "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Name != "Call dentist" || created.Subtasks == nil {
		t.Fatalf("unexpected created task %+v", created)
	}

	got, err := m.Update(ctx, created.ID, model.DescriptionPatch("bring card"))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "Call dentist" || got.Description != "bring card" {
		t.Fatalf("expected shallow merge, got %+v", got)
	}

	if err := m.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := m.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyPatch_RejectsBrokenInvariants(t *testing.T) {
	base := model.Task{ID: "t", Name: "n"}
	cases := []model.Patch{
		model.NamePatch("   "),
		model.SubtasksPatch([]model.Subtask{{ID: "a", Text: ""}}),
		model.SubtasksPatch([]model.Subtask{{ID: "a", Text: "x"}, {ID: "a", Text: "y"}}),
		model.SubtasksPatch([]model.Subtask{{Text: "no id"}}),
	}
	for i, p := range cases {
		if _, err := ApplyPatch(base, p); !errors.Is(err, ErrInvalid) {
			t.Fatalf("case %d: expected ErrInvalid, got %v", i, err)
		}
	}
}

func TestMemory_ListFiltersByFolder(t *testing.T) {
	ctx := context.Background()
	work := "work"
	m := NewMemory(
		model.Task{ID: "a", Name: "a", FolderID: &work},
		model.Task{ID: "b", Name: "b"},
	)
	all, _ := m.List(ctx, nil)
	if len(all) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(all))
	}
	inWork, _ := m.List(ctx, &work)
	if len(inWork) != 1 || inWork[0].ID != "a" {
		t.Fatalf("unexpected folder listing %+v", inWork)
	}
}

func TestFeed_RedeliversWrites(t *testing.T) {
	ctx := context.Background()
	f := NewFeed(NewMemory(), nil)
	sub := f.Subscribe()
	defer f.Unsubscribe(sub)

	created, err := f.Create(ctx, model.Task{Name: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c := <-sub; c.Kind != Created || c.Task.ID != created.ID {
		t.Fatalf("unexpected change %+v", c)
	}

	if _, err := f.Update(ctx, created.ID, model.CompletedPatch(true)); err != nil {
		t.Fatalf("update: %v", err)
	}
	if c := <-sub; c.Kind != Updated || !c.Task.Completed {
		t.Fatalf("unexpected change %+v", c)
	}

	if err := f.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if c := <-sub; c.Kind != Deleted || c.Task.ID != created.ID {
		t.Fatalf("unexpected change %+v", c)
	}

	// Failed writes publish nothing.
	if _, err := f.Update(ctx, "missing", model.CompletedPatch(true)); err == nil {
		t.Fatalf("expected error")
	}
	select {
	case c := <-sub:
		t.Fatalf("unexpected change %+v", c)
	default:
	}
}

func TestChangeKind_TextRoundTrip(t *testing.T) {
	for _, k := range []ChangeKind{Created, Updated, Deleted} {
		b, _ := k.MarshalText()
		var got ChangeKind
		if err := got.UnmarshalText(b); err != nil || got != k {
			t.Fatalf("round trip %v: got %v err=%v", k, got, err)
		}
	}
}
