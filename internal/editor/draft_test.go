package editor

import "testing"

func TestDraft_CommitTrimsAndComparesToAuthoritative(t *testing.T) {
	var d Draft
	d.Seed("Buy milk")

	d.Set("  Buy milk  ")
	if v, changed := d.Commit(); changed || v != "Buy milk" {
		t.Fatalf("expected unchanged trimmed value, got %q changed=%v", v, changed)
	}

	d.Set(" Buy oat milk ")
	v, changed := d.Commit()
	if !changed || v != "Buy oat milk" {
		t.Fatalf("expected changed trimmed value, got %q changed=%v", v, changed)
	}
	if d.Value() != "Buy oat milk" {
		t.Fatalf("expected draft to hold trimmed value, got %q", d.Value())
	}

	// Authoritative value has not caught up yet, so a second commit still
	// reports a change.
	if _, changed := d.Commit(); !changed {
		t.Fatalf("expected second commit to report changed until the record is rebased")
	}
	d.Rebase("Buy oat milk")
	if _, changed := d.Commit(); changed {
		t.Fatalf("expected no change after rebase")
	}
}

func TestDraft_RevertRestoresAuthoritative(t *testing.T) {
	var d Draft
	d.Seed("a")
	d.Set("abc")
	if !d.Dirty() {
		t.Fatalf("expected dirty draft")
	}
	d.Revert()
	if d.Value() != "a" || d.Dirty() {
		t.Fatalf("expected reverted draft, got %q", d.Value())
	}
}

func TestToggle_Flip(t *testing.T) {
	var tg Toggle
	tg.Seed(true)
	if tg.Flip() || tg.Value() {
		t.Fatalf("expected false after flip")
	}
}
