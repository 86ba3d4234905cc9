package editor

import "strings"

// Draft is the transient local value of one editable field. It only ever
// changes through Set, and it never reaches the data layer untrimmed.
type Draft struct {
	value string
	base  string
}

// Seed replaces both the draft and the authoritative value.
func (d *Draft) Seed(authoritative string) {
	d.base = authoritative
	d.value = authoritative
}

// Rebase records a new authoritative value without touching the draft.
func (d *Draft) Rebase(authoritative string) {
	d.base = authoritative
}

// Set is a pure local mutation.
func (d *Draft) Set(v string) { d.value = v }

func (d *Draft) Value() string { return d.value }

// Authoritative returns the last value delivered by the data layer.
func (d *Draft) Authoritative() string { return d.base }

// Dirty reports whether the draft differs from the authoritative value.
func (d *Draft) Dirty() bool { return d.value != d.base }

// Revert discards the draft.
func (d *Draft) Revert() { d.value = d.base }

// Commit trims the draft in place and returns the value to persist.
// changed compares against the authoritative value, not against a previous
// commit, so re-committing before the record comes back reports changed
// again.
func (d *Draft) Commit() (value string, changed bool) {
	d.value = strings.TrimSpace(d.value)
	return d.value, d.value != d.base
}
