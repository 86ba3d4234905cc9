// Package editor holds the edit-commit core shared by every surface that
// edits a task: per-field drafts, whole-list subtask mutations, optimistic
// completion, the new-task composer, and the Session that reconciles all of
// them with the authoritative record delivered by the data layer.
//
// Nothing here blocks. Writes leave through a Channel and their outcome, when
// it is a failure, comes back through Session.WriteFailed.
package editor
