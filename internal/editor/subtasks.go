package editor

import (
	"strings"

	"github.com/Makepad-fr/tada/internal/model"
)

// The subtask sequence is only ever written as a whole: each operation reads
// the current sequence and returns a fresh one. Every single-subtask edit
// therefore rewrites the full list, which bounds how large a list stays
// cheap to edit.

// AddSubtask appends a new, incomplete subtask. It reports false and returns
// seq unchanged when text trims to empty.
func AddSubtask(seq []model.Subtask, text string, newID func() string) ([]model.Subtask, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return seq, false
	}
	if newID == nil {
		newID = model.NewID
	}
	out := make([]model.Subtask, 0, len(seq)+1)
	out = append(out, seq...)
	out = append(out, model.Subtask{ID: newID(), Text: text, Completed: false})
	return out, true
}

// UpdateSubtask shallow-merges changes into the entry with id.
func UpdateSubtask(seq []model.Subtask, id string, changes model.SubtaskChanges) ([]model.Subtask, bool) {
	idx := indexOfSubtask(seq, id)
	if idx < 0 {
		return seq, false
	}
	out := model.CloneSubtasks(seq)
	out[idx] = changes.ApplyTo(out[idx])
	return out, true
}

// DeleteSubtask filters the entry with id out of the sequence.
func DeleteSubtask(seq []model.Subtask, id string) ([]model.Subtask, bool) {
	idx := indexOfSubtask(seq, id)
	if idx < 0 {
		return seq, false
	}
	out := make([]model.Subtask, 0, len(seq)-1)
	out = append(out, seq[:idx]...)
	out = append(out, seq[idx+1:]...)
	return out, true
}

// Progress is recomputed from seq on every call.
func Progress(seq []model.Subtask) model.Progress {
	return model.Task{Subtasks: seq}.Progress()
}

func indexOfSubtask(seq []model.Subtask, id string) int {
	for i := range seq {
		if seq[i].ID == id {
			return i
		}
	}
	return -1
}
