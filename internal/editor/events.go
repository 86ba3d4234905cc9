package editor

import "github.com/Makepad-fr/tada/internal/model"

// Event is a record-delivery event applied to a Session.
type Event interface {
	isEvent()
}

// Opened switches the session to a task. A nil Task, or one without an
// identity, leaves the session with nothing selected.
type Opened struct {
	Task *model.Task
}

// Updated carries a fresh authoritative copy of a task from the data layer.
type Updated struct {
	Task model.Task
}

// Removed reports that the data layer no longer has the task.
type Removed struct {
	TaskID string
}

// Closed detaches the session from its task without writing anything.
type Closed struct{}

func (Opened) isEvent()  {}
func (Updated) isEvent() {}
func (Removed) isEvent() {}
func (Closed) isEvent()  {}
