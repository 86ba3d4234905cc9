package editor

import "github.com/Makepad-fr/tada/internal/model"

// Channel is the only write path from the core into the data layer. Calls
// are fire-and-forget; the updated record is expected to come back as an
// Updated event.
type Channel interface {
	Update(taskID string, changes model.Patch)
	Delete(taskID string)
}

// Creator receives committed names from the new-task flow.
type Creator interface {
	AddTask(name string)
}

// ChannelFuncs adapts plain functions to Channel. Nil funcs are no-ops.
type ChannelFuncs struct {
	UpdateFunc func(taskID string, changes model.Patch)
	DeleteFunc func(taskID string)
}

func (f ChannelFuncs) Update(taskID string, changes model.Patch) {
	if f.UpdateFunc != nil {
		f.UpdateFunc(taskID, changes)
	}
}

func (f ChannelFuncs) Delete(taskID string) {
	if f.DeleteFunc != nil {
		f.DeleteFunc(taskID)
	}
}

// CreatorFunc adapts a function to Creator.
type CreatorFunc func(name string)

func (f CreatorFunc) AddTask(name string) { f(name) }

// Op names the kind of write a WriteResult reports on.
type Op int

const (
	OpUpdate Op = iota
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpDelete:
		return "delete"
	default:
		return "update"
	}
}

// WriteResult reports the outcome of one Channel call.
type WriteResult struct {
	TaskID  string
	Op      Op
	Changes model.Patch
	Err     error
}
