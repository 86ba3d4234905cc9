package editor

import (
	"fmt"

	"github.com/Makepad-fr/tada/internal/model"
)

type updateCall struct {
	taskID  string
	changes model.Patch
}

type recordingChannel struct {
	updates []updateCall
	deletes []string
}

func (r *recordingChannel) Update(taskID string, changes model.Patch) {
	r.updates = append(r.updates, updateCall{taskID: taskID, changes: changes})
}

func (r *recordingChannel) Delete(taskID string) {
	r.deletes = append(r.deletes, taskID)
}

func (r *recordingChannel) last() updateCall {
	return r.updates[len(r.updates)-1]
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("sub-%d", n)
	}
}

func openSession(task model.Task, opts ...Option) (*Session, *recordingChannel) {
	ch := &recordingChannel{}
	s := NewSession(ch, opts...)
	s.Apply(Opened{Task: &task})
	return s, ch
}
