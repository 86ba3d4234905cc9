package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Makepad-fr/tada/internal/model"
)

// ChangeKind tags a Change.
type ChangeKind int

const (
	Created ChangeKind = iota
	Updated
	Deleted
)

func (k ChangeKind) String() string {
	switch k {
	case Created:
		return "created"
	case Updated:
		return "updated"
	default:
		return "deleted"
	}
}

func (k ChangeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *ChangeKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "created":
		*k = Created
	case "updated":
		*k = Updated
	case "deleted":
		*k = Deleted
	default:
		return fmt.Errorf("unknown change kind %q", b)
	}
	return nil
}

// Change is one record delivery. For Deleted only Task.ID is set.
type Change struct {
	Kind ChangeKind `json:"kind"`
	Task model.Task `json:"task"`
}

// Feed wraps a Store with in-process fan-out: every successful write is
// re-delivered to all subscribers.
type Feed struct {
	Store
	log  *slog.Logger
	mu   sync.RWMutex
	subs map[chan Change]struct{}
}

func NewFeed(s Store, log *slog.Logger) *Feed {
	if log == nil {
		log = slog.Default()
	}
	return &Feed{
		Store: s,
		log:   log,
		subs:  make(map[chan Change]struct{}),
	}
}

func (f *Feed) Create(ctx context.Context, t model.Task) (model.Task, error) {
	out, err := f.Store.Create(ctx, t)
	if err != nil {
		return model.Task{}, err
	}
	f.publish(Change{Kind: Created, Task: out})
	return out, nil
}

func (f *Feed) Update(ctx context.Context, id string, changes model.Patch) (model.Task, error) {
	out, err := f.Store.Update(ctx, id, changes)
	if err != nil {
		return model.Task{}, err
	}
	f.publish(Change{Kind: Updated, Task: out})
	return out, nil
}

func (f *Feed) Delete(ctx context.Context, id string) error {
	if err := f.Store.Delete(ctx, id); err != nil {
		return err
	}
	f.publish(Change{Kind: Deleted, Task: model.Task{ID: id}})
	return nil
}

// Subscribe returns a buffered channel that receives every later change.
func (f *Feed) Subscribe() chan Change {
	ch := make(chan Change, 64)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (f *Feed) Unsubscribe(ch chan Change) {
	f.mu.Lock()
	if _, ok := f.subs[ch]; ok {
		delete(f.subs, ch)
		close(ch)
	}
	f.mu.Unlock()
}

// Relay publishes a change that happened elsewhere, such as one streamed
// from a remote server.
func (f *Feed) Relay(c Change) { f.publish(c) }

func (f *Feed) publish(c Change) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for ch := range f.subs {
		select {
		case ch <- c:
		default:
			// subscriber is behind; drop rather than block the writer
			f.log.Warn("feed subscriber behind; change dropped", "task", c.Task.ID, "kind", c.Kind.String())
		}
	}
}
