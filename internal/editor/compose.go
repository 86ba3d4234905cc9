package editor

import "strings"

// ComposeState is the state of the new-task flow.
type ComposeState int

const (
	// Composing: no persisted identity yet, only the name is editable.
	Composing ComposeState = iota
	// Submitted: a name was accepted and handed to the Creator.
	Submitted
)

func (s ComposeState) String() string {
	if s == Submitted {
		return "submitted"
	}
	return "composing"
}

// Composer drives the new-task flow. The same guard applies to every
// surface that hosts it: an all-whitespace name never submits.
type Composer struct {
	creator Creator
	onClose func()
	name    Draft
	state   ComposeState
}

func NewComposer(c Creator, onClose func()) *Composer {
	return &Composer{creator: c, onClose: onClose}
}

func (c *Composer) Set(v string) { c.name.Set(v) }

func (c *Composer) Value() string { return c.name.Value() }

func (c *Composer) State() ComposeState { return c.state }

// Submit hands the trimmed name to the Creator, returns to an empty
// Composing state, and closes the hosting surface. It reports false, and
// changes nothing, for an empty name.
func (c *Composer) Submit() bool {
	name := strings.TrimSpace(c.name.Value())
	if name == "" {
		return false
	}
	c.state = Submitted
	if c.creator != nil {
		c.creator.AddTask(name)
	}
	c.reset()
	if c.onClose != nil {
		c.onClose()
	}
	return true
}

// Cancel discards the name without creating anything and closes the
// hosting surface.
func (c *Composer) Cancel() {
	c.reset()
	if c.onClose != nil {
		c.onClose()
	}
}

func (c *Composer) reset() {
	c.name.Seed("")
	c.state = Composing
}
