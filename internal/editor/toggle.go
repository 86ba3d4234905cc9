package editor

// Toggle is an optimistic boolean: Flip changes the local value right away
// and the caller pushes the new value to the Channel.
type Toggle struct {
	value bool
}

func (t *Toggle) Seed(v bool) { t.value = v }

func (t *Toggle) Value() bool { return t.value }

// Flip inverts the local value and returns it.
func (t *Toggle) Flip() bool {
	t.value = !t.value
	return t.value
}
