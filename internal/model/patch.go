package model

// Patch is a partial task record. Nil fields are absent and leave the stored
// value untouched; Subtasks always replaces the whole sequence.
type Patch struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	Subtasks    *[]Subtask `json:"subtasks,omitempty"`
}

func NamePatch(name string) Patch               { return Patch{Name: &name} }
func DescriptionPatch(description string) Patch { return Patch{Description: &description} }
func CompletedPatch(completed bool) Patch        { return Patch{Completed: &completed} }

func SubtasksPatch(subtasks []Subtask) Patch {
	s := CloneSubtasks(subtasks)
	return Patch{Subtasks: &s}
}

// IsEmpty reports whether the patch carries no field.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Completed == nil && p.Subtasks == nil
}

// Fields lists the patched field names in a stable order.
func (p Patch) Fields() []string {
	var out []string
	if p.Name != nil {
		out = append(out, "name")
	}
	if p.Description != nil {
		out = append(out, "description")
	}
	if p.Completed != nil {
		out = append(out, "completed")
	}
	if p.Subtasks != nil {
		out = append(out, "subtasks")
	}
	return out
}

// ApplyTo shallow-merges the patch onto t.
func (p Patch) ApplyTo(t *Task) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Subtasks != nil {
		t.Subtasks = CloneSubtasks(*p.Subtasks)
	}
}

// SubtaskChanges is a partial subtask record for a single entry.
type SubtaskChanges struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// ApplyTo returns s with the present fields replaced.
func (c SubtaskChanges) ApplyTo(s Subtask) Subtask {
	if c.Text != nil {
		s.Text = *c.Text
	}
	if c.Completed != nil {
		s.Completed = *c.Completed
	}
	return s
}
