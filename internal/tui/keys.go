package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Open    key.Binding
	New     key.Binding
	Toggle  key.Binding
	Delete  key.Binding
	Folder  key.Binding
	Surface key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Open:    key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit")),
		New:     key.NewBinding(key.WithKeys("n", "a"), key.WithHelp("n", "new")),
		Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Folder:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "folder")),
		Surface: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "surface")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) short() []key.Binding {
	return []key.Binding{k.Open, k.New, k.Toggle, k.Delete, k.Folder, k.Surface}
}
