package model

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Folder groups tasks. A nil folder id selects all tasks.
type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DisplayName is the presentation form of the folder name; the stored Name
// is never rewritten.
func (f Folder) DisplayName() string { return DisplayName(f.Name) }

// DisplayName upper-cases the first letter of s and lower-cases the rest.
func DisplayName(s string) string {
	if s == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(s)
	return cases.Upper(language.Und).String(s[:size]) + cases.Lower(language.Und).String(s[size:])
}
