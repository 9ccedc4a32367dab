package registry

import (
	"fmt"
	"strings"
)

// DuplicateNameError is returned when adding a tool whose name is already registered.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("tool %q already registered", e.Name)
}

// NotFoundError is returned when a named tool is not registered.
type NotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("tool %q not found", e.Name)
	}
	return fmt.Sprintf("tool %q not found (did you mean %s?)", e.Name, strings.Join(e.Suggestions, ", "))
}

// InvalidEntryError reports an entry missing required fields.
type InvalidEntryError struct {
	Name   string
	Fields []string
}

func (e *InvalidEntryError) Error() string {
	name := e.Name
	if strings.TrimSpace(name) == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("tool %s: missing required field(s): %s", name, strings.Join(e.Fields, ", "))
}
