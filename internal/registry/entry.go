package registry

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// Example is a concrete invocation of a tool.
type Example struct {
	Description string `json:"description" yaml:"description"`
	Command     string `json:"command" yaml:"command"`
}

// ToolEntry describes one external command-line tool known to the registry.
type ToolEntry struct {
	Name        string    `json:"name" yaml:"name"`
	Category    string    `json:"category" yaml:"category"`
	Description string    `json:"description" yaml:"description"`
	Usage       string    `json:"usage" yaml:"usage"`
	Examples    []Example `json:"examples,omitempty" yaml:"examples,omitempty"`
}

// toolEntryWire accepts the legacy common_usage key written by older catalogues.
type toolEntryWire struct {
	Name        string    `json:"name" yaml:"name"`
	Category    string    `json:"category" yaml:"category"`
	Description string    `json:"description" yaml:"description"`
	Usage       string    `json:"usage" yaml:"usage"`
	CommonUsage string    `json:"common_usage,omitempty" yaml:"common_usage,omitempty"`
	Examples    []Example `json:"examples,omitempty" yaml:"examples,omitempty"`
}

func (w toolEntryWire) entry() ToolEntry {
	usage := w.Usage
	if strings.TrimSpace(usage) == "" {
		usage = w.CommonUsage
	}
	return ToolEntry{
		Name:        w.Name,
		Category:    w.Category,
		Description: w.Description,
		Usage:       usage,
		Examples:    w.Examples,
	}
}

// UnmarshalJSON decodes an entry, treating common_usage as an alias for usage.
func (e *ToolEntry) UnmarshalJSON(data []byte) error {
	var w toolEntryWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = w.entry()
	return nil
}

// UnmarshalYAML decodes an entry from YAML with the same alias rules as JSON.
func (e *ToolEntry) UnmarshalYAML(value *yaml.Node) error {
	var w toolEntryWire
	if err := value.Decode(&w); err != nil {
		return err
	}
	*e = w.entry()
	return nil
}

// Validate checks the fields required for an entry to be stored.
func (e ToolEntry) Validate() error {
	var missing []string
	if strings.TrimSpace(e.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(e.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(e.Usage) == "" {
		missing = append(missing, "usage")
	}
	if len(missing) > 0 {
		return &InvalidEntryError{Name: e.Name, Fields: missing}
	}
	return nil
}

// clone returns a deep copy so callers never alias registry-owned slices.
func (e ToolEntry) clone() ToolEntry {
	if e.Examples != nil {
		e.Examples = append(make([]Example, 0, len(e.Examples)), e.Examples...)
	}
	return e
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
