// Package registry holds the catalogue of external tools and the read-only views over it.
package registry

import (
	"github.com/sahilm/fuzzy"
)

// Registry maps tool names to entries, preserving insertion order.
// Names are unique case-insensitively. A Registry is not safe for concurrent
// mutation; callers that share one across goroutines must guard it.
type Registry struct {
	order   []string             // keys in insertion order
	entries map[string]ToolEntry // key -> entry
	index   map[string]map[string]struct{}
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[string]ToolEntry),
		index:   make(map[string]map[string]struct{}),
	}
}

// FromEntries builds a registry from entries in order. Later duplicates replace
// earlier ones in place.
func FromEntries(entries []ToolEntry) (*Registry, error) {
	r := New()
	for _, e := range entries {
		if err := r.Add(e, true); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}

// Add inserts entry. When a tool with the same name exists, Add fails with
// DuplicateNameError unless overwrite is set, in which case the entry is replaced
// in its original position.
func (r *Registry) Add(entry ToolEntry, overwrite bool) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	k := key(entry.Name)
	if prev, exists := r.entries[k]; exists {
		if !overwrite {
			return &DuplicateNameError{Name: prev.Name}
		}
		r.unindex(k, prev.Category)
	} else {
		r.order = append(r.order, k)
	}
	r.entries[k] = entry.clone()
	r.indexEntry(k, entry.Category)
	return nil
}

// Remove deletes the named tool.
func (r *Registry) Remove(name string) error {
	k := key(name)
	prev, ok := r.entries[k]
	if !ok {
		return r.notFound(name)
	}
	delete(r.entries, k)
	r.unindex(k, prev.Category)
	for i, o := range r.order {
		if o == k {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// ImportOptions controls ImportBatch.
type ImportOptions struct {
	Overwrite bool
	DryRun    bool
}

// ImportReport summarises an ImportBatch call.
type ImportReport struct {
	Added   []string
	Skipped []string
	Reasons []string
}

// ImportBatch adds entries one by one. Entries that fail validation or collide
// with an existing name are skipped and reported; each entry is applied fully or
// not at all. With DryRun the registry is left unchanged but the report reflects
// what would have happened.
func (r *Registry) ImportBatch(entries []ToolEntry, opts ImportOptions) ImportReport {
	target := r
	if opts.DryRun {
		target = r.Clone()
	}
	var report ImportReport
	for _, e := range entries {
		if err := target.Add(e, opts.Overwrite); err != nil {
			report.Skipped = append(report.Skipped, e.Name)
			report.Reasons = append(report.Reasons, err.Error())
			continue
		}
		report.Added = append(report.Added, e.Name)
	}
	return report
}

// ExportAll returns copies of every entry in insertion order.
func (r *Registry) ExportAll() []ToolEntry {
	out := make([]ToolEntry, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.entries[k].clone())
	}
	return out
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	c := New()
	for _, e := range r.ExportAll() {
		k := key(e.Name)
		c.order = append(c.order, k)
		c.entries[k] = e
	}
	c.RebuildIndex()
	return c
}

// RebuildIndex reconstructs the category index from the entries alone.
func (r *Registry) RebuildIndex() {
	r.index = make(map[string]map[string]struct{})
	for _, k := range r.order {
		r.indexEntry(k, r.entries[k].Category)
	}
}

func (r *Registry) indexEntry(k, category string) {
	set, ok := r.index[category]
	if !ok {
		set = make(map[string]struct{})
		r.index[category] = set
	}
	set[k] = struct{}{}
}

func (r *Registry) unindex(k, category string) {
	set, ok := r.index[category]
	if !ok {
		return
	}
	delete(set, k)
	if len(set) == 0 {
		delete(r.index, category)
	}
}

func (r *Registry) notFound(name string) *NotFoundError {
	err := &NotFoundError{Name: name}
	names := r.Names()
	for i, m := range fuzzy.Find(name, names) {
		if i == 3 {
			break
		}
		err.Suggestions = append(err.Suggestions, m.Str)
	}
	return err
}
