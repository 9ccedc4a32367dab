package registry

import (
	"sort"
	"strings"
)

// ByName returns the entry registered under name, ignoring case.
func (r *Registry) ByName(name string) (ToolEntry, bool) {
	e, ok := r.entries[key(name)]
	if !ok {
		return ToolEntry{}, false
	}
	return e.clone(), true
}

// Get is ByName returning NotFoundError on a miss.
func (r *Registry) Get(name string) (ToolEntry, error) {
	if e, ok := r.ByName(name); ok {
		return e, nil
	}
	return ToolEntry{}, r.notFound(name)
}

// ByCategory returns the entries whose category equals label exactly, in
// insertion order. Unknown labels yield an empty slice.
func (r *Registry) ByCategory(label string) []ToolEntry {
	set := r.index[label]
	out := make([]ToolEntry, 0, len(set))
	if len(set) == 0 {
		return out
	}
	for _, k := range r.order {
		if _, ok := set[k]; ok {
			out = append(out, r.entries[k].clone())
		}
	}
	return out
}

// AllCategories returns the sorted set of categories currently in use.
func (r *Registry) AllCategories() []string {
	out := make([]string, 0, len(r.index))
	for c := range r.index {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Names returns the registered tool names in insertion order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.entries[k].Name)
	}
	return out
}

// Search matches keyword case-insensitively as a substring of name, description
// and usage. Results are ranked by the number of matching fields, then by name.
// An empty keyword matches every entry.
func (r *Registry) Search(keyword string) []ToolEntry {
	kw := strings.ToLower(strings.TrimSpace(keyword))

	type hit struct {
		entry  ToolEntry
		fields int
	}
	hits := make([]hit, 0, len(r.order))
	for _, k := range r.order {
		e := r.entries[k]
		n := 0
		for _, field := range []string{e.Name, e.Description, e.Usage} {
			if strings.Contains(strings.ToLower(field), kw) {
				n++
			}
		}
		if n > 0 {
			hits = append(hits, hit{entry: e, fields: n})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].fields != hits[j].fields {
			return hits[i].fields > hits[j].fields
		}
		return LessName(hits[i].entry.Name, hits[j].entry.Name)
	})

	out := make([]ToolEntry, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.entry.clone())
	}
	return out
}

// LessName orders tool names case-insensitively with a case-sensitive
// tie-break. Every ranked listing uses it to break score ties.
func LessName(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}
