// Package expander turns a tool's usage template into a concrete command by
// filling its placeholders with values recognised in the user's prompt.
package expander

import (
	"regexp"
	"strings"

	"github.com/Dleifnesor/PAW/internal/registry"
)

// Binding records the value chosen for one placeholder.
type Binding struct {
	Placeholder string `json:"placeholder"`
	Value       string `json:"value"`
	Class       string `json:"class"`
}

// Result is the outcome of an expansion. AllFilled is false when any required
// placeholder kept its literal text.
type Result struct {
	Command   string    `json:"command"`
	AllFilled bool      `json:"all_filled"`
	Bindings  []Binding `json:"bindings,omitempty"`
	Missing   []string  `json:"missing,omitempty"`
}

// placeholder is a required <name> or {name} span in a template.
type placeholder struct {
	raw        string
	name       string
	start, end int
	accept     acceptFunc
	typed      bool
}

var placeholderRe = regexp.MustCompile(`<([^<>\s]+)>|\{([^{}\s]+)\}`)

// Expand fills entry's usage template from prompt.
func Expand(entry registry.ToolEntry, prompt string) Result {
	return ExpandTemplate(entry.Usage, prompt, entry.Name)
}

// ExpandTemplate fills the required placeholders of usage. Typed placeholders
// are bound first, left to right, each to the first unused value of a class it
// accepts; untyped placeholders then take the first unused value of any class.
// Placeholders sharing a name share a value. Text inside [...] is left alone.
func ExpandTemplate(usage, prompt string, skip ...string) Result {
	holders := parsePlaceholders(usage)
	params := Extract(prompt, skip...)
	used := make([]bool, len(params))
	byName := make(map[string]Param)

	bind := func(h placeholder) {
		if _, done := byName[h.name]; done {
			return
		}
		for i, p := range params {
			if used[i] || !h.accept(p) {
				continue
			}
			used[i] = true
			byName[h.name] = p
			return
		}
	}
	for _, h := range holders {
		if h.typed {
			bind(h)
		}
	}
	for _, h := range holders {
		if !h.typed {
			bind(h)
		}
	}

	res := Result{AllFilled: true}
	var b strings.Builder
	last := 0
	for _, h := range holders {
		b.WriteString(usage[last:h.start])
		last = h.end
		p, ok := byName[h.name]
		if !ok {
			b.WriteString(h.raw)
			res.AllFilled = false
			res.Missing = append(res.Missing, h.raw)
			continue
		}
		b.WriteString(p.Value)
		res.Bindings = append(res.Bindings, Binding{Placeholder: h.raw, Value: p.Value, Class: p.Class.String()})
	}
	b.WriteString(usage[last:])
	res.Command = b.String()
	return res
}

// Placeholders lists the required placeholders of usage in order.
func Placeholders(usage string) []string {
	holders := parsePlaceholders(usage)
	out := make([]string, 0, len(holders))
	for _, h := range holders {
		out = append(out, h.raw)
	}
	return out
}

func parsePlaceholders(usage string) []placeholder {
	optional := optionalSpans(usage)
	var out []placeholder
	for _, m := range placeholderRe.FindAllStringSubmatchIndex(usage, -1) {
		start, end := m[0], m[1]
		if inSpans(optional, start) {
			continue
		}
		name := ""
		if m[2] >= 0 {
			name = usage[m[2]:m[3]]
		} else {
			name = usage[m[4]:m[5]]
		}
		name = strings.ToLower(name)
		accept, typed := acceptorFor(name)
		out = append(out, placeholder{
			raw:    usage[start:end],
			name:   name,
			start:  start,
			end:    end,
			accept: accept,
			typed:  typed,
		})
	}
	return out
}

// optionalSpans returns the [start,end) ranges enclosed by square brackets,
// outermost only.
func optionalSpans(s string) [][2]int {
	var spans [][2]int
	depth, open := 0, 0
	for i, r := range s {
		switch r {
		case '[':
			if depth == 0 {
				open = i
			}
			depth++
		case ']':
			if depth > 0 {
				depth--
				if depth == 0 {
					spans = append(spans, [2]int{open, i + 1})
				}
			}
		}
	}
	if depth > 0 {
		spans = append(spans, [2]int{open, len(s)})
	}
	return spans
}

func inSpans(spans [][2]int, pos int) bool {
	for _, sp := range spans {
		if pos >= sp[0] && pos < sp[1] {
			return true
		}
	}
	return false
}

// StripOptional removes the [...] hint segments from command and collapses
// the whitespace left behind, giving a string that can be executed as is.
func StripOptional(command string) string {
	spans := optionalSpans(command)
	if len(spans) == 0 {
		return strings.TrimSpace(command)
	}
	var b strings.Builder
	last := 0
	for _, sp := range spans {
		b.WriteString(command[last:sp[0]])
		last = sp[1]
	}
	b.WriteString(command[last:])
	return strings.Join(strings.Fields(b.String()), " ")
}
