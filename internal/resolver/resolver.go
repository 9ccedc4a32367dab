// Package resolver ranks registry tools against a free-text request by weighted
// keyword overlap.
package resolver

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Dleifnesor/PAW/internal/registry"
)

// DefaultTopK is the number of matches returned when no limit is configured.
const DefaultTopK = 5

// Catalog is the read side of the registry the resolver needs.
type Catalog interface {
	ExportAll() []registry.ToolEntry
}

// Weights multiply the per-field token hits.
type Weights struct {
	Name        int
	Description int
	Category    int
}

// DefaultWeights favours name hits over category hits over description hits.
func DefaultWeights() Weights {
	return Weights{Name: 3, Description: 1, Category: 2}
}

// Match is a ranked candidate for a prompt.
type Match struct {
	Name     string   `json:"name"`
	Score    int      `json:"score"`
	Keywords []string `json:"keywords"`
}

// Resolver scores registry entries against prompts.
type Resolver struct {
	catalog Catalog
	weights Weights
	topK    int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithWeights overrides the scoring weights.
func WithWeights(w Weights) Option {
	return func(r *Resolver) { r.weights = w }
}

// WithTopK caps the number of returned matches. Non-positive values keep the default.
func WithTopK(k int) Option {
	return func(r *Resolver) {
		if k > 0 {
			r.topK = k
		}
	}
}

// New constructs a resolver over catalog.
func New(catalog Catalog, opts ...Option) *Resolver {
	r := &Resolver{catalog: catalog, weights: DefaultWeights(), topK: DefaultTopK}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns at most top-K matches with a positive score, ordered by score
// descending then case-insensitive name. An empty or unmatched prompt yields an empty
// slice.
func (r *Resolver) Resolve(prompt string) []Match {
	return r.ResolveN(prompt, r.topK)
}

// ResolveN is Resolve with an explicit limit.
func (r *Resolver) ResolveN(prompt string, limit int) []Match {
	if limit <= 0 {
		limit = r.topK
	}
	tokens := Tokenize(prompt)
	matches := make([]Match, 0, limit)
	if len(tokens) == 0 || r.catalog == nil {
		return matches
	}

	for _, e := range r.catalog.ExportAll() {
		if m, ok := r.score(tokens, e); ok {
			matches = append(matches, m)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return registry.LessName(matches[i].Name, matches[j].Name)
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func (r *Resolver) score(tokens []string, e registry.ToolEntry) (Match, bool) {
	name := tokenSet(e.Name)
	desc := tokenSet(e.Description)
	cat := tokenSet(e.Category)

	var score int
	hit := make(map[string]struct{})
	for _, t := range tokens {
		if _, ok := name[t]; ok {
			score += r.weights.Name
			hit[t] = struct{}{}
		}
		if _, ok := desc[t]; ok {
			score += r.weights.Description
			hit[t] = struct{}{}
		}
		if _, ok := cat[t]; ok {
			score += r.weights.Category
			hit[t] = struct{}{}
		}
	}
	if score <= 0 {
		return Match{}, false
	}

	keywords := make([]string, 0, len(hit))
	for t := range hit {
		keywords = append(keywords, t)
	}
	sort.Strings(keywords)
	return Match{Name: e.Name, Score: score, Keywords: keywords}, true
}

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "for": {}, "on": {}, "in": {}, "of": {}, "to": {},
	"with": {}, "and": {}, "or": {}, "my": {}, "me": {}, "all": {}, "is": {}, "at": {},
	"from": {}, "by": {}, "using": {}, "use": {}, "please": {},
}

// Tokenize lower-cases s, splits it on anything outside [a-z0-9], and drops
// single characters, stop words and repeats. Order of first occurrence is kept.
func Tokenize(s string) []string {
	raw := tokenRe.FindAllString(strings.ToLower(s), -1)
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, t := range raw {
		if len(t) < 2 {
			continue
		}
		if _, stop := stopWords[t]; stop {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func tokenSet(s string) map[string]struct{} {
	tokens := Tokenize(s)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// IsStopWord reports whether w is ignored when matching prompts.
func IsStopWord(w string) bool {
	_, ok := stopWords[strings.ToLower(w)]
	return ok
}
