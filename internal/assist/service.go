// Package assist turns a prompt into ranked tools and ready-to-run commands over
// a registry that may be swapped out while requests are in flight.
package assist

import (
	"context"
	"sync"

	"github.com/Dleifnesor/PAW/internal/expander"
	"github.com/Dleifnesor/PAW/internal/registry"
	"github.com/Dleifnesor/PAW/internal/resolver"
	"github.com/Dleifnesor/PAW/internal/rpc"
)

// Service answers resolve, expand and suggest queries. It is safe for
// concurrent use.
type Service struct {
	mu      sync.RWMutex
	reg     *registry.Registry
	weights resolver.Weights
	topK    int
}

// Option customises a Service.
type Option func(*Service)

// WithWeights overrides the resolver scoring weights.
func WithWeights(w resolver.Weights) Option {
	return func(s *Service) { s.weights = w }
}

// WithTopK sets how many candidates Resolve returns when no limit is given.
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

// New wraps reg. A nil reg behaves as an empty registry.
func New(reg *registry.Registry, opts ...Option) *Service {
	if reg == nil {
		reg = registry.New()
	}
	s := &Service{reg: reg, weights: resolver.DefaultWeights(), topK: 5}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Replace swaps in a freshly loaded registry.
func (s *Service) Replace(reg *registry.Registry) {
	if reg == nil {
		reg = registry.New()
	}
	s.mu.Lock()
	s.reg = reg
	s.mu.Unlock()
}

// View runs fn with the current registry under the read lock. fn must not
// retain or mutate reg.
func (s *Service) View(fn func(reg *registry.Registry)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.reg)
}

// Len returns the number of tools currently loaded.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg.Len()
}

// Resolve ranks tools for prompt. limit <= 0 uses the configured top K.
func (s *Service) Resolve(prompt string, limit int) []resolver.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolveLocked(prompt, limit)
}

// Expand fills the usage template of the named tool from prompt.
func (s *Service) Expand(name, prompt string) (registry.ToolEntry, expander.Result, error) {
	s.mu.RLock()
	entry, err := s.reg.Get(name)
	s.mu.RUnlock()
	if err != nil {
		return registry.ToolEntry{}, expander.Result{}, err
	}
	return entry, expander.Expand(entry, prompt), nil
}

// Suggest resolves the prompt and expands every candidate, best first.
func (s *Service) Suggest(ctx context.Context, req rpc.SuggestRequest) (rpc.SuggestResponse, error) {
	if err := ctx.Err(); err != nil {
		return rpc.SuggestResponse{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := s.resolveLocked(req.Prompt, req.Limit)
	resp := rpc.SuggestResponse{
		RequestID:   req.RequestID,
		Suggestions: make([]rpc.Suggestion, 0, len(matches)),
	}
	for _, m := range matches {
		entry, ok := s.reg.ByName(m.Name)
		if !ok {
			continue
		}
		resp.Suggestions = append(resp.Suggestions, rpc.Suggestion{
			Match:     m,
			Entry:     entry,
			Expansion: expander.Expand(entry, req.Prompt),
		})
	}
	return resp, nil
}

func (s *Service) resolveLocked(prompt string, limit int) []resolver.Match {
	if limit <= 0 {
		limit = s.topK
	}
	r := resolver.New(s.reg, resolver.WithWeights(s.weights), resolver.WithTopK(s.topK))
	return r.ResolveN(prompt, limit)
}
