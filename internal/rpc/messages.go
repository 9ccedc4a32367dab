// Package rpc holds the wire messages shared by the daemon and its clients.
package rpc

import (
	"github.com/Dleifnesor/PAW/internal/expander"
	"github.com/Dleifnesor/PAW/internal/registry"
	"github.com/Dleifnesor/PAW/internal/resolver"
)

// ResolveRequest asks for ranked tool candidates.
type ResolveRequest struct {
	Prompt string `json:"prompt"`
	Limit  int    `json:"limit,omitempty"`
}

// ResolveResponse carries ranked candidates, best first.
type ResolveResponse struct {
	Matches []resolver.Match `json:"matches"`
}

// ExpandRequest asks for the named tool's usage filled from prompt.
type ExpandRequest struct {
	Tool   string `json:"tool"`
	Prompt string `json:"prompt"`
}

// ExpandResponse is the expansion of one tool.
type ExpandResponse struct {
	Tool   string          `json:"tool"`
	Result expander.Result `json:"result"`
}

// SuggestRequest resolves a prompt and expands the best candidates.
type SuggestRequest struct {
	RequestID string `json:"request_id,omitempty"`
	Prompt    string `json:"prompt"`
	Limit     int    `json:"limit,omitempty"`
}

// Suggestion pairs a candidate with its entry and expanded command.
type Suggestion struct {
	Match     resolver.Match     `json:"match"`
	Entry     registry.ToolEntry `json:"entry"`
	Expansion expander.Result    `json:"expansion"`
}

// SuggestResponse lists suggestions, best first.
type SuggestResponse struct {
	RequestID   string       `json:"request_id"`
	Suggestions []Suggestion `json:"suggestions"`
}

// ErrorResponse is the JSON body of a failed HTTP call.
type ErrorResponse struct {
	Error       string   `json:"error"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// ToolsResponse lists registry entries.
type ToolsResponse struct {
	Tools []registry.ToolEntry `json:"tools"`
}

// CategoriesResponse lists the categories in use, sorted.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// HealthResponse reports daemon liveness and the loaded registry size.
type HealthResponse struct {
	Status  string `json:"status"`
	Tools   int    `json:"tools"`
	Version string `json:"version"`
}
