// Package llm is the client side of local model-serving runtimes used to
// explain expanded commands.
package llm

import (
	"context"
	"time"
)

// Role is the message role used in chat exchanges.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage represents a single message exchanged with the model.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content,omitempty"`
}

// ChatRequest is the input for chat providers.
type ChatRequest struct {
	Model       string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64
}

// Usage captures token accounting.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ChatResponse is the result of a chat completion.
type ChatResponse struct {
	Message      ChatMessage
	FinishReason string
	Usage        Usage
	ProviderName string
	Model        string
}

// GenerateRequest is a single-prompt completion with an optional system prompt.
type GenerateRequest struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// ModelInfo describes a model available on a runtime.
type ModelInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size,omitempty"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`
}

// Provider defines the contract for model runtimes.
type Provider interface {
	Name() string
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

// Generator is implemented by runtimes with a native single-prompt endpoint.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Complete runs req through p, preferring the native generate endpoint when p
// offers one and falling back to a system+user chat exchange.
func Complete(ctx context.Context, p Provider, req GenerateRequest) (string, error) {
	if g, ok := p.(Generator); ok {
		return g.Generate(ctx, req)
	}
	msgs := make([]ChatMessage, 0, 2)
	if req.System != "" {
		msgs = append(msgs, ChatMessage{Role: RoleSystem, Content: req.System})
	}
	msgs = append(msgs, ChatMessage{Role: RoleUser, Content: req.Prompt})
	resp, err := p.Chat(ctx, ChatRequest{
		Model:       req.Model,
		Messages:    msgs,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}
