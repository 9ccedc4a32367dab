// Package explain asks a local model to describe an expanded command. It is
// only consulted after expansion; resolution never depends on it.
package explain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dleifnesor/PAW/internal/expander"
	"github.com/Dleifnesor/PAW/internal/llm"
	"github.com/Dleifnesor/PAW/internal/registry"
	"go.uber.org/zap"
)

// ModelResolver maps a logical model name to a provider.
type ModelResolver interface {
	Resolve(modelName string) (llm.Provider, llm.ModelRoute, error)
}

// Request is everything the model sees about one command.
type Request struct {
	Prompt    string
	Entry     registry.ToolEntry
	Expansion expander.Result
}

// Explainer produces markdown explanations.
type Explainer struct {
	models    ModelResolver
	model     string
	maxTokens int
	logger    *zap.Logger
}

// New creates an Explainer using model (empty selects the default model).
func New(models ModelResolver, model string, maxTokens int, logger *zap.Logger) *Explainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Explainer{models: models, model: model, maxTokens: maxTokens, logger: logger}
}

// ErrEmptyExplanation is returned when the model answers with blank text.
var ErrEmptyExplanation = errors.New("model returned an empty explanation")

// Explain returns a markdown explanation of req's command.
func (e *Explainer) Explain(ctx context.Context, req Request) (string, error) {
	provider, route, err := e.models.Resolve(e.model)
	if err != nil {
		return "", fmt.Errorf("resolve model: %w", err)
	}

	maxTokens := route.MaxTokens
	if e.maxTokens > 0 {
		maxTokens = e.maxTokens
	}

	start := time.Now()
	out, err := llm.Complete(ctx, provider, llm.GenerateRequest{
		Model:       route.Model,
		System:      buildSystemPrompt(),
		Prompt:      buildUserPrompt(req),
		MaxTokens:   maxTokens,
		Temperature: route.Temperature,
	})
	if err != nil {
		e.logger.Warn("explain failed", zap.String("provider", provider.Name()), zap.String("model", route.Model), zap.Error(err))
		return "", fmt.Errorf("explain with %s: %w", route.Model, err)
	}
	e.logger.Debug("explain done",
		zap.String("provider", provider.Name()),
		zap.String("model", route.Model),
		zap.Duration("took", time.Since(start)),
	)

	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyExplanation
	}
	return out, nil
}
