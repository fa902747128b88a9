package adk

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("model returned no content")

// Request is a single-turn completion request.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// LLMProvider defines the interface for different AI models
type LLMProvider interface {
	Name() string
	Model() string
	Complete(ctx context.Context, req Request) (string, error)
	ListModels(ctx context.Context) ([]string, error)
}
