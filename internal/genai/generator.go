// Package genai wraps the generative-language backend behind a single
// prompt-in/answer-out contract. The rest of the service treats the model as
// an opaque text-completion collaborator.
package genai

import (
	"context"
	"errors"
)

// Generator produces a free-form text answer for a prompt. model may be empty,
// in which case the implementation's default model is used.
type Generator interface {
	Generate(ctx context.Context, prompt, model string) (string, error)
	DefaultModel() string
}

var (
	// ErrNotConfigured means no API key was supplied; the suggestion
	// endpoints map it to a service-unavailable response.
	ErrNotConfigured = errors.New("generative model client is not configured")

	// ErrEmptyAnswer means the backend responded without any usable text.
	ErrEmptyAnswer = errors.New("the model did not return a usable answer")
)
