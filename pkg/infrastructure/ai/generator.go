// Package ai is the boundary to the generative text service.
package ai

import "context"

// Options tunes a single generation request.
type Options struct {
	// StructuredOutput asks the model for a JSON response body
	StructuredOutput bool
}

// Generator produces text for a prompt. Implementations return the raw
// model text and leave interpretation to the caller.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface
type GeneratorFunc func(ctx context.Context, prompt string, opts Options) (string, error)

// Generate calls f
func (f GeneratorFunc) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	return f(ctx, prompt, opts)
}
