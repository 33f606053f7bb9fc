// Package gemini adapts the Gemini API to ai.Generator.
package gemini

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/vsinha/timber/pkg/infrastructure/ai"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.5-flash"

// Generator generates text using Google's Gemini API.
type Generator struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
}

// New creates a Gemini-backed generator.
// requestsPerMinute <= 0 disables pacing.
func New(ctx context.Context, apiKey, model string, requestsPerMinute float64) (*Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerMinute/60), 1)
	}

	return &Generator{
		client:  client,
		model:   model,
		limiter: limiter,
	}, nil
}

// Model returns the configured model name
func (g *Generator) Model() string {
	return g.model
}

// Generate sends prompt to the model and returns the response text.
func (g *Generator) Generate(ctx context.Context, prompt string, opts ai.Options) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	config := &genai.GenerateContentConfig{}
	if opts.StructuredOutput {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("GenAI returned an empty response")
	}
	return text, nil
}

var _ ai.Generator = (*Generator)(nil)
