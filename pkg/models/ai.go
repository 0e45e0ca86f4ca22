// Package models contains shared data models used across the InsightReporter codebase.
package models

import "context"

// AIProvider is the text-generation boundary. Implementations issue exactly one
// request per Generate call and return the raw response text.
// Stages receive a provider through this interface, never a concrete SDK client.
type AIProvider interface {
	// Generate sends a single prompt and returns the model's text verbatim.
	Generate(ctx context.Context, prompt string) (string, error)
	// Name returns the provider identifier (e.g., "gemini", "openai").
	Name() string
	// Model returns the model identifier requests are issued against.
	Model() string
}
