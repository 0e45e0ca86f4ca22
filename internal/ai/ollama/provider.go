// Package ollama talks to a local Ollama server through its OpenAI-compatible
// /v1 endpoint.
package ollama

import (
	"strings"

	"github.com/kiranshivaraju/insightreporter/internal/ai/openai"
	"github.com/kiranshivaraju/insightreporter/internal/config"
)

// apiKey is ignored by Ollama but keeps the SDK from reading OPENAI_API_KEY.
const apiKey = "ollama"

// NewProvider creates an Ollama-backed provider.
func NewProvider(cfg config.OllamaConfig, maxTokens int) *openai.Provider {
	return openai.NewCompatible("ollama", BaseURL(cfg.BaseURL), apiKey, cfg.Model, maxTokens)
}

// BaseURL returns the OpenAI-compatible root for an Ollama server URL.
func BaseURL(server string) string {
	return strings.TrimRight(server, "/") + "/v1/"
}
