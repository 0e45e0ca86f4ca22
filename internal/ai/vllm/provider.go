// Package vllm talks to a vLLM server, which serves the OpenAI API natively.
package vllm

import (
	"strings"

	"github.com/kiranshivaraju/insightreporter/internal/ai/openai"
	"github.com/kiranshivaraju/insightreporter/internal/config"
)

const apiKey = "EMPTY"

// NewProvider creates a vLLM-backed provider.
func NewProvider(cfg config.VLLMConfig, maxTokens int) *openai.Provider {
	base := strings.TrimRight(cfg.BaseURL, "/") + "/v1/"
	return openai.NewCompatible("vllm", base, apiKey, cfg.Model, maxTokens)
}
