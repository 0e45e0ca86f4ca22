package ai

import (
	"context"
	"fmt"

	"github.com/kiranshivaraju/insightreporter/internal/ai/anthropic"
	"github.com/kiranshivaraju/insightreporter/internal/ai/gemini"
	"github.com/kiranshivaraju/insightreporter/internal/ai/mock"
	"github.com/kiranshivaraju/insightreporter/internal/ai/ollama"
	"github.com/kiranshivaraju/insightreporter/internal/ai/openai"
	"github.com/kiranshivaraju/insightreporter/internal/ai/vllm"
	"github.com/kiranshivaraju/insightreporter/internal/config"
	"github.com/kiranshivaraju/insightreporter/pkg/models"
)

// NewProvider constructs the configured AI provider.
// Called once at startup; the result is shared by both stages.
func NewProvider(ctx context.Context, cfg config.AIConfig) (models.AIProvider, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.NewProvider(ctx, cfg.Gemini, cfg.MaxTokens)
	case "ollama":
		return ollama.NewProvider(cfg.Ollama, cfg.MaxTokens), nil
	case "vllm":
		return vllm.NewProvider(cfg.VLLM, cfg.MaxTokens), nil
	case "openai":
		return openai.NewProvider(cfg.OpenAI, cfg.MaxTokens), nil
	case "anthropic":
		return anthropic.NewProvider(cfg.Anthropic, cfg.MaxTokens), nil
	case "mock":
		return mock.NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of gemini, openai, anthropic, ollama, vllm, mock", cfg.Provider)
	}
}
