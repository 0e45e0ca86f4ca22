// Package openai implements models.AIProvider on the OpenAI chat completions
// API. The same client serves any OpenAI-compatible server.
package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/kiranshivaraju/insightreporter/internal/ai/aierr"
	"github.com/kiranshivaraju/insightreporter/internal/config"
	"github.com/kiranshivaraju/insightreporter/pkg/models"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// chatCompletions is the subset of openai.ChatCompletionService the provider calls.
type chatCompletions interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Provider implements models.AIProvider using OpenAI chat completions.
type Provider struct {
	name        string
	completions chatCompletions
	model       string
	maxTokens   int
}

// NewProvider creates a provider for api.openai.com or cfg.BaseURL.
func NewProvider(cfg config.OpenAIConfig, maxTokens int) *Provider {
	return NewCompatible("openai", cfg.BaseURL, cfg.APIKey, cfg.Model, maxTokens)
}

// NewCompatible creates a provider for an OpenAI-compatible endpoint. An empty
// baseURL uses the SDK default. SDK retries are disabled.
func NewCompatible(name, baseURL, apiKey, model string, maxTokens int) *Provider {
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(opts...)
	return newProvider(name, &client.Chat.Completions, model, maxTokens)
}

func newProvider(name string, c chatCompletions, model string, maxTokens int) *Provider {
	return &Provider{name: name, completions: c, model: model, maxTokens: maxTokens}
}

func (p *Provider) Name() string  { return p.name }
func (p *Provider) Model() string { return p.model }

func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if p.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(p.maxTokens))
	}

	completion, err := p.completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", aierr.ClassifyStatus(p.name, apiErr.StatusCode, err)
		}
		return "", aierr.Classify(ctx, p.name, err)
	}

	if completion == nil || len(completion.Choices) == 0 {
		return "", aierr.Empty(p.name)
	}
	text := completion.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", aierr.Empty(p.name)
	}
	return text, nil
}

var _ models.AIProvider = (*Provider)(nil)
