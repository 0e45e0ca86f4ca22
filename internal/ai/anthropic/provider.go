// Package anthropic implements models.AIProvider on the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/kiranshivaraju/insightreporter/internal/ai/aierr"
	"github.com/kiranshivaraju/insightreporter/internal/config"
	"github.com/kiranshivaraju/insightreporter/pkg/models"
)

// defaultMaxTokens is used when none is configured; the API requires one.
const defaultMaxTokens = 1024

// messages is the subset of sdk.MessageService the provider calls.
type messages interface {
	New(ctx context.Context, params sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// Provider implements models.AIProvider using Anthropic.
type Provider struct {
	msgs      messages
	model     string
	maxTokens int
}

// NewProvider creates an Anthropic provider with SDK retries disabled.
func NewProvider(cfg config.AnthropicConfig, maxTokens int) *Provider {
	return NewProviderWithOptions(cfg, maxTokens)
}

// NewProviderWithOptions is NewProvider with extra SDK request options, such as
// option.WithBaseURL for a proxy.
func NewProviderWithOptions(cfg config.AnthropicConfig, maxTokens int, extra ...option.RequestOption) *Provider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	opts = append(opts, extra...)

	client := sdk.NewClient(opts...)
	return newProvider(&client.Messages, cfg.Model, maxTokens)
}

func newProvider(m messages, model string, maxTokens int) *Provider {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Provider{msgs: m, model: model, maxTokens: maxTokens}
}

func (p *Provider) Name() string  { return "anthropic" }
func (p *Provider) Model() string { return p.model }

func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := p.msgs.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(p.model),
		MaxTokens: int64(p.maxTokens),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			return "", aierr.ClassifyStatus(p.Name(), apiErr.StatusCode, err)
		}
		return "", aierr.Classify(ctx, p.Name(), err)
	}

	var b strings.Builder
	if msg != nil {
		for _, block := range msg.Content {
			if block.Type == "text" {
				b.WriteString(block.Text)
			}
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", aierr.Empty(p.Name())
	}
	return b.String(), nil
}

var _ models.AIProvider = (*Provider)(nil)
