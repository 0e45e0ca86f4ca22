// Package gemini implements models.AIProvider on the Google Gen AI SDK.
package gemini

import (
	"context"
	"fmt"

	"github.com/kiranshivaraju/insightreporter/internal/ai/aierr"
	"github.com/kiranshivaraju/insightreporter/internal/config"
	"github.com/kiranshivaraju/insightreporter/pkg/models"
	"google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models the provider calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Provider implements models.AIProvider using Gemini.
type Provider struct {
	models    contentGenerator
	model     string
	maxTokens int
}

// NewProvider creates a Gemini provider backed by the Gemini API.
func NewProvider(ctx context.Context, cfg config.GeminiConfig, maxTokens int) (*Provider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return newProvider(client.Models, cfg.Model, maxTokens), nil
}

func newProvider(m contentGenerator, model string, maxTokens int) *Provider {
	return &Provider{models: m, model: model, maxTokens: maxTokens}
}

func (p *Provider) Name() string  { return "gemini" }
func (p *Provider) Model() string { return p.model }

func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	var genCfg *genai.GenerateContentConfig
	if p.maxTokens > 0 {
		genCfg = &genai.GenerateContentConfig{MaxOutputTokens: int32(p.maxTokens)}
	}

	resp, err := p.models.GenerateContent(ctx, p.model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", aierr.Classify(ctx, p.Name(), err)
	}
	if resp == nil {
		return "", aierr.Empty(p.Name())
	}

	text := resp.Text()
	if text == "" {
		return "", aierr.Empty(p.Name())
	}
	return text, nil
}

var _ models.AIProvider = (*Provider)(nil)
