package ai

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/kiranshivaraju/insightreporter/internal/ai/aierr"
	"github.com/kiranshivaraju/insightreporter/pkg/models"
)

// Stage is one prompt template bound to a provider. Each Generate call issues
// exactly one provider request.
type Stage struct {
	agent    models.Agent
	tmpl     *template.Template
	provider models.AIProvider
}

// NewStage creates a Stage for agent.
func NewStage(agent models.Agent, tmpl *template.Template, provider models.AIProvider) *Stage {
	return &Stage{agent: agent, tmpl: tmpl, provider: provider}
}

// NewEditor returns the narrative-writing stage.
func NewEditor(provider models.AIProvider) *Stage {
	return NewStage(models.AgentEditor, EditorPrompt, provider)
}

// NewStrategist returns the recommendation stage.
func NewStrategist(provider models.AIProvider) *Stage {
	return NewStage(models.AgentStrategist, StrategistPrompt, provider)
}

func (s *Stage) Agent() models.Agent { return s.agent }

// Render executes the stage template against data.
func (s *Stage) Render(data any) (string, error) {
	var b strings.Builder
	if err := s.tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", s.agent, err)
	}
	return b.String(), nil
}

// Generate renders the prompt and returns the provider's text verbatim.
// An empty or whitespace-only response is treated as malformed and fails with
// ErrInvalidResponse. Errors match ErrGeneration and, where known, the
// provider sentinel.
func (s *Stage) Generate(ctx context.Context, data any) (string, error) {
	prompt, err := s.Render(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	text, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrGeneration, s.agent, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s: %w", ErrGeneration, s.agent, aierr.Empty(s.provider.Name()))
	}

	return text, nil
}
