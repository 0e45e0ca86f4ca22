// Package pipeline sequences an analysis result through the Editor and
// Strategist stages, logging each step into the caller's session log.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kiranshivaraju/insightreporter/internal/ai"
	"github.com/kiranshivaraju/insightreporter/internal/analysis"
	"github.com/kiranshivaraju/insightreporter/internal/session"
	"github.com/kiranshivaraju/insightreporter/pkg/models"
)

// State is a step of a pipeline run.
type State string

const (
	StateStart             State = "START"
	StateDetectiveLogged   State = "DETECTIVE_LOGGED"
	StateEditorRunning     State = "EDITOR_RUNNING"
	StateEditorLogged      State = "EDITOR_LOGGED"
	StateStrategistRunning State = "STRATEGIST_RUNNING"
	StateStrategistLogged  State = "STRATEGIST_LOGGED"
	StateDone              State = "DONE"
)

// Generator produces text for one stage. *ai.Stage satisfies it.
type Generator interface {
	Generate(ctx context.Context, data any) (string, error)
}

// Observer is notified on every state the run enters.
type Observer func(State)

// Orchestrator runs the fixed two-stage pipeline. It holds no per-run state
// and may be shared by concurrent runs with distinct logs.
type Orchestrator struct {
	editor     Generator
	strategist Generator
	observer   Observer
	logger     *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver installs a state observer.
func WithObserver(fn Observer) Option {
	return func(o *Orchestrator) { o.observer = fn }
}

// WithLogger sets the logger used for the state trace.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an Orchestrator from explicit stages.
func New(editor, strategist Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{editor: editor, strategist: strategist}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// NewForProvider creates an Orchestrator whose stages share one provider.
func NewForProvider(p models.AIProvider, opts ...Option) *Orchestrator {
	return New(ai.NewEditor(p), ai.NewStrategist(p), opts...)
}

// Run executes Detective, Editor and Strategist in order. On a stage failure
// the error is returned and every entry appended so far stays in log.
func (o *Orchestrator) Run(ctx context.Context, a models.AnalysisResult, log *session.Log) (*models.PipelineResult, error) {
	o.enter(ctx, StateStart)

	log.Append(models.AgentDetective, models.ActionToolUse, analysis.Summary(a))
	o.enter(ctx, StateDetectiveLogged)

	log.Append(models.AgentEditor, models.ActionThinking,
		fmt.Sprintf("Drafting a breaking-news brief on %s against the dataset averages", a.Month))
	o.enter(ctx, StateEditorRunning)

	article, err := o.editor.Generate(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("editor stage: %w", err)
	}
	log.Append(models.AgentEditor, models.ActionOutput, Preview(article))
	o.enter(ctx, StateEditorLogged)

	o.enter(ctx, StateStrategistRunning)

	strategy, err := o.strategist.Generate(ctx, ai.StrategistInput{Brief: article})
	if err != nil {
		return nil, fmt.Errorf("strategist stage: %w", err)
	}
	// A failed Strategist leaves the log ending at Editor/OUTPUT, so its
	// THINKING entry is only written once the call has returned.
	log.Append(models.AgentStrategist, models.ActionThinking,
		"Reading the Editor's brief and drafting three recommendations for the CEO")
	log.Append(models.AgentStrategist, models.ActionOutput, Preview(strategy))
	o.enter(ctx, StateStrategistLogged)

	o.enter(ctx, StateDone)
	return &models.PipelineResult{Article: article, Strategy: strategy}, nil
}

func (o *Orchestrator) enter(ctx context.Context, s State) {
	o.logger.DebugContext(ctx, "pipeline state", "state", string(s))
	if o.observer != nil {
		o.observer(s)
	}
}
