// Package briefing glues the dataset, the analyzer and the pipeline into a
// single request: load, analyze, run, and keep the session log.
package briefing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kiranshivaraju/insightreporter/internal/analysis"
	"github.com/kiranshivaraju/insightreporter/internal/session"
	"github.com/kiranshivaraju/insightreporter/pkg/models"
)

// DatasetLoader resolves a source identifier to a dataset.
type DatasetLoader interface {
	Load(ctx context.Context, source string) (models.Dataset, error)
}

// Runner executes the generation pipeline.
type Runner interface {
	Run(ctx context.Context, a models.AnalysisResult, log *session.Log) (*models.PipelineResult, error)
}

// LogStore persists the latest log of a session.
type LogStore interface {
	Save(ctx context.Context, owner, id string, entries []models.LogEntry) error
	Load(ctx context.Context, owner, id string) ([]models.LogEntry, error)
}

// ErrNoStore is returned by Logs when the service runs without a session store.
var ErrNoStore = errors.New("session store not configured")

// Briefing is the outcome of one successful dispatch.
type Briefing struct {
	SessionID string                 `json:"session_id"`
	Source    string                 `json:"source"`
	Analysis  models.AnalysisResult  `json:"analysis"`
	Result    *models.PipelineResult `json:"result"`
	Logs      []models.LogEntry      `json:"logs"`
	CreatedAt time.Time              `json:"created_at"`
}

// RunError reports a pipeline failure together with the partial session log.
type RunError struct {
	SessionID string
	Logs      []models.LogEntry
	Err       error
}

func (e *RunError) Error() string { return e.Err.Error() }
func (e *RunError) Unwrap() error { return e.Err }

// Service runs briefings against one configured dataset source.
type Service struct {
	loader  DatasetLoader
	runner  Runner
	store   LogStore
	source  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewService creates a Service. store may be nil, in which case logs are not
// persisted. timeout bounds the generation stages; zero disables it.
func NewService(loader DatasetLoader, runner Runner, store LogStore, source string, timeout time.Duration) *Service {
	return &Service{
		loader:  loader,
		runner:  runner,
		store:   store,
		source:  source,
		timeout: timeout,
		logger:  slog.Default(),
	}
}

// Source returns the configured dataset source.
func (s *Service) Source() string { return s.source }

// Analyze loads the configured dataset and finds its anomaly.
func (s *Service) Analyze(ctx context.Context) (models.AnalysisResult, error) {
	return s.AnalyzeSource(ctx, s.source)
}

// AnalyzeSource is Analyze for an explicit source.
func (s *Service) AnalyzeSource(ctx context.Context, source string) (models.AnalysisResult, error) {
	ds, err := s.loader.Load(ctx, source)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	res, err := analysis.Analyze(ds)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("analyzing %s: %w", source, err)
	}
	return res, nil
}

// Dataset returns the last limit rows of the configured dataset together with
// the total row count.
func (s *Service) Dataset(ctx context.Context, limit int) (models.Dataset, int, error) {
	ds, err := s.loader.Load(ctx, s.source)
	if err != nil {
		return models.Dataset{}, 0, err
	}
	return models.Dataset{Source: ds.Source, Rows: ds.Tail(limit)}, ds.Len(), nil
}

// Dispatch runs a full briefing on the configured source.
func (s *Service) Dispatch(ctx context.Context, owner, sessionID string) (*Briefing, error) {
	return s.DispatchSource(ctx, owner, sessionID, s.source)
}

// DispatchSource loads and analyzes source, then runs the pipeline with a fresh
// session log. The log is saved whether or not the pipeline succeeds; a
// pipeline failure is returned as *RunError.
func (s *Service) DispatchSource(ctx context.Context, owner, sessionID, source string) (*Briefing, error) {
	a, err := s.AnalyzeSource(ctx, source)
	if err != nil {
		return nil, err
	}

	log := session.NewLog()

	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, runErr := s.runner.Run(runCtx, a, log)
	entries := log.Entries()
	s.saveLog(ctx, owner, sessionID, entries)

	if runErr != nil {
		s.logger.WarnContext(ctx, "briefing failed",
			"session_id", sessionID,
			"source", source,
			"entries", len(entries),
			"error", runErr,
		)
		return nil, &RunError{SessionID: sessionID, Logs: entries, Err: runErr}
	}

	s.logger.InfoContext(ctx, "briefing complete",
		"session_id", sessionID,
		"source", source,
		"month", a.Month,
	)

	return &Briefing{
		SessionID: sessionID,
		Source:    source,
		Analysis:  a,
		Result:    result,
		Logs:      entries,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Logs returns the stored log of a session.
func (s *Service) Logs(ctx context.Context, owner, sessionID string) ([]models.LogEntry, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.Load(ctx, owner, sessionID)
}

// saveLog is best effort; failures are only logged.
func (s *Service) saveLog(ctx context.Context, owner, sessionID string, entries []models.LogEntry) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(context.WithoutCancel(ctx), owner, sessionID, entries); err != nil {
		s.logger.ErrorContext(ctx, "failed to save session log", "session_id", sessionID, "error", err)
	}
}
