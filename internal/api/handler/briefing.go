package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kiranshivaraju/insightreporter/internal/ai"
	"github.com/kiranshivaraju/insightreporter/internal/analysis"
	mw "github.com/kiranshivaraju/insightreporter/internal/api/middleware"
	"github.com/kiranshivaraju/insightreporter/internal/api/response"
	"github.com/kiranshivaraju/insightreporter/internal/briefing"
	"github.com/kiranshivaraju/insightreporter/internal/dataset"
	"github.com/kiranshivaraju/insightreporter/internal/scheduler"
	"github.com/kiranshivaraju/insightreporter/internal/session"
	"github.com/kiranshivaraju/insightreporter/pkg/models"
)

// SessionHeader lets a caller pick the session a briefing is logged under.
const SessionHeader = "X-Session-ID"

const (
	defaultDatasetLimit = 12
	maxDatasetLimit     = 1000
)

// Briefer runs briefings and serves their stored logs.
type Briefer interface {
	Dispatch(ctx context.Context, owner, sessionID string) (*briefing.Briefing, error)
	Logs(ctx context.Context, owner, sessionID string) ([]models.LogEntry, error)
}

// Analyzer serves the dataset and its anomaly without running generation.
type Analyzer interface {
	Analyze(ctx context.Context) (models.AnalysisResult, error)
	Dataset(ctx context.Context, limit int) (models.Dataset, int, error)
}

// LatestReader returns the most recent scheduled briefing.
type LatestReader interface {
	Latest(ctx context.Context) (*briefing.Briefing, error)
}

type briefingResponse struct {
	SessionID string                `json:"session_id"`
	Source    string                `json:"source"`
	Headline  string                `json:"headline"`
	Article   string                `json:"article"`
	Strategy  string                `json:"strategy"`
	Analysis  models.AnalysisResult `json:"analysis"`
	Logs      []models.LogEntry     `json:"logs"`
	CreatedAt string                `json:"created_at"`
}

func newBriefingResponse(b *briefing.Briefing) briefingResponse {
	resp := briefingResponse{
		SessionID: b.SessionID,
		Source:    b.Source,
		Analysis:  b.Analysis,
		Logs:      b.Logs,
		CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
	}
	if b.Result != nil {
		resp.Headline = b.Result.Headline()
		resp.Article = b.Result.Article
		resp.Strategy = b.Result.Strategy
	}
	if resp.Logs == nil {
		resp.Logs = []models.LogEntry{}
	}
	return resp
}

// NewDispatchHandler returns an http.HandlerFunc for POST /api/v1/briefings.
func NewDispatchHandler(svc Briefer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFrom(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing API key", nil)
			return
		}

		sessionID := r.Header.Get(SessionHeader)
		if sessionID == "" {
			sessionID = session.NewID()
		} else if err := validateSessionID(sessionID); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}

		b, err := svc.Dispatch(r.Context(), owner, sessionID)
		if err != nil {
			writeBriefingError(w, err)
			return
		}

		w.Header().Set(SessionHeader, sessionID)
		response.Created(w, newBriefingResponse(b))
	}
}

// NewLogsHandler returns an http.HandlerFunc for GET /api/v1/sessions/{sessionID}/logs.
func NewLogsHandler(svc Briefer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFrom(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing API key", nil)
			return
		}

		sessionID := chi.URLParam(r, "sessionID")
		if err := validateSessionID(sessionID); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}

		entries, err := svc.Logs(r.Context(), owner, sessionID)
		if err != nil {
			writeBriefingError(w, err)
			return
		}

		response.JSON(w, map[string]any{
			"session_id": sessionID,
			"logs":       entries,
		})
	}
}

// NewDatasetHandler returns an http.HandlerFunc for GET /api/v1/dataset.
func NewDatasetHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultDatasetLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a positive integer", nil)
				return
			}
			limit = min(n, maxDatasetLimit)
		}

		ds, total, err := svc.Dataset(r.Context(), limit)
		if err != nil {
			writeBriefingError(w, err)
			return
		}

		response.Collection(w, ds.Rows, response.CollectionMeta{
			Returned: len(ds.Rows),
			Total:    total,
		})
	}
}

// NewAnalysisHandler returns an http.HandlerFunc for GET /api/v1/analysis.
func NewAnalysisHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.Analyze(r.Context())
		if err != nil {
			writeBriefingError(w, err)
			return
		}
		response.JSON(w, map[string]any{
			"analysis": a,
			"summary":  analysis.Summary(a),
		})
	}
}

// NewLatestHandler returns an http.HandlerFunc for GET /api/v1/briefings/latest.
func NewLatestHandler(src LatestReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := src.Latest(r.Context())
		if err != nil {
			writeBriefingError(w, err)
			return
		}
		response.JSON(w, newBriefingResponse(b))
	}
}

func ownerFrom(r *http.Request) (string, bool) {
	id, ok := mw.GetKeyID(r)
	if !ok {
		return "", false
	}
	return id.String(), true
}

// validateSessionID also rejects the reserved scheduler session.
func validateSessionID(id string) error {
	if id == session.Scheduled {
		return errors.New("session id \"scheduled\" is reserved")
	}
	return session.ValidateID(id)
}

func writeBriefingError(w http.ResponseWriter, err error) {
	var runErr *briefing.RunError
	switch {
	case errors.Is(err, dataset.ErrNotFound):
		response.Error(w, http.StatusNotFound, "DATA_NOT_FOUND", dataset.NotFoundHint, nil)
	case errors.Is(err, dataset.ErrMalformed), errors.Is(err, analysis.ErrEmptyDataset):
		response.Error(w, http.StatusUnprocessableEntity, "ANALYSIS_FAILED", err.Error(), nil)
	case errors.As(err, &runErr):
		details := map[string]any{
			"session_id": runErr.SessionID,
			"logs":       runErr.Logs,
		}
		if errors.Is(err, ai.ErrInferenceTimeout) || errors.Is(err, context.DeadlineExceeded) {
			response.Error(w, http.StatusGatewayTimeout, "AI_INFERENCE_TIMEOUT",
				"Generation took too long and was cancelled", details)
			return
		}
		response.Error(w, http.StatusBadGateway, "GENERATION_FAILED", err.Error(), details)
	case errors.Is(err, session.ErrNotFound):
		response.Error(w, http.StatusNotFound, "SESSION_NOT_FOUND", "No log stored for this session", nil)
	case errors.Is(err, scheduler.ErrNoBriefing):
		response.Error(w, http.StatusNotFound, "BRIEFING_NOT_FOUND", "No scheduled briefing has run yet", nil)
	case errors.Is(err, briefing.ErrNoStore):
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Session logs are not stored", nil)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
	}
}
