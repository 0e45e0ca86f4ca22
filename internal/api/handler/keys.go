package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/insightreporter/internal/api/response"
	"github.com/kiranshivaraju/insightreporter/internal/store"
	"github.com/kiranshivaraju/insightreporter/pkg/models"
)

// KeyManager is the slice of the store the admin endpoints need.
type KeyManager interface {
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error
}

var knownScopes = map[string]bool{
	models.ScopeBriefing: true,
	models.ScopeAdmin:    true,
}

type createKeyResponse struct {
	*models.APIKey
	Key string `json:"key"`
}

// NewCreateKeyHandler returns an http.HandlerFunc for POST /api/v1/admin/keys.
func NewCreateKeyHandler(keys KeyManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name   string   `json:"name"`
			Scopes []string `json:"scopes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "name is required", nil)
			return
		}
		if len(req.Scopes) == 0 {
			req.Scopes = []string{models.ScopeBriefing}
		}
		for _, s := range req.Scopes {
			if !knownScopes[s] {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"scopes must be briefing or admin", map[string]string{"scope": s})
				return
			}
		}

		raw, key, err := store.NewAPIKey(req.Name, req.Scopes)
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to generate api key", "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create API key", nil)
			return
		}

		if err := keys.CreateAPIKey(r.Context(), key); err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				response.Error(w, http.StatusConflict, "DUPLICATE_KEY", "An API key with this name already exists", nil)
				return
			}
			slog.ErrorContext(r.Context(), "failed to store api key", "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create API key", nil)
			return
		}

		response.Created(w, createKeyResponse{APIKey: key, Key: raw})
	}
}

// NewListKeysHandler returns an http.HandlerFunc for GET /api/v1/admin/keys.
func NewListKeysHandler(keys KeyManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := keys.ListAPIKeys(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to list api keys", "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list API keys", nil)
			return
		}
		response.JSON(w, list)
	}
}

// NewRevokeKeyHandler returns an http.HandlerFunc for DELETE /api/v1/admin/keys/{keyID}.
func NewRevokeKeyHandler(keys KeyManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "keyID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "keyID must be a UUID", nil)
			return
		}

		if err := keys.RevokeAPIKey(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", "API key not found", nil)
				return
			}
			slog.ErrorContext(r.Context(), "failed to revoke api key", "key_id", id, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to revoke API key", nil)
			return
		}
		response.NoContent(w)
	}
}
