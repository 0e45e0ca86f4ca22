package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/insightreporter/internal/api/response"
	"github.com/kiranshivaraju/insightreporter/internal/store"
	"github.com/kiranshivaraju/insightreporter/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

// KeyLookup is the slice of the store the auth middleware needs.
type KeyLookup interface {
	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
}

// Auth provides authentication and scope-checking middleware.
type Auth struct {
	keys KeyLookup
}

// NewAuth creates a new Auth middleware.
func NewAuth(keys KeyLookup) *Auth {
	return &Auth{keys: keys}
}

// Authenticate validates the Bearer token against the stored bcrypt hashes
// and stores the matching key as the request's Principal.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawKey := extractBearerToken(r)
		if rawKey == "" {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Missing or invalid Authorization header", nil)
			return
		}

		if len(rawKey) < store.KeyPrefixLen {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Invalid API key format", nil)
			return
		}

		prefix := rawKey[:store.KeyPrefixLen]

		keys, err := a.keys.GetAPIKeyByPrefix(r.Context(), prefix)
		if err != nil {
			slog.ErrorContext(r.Context(), "api key lookup failed", "prefix", prefix, "error", err)
			response.Error(w, http.StatusInternalServerError,
				"INTERNAL_ERROR", "Failed to validate API key", nil)
			return
		}

		var matched *models.APIKey
		for _, key := range keys {
			if bcrypt.CompareHashAndPassword([]byte(key.KeyHash), []byte(rawKey)) == nil {
				matched = key
				break
			}
		}

		if matched == nil {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Invalid API key", nil)
			return
		}

		ctx := WithPrincipal(r.Context(), Principal{
			KeyID:  matched.ID,
			Scopes: matched.Scopes,
		})

		// last_used_at is advisory
		go func(id uuid.UUID) {
			if err := a.keys.UpdateAPIKeyLastUsed(context.Background(), id); err != nil {
				slog.Warn("failed to update api key last_used_at", "key_id", id, "error", err)
			}
		}(matched.ID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireScope returns middleware that checks whether the authenticated
// API key has the specified scope. The admin scope satisfies every check.
func (a *Auth) RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, ok := PrincipalFrom(r.Context()); ok && p.Allows(scope) {
				next.ServeHTTP(w, r)
				return
			}
			response.Error(w, http.StatusForbidden,
				"FORBIDDEN", "Insufficient permissions", nil)
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
