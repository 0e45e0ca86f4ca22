package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/insightreporter/internal/api/middleware"
	"github.com/kiranshivaraju/insightreporter/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock key lookup ---

type mockKeys struct {
	keys    []*models.APIKey
	err     error
	touched atomic.Int32
}

func (m *mockKeys) GetAPIKeyByPrefix(_ context.Context, _ string) ([]*models.APIKey, error) {
	return m.keys, m.err
}

func (m *mockKeys) UpdateAPIKeyLastUsed(_ context.Context, _ uuid.UUID) error {
	m.touched.Add(1)
	return nil
}

// --- Mock Cache ---

type mockCache struct {
	counter int64
	err     error
	keys    []string
}

func (m *mockCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error { return nil }
func (m *mockCache) Get(_ context.Context, _ string) ([]byte, bool, error) { return nil, false, nil }
func (m *mockCache) Delete(_ context.Context, _ string) error { return nil }
func (m *mockCache) Ping(_ context.Context) error { return nil }
func (m *mockCache) SetNX(_ context.Context, _ string, _ []byte, _ time.Duration) (bool, error) {
	return true, nil
}
func (m *mockCache) Release(_ context.Context, _ string, _ []byte) (bool, error) {
	return true, nil
}
func (m *mockCache) IncrWithExpiry(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.keys = append(m.keys, key)
	m.counter++
	return m.counter, m.err
}

// --- helpers ---

func okHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}

func hashKey(t *testing.T, rawKey string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func errBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"].(map[string]any)
}

func authedRequest(rawKey string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+rawKey)
	return req
}

// ========================================
// Auth Middleware Tests
// ========================================

func TestAuth_MissingAuthHeader(t *testing.T) {
	auth := mw.NewAuth(&mockKeys{})
	handler := auth.Authenticate(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_TOKEN", errBody(t, w)["code"])
}

func TestAuth_InvalidBearerFormat(t *testing.T) {
	auth := mw.NewAuth(&mockKeys{})
	handler := auth.Authenticate(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Basic abc123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_KeyTooShort(t *testing.T) {
	auth := mw.NewAuth(&mockKeys{})
	handler := auth.Authenticate(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest("short"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_KeyNotFound(t *testing.T) {
	auth := mw.NewAuth(&mockKeys{keys: []*models.APIKey{}})
	handler := auth.Authenticate(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest("ir_test1234567890"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_LookupError(t *testing.T) {
	auth := mw.NewAuth(&mockKeys{err: errors.New("db down")})
	handler := auth.Authenticate(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest("ir_test1234567890"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", errBody(t, w)["code"])
}

func TestAuth_WrongPassword(t *testing.T) {
	rawKey := "ir_test1234567890abcdef"
	ms := &mockKeys{keys: []*models.APIKey{{
		ID:        uuid.New(),
		KeyHash:   hashKey(t, "different_key_entirely"),
		KeyPrefix: rawKey[:8],
		Scopes:    []string{models.ScopeBriefing},
	}}}
	handler := mw.NewAuth(ms).Authenticate(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest(rawKey))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ValidKey(t *testing.T) {
	rawKey := "ir_test1234567890abcdef"
	keyID := uuid.New()
	ms := &mockKeys{keys: []*models.APIKey{{
		ID:        keyID,
		KeyHash:   hashKey(t, rawKey),
		KeyPrefix: rawKey[:8],
		Scopes:    []string{models.ScopeBriefing},
	}}}

	var gotID uuid.UUID
	var gotOK bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, gotOK = mw.GetKeyID(r)
		w.WriteHeader(http.StatusOK)
	})
	handler := mw.NewAuth(ms).Authenticate(inner)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest(rawKey))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gotOK)
	assert.Equal(t, keyID, gotID)
	assert.Eventually(t, func() bool { return ms.touched.Load() == 1 }, time.Second, 10*time.Millisecond)
}

func TestAuth_RequireScope(t *testing.T) {
	tests := []struct {
		name   string
		scopes []string
		need   string
		want   int
	}{
		{"exact scope", []string{models.ScopeBriefing}, models.ScopeBriefing, http.StatusOK},
		{"admin satisfies any scope", []string{models.ScopeAdmin}, models.ScopeBriefing, http.StatusOK},
		{"missing scope", []string{models.ScopeBriefing}, models.ScopeAdmin, http.StatusForbidden},
		{"no scopes", []string{}, models.ScopeBriefing, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rawKey := "ir_scope_1234567890abcdef"
			ms := &mockKeys{keys: []*models.APIKey{{
				ID:        uuid.New(),
				KeyHash:   hashKey(t, rawKey),
				KeyPrefix: rawKey[:8],
				Scopes:    tt.scopes,
			}}}
			auth := mw.NewAuth(ms)
			handler := auth.Authenticate(auth.RequireScope(tt.need)(okHandler()))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, authedRequest(rawKey))

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", errBody(t, w)["code"])
			}
		})
	}
}

// ========================================
// Rate Limit Middleware Tests
// ========================================

func asKey(id uuid.UUID) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	return req.WithContext(mw.WithPrincipal(req.Context(), mw.Principal{
		KeyID:  id,
		Scopes: []string{models.ScopeBriefing},
	}))
}

func TestRateLimit_AllowsUnderLimit(t *testing.T) {
	mc := &mockCache{}
	id := uuid.New()
	handler := mw.NewRateLimit(mc, 60).Limit(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, asKey(id))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "60", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "59", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	assert.Equal(t, []string{"ratelimit:" + id.String()}, mc.keys)
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	mc := &mockCache{counter: 60} // next IncrWithExpiry will return 61
	handler := mw.NewRateLimit(mc, 60).Limit(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, asKey(uuid.New()))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", errBody(t, w)["code"])
}

func TestRateLimit_DefaultLimit(t *testing.T) {
	handler := mw.NewRateLimit(&mockCache{}, 0).Limit(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, asKey(uuid.New()))

	assert.Equal(t, "60", w.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimit_FailsOpen(t *testing.T) {
	mc := &mockCache{err: errors.New("redis down")}
	handler := mw.NewRateLimit(mc, 1).Limit(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, asKey(uuid.New()))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimit_Unauthenticated_PassThrough(t *testing.T) {
	handler := mw.NewRateLimit(&mockCache{}, 60).Limit(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

// ========================================
// Recovery Middleware Tests
// ========================================

func TestRecovery_CatchesPanic(t *testing.T) {
	panicking := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("something went wrong")
	})

	w := httptest.NewRecorder()
	mw.Recovery(panicking).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", errBody(t, w)["code"])
}

func TestRecovery_NoPanic(t *testing.T) {
	w := httptest.NewRecorder()
	mw.Recovery(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecovery_RepanicsOnAbort(t *testing.T) {
	aborting := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic(http.ErrAbortHandler)
	})

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		mw.Recovery(aborting).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
	})
}

// ========================================
// Logging Middleware Tests
// ========================================

func TestLogger_RecordsRequest(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	w := httptest.NewRecorder()
	mw.Logger(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "request", line["msg"])
	assert.Equal(t, "/test", line["path"])
	assert.EqualValues(t, 200, line["status"])
	assert.EqualValues(t, 2, line["bytes"])
}
