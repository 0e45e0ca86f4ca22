package store_test

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/insightreporter/internal/config"
	"github.com/kiranshivaraju/insightreporter/internal/store"
	"github.com/kiranshivaraju/insightreporter/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
)

// migrationsDir returns the absolute path to the migrations directory.
func migrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
}

// startPostgres runs a disposable postgres, applies migrations twice (the
// second run must be a no-op) and returns its connection string.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("insightreporter_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, pgContainer.Terminate(ctx)) })

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, store.RunMigrations(connStr, migrationsDir()))
	require.NoError(t, store.RunMigrations(connStr, migrationsDir()))
	return connStr
}

func newKey(name, prefix string) *models.APIKey {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.APIKey{
		ID:        uuid.New(),
		Name:      name,
		KeyHash:   "hash-" + name,
		KeyPrefix: prefix,
		Scopes:    []string{models.ScopeBriefing},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	connStr := startPostgres(t)
	ctx := context.Background()

	pool, err := store.Connect(ctx, config.DatabaseConfig{
		URL:             connStr,
		MaxOpenConns:    4,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := store.NewPostgresStore(pool)

	// Each subtest starts from an empty table.
	run := func(name string, fn func(t *testing.T)) {
		t.Run(name, func(t *testing.T) {
			_, err := pool.Exec(ctx, "TRUNCATE api_keys")
			require.NoError(t, err)
			fn(t)
		})
	}

	run("ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})

	run("create and get by prefix", func(t *testing.T) {
		key := newKey("test-key", "ir_abcde")
		key.Scopes = []string{models.ScopeBriefing, models.ScopeAdmin}
		require.NoError(t, s.CreateAPIKey(ctx, key))

		keys, err := s.GetAPIKeyByPrefix(ctx, "ir_abcde")
		require.NoError(t, err)
		require.Len(t, keys, 1)
		assert.Equal(t, key.ID, keys[0].ID)
		assert.Equal(t, "test-key", keys[0].Name)
		assert.Equal(t, []string{models.ScopeBriefing, models.ScopeAdmin}, keys[0].Scopes)
		assert.True(t, key.CreatedAt.Equal(keys[0].CreatedAt))
		assert.Nil(t, keys[0].LastUsedAt)
		assert.Nil(t, keys[0].RevokedAt)
	})

	run("unknown prefix", func(t *testing.T) {
		keys, err := s.GetAPIKeyByPrefix(ctx, "ir_nope0")
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	run("list newest first", func(t *testing.T) {
		base := time.Now().UTC().Truncate(time.Microsecond)
		for i, name := range []string{"oldest", "middle", "newest"} {
			k := newKey(name, "ir_"+uuid.NewString()[:5])
			k.CreatedAt = base.Add(time.Duration(i) * time.Second)
			require.NoError(t, s.CreateAPIKey(ctx, k))
		}

		keys, err := s.ListAPIKeys(ctx)
		require.NoError(t, err)
		require.Len(t, keys, 3)
		assert.Equal(t, "newest", keys[0].Name)
		assert.Equal(t, "oldest", keys[2].Name)
	})

	run("list empty is not nil", func(t *testing.T) {
		keys, err := s.ListAPIKeys(ctx)
		require.NoError(t, err)
		assert.NotNil(t, keys)
		assert.Empty(t, keys)
	})

	run("revoke hides the key", func(t *testing.T) {
		key := newKey("revoke-me", "ir_revk0")
		require.NoError(t, s.CreateAPIKey(ctx, key))
		require.NoError(t, s.RevokeAPIKey(ctx, key.ID))

		keys, err := s.ListAPIKeys(ctx)
		require.NoError(t, err)
		assert.Empty(t, keys)

		keys, err = s.GetAPIKeyByPrefix(ctx, "ir_revk0")
		require.NoError(t, err)
		assert.Empty(t, keys)

		assert.ErrorIs(t, s.RevokeAPIKey(ctx, key.ID), store.ErrNotFound)
	})

	run("revoke unknown", func(t *testing.T) {
		assert.ErrorIs(t, s.RevokeAPIKey(ctx, uuid.New()), store.ErrNotFound)
	})

	run("touch last used", func(t *testing.T) {
		key := newKey("usage-key", "ir_used0")
		require.NoError(t, s.CreateAPIKey(ctx, key))
		require.NoError(t, s.UpdateAPIKeyLastUsed(ctx, key.ID))

		keys, err := s.GetAPIKeyByPrefix(ctx, "ir_used0")
		require.NoError(t, err)
		require.Len(t, keys, 1)
		assert.NotNil(t, keys[0].LastUsedAt)
	})

	run("duplicate id", func(t *testing.T) {
		key := newKey("dup1", "ir_dup01")
		require.NoError(t, s.CreateAPIKey(ctx, key))

		key2 := newKey("dup2", "ir_dup02")
		key2.ID = key.ID
		assert.ErrorIs(t, s.CreateAPIKey(ctx, key2), store.ErrDuplicateKey)
	})

	run("duplicate active name", func(t *testing.T) {
		first := newKey("ops", "ir_ops01")
		require.NoError(t, s.CreateAPIKey(ctx, first))
		assert.ErrorIs(t, s.CreateAPIKey(ctx, newKey("ops", "ir_ops02")), store.ErrDuplicateKey)

		// A revoked key frees its name.
		require.NoError(t, s.RevokeAPIKey(ctx, first.ID))
		assert.NoError(t, s.CreateAPIKey(ctx, newKey("ops", "ir_ops03")))
	})
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := store.Connect(context.Background(), config.DatabaseConfig{URL: "postgres://%zz"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse database URL")
}

// --- Key generation ---

func TestNewAPIKey(t *testing.T) {
	raw, key, err := store.NewAPIKey("ops", []string{models.ScopeAdmin})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(raw, "ir_"))
	assert.Len(t, raw, 3+48)
	assert.Equal(t, raw[:store.KeyPrefixLen], key.KeyPrefix)
	assert.Equal(t, "ops", key.Name)
	assert.Equal(t, []string{models.ScopeAdmin}, key.Scopes)
	assert.NotEqual(t, uuid.Nil, key.ID)
	assert.NotContains(t, key.KeyHash, raw)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(key.KeyHash), []byte(raw)))
}

func TestNewAPIKey_Unique(t *testing.T) {
	a, _, err := store.NewAPIKey("a", nil)
	require.NoError(t, err)
	b, key, err := store.NewAPIKey("b", nil)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotNil(t, key.Scopes)
}
