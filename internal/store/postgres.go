package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/insightreporter/pkg/models"
)

// uniqueViolation is the SQLSTATE postgres reports for a unique index conflict.
const uniqueViolation = "23505"

// PostgresStore is the Store backed by a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping satisfies the health check.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	return nil
}

// selectKeys lists columns in the order of models.APIKey's db tags.
const selectKeys = `SELECT id, name, key_hash, key_prefix, scopes, last_used_at, revoked_at, created_at, updated_at
FROM api_keys`

// GetAPIKeyByPrefix returns every active key sharing prefix. Several keys may
// collide on the prefix; the caller compares hashes.
func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	keys, err := s.queryKeys(ctx, selectKeys+` WHERE key_prefix = $1 AND revoked_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	return keys, nil
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	if _, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

// CreateAPIKey inserts key. A second active key with the same name fails with
// ErrDuplicateKey.
func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES (@id, @name, @key_hash, @key_prefix, @scopes, @created_at, @updated_at)`,
		pgx.NamedArgs{
			"id":         key.ID,
			"name":       key.Name,
			"key_hash":   key.KeyHash,
			"key_prefix": key.KeyPrefix,
			"scopes":     key.Scopes,
			"created_at": key.CreatedAt,
			"updated_at": key.UpdatedAt,
		})
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return fmt.Errorf("create api key %q: %w", key.Name, ErrDuplicateKey)
	case err != nil:
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

// ListAPIKeys returns active keys, newest first.
func (s *PostgresStore) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	keys, err := s.queryKeys(ctx, selectKeys+` WHERE revoked_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return keys, nil
}

// RevokeAPIKey marks an active key revoked. Unknown or already revoked keys
// return ErrNotFound.
func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET revoked_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND revoked_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) queryKeys(ctx context.Context, sql string, args ...any) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	keys, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[models.APIKey])
	if err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []*models.APIKey{}
	}
	return keys, nil
}

var _ Store = (*PostgresStore)(nil)
