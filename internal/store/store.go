// Package store persists API keys in postgres. Briefings and session logs
// never reach the database.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/insightreporter/pkg/models"
)

var (
	// ErrNotFound is returned when a key does not exist or is already revoked.
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicateKey is returned when an insert conflicts with an existing
	// key ID or active key name.
	ErrDuplicateKey = errors.New("duplicate key violation")
)

// Store is the API key repository used by the auth middleware, the admin
// handlers and the keys command.
type Store interface {
	Ping(ctx context.Context) error

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error
}
