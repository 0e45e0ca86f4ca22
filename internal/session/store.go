package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/insightreporter/internal/cache"
	"github.com/kiranshivaraju/insightreporter/pkg/models"
)

// Scheduled is the reserved session ID used by the briefing scheduler.
const Scheduled = "scheduled"

var (
	ErrNotFound  = errors.New("session not found")
	ErrInvalidID = errors.New("invalid session id")
)

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// NewID returns a fresh random session ID.
func NewID() string {
	return uuid.NewString()
}

// ValidateID checks a caller-supplied session ID.
func ValidateID(id string) error {
	if !validID.MatchString(id) {
		return fmt.Errorf("%w: must be 1-64 characters of letters, digits, '-' or '_'", ErrInvalidID)
	}
	return nil
}

// Store keeps the latest log snapshot of each session in the cache. Every Save
// overwrites the previous snapshot; nothing accumulates.
type Store struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewStore creates a Store whose snapshots expire after ttl.
func NewStore(c cache.Cache, ttl time.Duration) *Store {
	return &Store{cache: c, ttl: ttl}
}

// Save replaces the stored log of (owner, id).
func (s *Store) Save(ctx context.Context, owner, id string, entries []models.LogEntry) error {
	if entries == nil {
		entries = []models.LogEntry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding session log: %w", err)
	}
	if err := s.cache.Set(ctx, cache.SessionLogKey(owner, id), raw, s.ttl); err != nil {
		return fmt.Errorf("saving session log: %w", err)
	}
	return nil
}

// Load returns the stored log of (owner, id), or ErrNotFound.
func (s *Store) Load(ctx context.Context, owner, id string) ([]models.LogEntry, error) {
	raw, found, err := s.cache.Get(ctx, cache.SessionLogKey(owner, id))
	if err != nil {
		return nil, fmt.Errorf("loading session log: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}

	var entries []models.LogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decoding session log: %w", err)
	}
	return entries, nil
}
