package store

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/insightreporter/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

// KeyPrefixLen is the number of leading characters of a raw key stored in
// clear for lookup.
const KeyPrefixLen = 8

const rawKeyPrefix = "ir_"

// NewAPIKey generates a raw key and the record to store for it. The raw key
// is returned once and never persisted.
func NewAPIKey(name string, scopes []string) (string, *models.APIKey, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, fmt.Errorf("generate api key: %w", err)
	}
	raw := rawKeyPrefix + hex.EncodeToString(buf)

	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash api key: %w", err)
	}

	if scopes == nil {
		scopes = []string{}
	}
	now := time.Now().UTC()
	return raw, &models.APIKey{
		ID:        uuid.New(),
		Name:      name,
		KeyHash:   string(hash),
		KeyPrefix: raw[:KeyPrefixLen],
		Scopes:    scopes,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
