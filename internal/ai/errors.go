package ai

import (
	"errors"

	"github.com/kiranshivaraju/insightreporter/internal/ai/aierr"
)

// Re-exported so callers only import ai.
var (
	ErrProviderUnavailable = aierr.ErrProviderUnavailable
	ErrInferenceTimeout    = aierr.ErrInferenceTimeout
	ErrInvalidResponse     = aierr.ErrInvalidResponse
)

// ErrGeneration is returned by every failed Stage.Generate call.
var ErrGeneration = errors.New("generation failed")
