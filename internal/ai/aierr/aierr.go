// Package aierr holds the error values shared by every text-generation provider.
package aierr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrInferenceTimeout    = errors.New("ai inference timeout")
	ErrInvalidResponse     = errors.New("ai provider returned invalid response")
)

// Classify maps a provider call failure onto the shared sentinels. Caller
// cancellation is passed through unchanged.
func Classify(ctx context.Context, provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", ErrInferenceTimeout, provider, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", provider, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s: %v", ErrInferenceTimeout, provider, err)
	}

	return fmt.Errorf("%w: %s: %v", ErrProviderUnavailable, provider, err)
}

// ClassifyStatus maps an HTTP status returned by a provider API.
func ClassifyStatus(provider string, status int, err error) error {
	switch status {
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s: status %d: %v", ErrInferenceTimeout, provider, status, err)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s: status %d: %v", ErrInvalidResponse, provider, status, err)
	default:
		return fmt.Errorf("%w: %s: status %d: %v", ErrProviderUnavailable, provider, status, err)
	}
}

// Empty reports a response that carried no text.
func Empty(provider string) error {
	return fmt.Errorf("%w: %s: empty response", ErrInvalidResponse, provider)
}
