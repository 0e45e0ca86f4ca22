package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// maxBodyBytes caps how much of a remote dataset is read. A larger body is
// rejected as malformed rather than analyzed in part.
const maxBodyBytes = 10 << 20

// HTTPSource fetches a dataset over HTTP(S) with a single GET.
type HTTPSource struct {
	url      string
	client   *http.Client
	maxBytes int64
}

// NewHTTPSource creates an HTTPSource. A non-positive timeout leaves the
// client unbounded.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		url:      url,
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBodyBytes,
	}
}

func (s *HTTPSource) Name() string { return s.url }

func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: building request: %v", ErrNotFound, s.url, err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, s.classifyError(ctx, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s: status %d", ErrNotFound, s.url, resp.StatusCode)
	}

	return &cappedBody{
		r:     io.LimitReader(resp.Body, s.maxBytes+1),
		body:  resp.Body,
		limit: s.maxBytes,
		url:   s.url,
	}, nil
}

// classifyError maps transport-level errors to ErrNotFound. Cancellation by
// the caller is returned as-is.
func (s *HTTPSource) classifyError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("fetching %s: %w", s.url, ctxErr)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s: timed out: %v", ErrNotFound, s.url, err)
	}

	return fmt.Errorf("%w: %s: unreachable: %v", ErrNotFound, s.url, err)
}

// cappedBody reads at most limit bytes and fails once the body proves longer.
type cappedBody struct {
	r     io.Reader
	body  io.Closer
	limit int64
	read  int64
	url   string
}

func (b *cappedBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	b.read += int64(n)
	if b.read > b.limit {
		over := int(b.read - b.limit)
		return n - over, fmt.Errorf("%w: %s: body exceeds %d bytes", ErrMalformed, b.url, b.limit)
	}
	return n, err
}

func (b *cappedBody) Close() error { return b.body.Close() }

var _ Source = (*HTTPSource)(nil)
