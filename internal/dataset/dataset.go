// Package dataset loads the monthly company metrics table from a file or an
// HTTP(S) endpoint.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kiranshivaraju/insightreporter/pkg/models"
)

// Sentinel errors for dataset loading. ErrNotFound is the only failure a
// missing or unreachable source produces; lower-level I/O errors are folded into it.
var (
	ErrNotFound  = errors.New("dataset not found")
	ErrMalformed = errors.New("dataset malformed")
)

// NotFoundHint is the user-facing instruction shown when no dataset is available.
const NotFoundHint = "Data file not found. Please generate data first."

// Source is a readable tabular resource.
type Source interface {
	// Open returns the raw CSV stream. Failures to reach the resource must
	// wrap ErrNotFound.
	Open(ctx context.Context) (io.ReadCloser, error)
	// Name identifies the source in logs and errors.
	Name() string
}

// Loader resolves source identifiers to Sources and parses them.
type Loader struct {
	httpTimeout time.Duration
}

// NewLoader creates a Loader. httpTimeout bounds remote fetches.
func NewLoader(httpTimeout time.Duration) *Loader {
	return &Loader{httpTimeout: httpTimeout}
}

// Source maps an identifier to a Source: http:// and https:// identifiers are
// fetched remotely, anything else is a filesystem path.
func (l *Loader) Source(id string) Source {
	if strings.HasPrefix(id, "http://") || strings.HasPrefix(id, "https://") {
		return NewHTTPSource(id, l.httpTimeout)
	}
	return NewFileSource(id)
}

// Load reads and parses the dataset named by id.
func (l *Loader) Load(ctx context.Context, id string) (models.Dataset, error) {
	return LoadSource(ctx, l.Source(id))
}

// DefaultHTTPTimeout bounds remote fetches made through Load.
const DefaultHTTPTimeout = 10 * time.Second

// Load reads the dataset at source, a filesystem path or an http(s) URL.
func Load(ctx context.Context, source string) (models.Dataset, error) {
	return NewLoader(DefaultHTTPTimeout).Load(ctx, source)
}

// LoadSource reads the full dataset from src in source order.
func LoadSource(ctx context.Context, src Source) (models.Dataset, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return models.Dataset{}, err
	}
	defer rc.Close()

	rows, err := Parse(rc)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("parsing %s: %w", src.Name(), err)
	}

	return models.Dataset{Source: src.Name(), Rows: rows}, nil
}
