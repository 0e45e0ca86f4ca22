package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
)

// FileSource reads a dataset from the local filesystem.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string { return s.path }

func (s *FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, s.path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, s.path)
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, s.path, err)
	}
	return f, nil
}

var _ Source = (*FileSource)(nil)
