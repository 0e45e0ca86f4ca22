package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "company_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeCSV(t, sampleCSV)

	ds, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, path, ds.Source)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, "2023-03", ds.Rows[2].Month)
}

func TestLoad_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "company_data.csv")

	_, err := Load(context.Background(), missing)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), missing)
}

func TestLoad_DirectoryIsNotFound(t *testing.T) {
	_, err := Load(context.Background(), t.TempDir())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_MalformedFileNamesSource(t *testing.T) {
	path := writeCSV(t, "Month,Revenue_Millions\n2023-01,1\n")

	_, err := Load(context.Background(), path)
	require.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), path)
}

func TestLoader_SourceSelection(t *testing.T) {
	l := NewLoader(time.Second)

	assert.IsType(t, &HTTPSource{}, l.Source("http://example.com/data.csv"))
	assert.IsType(t, &HTTPSource{}, l.Source("https://example.com/data.csv"))
	assert.IsType(t, &FileSource{}, l.Source("company_data.csv"))
	assert.IsType(t, &FileSource{}, l.Source("/var/data/httpdump.csv"))
}
