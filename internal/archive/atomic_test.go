package archive

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomic_FailedWriteKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alerts.csv")
	require.NoError(t, os.WriteFile(path, []byte("original\n"), 0o644))

	err := writeAtomic(path, 0o644, func(w io.Writer) error {
		if _, err := io.WriteString(w, "partial"); err != nil {
			return err
		}
		return errors.New("encoder failed")
	})
	require.Error(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original\n", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file was not removed")
}

func TestWriteAtomic_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "2025", "alerts.csv")

	require.NoError(t, writeAtomic(path, 0o644, func(w io.Writer) error {
		_, err := io.WriteString(w, "ok\n")
		return err
	}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", string(b))
}
