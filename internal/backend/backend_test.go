package backend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.cc")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestNewIndexSucceeds(t *testing.T) {
	idx, err := NewIndex()
	require.NoError(t, err)
	require.NotNil(t, idx)
	defer idx.Close()
}

func TestOpenAndCompleteAt(t *testing.T) {
	idx, err := NewIndex()
	require.NoError(t, err)
	defer idx.Close()

	path := writeTempFile(t, "int abacus;\nint banana;\n")
	tu, err := idx.Open(path, nil)
	require.NoError(t, err)
	defer tu.Close()

	require.NoError(t, tu.Reparse(nil))

	cands, err := tu.CompleteAt(2, 1, nil)
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, c := range cands {
		names[c.InsertionText] = true
	}
	assert.True(t, names["abacus"] || names["banana"], "expected at least one known identifier, got %v", cands)
}

func TestReparseWithUnsavedOverride(t *testing.T) {
	idx, err := NewIndex()
	require.NoError(t, err)
	defer idx.Close()

	path := writeTempFile(t, "int original;\n")
	tu, err := idx.Open(path, nil)
	require.NoError(t, err)
	defer tu.Close()

	unsaved := []UnsavedFile{{Path: path, Contents: []byte("int replaced;\n")}}
	require.NoError(t, tu.Reparse(unsaved))

	cands, err := tu.CompleteAt(1, 1, unsaved)
	require.NoError(t, err)

	found := false
	for _, c := range cands {
		if c.InsertionText == "replaced" {
			found = true
		}
	}
	assert.True(t, found, "expected 'replaced' among candidates, got %v", cands)
}

func TestOpenMissingFileReturnsError(t *testing.T) {
	idx, err := NewIndex()
	require.NoError(t, err)
	defer idx.Close()

	_, err = idx.Open(filepath.Join(t.TempDir(), "missing.cc"), nil)
	assert.Error(t, err)
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "ignored", SeverityIgnored.String())
}
