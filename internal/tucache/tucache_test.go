package tucache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/complete-engine/internal/backend"
)

func writeTempFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.cc")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	idx, err := backend.NewIndex()
	require.NoError(t, err)
	c := New(idx)
	t.Cleanup(c.Dispose)
	return c
}

func TestEnsureInstallsHandleOnMiss(t *testing.T) {
	c := newTestCache(t)
	path := writeTempFile(t, "int abacus;\n")

	_, ok := c.Handle(path)
	assert.False(t, ok)

	tu, err := c.Ensure(path, nil)
	require.NoError(t, err)
	require.NotNil(t, tu)

	handle, ok := c.Handle(path)
	assert.True(t, ok)
	assert.Same(t, tu, handle)
}

func TestEnsureOnHitReparsesSameHandle(t *testing.T) {
	c := newTestCache(t)
	path := writeTempFile(t, "int abacus;\n")

	first, err := c.Ensure(path, nil)
	require.NoError(t, err)

	second, err := c.Ensure(path, nil)
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestDiagnosticsEmptyWithoutHandle(t *testing.T) {
	c := newTestCache(t)
	assert.Empty(t, c.Diagnostics("never-opened.cc"))
}

func TestDiagnosticsFiltersIgnored(t *testing.T) {
	c := newTestCache(t)
	path := writeTempFile(t, "int abacus;\n")
	_, err := c.Ensure(path, nil)
	require.NoError(t, err)

	for _, d := range c.Diagnostics(path) {
		assert.NotEqual(t, backend.SeverityIgnored, d.Severity)
	}
}

func TestDiagnosticsStableAcrossRepeatedCalls(t *testing.T) {
	c := newTestCache(t)
	path := writeTempFile(t, "int abacus;\n")
	_, err := c.Ensure(path, nil)
	require.NoError(t, err)

	first := c.Diagnostics(path)
	second := c.Diagnostics(path)
	assert.Equal(t, first, second)
}

func TestUpdateDiscardsHandle(t *testing.T) {
	c := newTestCache(t)
	path := writeTempFile(t, "int abacus;\n")
	require.NoError(t, c.Update(path, nil))

	_, ok := c.Handle(path)
	assert.True(t, ok)
}
