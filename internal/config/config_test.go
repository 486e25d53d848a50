package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default().Engine, cfg.Engine)
}

func TestLoadParsesThreadingBlock(t *testing.T) {
	dir := t.TempDir()
	contents := `
threading {
    min_async_threads 2
    max_async_threads 6
    enabled_initially true
}
watch {
    enabled true
    debounce_ms 250
    glob "**/*.cc"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".complete.kdl"), []byte(contents), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Engine.MinAsyncThreads)
	assert.Equal(t, 6, cfg.Engine.MaxAsyncThreads)
	assert.True(t, cfg.Engine.ThreadingEnabledInitially)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, 250, cfg.Watch.DebounceMs)
	assert.Equal(t, "**/*.cc", cfg.Watch.GlobPattern)
}

func TestLoadClampsInvalidThreadBounds(t *testing.T) {
	dir := t.TempDir()
	contents := `
threading {
    min_async_threads 0
    max_async_threads 1
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".complete.kdl"), []byte(contents), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cfg.Engine.MinAsyncThreads, 1)
	assert.GreaterOrEqual(t, cfg.Engine.MaxAsyncThreads, cfg.Engine.MinAsyncThreads)
}
