package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/complete-engine/internal/backend"
)

type fakeSubmitter struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeSubmitter) UpdateTranslationUnitAsync(path string, _ []backend.UnsavedFile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestWatcherSubmitsOnMatchingWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foo.cc")
	require.NoError(t, os.WriteFile(path, []byte("int x;\n"), 0o644))

	sub := &fakeSubmitter{}
	w, err := New(sub, []string{dir}, "**/*.cc", 20*time.Millisecond)
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("int y;\n"), 0o644))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && sub.callCount() == 0 {
		time.Sleep(10 * time.Millisecond)
	}
	assert.GreaterOrEqual(t, sub.callCount(), 1)
}

func TestWatcherIgnoresNonMatchingPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foo.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	sub := &fakeSubmitter{}
	w, err := New(sub, []string{dir}, "**/*.cc", 20*time.Millisecond)
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("hello again"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, sub.callCount())
}
