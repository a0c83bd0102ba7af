package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"cjk-extractor/internal/filewalker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	changes []Change
}

func (r *recorder) handle(c Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *recorder) find(path string) (Change, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.changes) - 1; i >= 0; i-- {
		if r.changes[i].Path == path {
			return r.changes[i], true
		}
	}
	return Change{}, false
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changes)
}

func startWatcher(t *testing.T, root string) *recorder {
	t.Helper()

	w, err := New(root, filewalker.NewWalker(filewalker.DefaultOptions()), 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, rec.handle)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return rec
}

func TestWatcher_RescansWrittenFile(t *testing.T) {
	root := t.TempDir()
	rec := startWatcher(t, root)

	path := filepath.Join(root, "a.dart")
	require.NoError(t, os.WriteFile(path, []byte("Text('你好');\n"), 0o644))

	require.Eventually(t, func() bool {
		c, ok := rec.find(path)
		return ok && c.File != nil && len(c.File.Matches) == 1
	}, 5*time.Second, 20*time.Millisecond)

	c, _ := rec.find(path)
	assert.Equal(t, "你好'", c.File.Matches[0].Text)
}

func TestWatcher_NewDirectory(t *testing.T) {
	root := t.TempDir()
	rec := startWatcher(t, root)

	dir := filepath.Join(root, "lib", "pages")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "home.dart")
	require.NoError(t, os.WriteFile(path, []byte("'首页'\n"), 0o644))

	require.Eventually(t, func() bool {
		c, ok := rec.find(path)
		return ok && c.File != nil
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcher_IgnoresExcludedAndForeignFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "build"), 0o755))
	rec := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "build", "x.dart"), []byte("'构建'\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("文本\n"), 0o644))
	marker := filepath.Join(root, "marker.dart")
	require.NoError(t, os.WriteFile(marker, []byte("'标记'\n"), 0o644))

	require.Eventually(t, func() bool {
		_, ok := rec.find(marker)
		return ok
	}, 5*time.Second, 20*time.Millisecond)

	_, ok := rec.find(filepath.Join(root, "build", "x.dart"))
	assert.False(t, ok)
	_, ok = rec.find(filepath.Join(root, "notes.txt"))
	assert.False(t, ok)
}

func TestWatcher_Removed(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.dart")
	require.NoError(t, os.WriteFile(path, []byte("'你好'\n"), 0o644))
	rec := startWatcher(t, root)

	require.NoError(t, os.Remove(path))

	require.Eventually(t, func() bool {
		c, ok := rec.find(path)
		return ok && c.Removed
	}, 5*time.Second, 20*time.Millisecond)
	assert.Positive(t, rec.len())
}

func TestNew_InvalidRoot(t *testing.T) {
	walker := filewalker.NewWalker(filewalker.DefaultOptions())

	_, err := New(filepath.Join(t.TempDir(), "missing"), walker, 0)
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "a.dart")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = New(file, walker, 0)
	assert.Error(t, err)
}
