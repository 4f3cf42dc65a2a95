package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/delegen/internal/utils"
)

type runResult struct {
	report *Report
	err    error
}

func TestWatchRegeneratesOnSourceChange(t *testing.T) {
	root := writeModule(t, map[string]string{"a/a.go": sourceA})

	logger := utils.NewDiagnosticSystem(utils.DiagnosticDebug)
	logger.SetOutput(io.Discard, io.Discard)
	g, err := NewGenerator(testConfig(root), logger)
	require.NoError(t, err)

	w, err := NewWatcher(g, logger, 50*time.Millisecond)
	require.NoError(t, err)

	runs := make(chan runResult, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, nil, func(report *Report, err error) {
			runs <- runResult{report: report, err: err}
		})
	}()

	first := waitRun(t, runs)
	require.NoError(t, first.err)
	require.Len(t, first.report.Generated, 1)

	updated := strings.Replace(sourceA, "func (A) Get() int { return 1 }",
		"func (A) Get() int { return 1 }\n\nfunc (A) Put(x int) {}", 1)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "a.go"), []byte(updated), 0644))

	second := waitRun(t, runs)
	require.NoError(t, second.err)

	generated, err := os.ReadFile(filepath.Join(root, "a", "a_delegate.go"))
	require.NoError(t, err)
	assert.Contains(t, string(generated), "Put(x int)")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherIgnoresGeneratedOutputs(t *testing.T) {
	root := writeModule(t, map[string]string{"a/a.go": sourceA})
	g, _ := newTestGenerator(t, testConfig(root))
	_, err := g.Run(nil)
	require.NoError(t, err)

	logger, _ := testLogger()
	w, err := NewWatcher(g, logger, 0)
	require.NoError(t, err)
	defer w.watcher.Close()

	assert.Equal(t, DefaultDebounce, w.debounce)
	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(root, "a", "a_delegate.go"), Op: fsnotify.Write}))
	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(root, "a", ".delegen-123.tmp"), Op: fsnotify.Create}))
	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(root, "a", "a.go"), Op: fsnotify.Chmod}))
	assert.True(t, w.relevant(fsnotify.Event{Name: filepath.Join(root, "a", "a.go"), Op: fsnotify.Write}))
	assert.True(t, w.relevant(fsnotify.Event{Name: filepath.Join(root, "a", "gone.go"), Op: fsnotify.Remove}))
}

func waitRun(t *testing.T, runs <-chan runResult) runResult {
	t.Helper()
	select {
	case r := <-runs:
		return r
	case <-time.After(30 * time.Second):
		t.Fatal("timed out waiting for a generation run")
		return runResult{}
	}
}
