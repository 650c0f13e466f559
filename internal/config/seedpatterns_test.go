package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSeedPatterns(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "seed_patterns.yaml")

	yamlContent := `patterns:
  - name: login
    pattern: "User <*> logged in from <*>"
    description: successful login
  - name: restart
    pattern: "System restart"
    description: unadorned restart notice
`
	require.NoError(t, os.WriteFile(file, []byte(yamlContent), 0o644))

	loaded, err := LoadSeedPatterns(file)
	require.NoError(t, err)
	require.Len(t, loaded.Patterns, 2)
	assert.Equal(t, "User <*> logged in from <*>", loaded.Patterns[0].Pattern)
}

func TestLoadSeedPatternsRejectsEmptyPattern(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "seed_patterns.yaml")
	require.NoError(t, os.WriteFile(file, []byte("patterns:\n  - name: broken\n    pattern: \"\"\n"), 0o644))

	_, err := LoadSeedPatterns(file)
	assert.Error(t, err)
}

func TestDefaultSeedPatternsNonEmpty(t *testing.T) {
	assert.NotEmpty(t, DefaultSeedPatterns().Patterns)
}

func TestSeedPatternsWatcherDebouncesReload(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "seed_patterns.yaml")
	require.NoError(t, os.WriteFile(file, []byte("patterns:\n  - name: a\n    pattern: \"a <*>\"\n"), 0o644))

	reloads := make(chan int, 10)
	callback := func(f *SeedPatternsFile) error {
		reloads <- len(f.Patterns)
		return nil
	}

	watcher, err := NewSeedPatternsWatcher(WatcherConfig{FilePath: file, DebounceMillis: 20}, callback, nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, watcher.Start(ctx))
	defer watcher.Stop()

	select {
	case n := <-reloads:
		assert.Equal(t, 1, n)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for initial callback")
	}

	require.NoError(t, os.WriteFile(file, []byte("patterns:\n  - name: a\n    pattern: \"a <*>\"\n  - name: b\n    pattern: \"b <*>\"\n"), 0o644))

	select {
	case n := <-reloads:
		assert.Equal(t, 2, n)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload after file change")
	}
}
