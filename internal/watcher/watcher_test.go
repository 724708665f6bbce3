package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/solidprinciples/solid/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(42), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestEventTypeFromOp(t *testing.T) {
	assert.Equal(t, EventTypeCreated, eventType(fsnotify.Create|fsnotify.Write))
	assert.Equal(t, EventTypeModified, eventType(fsnotify.Write))
	assert.Equal(t, EventTypeDeleted, eventType(fsnotify.Remove))
	assert.Equal(t, EventTypeRenamed, eventType(fsnotify.Rename))
	assert.Equal(t, EventTypeModified, eventType(fsnotify.Chmod))
}

func TestGlobFilter(t *testing.T) {
	root := filepath.Join("content")
	filter := GlobFilter(root, []string{"**/*.txt", "pages.yaml"})

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, "examples", "single-responsibility", "go", "with.txt"), true},
		{filepath.Join(root, "pages.yaml"), true},
		{filepath.Join(root, "pages", "intro.md"), false},
		{filepath.Join("elsewhere", "with.txt"), false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, filter(tt.path))
		})
	}
}

func TestNoHiddenFilter(t *testing.T) {
	assert.True(t, NoHiddenFilter("content/with.txt"))
	assert.False(t, NoHiddenFilter("content/.with.txt.swp"))
	assert.False(t, NoHiddenFilter("content/with.txt~"))
}

func TestValidatePath(t *testing.T) {
	_, err := validatePath("")
	assert.Error(t, err)
	_, err = validatePath("../outside")
	assert.Error(t, err)
	p, err := validatePath("content/./examples")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("content", "examples"), p)
}

func TestDebouncerFlush(t *testing.T) {
	d := &Debouncer{
		delay:  time.Hour,
		events: make(chan ChangeEvent, 10),
		output: make(chan []ChangeEvent, 1),
	}
	d.addEvent(ChangeEvent{Type: EventTypeCreated, Path: "b"})
	d.addEvent(ChangeEvent{Type: EventTypeCreated, Path: "a"})
	d.addEvent(ChangeEvent{Type: EventTypeModified, Path: "b"})
	d.timer.Stop()
	d.flush()

	events := <-d.output
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].Path)
	assert.Equal(t, "b", events[1].Path)
	assert.Equal(t, EventTypeModified, events[1].Type)

	d.flush()
	assert.Empty(t, d.output)
}

func TestFileWatcherDeliversChanges(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "examples", "single-responsibility", "go")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	fw, err := NewFileWatcher(50*time.Millisecond, logging.Discard())
	require.NoError(t, err)
	defer fw.Stop()

	fw.AddFilter(NoHiddenFilter)
	fw.AddFilter(GlobFilter(root, []string{"**/*.txt"}))

	var mu sync.Mutex
	var got []ChangeEvent
	fw.AddHandler(func(events []ChangeEvent) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, events...)
		return nil
	})

	require.NoError(t, fw.AddRecursive(root))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fw.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(nested, "with.txt"), []byte("type A struct{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "notes.md"), []byte("ignored"), 0o644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range got {
			if filepath.Base(e.Path) == "with.txt" {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)

	mu.Lock()
	for _, e := range got {
		assert.NotEqual(t, "notes.md", filepath.Base(e.Path))
	}
	mu.Unlock()

	assert.NoError(t, fw.Stop())
	assert.NoError(t, fw.Stop())
}
