package manager

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

// TestDebouncer tests that bursts collapse into one call
func TestDebouncer(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(50*time.Millisecond, func() { calls.Add(1) })

	for i := 0; i < 10; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	if !waitFor(t, time.Second, func() bool { return calls.Load() == 1 }) {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
	time.Sleep(100 * time.Millisecond)
	if calls.Load() != 1 {
		t.Errorf("calls = %d after quiet period, want 1", calls.Load())
	}
}

// TestDebouncer_Stop tests that a stopped debouncer never fires
func TestDebouncer_Stop(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(20*time.Millisecond, func() { calls.Add(1) })

	d.Trigger()
	d.Stop()
	d.Trigger()

	time.Sleep(80 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("calls = %d, want 0", calls.Load())
	}
}

// TestFileWatcher_Relevant tests event filtering
func TestFileWatcher_Relevant(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "rules.txt")
	fw, err := NewFileWatcher(target, 0, quietLogger())
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v", err)
	}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write target", fsnotify.Event{Name: target, Op: fsnotify.Write}, true},
		{"create target", fsnotify.Event{Name: target, Op: fsnotify.Create}, true},
		{"remove target", fsnotify.Event{Name: target, Op: fsnotify.Remove}, false},
		{"chmod target", fsnotify.Event{Name: target, Op: fsnotify.Chmod}, false},
		{"write sibling", fsnotify.Event{Name: filepath.Join(dir, "other.txt"), Op: fsnotify.Write}, false},
		{"swap file", fsnotify.Event{Name: target + ".swp", Op: fsnotify.Create}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fw.relevant(tt.event); got != tt.want {
				t.Errorf("relevant() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestNewFileWatcher tests constructor defaults
func TestNewFileWatcher(t *testing.T) {
	if _, err := NewFileWatcher("", 0, nil); err == nil {
		t.Error("NewFileWatcher(\"\") expected error")
	}
	fw, err := NewFileWatcher("rules.txt", 0, nil)
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v", err)
	}
	if fw.interval != DefaultDebounceInterval {
		t.Errorf("interval = %v, want %v", fw.interval, DefaultDebounceInterval)
	}
	if !filepath.IsAbs(fw.path) {
		t.Errorf("path %q is not absolute", fw.path)
	}
}

// TestManager_Watch tests reloading on file changes, including rename-over saves
func TestManager_Watch(t *testing.T) {
	m, path, _ := newTestManager(t, baseRules)
	m.config.Debounce = 20 * time.Millisecond
	first, err := m.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Watch(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	writeRules(t, path, "[segment:site]\n@blog path /blog*\n")
	if !waitFor(t, 5*time.Second, func() bool { return m.Current().ID != first.ID }) {
		t.Fatal("ruleset was not reloaded after write")
	}
	second := m.Current()

	tmp := filepath.Join(filepath.Dir(path), "rules.tmp")
	writeRules(t, tmp, "[segment:site]\n@news path /news*\n")
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if !waitFor(t, 5*time.Second, func() bool { return m.Current().ID != second.ID }) {
		t.Fatal("ruleset was not reloaded after rename")
	}
	if got := categoryOf(t, m, "https://example.com/news/today"); got != "news" {
		t.Errorf("category = %q, want news", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch() did not return after cancel")
	}
}

// TestFileWatcher_Stop tests stopping a running watcher
func TestFileWatcher_Stop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.txt")
	fw, err := NewFileWatcher(path, 0, quietLogger())
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- fw.Watch(context.Background(), func() error { return nil }) }()

	if !waitFor(t, 2*time.Second, fw.IsRunning) {
		t.Fatal("watcher did not start")
	}
	if err := fw.Watch(context.Background(), func() error { return nil }); err == nil {
		t.Error("second Watch() expected error")
	}

	fw.Stop()
	if err := <-done; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
	if fw.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
	fw.Stop()
}

// TestManager_StartSchedule tests cron-driven reloads
func TestManager_StartSchedule(t *testing.T) {
	m, _, _ := newTestManager(t, baseRules)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := m.StartSchedule(ctx, "not a schedule"); err == nil {
		t.Error("StartSchedule() expected error for invalid schedule")
	}

	s, err := m.StartSchedule(ctx, "@every 1s")
	if err != nil {
		t.Fatalf("StartSchedule() error = %v", err)
	}
	if !s.IsRunning() {
		t.Error("IsRunning() = false")
	}
	if s.NextRun().IsZero() {
		t.Error("NextRun() is zero")
	}

	if !waitFor(t, 5*time.Second, func() bool { return m.Current() != nil }) {
		t.Fatal("scheduled reload did not load the rules")
	}

	cancel()
	if !waitFor(t, 2*time.Second, func() bool { return !s.IsRunning() }) {
		t.Error("scheduler still running after cancel")
	}
	if !s.NextRun().IsZero() {
		t.Error("NextRun() should be zero when stopped")
	}
}
