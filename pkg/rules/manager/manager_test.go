package manager

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"mercator-hq/urlcat/pkg/categorizer"
	"mercator-hq/urlcat/pkg/config"
	ruleErrors "mercator-hq/urlcat/pkg/rules/errors"
	"mercator-hq/urlcat/pkg/telemetry/metrics"
)

const baseRules = "[segment:site]\n@docs host*example.com path /docs*\n@other url *\n"

type reloadRecorder struct {
	mu       sync.Mutex
	statuses []string
}

func (r *reloadRecorder) RecordEvaluation([]categorizer.Result, time.Duration) {}

func (r *reloadRecorder) RecordEvaluationError(string) {}

func (r *reloadRecorder) RecordReload(status string, _, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func (r *reloadRecorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.statuses) == 0 {
		return ""
	}
	return r.statuses[len(r.statuses)-1]
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeRules(t *testing.T, path, text string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func newTestManager(t *testing.T, text string) (*Manager, string, *reloadRecorder) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "categorization.txt")
	writeRules(t, path, text)

	rec := &reloadRecorder{}
	m, err := New(&config.RulesConfig{File: path, Encoding: "utf-8"}, quietLogger(), rec)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m, path, rec
}

func categoryOf(t *testing.T, m *Manager, rawURL string) string {
	t.Helper()
	ev, err := m.Evaluator()
	if err != nil {
		t.Fatalf("Evaluator() error = %v", err)
	}
	results, err := ev.Evaluate(rawURL)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	return results[0].Category
}

// TestNew tests constructor validation
func TestNew(t *testing.T) {
	if _, err := New(nil, nil, nil); err == nil {
		t.Error("New(nil) expected error")
	}
	if _, err := New(&config.RulesConfig{}, nil, nil); err == nil {
		t.Error("New() with empty file expected error")
	}
}

// TestManager_NotLoaded tests accessors before the first load
func TestManager_NotLoaded(t *testing.T) {
	m, _, _ := newTestManager(t, baseRules)

	if m.Current() != nil {
		t.Error("Current() should be nil before Load")
	}
	if _, err := m.Evaluator(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Evaluator() error = %v, want ErrNotLoaded", err)
	}
}

// TestManager_Load tests the initial load
func TestManager_Load(t *testing.T) {
	m, path, rec := newTestManager(t, baseRules)

	rs, err := m.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if rs.ID == "" || rs.Checksum == "" {
		t.Errorf("ID = %q, Checksum = %q", rs.ID, rs.Checksum)
	}
	if rs.Path != path {
		t.Errorf("Path = %q, want %q", rs.Path, path)
	}
	if m.Current() != rs {
		t.Error("Current() does not return the loaded ruleset")
	}
	if rec.last() != metrics.ReloadSuccess {
		t.Errorf("recorded status = %q, want %q", rec.last(), metrics.ReloadSuccess)
	}

	if got := categoryOf(t, m, "https://example.com/docs/intro"); got != "docs" {
		t.Errorf("category = %q, want docs", got)
	}

	info := rs.Info()
	if info.Categories != 2 || len(info.Segments) != 1 || info.Segments[0] != "site" {
		t.Errorf("Info() = %+v", info)
	}
}

// TestManager_ReloadUnchanged tests that an identical file is not re-parsed
func TestManager_ReloadUnchanged(t *testing.T) {
	m, _, rec := newTestManager(t, baseRules)

	first, err := m.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	second, err := m.Reload()
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if second != first {
		t.Error("Reload() of an unchanged file should keep the same ruleset")
	}
	if rec.last() != metrics.ReloadUnchanged {
		t.Errorf("recorded status = %q, want %q", rec.last(), metrics.ReloadUnchanged)
	}

	forced, err := m.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if forced.ID == first.ID {
		t.Error("Load() should always produce a new ruleset")
	}
}

// TestManager_ReloadChanged tests that edits are picked up
func TestManager_ReloadChanged(t *testing.T) {
	m, path, _ := newTestManager(t, baseRules)

	first, err := m.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	writeRules(t, path, "[segment:site]\n@blog path /blog*\n@other url *\n")
	second, err := m.Reload()
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if second.ID == first.ID || second.Checksum == first.Checksum {
		t.Error("Reload() should activate a new ruleset")
	}
	if got := categoryOf(t, m, "https://example.com/blog/post"); got != "blog" {
		t.Errorf("category = %q, want blog", got)
	}
}

// TestManager_ReloadFailureKeepsPrevious tests recovery from broken edits
func TestManager_ReloadFailureKeepsPrevious(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, path string)
	}{
		{
			name: "syntax error",
			mutate: func(t *testing.T, path string) {
				writeRules(t, path, "[segment:site]\n@docs host\n")
			},
		},
		{
			name: "bad regex",
			mutate: func(t *testing.T, path string) {
				writeRules(t, path, "[segment:site]\n@docs path rx:/(\n")
			},
		},
		{
			name: "file removed",
			mutate: func(t *testing.T, path string) {
				if err := os.Remove(path); err != nil {
					t.Fatalf("Remove() error = %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, path, rec := newTestManager(t, baseRules)
			first, err := m.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			tt.mutate(t, path)

			if _, err := m.Reload(); err == nil {
				t.Fatal("Reload() expected error")
			}
			if m.Current() != first {
				t.Error("failed reload replaced the active ruleset")
			}
			if m.LastError() == nil {
				t.Error("LastError() should report the failure")
			}
			if rec.last() != metrics.ReloadFailure {
				t.Errorf("recorded status = %q, want %q", rec.last(), metrics.ReloadFailure)
			}
			if got := categoryOf(t, m, "https://example.com/docs/"); got != "docs" {
				t.Errorf("category = %q, want docs", got)
			}
		})
	}
}

// TestManager_Strict tests that lint warnings reject the file in strict mode
func TestManager_Strict(t *testing.T) {
	const duplicated = "[segment:site]\n@docs path /docs*\n@docs path /guide*\n"

	path := filepath.Join(t.TempDir(), "rules.txt")
	writeRules(t, path, duplicated)

	lenient, err := New(&config.RulesConfig{File: path}, quietLogger(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	rs, err := lenient.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(rs.Warnings) != 1 {
		t.Errorf("len(Warnings) = %d, want 1", len(rs.Warnings))
	}

	strict, err := New(&config.RulesConfig{File: path, Strict: true}, quietLogger(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = strict.Load()
	var strictErr *StrictError
	if !errors.As(err, &strictErr) {
		t.Fatalf("Load() error = %v, want *StrictError", err)
	}
	if len(strictErr.Warnings) != 1 || strictErr.Warnings[0].Type != ruleErrors.ErrorTypeLint {
		t.Errorf("Warnings = %v", strictErr.Warnings)
	}
}

// TestManager_MaxFileSize tests the file size limit
func TestManager_MaxFileSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.txt")
	writeRules(t, path, baseRules)

	m, err := New(&config.RulesConfig{File: path, MaxFileSize: 8}, quietLogger(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := m.Load(); err == nil {
		t.Error("Load() expected size error")
	}
}

// TestManager_Encoding tests loading a non UTF-8 rule file
func TestManager_Encoding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.txt")
	// "café" in ISO-8859-1.
	raw := []byte("[segment:s]\n@cafe url *caf\xe9*\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	m, err := New(&config.RulesConfig{File: path, Encoding: "latin1"}, quietLogger(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	rs, err := m.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	results, err := rs.Evaluator.Evaluate("https://example.com/café/menu")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if results[0].Category != "cafe" {
		t.Errorf("category = %q, want cafe", results[0].Category)
	}
}

// TestManager_ConcurrentReaders tests Current during reloads
func TestManager_ConcurrentReaders(t *testing.T) {
	m, path, _ := newTestManager(t, baseRules)
	if _, err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				rs := m.Current()
				if rs == nil {
					t.Error("Current() returned nil after load")
					return
				}
				if _, err := rs.Evaluator.Evaluate("https://example.com/docs/"); err != nil {
					t.Errorf("Evaluate() error = %v", err)
					return
				}
			}
		}()
	}

	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			writeRules(t, path, baseRules+"# edit\n")
		} else {
			writeRules(t, path, baseRules)
		}
		if _, err := m.Reload(); err != nil {
			t.Errorf("Reload() error = %v", err)
		}
	}
	cancel()
	wg.Wait()
}
