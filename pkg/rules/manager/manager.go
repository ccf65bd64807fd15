package manager

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"mercator-hq/urlcat/pkg/categorizer"
	"mercator-hq/urlcat/pkg/charset"
	"mercator-hq/urlcat/pkg/config"
	"mercator-hq/urlcat/pkg/rules/parser"
	"mercator-hq/urlcat/pkg/rules/validator"
	"mercator-hq/urlcat/pkg/telemetry/metrics"
)

// Manager loads the rule file and publishes the active Ruleset.
type Manager struct {
	config   *config.RulesConfig
	parser   *parser.Parser
	logger   *slog.Logger
	recorder Recorder

	current atomic.Pointer[Ruleset]

	// mu serializes loads; readers never take it.
	mu            sync.Mutex
	lastLoadError error
}

// New creates a manager for the rule file described by cfg. Recorder may be nil.
func New(cfg *config.RulesConfig, logger *slog.Logger, recorder Recorder) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.File == "" {
		return nil, fmt.Errorf("rules file cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := parser.NewParser().WithEncoding(cfg.Encoding)
	if cfg.MaxFileSize > 0 {
		p = p.WithMaxFileSize(cfg.MaxFileSize)
	}
	if cfg.MaxDepth > 0 {
		p = p.WithMaxDepth(cfg.MaxDepth)
	}

	return &Manager{
		config:   cfg,
		parser:   p,
		logger:   logger.With("component", "rules.manager"),
		recorder: recorder,
	}, nil
}

// Path returns the rule file path.
func (m *Manager) Path() string {
	return m.config.File
}

// Current returns the active ruleset, or nil before the first successful load.
func (m *Manager) Current() *Ruleset {
	return m.current.Load()
}

// Evaluator returns the evaluator of the active ruleset.
func (m *Manager) Evaluator() (*categorizer.Evaluator, error) {
	rs := m.current.Load()
	if rs == nil {
		return nil, ErrNotLoaded
	}
	return rs.Evaluator, nil
}

// LastError returns the error of the most recent load attempt, or nil.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastLoadError
}

// Load reads and parses the rule file unconditionally and activates it.
func (m *Manager) Load() (*Ruleset, error) {
	return m.load(true)
}

// Reload is like Load but skips the parse when the file checksum is unchanged.
// On failure the previous ruleset stays active.
func (m *Manager) Reload() (*Ruleset, error) {
	return m.load(false)
}

func (m *Manager) load(force bool) (*Ruleset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	path := m.config.File

	raw, err := m.read(path)
	if err != nil {
		return nil, m.fail(path, err, start)
	}

	sum := sha256.Sum256(raw)
	checksum := hex.EncodeToString(sum[:])

	prev := m.current.Load()
	if !force && prev != nil && prev.Checksum == checksum {
		m.lastLoadError = nil
		m.recordReload(metrics.ReloadUnchanged, 0, 0)
		m.logger.Debug("Rules unchanged, reload skipped", "path", path, "ruleset_id", prev.ID)
		return prev, nil
	}

	text, err := charset.Decode(raw, m.config.Encoding)
	if err != nil {
		return nil, m.fail(path, fmt.Errorf("failed to decode %s: %w", path, err), start)
	}

	root, err := m.parser.ParseString(text, path)
	if err != nil {
		return nil, m.fail(path, err, start)
	}

	warnings := validator.Warnings(root)
	if m.config.Strict && len(warnings) > 0 {
		return nil, m.fail(path, &StrictError{Path: path, Warnings: warnings}, start)
	}
	for _, w := range warnings {
		m.logger.Warn("Rule lint warning", "path", path, "warning", w.Message, "location", w.Location.String())
	}

	var opts []categorizer.Option
	opts = append(opts, categorizer.WithLogger(m.logger))
	if m.recorder != nil {
		opts = append(opts, categorizer.WithRecorder(m.recorder))
	}

	rs := &Ruleset{
		ID:        uuid.NewString(),
		Root:      root,
		Evaluator: categorizer.New(root, opts...),
		Path:      path,
		LoadedAt:  time.Now(),
		Checksum:  checksum,
		Warnings:  warnings,
	}
	m.current.Store(rs)
	m.lastLoadError = nil

	m.recordReload(metrics.ReloadSuccess, len(root.Segments), root.CategoryCount())
	m.logger.Info("Rules loaded",
		"path", path,
		"ruleset_id", rs.ID,
		"segments", len(root.Segments),
		"categories", root.CategoryCount(),
		"warnings", len(warnings),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return rs, nil
}

// read returns the raw rule file, enforcing the size limit.
func (m *Manager) read(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access rules file: %w", err)
	}
	if m.config.MaxFileSize > 0 && info.Size() > m.config.MaxFileSize {
		return nil, fmt.Errorf("rules file %s size %d exceeds maximum %d bytes", path, info.Size(), m.config.MaxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return data, nil
}

func (m *Manager) fail(path string, err error, start time.Time) error {
	m.lastLoadError = err
	m.recordReload(metrics.ReloadFailure, 0, 0)

	attrs := []any{
		"path", path,
		"error", err,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if prev := m.current.Load(); prev != nil {
		attrs = append(attrs, "active_ruleset_id", prev.ID)
	}
	m.logger.Error("Failed to load rules", attrs...)

	return err
}

func (m *Manager) recordReload(status string, segments, categories int) {
	if m.recorder != nil {
		m.recorder.RecordReload(status, segments, categories)
	}
}

// Watch reloads the rules whenever the file changes. It blocks until ctx is cancelled.
func (m *Manager) Watch(ctx context.Context) error {
	fw, err := NewFileWatcher(m.config.File, m.config.Debounce, m.logger)
	if err != nil {
		return err
	}
	return fw.Watch(ctx, func() error {
		_, err := m.Reload()
		return err
	})
}

// StartSchedule reloads the rules on a cron schedule until ctx is cancelled.
func (m *Manager) StartSchedule(ctx context.Context, spec string) (*Scheduler, error) {
	s := NewScheduler(m.logger)
	err := s.Start(ctx, spec, func() {
		// Failures are logged by load and keep the previous ruleset.
		_, _ = m.Reload()
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}
