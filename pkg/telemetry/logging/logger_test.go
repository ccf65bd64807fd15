package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "valid JSON config",
			config: Config{Level: "info", Format: "json"},
		},
		{
			name:   "valid text config",
			config: Config{Level: "debug", Format: "text"},
		},
		{
			name:   "valid console config",
			config: Config{Level: "WARN", Format: "console", RedactQuery: true},
		},
		{
			name:   "defaults",
			config: Config{},
		},
		{
			name:    "invalid log level",
			config:  Config{Level: "invalid", Format: "json"},
			wantErr: true,
		},
		{
			name:    "invalid format",
			config:  Config{Level: "info", Format: "invalid"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Writer = &bytes.Buffer{}
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "warn", Format: "json", Writer: buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message was written at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn message was not written")
	}
}

func TestNew_ConsoleOmitsTime(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Format: "console", Writer: buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("hello")
	if strings.Contains(buf.String(), "time=") {
		t.Errorf("console output contains a timestamp: %q", buf.String())
	}
}

func TestContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Format: "json", Writer: buf})
	if err != nil {
		t.Fatal(err)
	}

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithRuleset(ctx, "rs-1")
	logger.With("component", "test").InfoContext(ctx, "handled")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["request_id"] != "req-123" || entry["ruleset_id"] != "rs-1" || entry["component"] != "test" {
		t.Errorf("entry = %v", entry)
	}

	if GetRequestID(context.Background()) != "" {
		t.Error("GetRequestID() on empty context should be empty")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"Warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}
