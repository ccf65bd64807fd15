package dataset

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/urlcat/pkg/categorizer"
	"mercator-hq/urlcat/pkg/config"
)

var testSchema = Schema{
	Header:   []string{"id", "url"},
	Fields:   []string{"url"},
	Segments: []string{"engine", "section"},
}

func testRows() []*Row {
	return []*Row{
		{
			Record: &Record{Line: 2, Values: []string{"1", "https://www.google.com/"}, Fields: map[string]string{"id": "1", "url": "https://www.google.com/"}},
			Fields: []FieldResult{{
				Field: "url",
				URL:   "https://www.google.com/",
				Results: []categorizer.Result{
					{Segment: "engine", Category: "google", Matched: true},
					{Segment: "section", Category: categorizer.NoMatch},
				},
			}},
		},
		{
			Record: &Record{Line: 3, Values: []string{"2", "http://[bad"}, Fields: map[string]string{"id": "2", "url": "http://[bad"}},
			Fields: []FieldResult{{
				Field: "url",
				URL:   "http://[bad",
				Err:   errors.New("invalid URL"),
			}},
		},
	}
}

func writeRows(t *testing.T, sink Sink) {
	t.Helper()
	for _, row := range testRows() {
		if err := sink.Write(context.Background(), row); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

// TestSchema_Columns tests result column naming
func TestSchema_Columns(t *testing.T) {
	s := Schema{Fields: []string{"ref", "landing"}, Segments: []string{"a", "b"}}
	got := strings.Join(s.Columns(), ",")
	if got != "ref_a,ref_b,landing_a,landing_b" {
		t.Errorf("Columns() = %q", got)
	}
}

// TestCSVSink tests CSV output
func TestCSVSink(t *testing.T) {
	var buf bytes.Buffer
	sink, err := NewCSVSink(&buf, "utf-8", testSchema)
	if err != nil {
		t.Fatalf("NewCSVSink() error = %v", err)
	}
	writeRows(t, sink)

	want := "id,url,url_engine,url_section\n" +
		"1,https://www.google.com/,google,no_match\n" +
		"2,http://[bad,,\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

// TestCSVSink_DelimiterAndEncoding tests that output follows the input dialect
func TestCSVSink_DelimiterAndEncoding(t *testing.T) {
	schema := Schema{Header: []string{"label"}, Segments: []string{"s"}, Delimiter: ';'}

	var buf bytes.Buffer
	sink, err := NewCSVSink(&buf, "latin1", schema)
	if err != nil {
		t.Fatalf("NewCSVSink() error = %v", err)
	}
	row := &Row{Record: &Record{Line: 2, Values: []string{"café;bar"}}}
	if err := sink.Write(context.Background(), row); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	want := "label\n\"caf\xe9;bar\"\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

// TestJSONLSink tests JSON Lines output
func TestJSONLSink(t *testing.T) {
	var buf bytes.Buffer
	writeRows(t, NewJSONLSink(&buf, testSchema))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}

	var first jsonRecord
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if first.Line != 2 || first.Categories["url"]["engine"] != "google" || first.Values["id"] != "1" {
		t.Errorf("first = %+v", first)
	}
	if len(first.Errors) != 0 {
		t.Errorf("first.Errors = %v", first.Errors)
	}

	var second jsonRecord
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if second.Errors["url"] != "invalid URL" {
		t.Errorf("second.Errors = %v", second.Errors)
	}
}

// TestSQLiteSink tests database output
func TestSQLiteSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")

	sink, err := NewSQLiteSink(path, testSchema)
	if err != nil {
		t.Fatalf("NewSQLiteSink() error = %v", err)
	}
	runID := sink.RunID()
	writeRows(t, sink)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM categorizations WHERE run_id = ?`, runID).Scan(&count); err != nil {
		t.Fatalf("QueryRow() error = %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	var category string
	err = db.QueryRow(`SELECT category FROM categorizations WHERE line = 2 AND segment = 'engine'`).Scan(&category)
	if err != nil {
		t.Fatalf("QueryRow() error = %v", err)
	}
	if category != "google" {
		t.Errorf("category = %q, want google", category)
	}

	var errMsg string
	var segment sql.NullString
	err = db.QueryRow(`SELECT segment, error FROM categorizations WHERE line = 3`).Scan(&segment, &errMsg)
	if err != nil {
		t.Fatalf("QueryRow() error = %v", err)
	}
	if segment.Valid || errMsg != "invalid URL" {
		t.Errorf("segment = %v, error = %q", segment, errMsg)
	}

	if err := sink.Write(context.Background(), testRows()[0]); err == nil {
		t.Error("Write() after Close expected error")
	}
}

// TestSQLiteSink_Reopen tests that runs append under distinct IDs
func TestSQLiteSink_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")

	first, err := NewSQLiteSink(path, testSchema)
	if err != nil {
		t.Fatalf("NewSQLiteSink() error = %v", err)
	}
	writeRows(t, first)

	second, err := NewSQLiteSink(path, testSchema)
	if err != nil {
		t.Fatalf("NewSQLiteSink() reopen error = %v", err)
	}
	writeRows(t, second)

	if first.RunID() == second.RunID() {
		t.Error("run IDs should differ")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer db.Close()

	var runs int
	if err := db.QueryRow(`SELECT COUNT(DISTINCT run_id) FROM categorizations`).Scan(&runs); err != nil {
		t.Fatalf("QueryRow() error = %v", err)
	}
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
}

// TestNewSink tests format selection
func TestNewSink(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		format  string
		wantErr bool
	}{
		{format: "", wantErr: false},
		{format: FormatCSV},
		{format: FormatJSONL},
		{format: FormatSQLite},
		{format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("format_"+tt.format, func(t *testing.T) {
			cfg := &config.OutputConfig{Path: filepath.Join(dir, "out_"+tt.format), Format: tt.format}
			sink, err := NewSink(cfg, "utf-8", testSchema)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewSink() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSink() error = %v", err)
			}
			writeRows(t, sink)

			info, err := os.Stat(cfg.Path)
			if err != nil {
				t.Fatalf("Stat() error = %v", err)
			}
			if info.Size() == 0 {
				t.Error("output is empty")
			}
		})
	}

	if _, err := NewSink(&config.OutputConfig{}, "utf-8", testSchema); err == nil {
		t.Error("NewSink() with empty path expected error")
	}
}
