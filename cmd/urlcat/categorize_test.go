package main

import (
	"bufio"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/urlcat/pkg/cli"
)

func resetCategorizeFlags(t *testing.T) {
	t.Helper()
	useDefaultRuntime(t)
	categorizeFlags.output = filepath.Join(t.TempDir(), "result.csv")
	categorizeFlags.fields = []string{"url", "referrer"}
	categorizeFlags.encoding = ""
	categorizeFlags.delimiter = ""
	categorizeFlags.quoteChar = `"`
	categorizeFlags.rules = testRules
	categorizeFlags.ignoreLines = 0
	categorizeFlags.format = ""
	categorizeFlags.workers = 2
	categorizeFlags.progress = false
}

func readCSV(t *testing.T, path string, comma rune) []map[string]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	if len(rows) == 0 {
		t.Fatal("output has no header")
	}

	var records []map[string]string
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(row))
		for i, v := range row {
			rec[rows[0][i]] = v
		}
		records = append(records, rec)
	}
	return records
}

func TestCategorizeURLs_CSV(t *testing.T) {
	resetCategorizeFlags(t)

	cmd, _, errOut := newTestCommand()
	if err := categorizeURLs(cmd, []string{"testdata/visits.csv"}); err != nil {
		t.Fatalf("categorizeURLs() error = %v", err)
	}

	records := readCSV(t, categorizeFlags.output, ',')
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	want := []map[string]string{
		{"id": "1", "url_engine": "google", "url_section": "search", "referrer_engine": "duck", "referrer_section": "no_match"},
		{"id": "2", "url_engine": "duck", "url_section": "docs", "referrer_engine": "no_match", "referrer_section": "no_match"},
		{"id": "3", "url_engine": "no_match", "url_section": "no_match", "referrer_engine": "google", "referrer_section": "docs"},
	}
	for i, w := range want {
		for col, v := range w {
			if got := records[i][col]; got != v {
				t.Errorf("record %d column %s = %q, want %q", i, col, got, v)
			}
		}
	}

	if !strings.Contains(errOut.String(), "Categorized 3 records (6 URLs, 0 failed)") {
		t.Errorf("summary = %q", errOut.String())
	}
}

func TestCategorizeURLs_DelimiterEncodingAndIgnoreLines(t *testing.T) {
	resetCategorizeFlags(t)

	input := filepath.Join(t.TempDir(), "export.csv")
	// latin1 input: "é" is the single byte 0xE9.
	data := "exported by tool\n\nname;url\ncaf\xe9;https://www.google.com/search\n"
	if err := os.WriteFile(input, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	categorizeFlags.fields = []string{"url"}
	categorizeFlags.delimiter = ";"
	categorizeFlags.encoding = "latin1"
	categorizeFlags.ignoreLines = 2

	cmd, _, _ := newTestCommand()
	if err := categorizeURLs(cmd, []string{input}); err != nil {
		t.Fatalf("categorizeURLs() error = %v", err)
	}

	raw, err := os.ReadFile(categorizeFlags.output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "caf\xe9;") {
		t.Errorf("output is not re-encoded as latin1: %q", raw)
	}
	if !strings.HasPrefix(string(raw), "name;url;url_engine;url_section\n") {
		t.Errorf("unexpected header in %q", raw)
	}
}

func TestCategorizeURLs_JSONL(t *testing.T) {
	resetCategorizeFlags(t)
	categorizeFlags.format = "jsonl"
	categorizeFlags.output = filepath.Join(t.TempDir(), "result.jsonl")

	cmd, _, _ := newTestCommand()
	if err := categorizeURLs(cmd, []string{"testdata/visits.csv"}); err != nil {
		t.Fatalf("categorizeURLs() error = %v", err)
	}

	f, err := os.Open(categorizeFlags.output)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("line %d is not JSON: %v", lines+1, err)
		}
		lines++
	}
	if lines != 3 {
		t.Errorf("got %d lines, want 3", lines)
	}
}

func TestCategorizeURLs_SQLite(t *testing.T) {
	resetCategorizeFlags(t)
	categorizeFlags.format = "sqlite"
	categorizeFlags.output = filepath.Join(t.TempDir(), "result.db")

	cmd, _, _ := newTestCommand()
	if err := categorizeURLs(cmd, []string{"testdata/visits.csv"}); err != nil {
		t.Fatalf("categorizeURLs() error = %v", err)
	}

	db, err := sql.Open("sqlite", categorizeFlags.output)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM categorizations`).Scan(&count); err != nil {
		t.Fatalf("query error = %v", err)
	}
	// 3 records x 2 fields x 2 segments
	if count != 12 {
		t.Errorf("got %d rows, want 12", count)
	}

	var category string
	err = db.QueryRow(`SELECT category FROM categorizations WHERE line = 2 AND field = 'url' AND segment = 'engine'`).Scan(&category)
	if err != nil {
		t.Fatalf("query error = %v", err)
	}
	if category != "google" {
		t.Errorf("category = %q, want google", category)
	}
}

func TestCategorizeURLs_EvaluationFailureIsReported(t *testing.T) {
	resetCategorizeFlags(t)

	input := filepath.Join(t.TempDir(), "broken.csv")
	if err := os.WriteFile(input, []byte("url\nhttp://[::1\nhttps://www.google.com/\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	categorizeFlags.fields = []string{"url"}

	cmd, _, errOut := newTestCommand()
	if err := categorizeURLs(cmd, []string{input}); err != nil {
		t.Fatalf("categorizeURLs() error = %v", err)
	}

	records := readCSV(t, categorizeFlags.output, ',')
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0]["url_engine"] != "" {
		t.Errorf("failed URL should leave its columns empty, got %q", records[0]["url_engine"])
	}
	if records[1]["url_engine"] != "google" {
		t.Errorf("url_engine = %q, want google", records[1]["url_engine"])
	}
	if !strings.Contains(errOut.String(), "1 failed") {
		t.Errorf("summary = %q", errOut.String())
	}
}

func TestCategorizeURLs_Errors(t *testing.T) {
	tests := []struct {
		name     string
		modify   func()
		input    string
		wantCode int
	}{
		{
			name:     "unsupported quote character",
			modify:   func() { categorizeFlags.quoteChar = "'" },
			input:    "testdata/visits.csv",
			wantCode: cli.ExitUsage,
		},
		{
			name:     "no fields",
			modify:   func() { categorizeFlags.fields = nil },
			input:    "testdata/visits.csv",
			wantCode: cli.ExitUsage,
		},
		{
			name:     "unknown output format",
			modify:   func() { categorizeFlags.format = "xml" },
			input:    "testdata/visits.csv",
			wantCode: cli.ExitUsage,
		},
		{
			name:     "missing field",
			modify:   func() { categorizeFlags.fields = []string{"landing"} },
			input:    "testdata/visits.csv",
			wantCode: cli.ExitFailure,
		},
		{
			name:     "invalid rules",
			modify:   func() { categorizeFlags.rules = "testdata/invalid.txt" },
			input:    "testdata/visits.csv",
			wantCode: cli.ExitFailure,
		},
		{
			name:     "missing input",
			modify:   func() {},
			input:    "testdata/missing.csv",
			wantCode: cli.ExitFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetCategorizeFlags(t)
			tt.modify()

			cmd, _, _ := newTestCommand()
			err := categorizeURLs(cmd, []string{tt.input})
			if err == nil {
				t.Fatal("categorizeURLs() should fail")
			}
			if code := cli.ExitCode(err); code != tt.wantCode {
				t.Errorf("ExitCode() = %d, want %d (err: %v)", code, tt.wantCode, err)
			}
		})
	}
}

func TestCategorizeURLs_InvalidRulesCreateNoOutput(t *testing.T) {
	resetCategorizeFlags(t)
	categorizeFlags.rules = "testdata/invalid.txt"

	cmd, _, _ := newTestCommand()
	if err := categorizeURLs(cmd, []string{"testdata/visits.csv"}); err == nil {
		t.Fatal("categorizeURLs() should fail")
	}
	if _, err := os.Stat(categorizeFlags.output); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output should not be created, stat error = %v", err)
	}
}
