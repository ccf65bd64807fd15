package dataset

import (
	"context"
	"fmt"
	"os"

	"mercator-hq/urlcat/pkg/categorizer"
	"mercator-hq/urlcat/pkg/config"
)

// Output formats.
const (
	FormatCSV    = "csv"
	FormatJSONL  = "jsonl"
	FormatSQLite = "sqlite"
)

// Schema describes the shape of a categorization run's output.
type Schema struct {
	// Header is the input header.
	Header []string

	// Fields are the categorized columns, in output order.
	Fields []string

	// Segments are the rule segments, in declaration order.
	Segments []string

	// Delimiter separates CSV output fields. Zero means ','.
	Delimiter rune
}

// Columns returns the result column names: one per field and segment.
func (s Schema) Columns() []string {
	cols := make([]string, 0, len(s.Fields)*len(s.Segments))
	for _, f := range s.Fields {
		for _, seg := range s.Segments {
			cols = append(cols, ColumnName(f, seg))
		}
	}
	return cols
}

// ColumnName returns the output column holding the category of field along segment.
func ColumnName(field, segment string) string {
	return field + "_" + segment
}

// FieldResult is the categorization of one field of a record.
// Exactly one of Results and Err is set.
type FieldResult struct {
	Field   string
	URL     string
	Results []categorizer.Result
	Err     error
}

// Category returns the category assigned along segment, or "" if the field
// failed to evaluate.
func (fr FieldResult) Category(segment string) string {
	for _, r := range fr.Results {
		if r.Segment == segment {
			return r.Category
		}
	}
	return ""
}

// Row is one categorized input record.
type Row struct {
	Record *Record
	Fields []FieldResult
}

// Sink receives categorized rows. Sinks are not safe for concurrent use.
type Sink interface {
	// Write appends one row.
	Write(ctx context.Context, row *Row) error

	// Close flushes buffered rows and releases the output.
	Close() error
}

// NewSink creates the sink selected by cfg.Format, writing to cfg.Path.
// The CSV output encoding falls back to inputEncoding when cfg.Encoding is empty.
func NewSink(cfg *config.OutputConfig, inputEncoding string, schema Schema) (Sink, error) {
	if cfg == nil {
		return nil, fmt.Errorf("output config cannot be nil")
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("output path cannot be empty")
	}

	format := cfg.Format
	if format == "" {
		format = FormatCSV
	}

	switch format {
	case FormatCSV:
		encoding := cfg.Encoding
		if encoding == "" {
			encoding = inputEncoding
		}
		f, err := os.Create(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to create output: %w", err)
		}
		sink, err := NewCSVSink(f, encoding, schema)
		if err != nil {
			f.Close()
			return nil, err
		}
		sink.closer = f
		return sink, nil

	case FormatJSONL:
		f, err := os.Create(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to create output: %w", err)
		}
		sink := NewJSONLSink(f, schema)
		sink.closer = f
		return sink, nil

	case FormatSQLite:
		return NewSQLiteSink(cfg.Path, schema)

	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
