package dataset

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// jsonRecord is the JSON Lines form of a Row.
type jsonRecord struct {
	Line       int                          `json:"line"`
	Values     map[string]string            `json:"values"`
	Categories map[string]map[string]string `json:"categories"`
	Errors     map[string]string            `json:"errors,omitempty"`
}

// JSONLSink writes one JSON object per row.
type JSONLSink struct {
	buf     *bufio.Writer
	encoder *json.Encoder
	closer  io.Closer
	schema  Schema
}

// NewJSONLSink creates a sink writing to w. Close does not close w.
func NewJSONLSink(w io.Writer, schema Schema) *JSONLSink {
	buf := bufio.NewWriter(w)
	encoder := json.NewEncoder(buf)
	encoder.SetEscapeHTML(false)
	return &JSONLSink{
		buf:     buf,
		encoder: encoder,
		schema:  schema,
	}
}

// Write implements Sink.
func (s *JSONLSink) Write(ctx context.Context, row *Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rec := jsonRecord{
		Line:       row.Record.Line,
		Values:     row.Record.Fields,
		Categories: make(map[string]map[string]string, len(row.Fields)),
	}
	for _, fr := range row.Fields {
		if fr.Err != nil {
			if rec.Errors == nil {
				rec.Errors = make(map[string]string)
			}
			rec.Errors[fr.Field] = fr.Err.Error()
			continue
		}
		cats := make(map[string]string, len(fr.Results))
		for _, r := range fr.Results {
			cats[r.Segment] = r.Category
		}
		rec.Categories[fr.Field] = cats
	}

	if err := s.encoder.Encode(rec); err != nil {
		return fmt.Errorf("failed to write jsonl row for line %d: %w", row.Record.Line, err)
	}
	return nil
}

// Close implements Sink.
func (s *JSONLSink) Close() error {
	err := s.buf.Flush()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("failed to close jsonl output: %w", err)
	}
	return nil
}
