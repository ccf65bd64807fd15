package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"mercator-hq/urlcat/pkg/charset"
)

// flushEvery is the number of rows buffered between flushes.
const flushEvery = 100

// CSVSink writes the input columns followed by the result columns.
type CSVSink struct {
	writer  *csv.Writer
	encoder io.WriteCloser
	closer  io.Closer
	schema  Schema
	rows    int
}

// NewCSVSink writes the header row to w, encoded to the named charset.
// Close does not close w.
func NewCSVSink(w io.Writer, encoding string, schema Schema) (*CSVSink, error) {
	encoder, err := charset.NewWriter(w, encoding)
	if err != nil {
		return nil, err
	}

	writer := csv.NewWriter(encoder)
	if schema.Delimiter != 0 {
		writer.Comma = schema.Delimiter
	}

	header := make([]string, 0, len(schema.Header)+len(schema.Fields)*len(schema.Segments))
	header = append(header, schema.Header...)
	header = append(header, schema.Columns()...)
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	return &CSVSink{
		writer:  writer,
		encoder: encoder,
		schema:  schema,
	}, nil
}

// Write implements Sink.
func (s *CSVSink) Write(ctx context.Context, row *Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	byField := make(map[string]FieldResult, len(row.Fields))
	for _, fr := range row.Fields {
		byField[fr.Field] = fr
	}

	out := make([]string, 0, len(row.Record.Values)+len(s.schema.Fields)*len(s.schema.Segments))
	out = append(out, row.Record.Values...)
	for _, field := range s.schema.Fields {
		fr := byField[field]
		for _, segment := range s.schema.Segments {
			out = append(out, fr.Category(segment))
		}
	}

	if err := s.writer.Write(out); err != nil {
		return fmt.Errorf("failed to write csv row for line %d: %w", row.Record.Line, err)
	}

	s.rows++
	if s.rows%flushEvery == 0 {
		s.writer.Flush()
		if err := s.writer.Error(); err != nil {
			return fmt.Errorf("failed to flush csv output: %w", err)
		}
	}
	return nil
}

// Close implements Sink.
func (s *CSVSink) Close() error {
	s.writer.Flush()
	err := s.writer.Error()
	if cerr := s.encoder.Close(); err == nil {
		err = cerr
	}
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("failed to close csv output: %w", err)
	}
	return nil
}
