package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"mercator-hq/urlcat/pkg/charset"
	"mercator-hq/urlcat/pkg/config"
)

var (
	// ErrMissingField is returned when a requested URL field is not in the header.
	ErrMissingField = errors.New("field not found in input header")

	// ErrNoHeader is returned when the input ends before the header row.
	ErrNoHeader = errors.New("input has no header row")
)

// Record is one data row of the input.
type Record struct {
	// Line is the 1-based line of the input file the record starts on.
	Line int

	// Values holds the row in header order. Short rows are padded with "".
	Values []string

	// Fields maps header names to values.
	Fields map[string]string
}

// Reader reads records from delimited text.
type Reader struct {
	csv    *csv.Reader
	closer io.Closer
	header []string
	fields []string
	offset int
}

// Open opens the file at path for reading.
func Open(path string, cfg *config.InputConfig) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	r, err := NewReader(f, cfg)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader reads the header from src and checks the configured fields.
func NewReader(src io.Reader, cfg *config.InputConfig) (*Reader, error) {
	if cfg == nil {
		cfg = &config.InputConfig{}
	}

	delimiter, err := parseDelimiter(cfg.Delimiter)
	if err != nil {
		return nil, err
	}

	decoded, err := charset.NewReader(src, cfg.Encoding)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(decoded)

	for i := 0; i < cfg.IgnoreLines; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrNoHeader
			}
			return nil, fmt.Errorf("failed to skip line %d: %w", i+1, err)
		}
	}

	cr := csv.NewReader(br)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	for _, f := range cfg.Fields {
		if !present[f] {
			return nil, fmt.Errorf("%w: %q", ErrMissingField, f)
		}
	}

	return &Reader{
		csv:    cr,
		header: header,
		fields: cfg.Fields,
		offset: cfg.IgnoreLines,
	}, nil
}

// Header returns the column names.
func (r *Reader) Header() []string {
	return r.header
}

// Fields returns the columns holding URLs.
func (r *Reader) Fields() []string {
	return r.fields
}

// Read returns the next record, or io.EOF after the last one.
func (r *Reader) Read() (*Record, error) {
	values, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			parseErr.StartLine += r.offset
			parseErr.Line += r.offset
		}
		return nil, fmt.Errorf("failed to read record: %w", err)
	}

	line, _ := r.csv.FieldPos(0)

	for len(values) < len(r.header) {
		values = append(values, "")
	}
	fields := make(map[string]string, len(r.header))
	for i, h := range r.header {
		fields[h] = values[i]
	}

	return &Record{
		Line:   line + r.offset,
		Values: values[:len(r.header)],
		Fields: fields,
	}, nil
}

// Close closes the underlying file, if the Reader opened one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

func parseDelimiter(s string) (rune, error) {
	if s == "" {
		return ',', nil
	}
	d, size := utf8.DecodeRuneInString(s)
	if size != len(s) || d == utf8.RuneError {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	if d == '"' || d == '\r' || d == '\n' {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return d, nil
}
