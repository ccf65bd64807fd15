// Package charset resolves character encoding names for rule files and CSV data.
//
// Names follow the WHATWG encoding labels ("utf-8", "latin1", "windows-1252",
// "shift_jis", ...). UTF-8 input is passed through unchanged apart from a
// leading byte order mark.
package charset

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Default is the encoding used when none is configured.
const Default = "utf-8"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Lookup returns the encoding registered under name.
func Lookup(name string) (encoding.Encoding, error) {
	if name == "" {
		name = Default
	}
	enc, err := htmlindex.Get(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	return enc, nil
}

// IsUTF8 reports whether name designates UTF-8.
func IsUTF8(name string) bool {
	enc, err := Lookup(name)
	if err != nil {
		return false
	}
	canonical, err := htmlindex.Name(enc)
	return err == nil && canonical == "utf-8"
}

// Decode converts data in the named encoding to UTF-8.
func Decode(data []byte, name string) (string, error) {
	if IsUTF8(name) {
		return string(bytes.TrimPrefix(data, utf8BOM)), nil
	}
	enc, err := Lookup(name)
	if err != nil {
		return "", err
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s input: %w", name, err)
	}
	return string(out), nil
}

// NewReader wraps r so that it yields UTF-8 text.
func NewReader(r io.Reader, name string) (io.Reader, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if IsUTF8(name) {
		return transform.NewReader(r, unicode.BOMOverride(transform.Nop)), nil
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// NewWriter wraps w so that UTF-8 text written to it is encoded to the named
// encoding. Close flushes pending output but does not close w.
func NewWriter(w io.Writer, name string) (io.WriteCloser, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if IsUTF8(name) {
		return nopCloser{w}, nil
	}
	return transform.NewWriter(w, enc.NewEncoder()), nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
