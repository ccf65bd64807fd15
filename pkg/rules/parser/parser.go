package parser

import (
	"fmt"
	"os"

	"mercator-hq/urlcat/pkg/charset"
	"mercator-hq/urlcat/pkg/rules/ast"
	ruleErrors "mercator-hq/urlcat/pkg/rules/errors"
)

// MemorySource is the source name used for rule text that did not come from a file.
const MemorySource = "<memory>"

// Parser parses rule files into ASTs. A Parser only holds configuration and is
// safe for concurrent use.
type Parser struct {
	maxFileSize int64  // Maximum file size in bytes (default: 10MB)
	maxDepth    int    // Maximum boolean nesting depth (default: 64)
	encoding    string // Character encoding of rule files (default: utf-8)
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxFileSize: 10 * 1024 * 1024, // 10MB
		maxDepth:    64,
		encoding:    charset.Default,
	}
}

// WithMaxFileSize sets the maximum file size limit.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	p.maxFileSize = size
	return p
}

// WithMaxDepth sets the maximum boolean nesting depth.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.maxDepth = depth
	return p
}

// WithEncoding sets the character encoding used by ParseFile.
func (p *Parser) WithEncoding(name string) *Parser {
	p.encoding = name
	return p
}

// Parse parses rule text held in memory.
func (p *Parser) Parse(text string) (*ast.Root, error) {
	return p.ParseString(text, MemorySource)
}

// ParseString parses rule text and reports errors against the given source name.
func (p *Parser) ParseString(text, source string) (*ast.Root, error) {
	if int64(len(text)) > p.maxFileSize {
		return nil, &ruleErrors.Error{
			Type:    ruleErrors.ErrorTypeIO,
			Message: fmt.Sprintf("Rule text size %d exceeds maximum %d bytes", len(text), p.maxFileSize),
		}
	}

	s := newState(text, source, p.maxDepth)
	root, err := s.parseRoot()
	if err != nil {
		return nil, ruleErrors.AddContext(err, text)
	}
	return root, nil
}

// ParseFile parses the rule file at path.
// It returns an error if the file cannot be read or decoded, or if it does not parse.
func (p *Parser) ParseFile(path string) (*ast.Root, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, &ruleErrors.Error{
			Type:    ruleErrors.ErrorTypeIO,
			Message: fmt.Sprintf("Failed to access file: %v", err),
			Err:     err,
		}
	}

	if fileInfo.Size() > p.maxFileSize {
		return nil, &ruleErrors.Error{
			Type:    ruleErrors.ErrorTypeIO,
			Message: fmt.Sprintf("File %s size %d exceeds maximum %d bytes", path, fileInfo.Size(), p.maxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ruleErrors.Error{
			Type:    ruleErrors.ErrorTypeIO,
			Message: fmt.Sprintf("Failed to read file: %v", err),
			Err:     err,
		}
	}

	text, err := charset.Decode(data, p.encoding)
	if err != nil {
		return nil, &ruleErrors.Error{
			Type:    ruleErrors.ErrorTypeIO,
			Message: fmt.Sprintf("Failed to decode %s: %v", path, err),
			Err:     err,
		}
	}

	return p.ParseString(text, path)
}
