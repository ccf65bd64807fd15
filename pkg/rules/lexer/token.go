package lexer

import (
	"fmt"
	"slices"
)

// Kind identifies the lexical class of a token.
type Kind int

const (
	Invalid Kind = iota
	Begin
	EOF
	Newline
	Whitespace
	At
	CloseBracket
	OpenBracket
	OpenParen
	CloseParen
	Colon
	Boolean
	Not
	Selector
	SegmentKeyword
	PatternModifier
	SegmentName
	CategoryName
	Comment
	Pattern
)

func (k Kind) String() string {
	switch k {
	case Begin:
		return "BEGIN"
	case EOF:
		return "EOF"
	case Newline:
		return "NEWLINE"
	case Whitespace:
		return "WHITESPACE"
	case At:
		return "AT"
	case CloseBracket:
		return "CLOSE_BRACKET"
	case OpenBracket:
		return "OPEN_BRACKET"
	case OpenParen:
		return "OPEN_PAREN"
	case CloseParen:
		return "CLOSE_PAREN"
	case Colon:
		return "COLON"
	case Boolean:
		return "BOOLEAN"
	case Not:
		return "NOT"
	case Selector:
		return "SELECTOR"
	case SegmentKeyword:
		return "SEGMENT_KEYWORD"
	case PatternModifier:
		return "PATTERN_MODIFIER"
	case SegmentName:
		return "SEGMENT_NAME"
	case CategoryName:
		return "CATEGORY_NAME"
	case Comment:
		return "COMMENT"
	case Pattern:
		return "PATTERN"
	}
	return "INVALID"
}

// skipped reports whether tokens of this kind are scanned but never emitted.
func (k Kind) skipped() bool {
	return k == Whitespace || k == Newline || k == Comment
}

// Token is one lexical unit of a rule file.
type Token struct {
	Kind   Kind
	Text   string
	Line   int // 1-based
	Column int // 1-based, in runes
}

func (t Token) String() string {
	return fmt.Sprintf("<%s %q line:%d column:%d>", t.Kind, t.Text, t.Line, t.Column)
}

var selectors = []string{"hostname", "host", "pathquery", "path", "query", "protocol", "proto", "scheme", "domain", "url"}

var modifiers = []string{"i", "rx", "rxi"}

// Selectors returns the URL component selector keywords in scan priority order.
func Selectors() []string { return slices.Clone(selectors) }

// Modifiers returns the pattern modifier keywords in scan priority order.
func Modifiers() []string { return slices.Clone(modifiers) }

var booleans = []string{"or", "and"}

var negations = []string{"not"}
