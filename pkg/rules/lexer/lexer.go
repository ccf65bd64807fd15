// Package lexer converts rule-file text into a token stream.
//
// At each scan position the token classes are tried in a fixed priority order and
// the first class that matches wins; this is alternation-order priority, not
// longest match. Whitespace, newlines and comments are scanned to track line
// numbers but never emitted. The stream starts with BEGIN and ends with EOF.
package lexer

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"

	"mercator-hq/urlcat/pkg/rules/ast"
	ruleErrors "mercator-hq/urlcat/pkg/rules/errors"
)

const segmentHeader = "[segment:"

// Lexer produces tokens on demand. A Lexer is not safe for concurrent use;
// create one per input.
type Lexer struct {
	text      string
	source    string
	pos       int
	line      int
	lineStart int
	begun     bool
}

// New creates a lexer over text.
func New(text string) *Lexer {
	return &Lexer{
		text: text,
		line: 1,
	}
}

// WithSource sets the source name reported in error locations.
func (l *Lexer) WithSource(name string) *Lexer {
	l.source = name
	return l
}

// Next returns the next significant token. After the input is exhausted it
// returns EOF on every call.
func (l *Lexer) Next() (Token, error) {
	if !l.begun {
		l.begun = true
		return Token{Kind: Begin, Line: 1, Column: 1}, nil
	}

	for l.pos < len(l.text) {
		kind, size, err := l.scan()
		if err != nil {
			return Token{}, err
		}
		if bad := invalidOffset(l.text[l.pos : l.pos+size]); bad >= 0 {
			l.pos += bad
			return Token{}, l.invalid()
		}

		tok := Token{
			Kind:   kind,
			Text:   l.text[l.pos : l.pos+size],
			Line:   l.line,
			Column: l.column(),
		}

		l.pos += size
		if kind == Newline {
			l.line++
			l.lineStart = l.pos
		}

		if kind.skipped() {
			continue
		}
		return tok, nil
	}

	return Token{Kind: EOF, Line: l.line, Column: l.column()}, nil
}

// scan classifies the input at the current position and returns the token
// kind and its length in bytes.
func (l *Lexer) scan() (Kind, int, error) {
	rest := l.text[l.pos:]
	r, size := utf8.DecodeRuneInString(rest)

	if r == utf8.RuneError && size <= 1 {
		return Invalid, 0, l.invalid()
	}

	switch {
	case r == '\n':
		return Newline, size, nil
	case unicode.IsSpace(r):
		return Whitespace, size, nil
	case r == '@':
		return At, size, nil
	case r == ']':
		return CloseBracket, size, nil
	case r == '[':
		return OpenBracket, size, nil
	case r == '(':
		return OpenParen, size, nil
	case r == ')':
		return CloseParen, size, nil
	case r == ':':
		return Colon, size, nil
	}

	if n := l.matchKeyword(booleans); n > 0 {
		return Boolean, n, nil
	}
	if n := l.matchKeyword(negations); n > 0 {
		return Not, n, nil
	}
	if n := l.matchKeyword(selectors); n > 0 {
		return Selector, n, nil
	}
	if strings.HasPrefix(rest, "segment") {
		return SegmentKeyword, len("segment"), nil
	}
	if n := l.matchModifier(); n > 0 {
		return PatternModifier, n, nil
	}
	if strings.HasSuffix(l.text[:l.pos], segmentHeader) {
		if end := strings.IndexAny(rest, "]\n"); end > 0 && rest[end] == ']' {
			return SegmentName, end, nil
		}
	}
	if l.pos > 0 && l.text[l.pos-1] == '@' {
		return CategoryName, nonSpaceRun(rest), nil
	}
	if r == '#' {
		if end := strings.IndexByte(rest, '\n'); end >= 0 {
			return Comment, end, nil
		}
		return Comment, len(rest), nil
	}

	return Pattern, nonSpaceRun(rest), nil
}

// matchKeyword matches the first word of words that is delimited by word
// boundaries at the current position and returns its length, or 0.
func (l *Lexer) matchKeyword(words []string) int {
	if !l.boundaryBefore() {
		return 0
	}
	rest := l.text[l.pos:]
	for _, w := range words {
		if strings.HasPrefix(rest, w) && l.boundaryAfter(l.pos+len(w)) {
			return len(w)
		}
	}
	return 0
}

// matchModifier matches a pattern modifier immediately followed by ':'.
func (l *Lexer) matchModifier() int {
	if !l.boundaryBefore() {
		return 0
	}
	rest := l.text[l.pos:]
	for _, m := range modifiers {
		if strings.HasPrefix(rest, m) && len(rest) > len(m) && rest[len(m)] == ':' {
			return len(m)
		}
	}
	return 0
}

// boundaryBefore reports whether the current position starts a word.
// Every keyword begins with a word character, so only the preceding rune matters.
func (l *Lexer) boundaryBefore() bool {
	if l.pos == 0 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(l.text[:l.pos])
	return !isWordRune(prev)
}

// boundaryAfter reports whether offset ends a word.
func (l *Lexer) boundaryAfter(offset int) bool {
	if offset >= len(l.text) {
		return true
	}
	next, _ := utf8.DecodeRuneInString(l.text[offset:])
	return !isWordRune(next)
}

// invalid reports the undecodable byte at the current position.
func (l *Lexer) invalid() *ruleErrors.LexError {
	return &ruleErrors.LexError{
		Location: ast.Location{File: l.source, Line: l.line, Column: l.column()},
		Char:     utf8.RuneError,
	}
}

// invalidOffset returns the byte offset of the first invalid UTF-8 sequence in
// s, or -1.
func invalidOffset(s string) int {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}

func (l *Lexer) column() int {
	return utf8.RuneCountInString(l.text[l.lineStart:l.pos]) + 1
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// nonSpaceRun returns the byte length of the leading run of non-space runes.
func nonSpaceRun(s string) int {
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		return i
	}
	return len(s)
}

// Tokenize returns the token stream of text as a lazy sequence. Each iteration
// starts a fresh scan. The sequence ends after EOF or after the first error.
func Tokenize(text string) iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		l := New(text)
		for {
			tok, err := l.Next()
			if err != nil {
				yield(Token{}, err)
				return
			}
			if !yield(tok, nil) || tok.Kind == EOF {
				return
			}
		}
	}
}

// All collects the complete token stream of text, BEGIN and EOF included.
func All(text string) ([]Token, error) {
	var tokens []Token
	for tok, err := range Tokenize(text) {
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}
