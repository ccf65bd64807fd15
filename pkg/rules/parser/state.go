package parser

import (
	"fmt"

	"mercator-hq/urlcat/pkg/rules/ast"
	ruleErrors "mercator-hq/urlcat/pkg/rules/errors"
	"mercator-hq/urlcat/pkg/rules/lexer"
	"mercator-hq/urlcat/pkg/rules/pattern"
)

// state holds the token window of a single parse.
type state struct {
	lex      *lexer.Lexer
	source   string
	maxDepth int
	current  lexer.Token
	next     lexer.Token
}

func newState(text, source string, maxDepth int) *state {
	return &state{
		lex:      lexer.New(text).WithSource(source),
		source:   source,
		maxDepth: maxDepth,
	}
}

// advance shifts the lookahead window by one token.
func (s *state) advance() error {
	tok, err := s.lex.Next()
	if err != nil {
		return err
	}
	s.current, s.next = s.next, tok
	return nil
}

// check reports whether the lookahead token is of the given kind.
func (s *state) check(kind lexer.Kind) bool {
	return s.next.Kind == kind
}

// accept consumes the lookahead token if it is of the given kind.
func (s *state) accept(kind lexer.Kind) (bool, error) {
	if !s.check(kind) {
		return false, nil
	}
	return true, s.advance()
}

// expect consumes the lookahead token or fails with a SyntaxError.
func (s *state) expect(kind lexer.Kind) error {
	ok, err := s.accept(kind)
	if err != nil {
		return err
	}
	if !ok {
		return s.unexpected(kind)
	}
	return nil
}

func (s *state) location(tok lexer.Token) ast.Location {
	return ast.Location{File: s.source, Line: tok.Line, Column: tok.Column}
}

// unexpected builds a SyntaxError for the lookahead token.
func (s *state) unexpected(expected ...lexer.Kind) *ruleErrors.SyntaxError {
	names := make([]string, len(expected))
	for i, kind := range expected {
		names[i] = kind.String()
	}
	return &ruleErrors.SyntaxError{
		Location:  s.location(s.next),
		Expected:  names,
		Found:     s.next.Kind.String(),
		FoundText: s.next.Text,
	}
}

// parseRoot parses: root := BEGIN segment* EOF
func (s *state) parseRoot() (*ast.Root, error) {
	if err := s.advance(); err != nil {
		return nil, err
	}
	if err := s.expect(lexer.Begin); err != nil {
		return nil, err
	}

	root := &ast.Root{Source: s.source}

	for s.check(lexer.OpenBracket) {
		segment, err := s.parseSegment()
		if err != nil {
			return nil, err
		}
		root.Segments = append(root.Segments, segment)
	}

	if !s.check(lexer.EOF) {
		err := s.unexpected(lexer.OpenBracket, lexer.EOF)
		if s.check(lexer.At) && len(root.Segments) == 0 {
			err.Suggestion = "declare a segment with [segment:<name>] before the first category"
		}
		return nil, err
	}

	return root, nil
}

// parseSegment parses: segment := '[' "segment" ':' SEGMENT_NAME ']' rule*
func (s *state) parseSegment() (*ast.Segment, error) {
	if err := s.expect(lexer.OpenBracket); err != nil {
		return nil, err
	}
	segment := &ast.Segment{Location: s.location(s.current)}

	if err := s.expect(lexer.SegmentKeyword); err != nil {
		return nil, err
	}
	if err := s.expect(lexer.Colon); err != nil {
		return nil, err
	}
	if !s.check(lexer.SegmentName) {
		err := s.unexpected(lexer.SegmentName)
		switch s.next.Kind {
		case lexer.CloseBracket, lexer.EOF:
		case lexer.Pattern:
			err.Suggestion = "close the segment header with ']' on the same line"
		default:
			err.Suggestion = fmt.Sprintf("segment names must not start with the reserved word %q", s.next.Text)
		}
		return nil, err
	}
	if err := s.advance(); err != nil {
		return nil, err
	}
	segment.Name = s.current.Text

	if err := s.expect(lexer.CloseBracket); err != nil {
		return nil, err
	}

	for s.check(lexer.At) {
		category, err := s.parseCategory()
		if err != nil {
			return nil, err
		}
		segment.Categories = append(segment.Categories, category)
	}

	return segment, nil
}

// parseCategory parses: rule := '@' CATEGORY_NAME match+
func (s *state) parseCategory() (*ast.Category, error) {
	if err := s.expect(lexer.At); err != nil {
		return nil, err
	}
	category := &ast.Category{Location: s.location(s.current)}

	if err := s.expect(lexer.CategoryName); err != nil {
		return nil, err
	}
	category.Name = s.current.Text

	matches, err := s.parseMatches(1)
	if err != nil {
		return nil, err
	}
	category.Matches = matches

	return category, nil
}

// parseMatches parses: match+
func (s *state) parseMatches(depth int) ([]*ast.MatchNode, error) {
	var matches []*ast.MatchNode
	for {
		match, err := s.parseMatch(depth)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)

		if !s.check(lexer.Selector) && !s.check(lexer.Boolean) {
			return matches, nil
		}
	}
}

// parseMatch parses: match := BOOLEAN '(' match+ ')' | predicate
func (s *state) parseMatch(depth int) (*ast.MatchNode, error) {
	ok, err := s.accept(lexer.Boolean)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.parsePredicate()
	}

	node := &ast.MatchNode{
		Type:     ast.MatchTypeBoolean,
		Op:       ast.BoolOp(s.current.Text),
		Location: s.location(s.current),
	}

	if depth > s.maxDepth {
		return nil, &ruleErrors.SyntaxError{
			Location: node.Location,
			Message:  fmt.Sprintf("boolean expressions nested deeper than %d levels", s.maxDepth),
		}
	}

	if err := s.expect(lexer.OpenParen); err != nil {
		return nil, err
	}
	children, err := s.parseMatches(depth + 1)
	if err != nil {
		return nil, err
	}
	node.Children = children
	if err := s.expect(lexer.CloseParen); err != nil {
		return nil, err
	}

	return node, nil
}

// parsePredicate parses: predicate := SELECTOR NOT? (MODIFIER ':')? PATTERN
func (s *state) parsePredicate() (*ast.MatchNode, error) {
	if !s.check(lexer.Selector) {
		err := s.unexpected(lexer.Selector, lexer.Boolean)
		switch {
		case s.next.Kind == lexer.Pattern:
			err.Suggestion = ruleErrors.SuggestSelector(s.next.Text, lexer.Selectors())
		case s.current.Kind == lexer.CategoryName:
			err.Suggestion = fmt.Sprintf("category %q needs at least one match such as host*example.com", s.current.Text)
		}
		return nil, err
	}
	if err := s.advance(); err != nil {
		return nil, err
	}

	node := &ast.MatchNode{
		Type:     ast.MatchTypePredicate,
		Selector: s.current.Text,
		Location: s.location(s.current),
	}

	negate, err := s.accept(lexer.Not)
	if err != nil {
		return nil, err
	}

	modifier := pattern.ModifierNone
	hasModifier, err := s.accept(lexer.PatternModifier)
	if err != nil {
		return nil, err
	}
	if hasModifier {
		modifier = pattern.Modifier(s.current.Text)
		if err := s.expect(lexer.Colon); err != nil {
			return nil, err
		}
	}

	if err := s.expect(lexer.Pattern); err != nil {
		return nil, err
	}
	patternTok := s.current

	matcher, err := pattern.Compile(patternTok.Text, modifier, negate)
	if err != nil {
		if compileErr, ok := err.(*ruleErrors.PatternCompileError); ok {
			compileErr.Location = s.location(patternTok)
		}
		return nil, err
	}
	node.Matcher = matcher

	return node, nil
}
