package errors

import (
	"fmt"
	"strings"

	"mercator-hq/urlcat/pkg/rules/ast"
)

// ErrorType categorizes the type of error encountered while parsing or evaluating rules.
type ErrorType string

const (
	ErrorTypeLex        ErrorType = "lex"        // Unscannable input
	ErrorTypeSyntax     ErrorType = "syntax"     // Grammar violation
	ErrorTypePattern    ErrorType = "pattern"    // Pattern literal could not be compiled
	ErrorTypeEvaluation ErrorType = "evaluation" // URL-level evaluation failure
	ErrorTypeIO         ErrorType = "io"         // Rule source could not be read
	ErrorTypeLint       ErrorType = "lint"       // Suspicious but valid rules
)

// Typed is implemented by every error in this package.
type Typed interface {
	error
	ErrorType() ErrorType
}

// Error represents a generic rule error with location, context, and suggestion.
// It is used for failures that have no dedicated type, such as I/O errors.
type Error struct {
	Type       ErrorType    // Category of error
	Message    string       // Error message
	Location   ast.Location // Source location
	Context    string       // Surrounding lines of rule text
	Suggestion string       // Suggested fix (optional)
	Err        error        // Underlying cause (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	return render(e.Type, e.Message, e.Location, e.Context, e.Suggestion)
}

// ErrorType returns the error category.
func (e *Error) ErrorType() ErrorType { return e.Type }

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// LexError reports a scan position where no token pattern matches.
type LexError struct {
	Location ast.Location
	Char     rune // Offending character (utf8.RuneError for invalid encoding)
	Context  string
}

// Error implements the error interface.
func (e *LexError) Error() string {
	return render(ErrorTypeLex, fmt.Sprintf("unexpected character %q", e.Char), e.Location, e.Context, "")
}

// ErrorType returns ErrorTypeLex.
func (e *LexError) ErrorType() ErrorType { return ErrorTypeLex }

// Line returns the 1-based line of the offending character.
func (e *LexError) Line() int { return e.Location.Line }

// SyntaxError reports a grammar violation. The whole rule file is rejected.
type SyntaxError struct {
	Location   ast.Location
	Expected   []string // Token kinds that would have been accepted
	Found      string   // Token kind actually found
	FoundText  string   // Text of the token actually found
	Message    string   // Optional override of the default message
	Context    string
	Suggestion string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("expected %s, found %s", strings.Join(e.Expected, " or "), e.describeFound())
	}
	return render(ErrorTypeSyntax, msg, e.Location, e.Context, e.Suggestion)
}

func (e *SyntaxError) describeFound() string {
	if e.FoundText == "" {
		return e.Found
	}
	return fmt.Sprintf("%s %q", e.Found, e.FoundText)
}

// ErrorType returns ErrorTypeSyntax.
func (e *SyntaxError) ErrorType() ErrorType { return ErrorTypeSyntax }

// Line returns the 1-based line of the unexpected token.
func (e *SyntaxError) Line() int { return e.Location.Line }

// PatternCompileError reports a pattern literal that could not be compiled.
type PatternCompileError struct {
	Pattern  string
	Modifier string
	Negated  bool
	Reason   string
	Err      error
	Location ast.Location // Set by the parser; zero when compiled directly
	Context  string
}

// Error implements the error interface.
func (e *PatternCompileError) Error() string {
	msg := fmt.Sprintf("cannot compile pattern %q", e.Pattern)
	if e.Modifier != "" {
		msg = fmt.Sprintf("cannot compile pattern %q with modifier %q", e.Pattern, e.Modifier)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return render(ErrorTypePattern, msg, e.Location, e.Context, "")
}

// ErrorType returns ErrorTypePattern.
func (e *PatternCompileError) ErrorType() ErrorType { return ErrorTypePattern }

// Unwrap returns the underlying regular expression error, if any.
func (e *PatternCompileError) Unwrap() error { return e.Err }

// EvaluationError reports a failure evaluating one URL. It never affects the AST
// or the evaluation of other URLs.
type EvaluationError struct {
	URL      string
	Selector string // Set when a selector names no URL component
	Err      error  // Set when the URL itself cannot be decomposed
}

// Error implements the error interface.
func (e *EvaluationError) Error() string {
	if e.Selector != "" {
		return fmt.Sprintf("[%s] unknown URL component selector %q while evaluating %q", ErrorTypeEvaluation, e.Selector, e.URL)
	}
	return fmt.Sprintf("[%s] cannot decompose URL %q: %v", ErrorTypeEvaluation, e.URL, e.Err)
}

// ErrorType returns ErrorTypeEvaluation.
func (e *EvaluationError) ErrorType() ErrorType { return ErrorTypeEvaluation }

// Unwrap returns the URL parse error, if any.
func (e *EvaluationError) Unwrap() error { return e.Err }

// render formats an error with location, context and suggestion.
func render(errType ErrorType, message string, location ast.Location, context, suggestion string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s", errType, message))

	if location.IsValid() {
		sb.WriteString(fmt.Sprintf("\n  --> %s", location.String()))
	}

	if context != "" {
		sb.WriteString("\n  |\n")
		sb.WriteString(context)
		sb.WriteString("  |")
	}

	if suggestion != "" {
		sb.WriteString(fmt.Sprintf("\n  = suggestion: %s", suggestion))
	}

	return sb.String()
}

// ErrorList represents a collection of errors, used where reporting every
// problem beats failing on the first (linting).
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{
		Errors: make([]*Error, 0),
	}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddErrorWithSuggestion creates and adds a new error with a suggestion.
func (el *ErrorList) AddErrorWithSuggestion(errType ErrorType, message string, location ast.Location, suggestion string) {
	el.Add(&Error{
		Type:       errType,
		Message:    message,
		Location:   location,
		Suggestion: suggestion,
	})
}

// HasErrors returns true if the error list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Error implements the error interface.
// It returns all errors formatted as a single string.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d problem(s):\n\n", el.Count()))

	for i, err := range el.Errors {
		sb.WriteString(fmt.Sprintf("Problem %d:\n", i+1))
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}

	return sb.String()
}

// ToError returns nil if the error list is empty, otherwise returns the error list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}
