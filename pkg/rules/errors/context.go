package errors

import (
	"fmt"
	"strings"

	"mercator-hq/urlcat/pkg/rules/ast"
)

// ExtractContext extracts the lines surrounding location from the rule text
// and formats them with line numbers and a column caret.
func ExtractContext(source string, location ast.Location, contextLines int) string {
	if !location.IsValid() || source == "" {
		return ""
	}

	lines := strings.Split(source, "\n")

	errorLine := location.Line - 1 // Convert to 0-based index
	if errorLine >= len(lines) {
		return ""
	}
	startLine := max(errorLine-contextLines, 0)
	endLine := min(errorLine+contextLines, len(lines)-1)

	var sb strings.Builder
	maxLineNumWidth := len(fmt.Sprintf("%d", endLine+1))

	for i := startLine; i <= endLine; i++ {
		lineNumStr := fmt.Sprintf("%*d", maxLineNumWidth, i+1)
		prefix := "  "
		if i == errorLine {
			prefix = "->"
		}

		sb.WriteString(fmt.Sprintf("%s %s | %s\n", prefix, lineNumStr, strings.TrimRight(lines[i], "\r")))

		if i == errorLine && location.Column > 0 {
			padding := strings.Repeat(" ", location.Column-1)
			sb.WriteString(fmt.Sprintf("   %s | %s^\n", strings.Repeat(" ", maxLineNumWidth), padding))
		}
	}

	return sb.String()
}

// AddContext enriches a parse-time error with source context. Errors of other
// types are returned unchanged.
func AddContext(err error, source string) error {
	const contextLines = 2

	switch e := err.(type) {
	case *LexError:
		e.Context = ExtractContext(source, e.Location, contextLines)
	case *SyntaxError:
		e.Context = ExtractContext(source, e.Location, contextLines)
	case *PatternCompileError:
		e.Context = ExtractContext(source, e.Location, contextLines)
	case *Error:
		e.Context = ExtractContext(source, e.Location, contextLines)
	}
	return err
}
