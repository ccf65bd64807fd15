package ast

import "fmt"

// Location represents the source location of an AST node in the original rule file.
type Location struct {
	File   string // Path or name of the rule source
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based)
}

// String returns a human-readable representation of the location.
// Format: "file:line:column", or "line N" when the source has no name.
func (l Location) String() string {
	if !l.IsValid() {
		return "<unknown>"
	}
	if l.File == "" {
		if l.Column > 0 {
			return fmt.Sprintf("line %d, column %d", l.Line, l.Column)
		}
		return fmt.Sprintf("line %d", l.Line)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// IsValid returns true if the location has line information.
func (l Location) IsValid() bool {
	return l.Line > 0
}
