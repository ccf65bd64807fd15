package ast

// MatchType represents the kind of a match node.
type MatchType string

const (
	MatchTypeBoolean   MatchType = "boolean"   // and/or over children
	MatchTypePredicate MatchType = "predicate" // selector + compiled pattern
)

// BoolOp is the operator of a boolean match node.
type BoolOp string

const (
	BoolOpAnd BoolOp = "and"
	BoolOpOr  BoolOp = "or"
)

// Matcher is a compiled, immutable string predicate.
type Matcher interface {
	Match(candidate string) bool
	String() string
}

// MatchNode represents a match expression in the AST.
// Boolean nodes carry Op and Children; predicate nodes carry Selector and Matcher.
type MatchNode struct {
	Type     MatchType    // Kind of node
	Op       BoolOp       // Operator (for Boolean nodes)
	Children []*MatchNode // Operands (for Boolean nodes, at least one)
	Selector string       // URL component name as written (for Predicate nodes)
	Matcher  Matcher      // Compiled pattern (for Predicate nodes)
	Location Location     // Source location
}

// IsBoolean returns true if this is an and/or node.
func (m *MatchNode) IsBoolean() bool {
	return m.Type == MatchTypeBoolean
}

// IsPredicate returns true if this is a selector/pattern leaf.
func (m *MatchNode) IsPredicate() bool {
	return m.Type == MatchTypePredicate
}

// Depth returns the nesting depth of the expression (a predicate has depth 1).
func (m *MatchNode) Depth() int {
	if !m.IsBoolean() {
		return 1
	}
	deepest := 0
	for _, child := range m.Children {
		if d := child.Depth(); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}
