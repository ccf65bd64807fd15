// Package ast provides Abstract Syntax Tree (AST) definitions for URL categorization rule files.
//
// A rule file is parsed once into a Root node and then evaluated, read-only, against
// every input URL. All nodes preserve source location information for precise error
// reporting.
//
// # Core Types
//
// Root: top of the tree, holding segments in declaration order
//
// Segment: a named classification axis holding categories in declaration order
//
// Category: a named rule; its match list is an implicit AND
//
// MatchNode: a boolean combinator (and/or) or a predicate leaf (selector + Matcher)
//
// Location: source location (file, line, column)
//
// # AST Structure
//
//	Root
//	└── Segments ([]*Segment)
//	    └── Categories ([]*Category)
//	        └── Matches ([]*MatchNode)
//	            ├── Boolean (op, children)
//	            └── Predicate (selector, matcher)
//
// # Immutability
//
// AST nodes must be treated as immutable after construction. The parser builds the
// tree once, after which it is safe to share between goroutines evaluating different
// URLs concurrently.
package ast
