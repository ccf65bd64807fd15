// Package parser builds rule-file ASTs with a recursive-descent parser.
//
// Grammar (one token of lookahead):
//
//	root      := BEGIN segment* EOF
//	segment   := '[' "segment" ':' SEGMENT_NAME ']' rule*
//	rule      := '@' CATEGORY_NAME match+
//	match     := BOOLEAN '(' match+ ')' | predicate
//	predicate := SELECTOR NOT? (MODIFIER ':')? PATTERN
//
// Pattern literals are compiled while parsing, so an invalid pattern fails the
// parse. There is no error recovery: the first error rejects the whole file.
//
// # Basic Usage
//
//	p := parser.NewParser()
//	root, err := p.ParseFile("categorization.txt")
//	if err != nil {
//	    log.Fatal(err) // *errors.LexError, *errors.SyntaxError, *errors.PatternCompileError
//	}
//	fmt.Println(root.SegmentNames())
package parser
