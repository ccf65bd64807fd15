// Package categorizer evaluates parsed rule files against URLs.
//
// An Evaluator walks the immutable AST once per URL. For every segment, in
// declaration order, the first category whose matches all hold names the
// segment's category; when none holds the segment reports NoMatch. Boolean
// nodes short-circuit left to right.
//
// Evaluators hold no mutable state and may be shared between goroutines. Runner
// fans a stream of URL tasks out to a worker pool and emits outcomes in input order.
//
// # Basic Usage
//
//	root, err := parser.NewParser().Parse(rulesText)
//	if err != nil {
//	    return err
//	}
//	results, err := categorizer.New(root).Evaluate("https://example.com/search?q=1")
//	// [{search organic true}]
package categorizer
