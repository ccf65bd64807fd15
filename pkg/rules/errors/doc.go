// Package errors defines the error taxonomy of the rule language.
//
// Every error carries enough context to point at the offending input:
//
//   - LexError: no token pattern matches at a scan position (line, character)
//   - SyntaxError: grammar violation (line, expected kinds, found kind)
//   - PatternCompileError: invalid modifier, invalid regular expression, or a
//     negated regular expression
//   - EvaluationError: a URL that cannot be decomposed or a selector that names no
//     URL component; fatal for one URL only
//   - Error: generic I/O failure while loading a rule source
//
// Parse-time errors render in a compiler-like layout:
//
//	[syntax] expected SELECTOR or BOOLEAN, found EOF
//	  --> rules.txt:3:5
//	  |
//	->  3 | @cat
//	  |       ^
//	  |
//	  = suggestion: add at least one match after the category name
package errors
