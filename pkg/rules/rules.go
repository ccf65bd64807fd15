package rules

import (
	"mercator-hq/urlcat/pkg/categorizer"
	"mercator-hq/urlcat/pkg/rules/ast"
	ruleErrors "mercator-hq/urlcat/pkg/rules/errors"
	"mercator-hq/urlcat/pkg/rules/parser"
	"mercator-hq/urlcat/pkg/rules/validator"
)

// Parse parses rule text into an AST.
func Parse(text string) (*ast.Root, error) {
	return parser.NewParser().Parse(text)
}

// ParseFile parses a UTF-8 rule file into an AST.
func ParseFile(path string) (*ast.Root, error) {
	return parser.NewParser().ParseFile(path)
}

// ParseAndValidate parses rule text and runs the lint checks.
// Lint findings never fail the parse; a non-nil root is always usable.
func ParseAndValidate(text string) (*ast.Root, []*ruleErrors.Error, error) {
	root, err := Parse(text)
	if err != nil {
		return nil, nil, err
	}
	return root, validator.Warnings(root), nil
}

// Evaluate classifies a URL against a parsed rule tree.
func Evaluate(root *ast.Root, rawURL string) ([]categorizer.Result, error) {
	return categorizer.Evaluate(root, rawURL)
}
