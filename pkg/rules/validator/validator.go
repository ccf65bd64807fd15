// Package validator reports suspicious constructs in rule files that parse
// correctly but probably do not do what their author intended.
//
// Findings are lint warnings: they never make a rule file unusable.
package validator

import (
	"fmt"

	"mercator-hq/urlcat/pkg/rules/ast"
	ruleErrors "mercator-hq/urlcat/pkg/rules/errors"
)

// universal is implemented by matchers that can tell they accept every input.
type universal interface {
	MatchesEverything() bool
}

// Validator runs lint checks over a parsed rule tree.
type Validator struct {
	errors *ruleErrors.ErrorList
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{
		errors: ruleErrors.NewErrorList(),
	}
}

// Validate returns a *errors.ErrorList of lint findings, or nil when there are none.
func (v *Validator) Validate(root *ast.Root) error {
	v.errors = ruleErrors.NewErrorList()

	seen := make(map[string]ast.Location)
	for _, segment := range root.Segments {
		if first, ok := seen[segment.Name]; ok {
			v.errors.AddErrorWithSuggestion(ruleErrors.ErrorTypeLint,
				fmt.Sprintf("segment %q is declared again (first at %s)", segment.Name, first),
				segment.Location,
				"both segments are evaluated and reported separately; rename one of them")
		} else {
			seen[segment.Name] = segment.Location
		}

		v.validateSegment(segment)
	}

	return v.errors.ToError()
}

// Warnings is a convenience wrapper returning the findings as a slice.
func Warnings(root *ast.Root) []*ruleErrors.Error {
	err := NewValidator().Validate(root)
	if err == nil {
		return nil
	}
	return err.(*ruleErrors.ErrorList).Errors
}

func (v *Validator) validateSegment(segment *ast.Segment) {
	if len(segment.Categories) == 0 {
		v.errors.AddErrorWithSuggestion(ruleErrors.ErrorTypeLint,
			fmt.Sprintf("segment %q has no categories and always reports no_match", segment.Name),
			segment.Location,
			"add categories with @<name> <match>...")
		return
	}

	categories := make(map[string]ast.Location)
	var catchAll *ast.Category

	for _, category := range segment.Categories {
		if catchAll != nil {
			v.errors.AddErrorWithSuggestion(ruleErrors.ErrorTypeLint,
				fmt.Sprintf("category %q in segment %q is unreachable: %q matches every URL", category.Name, segment.Name, catchAll.Name),
				category.Location,
				fmt.Sprintf("move %q to the end of the segment", catchAll.Name))
			continue
		}

		if first, ok := categories[category.Name]; ok {
			v.errors.AddErrorWithSuggestion(ruleErrors.ErrorTypeLint,
				fmt.Sprintf("category %q is declared twice in segment %q (first at %s)", category.Name, segment.Name, first),
				category.Location,
				"merge both rules with or(...)")
		} else {
			categories[category.Name] = category.Location
		}

		if matchesEverything(category) {
			catchAll = category
		}
	}
}

// matchesEverything reports whether every URL satisfies the category.
func matchesEverything(category *ast.Category) bool {
	for _, match := range category.Matches {
		if !alwaysTrue(match) {
			return false
		}
	}
	return len(category.Matches) > 0
}

func alwaysTrue(node *ast.MatchNode) bool {
	switch node.Type {
	case ast.MatchTypePredicate:
		u, ok := node.Matcher.(universal)
		return ok && u.MatchesEverything()
	case ast.MatchTypeBoolean:
		if node.Op == ast.BoolOpOr {
			for _, child := range node.Children {
				if alwaysTrue(child) {
					return true
				}
			}
			return false
		}
		for _, child := range node.Children {
			if !alwaysTrue(child) {
				return false
			}
		}
		return len(node.Children) > 0
	}
	return false
}
