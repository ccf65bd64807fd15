// Package pattern compiles pattern literals of the rule language into reusable
// string predicates.
//
// Without a regular expression modifier a literal is classified by its leading
// and trailing '*' wildcard:
//
//	*abc*  contains "abc"
//	*abc   ends with "abc"
//	abc*   starts with "abc"
//	abc    equals "abc"
//
// The "i" modifier compares case-insensitively. The "rx" and "rxi" modifiers
// compile the literal as a regular expression that must match at the start of
// the candidate.
package pattern

import (
	"strings"

	"github.com/coregx/coregex"

	ruleErrors "mercator-hq/urlcat/pkg/rules/errors"
)

// Modifier alters how a pattern literal is compiled.
type Modifier string

const (
	ModifierNone             Modifier = ""
	ModifierCaseInsensitive  Modifier = "i"
	ModifierRegex            Modifier = "rx"
	ModifierRegexInsensitive Modifier = "rxi"
)

// IsRegex returns true for the regular expression modifiers.
func (m Modifier) IsRegex() bool {
	return m == ModifierRegex || m == ModifierRegexInsensitive
}

// IsCaseInsensitive returns true for "i" and "rxi".
func (m Modifier) IsCaseInsensitive() bool {
	return m == ModifierCaseInsensitive || m == ModifierRegexInsensitive
}

func (m Modifier) valid() bool {
	switch m {
	case ModifierNone, ModifierCaseInsensitive, ModifierRegex, ModifierRegexInsensitive:
		return true
	}
	return false
}

// ParseModifier converts modifier text into a Modifier.
func ParseModifier(s string) (Modifier, error) {
	m := Modifier(s)
	if !m.valid() {
		return ModifierNone, &ruleErrors.PatternCompileError{
			Modifier: s,
			Reason:   "unknown pattern modifier",
		}
	}
	return m, nil
}

// Kind is the matching strategy selected for a literal.
type Kind string

const (
	KindExact    Kind = "exact"
	KindPrefix   Kind = "prefix"
	KindSuffix   Kind = "suffix"
	KindContains Kind = "contains"
	KindRegex    Kind = "regex"
)

// Pattern is a compiled, immutable string predicate. It is safe for concurrent use.
type Pattern struct {
	source   string
	literal  string // wildcard-stripped text, upper-cased for "i"
	kind     Kind
	modifier Modifier
	negated  bool
	re       *coregex.Regex
}

// Compile compiles a pattern literal with an optional modifier. When negate is
// true the resulting predicate is the complement of the plain one. Negated
// regular expressions are rejected.
func Compile(text string, modifier Modifier, negate bool) (*Pattern, error) {
	if !modifier.valid() {
		return nil, &ruleErrors.PatternCompileError{
			Pattern:  text,
			Modifier: string(modifier),
			Negated:  negate,
			Reason:   "unknown pattern modifier",
		}
	}

	p := &Pattern{
		source:   text,
		modifier: modifier,
		negated:  negate,
	}

	if modifier.IsRegex() {
		if negate {
			return nil, &ruleErrors.PatternCompileError{
				Pattern:  text,
				Modifier: string(modifier),
				Negated:  true,
				Reason:   "negation is not supported for regular expressions",
			}
		}

		expr := "^(?:" + text + ")"
		if modifier == ModifierRegexInsensitive {
			expr = "(?i)" + expr
		}
		re, err := coregex.Compile(expr)
		if err != nil {
			return nil, &ruleErrors.PatternCompileError{
				Pattern:  text,
				Modifier: string(modifier),
				Reason:   "invalid regular expression",
				Err:      err,
			}
		}
		p.kind = KindRegex
		p.literal = text
		p.re = re
		return p, nil
	}

	p.kind, p.literal = classify(text)
	if modifier == ModifierCaseInsensitive {
		p.literal = strings.ToUpper(p.literal)
	}

	return p, nil
}

// MustCompile is like Compile but panics if the pattern cannot be compiled.
func MustCompile(text string, modifier Modifier, negate bool) *Pattern {
	p, err := Compile(text, modifier, negate)
	if err != nil {
		panic(err)
	}
	return p
}

// classify selects the matching strategy from the literal's '*' wildcards.
func classify(text string) (Kind, string) {
	leading := strings.HasPrefix(text, "*")
	trailing := strings.HasSuffix(text, "*")

	switch {
	case leading && len(text) == 1:
		return KindContains, ""
	case leading && trailing:
		return KindContains, text[1 : len(text)-1]
	case leading:
		return KindSuffix, text[1:]
	case trailing:
		return KindPrefix, text[:len(text)-1]
	default:
		return KindExact, text
	}
}

// Match reports whether candidate satisfies the pattern.
func (p *Pattern) Match(candidate string) bool {
	if p.kind == KindRegex {
		return p.re.MatchString(candidate)
	}

	if p.modifier == ModifierCaseInsensitive {
		candidate = strings.ToUpper(candidate)
	}

	var matched bool
	switch p.kind {
	case KindContains:
		matched = strings.Contains(candidate, p.literal)
	case KindSuffix:
		matched = strings.HasSuffix(candidate, p.literal)
	case KindPrefix:
		matched = strings.HasPrefix(candidate, p.literal)
	default:
		matched = candidate == p.literal
	}

	return matched != p.negated
}

// String returns the pattern as it would be written in a rule file.
func (p *Pattern) String() string {
	var sb strings.Builder
	if p.negated {
		sb.WriteString("not ")
	}
	if p.modifier != ModifierNone {
		sb.WriteString(string(p.modifier))
		sb.WriteByte(':')
	}
	sb.WriteString(p.source)
	return sb.String()
}

// Source returns the literal as written.
func (p *Pattern) Source() string { return p.source }

// Literal returns the text compared against candidates (wildcards stripped,
// upper-cased for case-insensitive patterns).
func (p *Pattern) Literal() string { return p.literal }

// Kind returns the matching strategy.
func (p *Pattern) Kind() Kind { return p.kind }

// Modifier returns the modifier the pattern was compiled with.
func (p *Pattern) Modifier() Modifier { return p.modifier }

// Negated returns true if the predicate is complemented.
func (p *Pattern) Negated() bool { return p.negated }

// MatchesEverything reports whether the pattern is true for every input.
func (p *Pattern) MatchesEverything() bool {
	return p.kind == KindContains && p.literal == "" && !p.negated
}
