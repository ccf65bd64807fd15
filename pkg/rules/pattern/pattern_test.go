package pattern

import (
	"errors"
	"strings"
	"testing"

	ruleErrors "mercator-hq/urlcat/pkg/rules/errors"
)

func TestCompile_Wildcards(t *testing.T) {
	tests := []struct {
		name      string
		pattern   string
		kind      Kind
		candidate string
		want      bool
	}{
		{"contains match", "*abc*", KindContains, "xxabcxx", true},
		{"contains miss", "*abc*", KindContains, "xxabxx", false},
		{"suffix match", "*abc", KindSuffix, "xxabc", true},
		{"suffix miss", "*abc", KindSuffix, "abcxx", false},
		{"prefix match", "abc*", KindPrefix, "abcxx", true},
		{"prefix miss", "abc*", KindPrefix, "xxabc", false},
		{"exact match", "abc", KindExact, "abc", true},
		{"exact miss", "abc", KindExact, "abcd", false},
		{"exact is case sensitive", "abc", KindExact, "ABC", false},
		{"lone star matches anything", "*", KindContains, "whatever", true},
		{"lone star matches empty", "*", KindContains, "", true},
		{"inner star is literal", "a*c", KindExact, "abc", false},
		{"inner star exact", "a*c", KindExact, "a*c", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.pattern, ModifierNone, false)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if p.Kind() != tt.kind {
				t.Errorf("Kind() = %s, want %s", p.Kind(), tt.kind)
			}
			if got := p.Match(tt.candidate); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.candidate, got, tt.want)
			}
		})
	}
}

func TestCompile_CaseInsensitive(t *testing.T) {
	tests := []struct {
		pattern   string
		candidate string
		want      bool
	}{
		{"*Example*", "WWW.EXAMPLE.COM", true},
		{"*example*", "www.Example.com", true},
		{"ABC*", "abcdef", true},
		{"abc", "ABC", true},
		{"*abc", "xyz", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.candidate, func(t *testing.T) {
			p := MustCompile(tt.pattern, ModifierCaseInsensitive, false)
			if got := p.Match(tt.candidate); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.candidate, got, tt.want)
			}
		})
	}
}

func TestCompile_NegationIsComplement(t *testing.T) {
	patterns := []struct {
		text     string
		modifier Modifier
	}{
		{"*abc*", ModifierNone},
		{"abc*", ModifierNone},
		{"*abc", ModifierNone},
		{"abc", ModifierNone},
		{"*ABC*", ModifierCaseInsensitive},
	}
	candidates := []string{"", "abc", "xabcx", "abcx", "xabc", "ABC", "zzz"}

	for _, pt := range patterns {
		plain := MustCompile(pt.text, pt.modifier, false)
		negated := MustCompile(pt.text, pt.modifier, true)
		for _, c := range candidates {
			if plain.Match(c) == negated.Match(c) {
				t.Errorf("pattern %q on %q: plain and negated both %v", pt.text, c, plain.Match(c))
			}
		}
	}
}

func TestCompile_Regex(t *testing.T) {
	tests := []struct {
		name      string
		pattern   string
		modifier  Modifier
		candidate string
		want      bool
	}{
		{"anchored at start", "/v[0-9]+/", ModifierRegex, "/v2/docs", true},
		{"not anywhere", "/v[0-9]+/", ModifierRegex, "/api/v2/docs", false},
		{"prefix only", "abc", ModifierRegex, "abcdef", true},
		{"case sensitive", "abc", ModifierRegex, "ABC", false},
		{"case insensitive", "abc", ModifierRegexInsensitive, "ABCdef", true},
		{"alternation is grouped", "a|b", ModifierRegex, "xb", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.pattern, tt.modifier, false)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if p.Kind() != KindRegex {
				t.Errorf("Kind() = %s, want regex", p.Kind())
			}
			if got := p.Match(tt.candidate); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.candidate, got, tt.want)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		modifier Modifier
		negate   bool
		reason   string
	}{
		{"negated regex", "abc", ModifierRegex, true, "negation"},
		{"negated case-insensitive regex", "abc", ModifierRegexInsensitive, true, "negation"},
		{"invalid regex", "a(b", ModifierRegex, false, "invalid regular expression"},
		{"unknown modifier", "abc", Modifier("x"), false, "unknown pattern modifier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.pattern, tt.modifier, tt.negate)
			if err == nil {
				t.Fatal("Compile() expected error")
			}
			var pce *ruleErrors.PatternCompileError
			if !errors.As(err, &pce) {
				t.Fatalf("error type = %T, want *PatternCompileError", err)
			}
			if !strings.Contains(pce.Reason, tt.reason) {
				t.Errorf("Reason = %q, want it to contain %q", pce.Reason, tt.reason)
			}
		})
	}
}

func TestParseModifier(t *testing.T) {
	for _, s := range []string{"", "i", "rx", "rxi"} {
		if _, err := ParseModifier(s); err != nil {
			t.Errorf("ParseModifier(%q) error = %v", s, err)
		}
	}
	if _, err := ParseModifier("ix"); err == nil {
		t.Error("ParseModifier(\"ix\") expected error")
	}
}

func TestPattern_String(t *testing.T) {
	tests := []struct {
		p    *Pattern
		want string
	}{
		{MustCompile("*abc*", ModifierNone, false), "*abc*"},
		{MustCompile("abc", ModifierCaseInsensitive, true), "not i:abc"},
		{MustCompile("/v[0-9]", ModifierRegex, false), "rx:/v[0-9]"},
		{MustCompile("/a", ModifierRegexInsensitive, true), "not rxi:/a"},
		{MustCompile("100%s", ModifierCaseInsensitive, false), "i:100%s"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestPattern_MatchesEverything(t *testing.T) {
	if !MustCompile("*", ModifierNone, false).MatchesEverything() {
		t.Error("\"*\" should match everything")
	}
	if !MustCompile("**", ModifierCaseInsensitive, false).MatchesEverything() {
		t.Error("\"**\" should match everything")
	}
	if MustCompile("*", ModifierNone, true).MatchesEverything() {
		t.Error("negated \"*\" matches nothing")
	}
	if MustCompile("*a*", ModifierNone, false).MatchesEverything() {
		t.Error("\"*a*\" does not match everything")
	}
}
