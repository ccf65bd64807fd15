package validator

import (
	"errors"
	"strings"
	"testing"

	ruleErrors "mercator-hq/urlcat/pkg/rules/errors"
	"mercator-hq/urlcat/pkg/rules/parser"
)

// TestValidate tests lint findings on parsed rule files
func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		rules    string
		messages []string
	}{
		{
			name:  "clean rules",
			rules: "[segment:a]\n@x host*a.com\n@y url *\n",
		},
		{
			name:     "duplicate segment",
			rules:    "[segment:a]\n@x host*a.com\n[segment:a]\n@y host*b.com\n",
			messages: []string{`segment "a" is declared again`},
		},
		{
			name:     "empty segment",
			rules:    "[segment:a]\n",
			messages: []string{"has no categories"},
		},
		{
			name:     "duplicate category",
			rules:    "[segment:a]\n@x host*a.com\n@x host*b.com\n",
			messages: []string{`category "x" is declared twice`},
		},
		{
			name:     "unreachable after catch-all",
			rules:    "[segment:a]\n@all url *\n@x host*a.com\n",
			messages: []string{`category "x" in segment "a" is unreachable`},
		},
		{
			name:     "catch-all through or",
			rules:    "[segment:a]\n@all or( host*a.com url * )\n@x host*a.com\n",
			messages: []string{"unreachable"},
		},
		{
			name:  "negated star is not a catch-all",
			rules: "[segment:a]\n@none url not *\n@x host*a.com\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := parser.NewParser().Parse(tt.rules)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			err = NewValidator().Validate(root)
			if len(tt.messages) == 0 {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}

			var list *ruleErrors.ErrorList
			if !errors.As(err, &list) {
				t.Fatalf("Validate() error = %v, want *ErrorList", err)
			}
			if list.Count() != len(tt.messages) {
				t.Fatalf("Count() = %d, want %d: %v", list.Count(), len(tt.messages), list)
			}
			for i, msg := range tt.messages {
				got := list.Errors[i]
				if got.Type != ruleErrors.ErrorTypeLint {
					t.Errorf("Errors[%d].Type = %s", i, got.Type)
				}
				if !strings.Contains(got.Message, msg) {
					t.Errorf("Errors[%d].Message = %q, want it to contain %q", i, got.Message, msg)
				}
				if !got.Location.IsValid() {
					t.Errorf("Errors[%d] has no location", i)
				}
			}
		})
	}
}

// TestWarnings tests the slice convenience wrapper
func TestWarnings(t *testing.T) {
	root, err := parser.NewParser().Parse("[segment:a]\n[segment:b]\n@x url *\n")
	if err != nil {
		t.Fatal(err)
	}
	if got := Warnings(root); len(got) != 1 {
		t.Errorf("Warnings() = %v, want one finding", got)
	}
}
