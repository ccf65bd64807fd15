package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/urlcat/pkg/cli"
	"mercator-hq/urlcat/pkg/config"
	"mercator-hq/urlcat/pkg/rules/ast"
	ruleErrors "mercator-hq/urlcat/pkg/rules/errors"
	"mercator-hq/urlcat/pkg/rules/parser"
	"mercator-hq/urlcat/pkg/rules/validator"
)

var lintFlags struct {
	rules    string
	encoding string
	strict   bool
	format   string
}

var lintCmd = &cobra.Command{
	Use:   "lint [FILE...]",
	Short: "Validate rule files",
	Long: `Validate rule files for syntax errors and suspicious rules.

Lint parses each file exactly as the categorizer does and then checks for
duplicate segments and categories, empty segments, and categories that
can never match because an earlier rule matches every URL.

Examples:
  # Lint the configured rule file
  urlcat lint

  # Lint several files, failing on warnings
  urlcat lint rules/*.txt --strict

  # JSON output for CI
  urlcat lint -c categorization.txt --format json`,
	RunE: lintRules,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.rules, "categorization-rules-file", "c", "", "rule file to validate when no FILE is given")
	lintCmd.Flags().StringVarP(&lintFlags.encoding, "encoding", "e", "", `encoding of the rule files (default "utf-8")`)
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// LintResult is the validation result for a single rule file.
type LintResult struct {
	File     string      `json:"file"`
	Valid    bool        `json:"valid"`
	Segments int         `json:"segments"`
	Errors   []LintIssue `json:"errors,omitempty"`
	Warnings []LintIssue `json:"warnings,omitempty"`
}

// LintIssue is a single error or warning.
type LintIssue struct {
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	Type       string `json:"type,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// LintReport is the outcome of a lint run.
type LintReport struct {
	Results  []LintResult `json:"results"`
	Errors   int          `json:"errors"`
	Warnings int          `json:"warnings"`
	Strict   bool         `json:"strict"`
}

// Failed reports whether the run should exit non-zero.
func (r *LintReport) Failed() bool {
	return r.Errors > 0 || (r.Strict && r.Warnings > 0)
}

// Text renders the report for terminals.
func (r *LintReport) Text() string {
	var sb strings.Builder
	for _, res := range r.Results {
		fmt.Fprintf(&sb, "Validating %s...\n", res.File)
		if len(res.Errors) == 0 {
			fmt.Fprintf(&sb, "✓ Syntax valid (%d segments)\n", res.Segments)
		}
		for _, e := range res.Errors {
			fmt.Fprintf(&sb, "✗ Error: %s\n", e.describe())
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(&sb, "⚠  Warning: %s\n", w.describe())
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Summary:\n")
	fmt.Fprintf(&sb, "  %d error(s), %d warning(s)\n", r.Errors, r.Warnings)
	if r.Strict && r.Warnings > 0 {
		sb.WriteString("  Strict mode enabled: treating warnings as errors\n")
	}
	return sb.String()
}

func (i LintIssue) describe() string {
	var sb strings.Builder
	sb.WriteString(i.Message)
	if i.Line > 0 {
		fmt.Fprintf(&sb, " (line %d", i.Line)
		if i.Column > 0 {
			fmt.Fprintf(&sb, ", col %d", i.Column)
		}
		sb.WriteString(")")
	}
	if i.Type != "" {
		fmt.Fprintf(&sb, " [%s]", i.Type)
	}
	if i.Suggestion != "" {
		fmt.Fprintf(&sb, "\n    %s", i.Suggestion)
	}
	return sb.String()
}

func lintRules(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(lintFlags.format)
	if err != nil {
		return err
	}

	cfg, _ := currentConfig()
	if lintFlags.encoding != "" {
		cfg.Rules.Encoding = lintFlags.encoding
	}

	files := args
	if len(files) == 0 {
		file := cfg.Rules.File
		if lintFlags.rules != "" {
			file = lintFlags.rules
		}
		files = []string{file}
	}

	p := newRulesParser(&cfg.Rules)
	report := &LintReport{Strict: lintFlags.strict}
	for _, file := range files {
		res := lintFile(p, file)
		report.Errors += len(res.Errors)
		report.Warnings += len(res.Warnings)
		report.Results = append(report.Results, res)
	}

	if err := cli.NewFormatter(format).FormatTo(stdout(cmd), report); err != nil {
		return err
	}

	if report.Failed() {
		return &cli.ExitError{Code: cli.ExitFailure}
	}
	return nil
}

// newRulesParser builds a parser with the configured limits.
func newRulesParser(cfg *config.RulesConfig) *parser.Parser {
	p := parser.NewParser().WithEncoding(cfg.Encoding)
	if cfg.MaxFileSize > 0 {
		p = p.WithMaxFileSize(cfg.MaxFileSize)
	}
	if cfg.MaxDepth > 0 {
		p = p.WithMaxDepth(cfg.MaxDepth)
	}
	return p
}

func lintFile(p *parser.Parser, path string) LintResult {
	result := LintResult{File: path, Valid: true}

	root, err := p.ParseFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, issueFromError(err))
		return result
	}

	result.Segments = len(root.Segments)
	for _, w := range validator.Warnings(root) {
		result.Warnings = append(result.Warnings, issueFromError(w))
	}
	return result
}

// issueFromError extracts the location and headline of a rule error.
func issueFromError(err error) LintIssue {
	issue := LintIssue{Message: headline(err)}

	var loc ast.Location
	var (
		lexErr     *ruleErrors.LexError
		syntaxErr  *ruleErrors.SyntaxError
		patternErr *ruleErrors.PatternCompileError
		ruleErr    *ruleErrors.Error
	)
	switch {
	case errors.As(err, &lexErr):
		loc = lexErr.Location
	case errors.As(err, &syntaxErr):
		loc = syntaxErr.Location
		issue.Suggestion = syntaxErr.Suggestion
	case errors.As(err, &patternErr):
		loc = patternErr.Location
	case errors.As(err, &ruleErr):
		loc = ruleErr.Location
		issue.Suggestion = ruleErr.Suggestion
	}
	issue.Line = loc.Line
	issue.Column = loc.Column

	var typed ruleErrors.Typed
	if errors.As(err, &typed) {
		issue.Type = string(typed.ErrorType())
	}
	return issue
}

// headline returns the first line of err without its "[type] " prefix.
func headline(err error) string {
	msg, _, _ := strings.Cut(err.Error(), "\n")
	if strings.HasPrefix(msg, "[") {
		if _, rest, ok := strings.Cut(msg, "] "); ok {
			return rest
		}
	}
	return msg
}
