package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/urlcat/pkg/categorizer"
	"mercator-hq/urlcat/pkg/cli"
	"mercator-hq/urlcat/pkg/rules/manager"
)

var evalFlags struct {
	rules    string
	encoding string
	format   string
}

// evalInput is read when no URL arguments are given.
var evalInput io.Reader = os.Stdin

var evalCmd = &cobra.Command{
	Use:   "eval [URL...]",
	Short: "Categorize single URLs",
	Long: `Categorize URLs given as arguments, or one per line on stdin.

Each URL prints one line:

  url;segment=category;segment=category

URLs that cannot be evaluated are reported on stderr and make the
command exit with status 1 once all URLs have been processed.

Examples:
  urlcat eval -c categorization.txt https://www.google.com/search?q=go
  cut -d, -f3 visits.csv | urlcat eval -c categorization.txt
  urlcat eval -c categorization.txt --format json https://example.org/`,
	RunE: evalURLs,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVarP(&evalFlags.rules, "categorization-rules-file", "c", "", `rule file (default "categorization.txt")`)
	evalCmd.Flags().StringVarP(&evalFlags.encoding, "encoding", "e", "", `encoding of the rule file (default "utf-8")`)
	evalCmd.Flags().StringVar(&evalFlags.format, "format", "text", "output format: text, json")
}

// EvalResult is the categorization of one URL.
type EvalResult struct {
	URL     string               `json:"url"`
	Results []categorizer.Result `json:"results,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// EvalReport holds the results of one eval run in input order.
type EvalReport []EvalResult

// Text renders successful results as url;segment=category lines.
func (r EvalReport) Text() string {
	var sb strings.Builder
	for _, res := range r {
		if res.Error != "" {
			continue
		}
		sb.WriteString(res.URL)
		for _, c := range res.Results {
			sb.WriteString(";")
			sb.WriteString(c.Segment)
			sb.WriteString("=")
			sb.WriteString(c.Category)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func evalURLs(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(evalFlags.format)
	if err != nil {
		return err
	}

	cfg, logger := currentConfig()
	if evalFlags.rules != "" {
		cfg.Rules.File = evalFlags.rules
	}
	if evalFlags.encoding != "" {
		cfg.Rules.Encoding = evalFlags.encoding
	}

	mgr, err := manager.New(&cfg.Rules, logger, nil)
	if err != nil {
		return cli.NewCommandError("eval", err)
	}
	rs, err := mgr.Load()
	if err != nil {
		return cli.NewCommandError("eval", err)
	}

	urls := args
	if len(urls) == 0 {
		urls, err = readLines(evalInput)
		if err != nil {
			return cli.NewCommandError("eval", fmt.Errorf("failed to read URLs: %w", err))
		}
	}

	report := make(EvalReport, 0, len(urls))
	failed := 0
	for _, u := range urls {
		res := EvalResult{URL: u}
		results, err := rs.Evaluator.Evaluate(u)
		if err != nil {
			res.Error = err.Error()
			failed++
			fmt.Fprintf(stderr(cmd), "%s: %v\n", u, err)
		} else {
			res.Results = results
		}
		report = append(report, res)
	}

	if err := cli.NewFormatter(format).FormatTo(stdout(cmd), report); err != nil {
		return err
	}

	if failed > 0 {
		return &cli.ExitError{Code: cli.ExitFailure}
	}
	return nil
}

// readLines returns the non-blank lines of r with surrounding spaces removed.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
