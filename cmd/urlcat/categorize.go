package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"mercator-hq/urlcat/pkg/categorizer"
	"mercator-hq/urlcat/pkg/cli"
	"mercator-hq/urlcat/pkg/config"
	"mercator-hq/urlcat/pkg/dataset"
	"mercator-hq/urlcat/pkg/rules/manager"
)

var categorizeFlags struct {
	output      string
	fields      []string
	encoding    string
	delimiter   string
	quoteChar   string
	rules       string
	ignoreLines int
	format      string
	workers     int
	progress    bool
}

var categorizeCmd = &cobra.Command{
	Use:   "categorize INPUT",
	Short: "Categorize the URL columns of a CSV file",
	Long: `Categorize the URLs found in the named columns of a CSV file.

The output repeats every input column and adds one <field>_<segment>
column per categorized field and rule segment. URLs that cannot be
evaluated leave their columns empty and are reported on stderr.

Examples:
  # Categorize the "url" column into result.csv
  urlcat categorize visits.csv -f url

  # Two columns, latin1 input with a semicolon delimiter
  urlcat categorize export.csv -f referrer,landing -e latin1 -d ';'

  # Skip a two-line preamble and write JSON lines
  urlcat categorize report.csv -f url -i 2 --format jsonl -o result.jsonl

  # Store results in SQLite
  urlcat categorize visits.csv -f url --format sqlite -o results.db`,
	Args: cobra.ExactArgs(1),
	RunE: categorizeURLs,
}

func init() {
	rootCmd.AddCommand(categorizeCmd)

	f := categorizeCmd.Flags()
	f.StringVarP(&categorizeFlags.output, "output_file", "o", "", `output file (default "result.csv")`)
	f.StringSliceVarP(&categorizeFlags.fields, "field_names", "f", nil, "input columns holding URLs to categorize")
	f.StringVarP(&categorizeFlags.encoding, "encoding", "e", "", `encoding of the input and rule files (default "utf-8")`)
	f.StringVarP(&categorizeFlags.delimiter, "delimiter", "d", "", `field delimiter (default ",")`)
	f.StringVarP(&categorizeFlags.quoteChar, "quotechar", "q", `"`, "quote character (only \" is supported)")
	f.StringVarP(&categorizeFlags.rules, "categorization-rules-file", "c", "", `rule file (default "categorization.txt")`)
	f.IntVarP(&categorizeFlags.ignoreLines, "ignore-lines", "i", 0, "number of lines to skip before the header")
	f.StringVar(&categorizeFlags.format, "format", "", "output format: csv, jsonl, sqlite (default csv)")
	f.IntVar(&categorizeFlags.workers, "workers", 0, "concurrent evaluation workers (0 = one per CPU)")
	f.BoolVar(&categorizeFlags.progress, "progress", false, "report progress on stderr")
}

// applyCategorizeFlags layers the command line over the configuration file.
func applyCategorizeFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := categorizeFlags

	if flags.quoteChar != "" && flags.quoteChar != `"` {
		return cli.NewConfigError("quotechar", fmt.Sprintf("unsupported quote character %q: only '\"' is supported", flags.quoteChar))
	}

	if flags.output != "" {
		cfg.Output.Path = flags.output
	}
	if len(flags.fields) > 0 {
		cfg.Input.Fields = flags.fields
	}
	if flags.encoding != "" {
		// Output follows the input encoding unless configured separately.
		if cfg.Output.Encoding == cfg.Input.Encoding {
			cfg.Output.Encoding = flags.encoding
		}
		cfg.Input.Encoding = flags.encoding
		cfg.Rules.Encoding = flags.encoding
	}
	if flags.delimiter != "" {
		cfg.Input.Delimiter = flags.delimiter
	}
	if flags.rules != "" {
		cfg.Rules.File = flags.rules
	}
	if flags.format != "" {
		cfg.Output.Format = flags.format
	}
	if flagChanged(cmd, "ignore-lines") {
		cfg.Input.IgnoreLines = flags.ignoreLines
	}
	if flagChanged(cmd, "workers") {
		cfg.Workers = flags.workers
	}

	if len(cfg.Input.Fields) == 0 {
		return cli.NewConfigError("field_names", "at least one field to categorize is required (-f)")
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("flags", err.Error())
	}
	return nil
}

func categorizeURLs(cmd *cobra.Command, args []string) error {
	cfg, logger := currentConfig()
	if err := applyCategorizeFlags(cmd, cfg); err != nil {
		return err
	}

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	mgr, err := manager.New(&cfg.Rules, logger, nil)
	if err != nil {
		return cli.NewCommandError("categorize", err)
	}
	rs, err := mgr.Load()
	if err != nil {
		return cli.NewCommandError("categorize", err)
	}
	for _, w := range rs.Warnings {
		logger.Warn("Rule lint warning", "rules", rs.Path, "line", w.Location.Line, "message", w.Message)
	}

	reader, err := dataset.Open(args[0], &cfg.Input)
	if err != nil {
		return cli.NewCommandError("categorize", err)
	}
	defer reader.Close()

	delimiter, _ := utf8.DecodeRuneInString(cfg.Input.Delimiter)
	schema := dataset.Schema{
		Header:    reader.Header(),
		Fields:    reader.Fields(),
		Segments:  rs.Root.SegmentNames(),
		Delimiter: delimiter,
	}

	sink, err := dataset.NewSink(&cfg.Output, cfg.Input.Encoding, schema)
	if err != nil {
		return cli.NewCommandError("categorize", err)
	}

	var progress cli.ProgressReporter
	if categorizeFlags.progress {
		progress = cli.NewProgressReporter(stderr(cmd))
	}

	summary, runErr := runBatch(ctx, reader, sink, categorizer.NewRunner(rs.Evaluator, cfg.Workers, logger), logger, progress)
	if err := sink.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to close output: %w", err)
	}
	if runErr != nil {
		return cli.NewCommandError("categorize", runErr)
	}

	fmt.Fprintf(stderr(cmd), "Categorized %d records (%d URLs, %d failed) in %s -> %s\n",
		summary.Records, summary.URLs, summary.Failed, summary.Duration.Round(time.Millisecond), cfg.Output.Path)
	return nil
}

// batchSummary counts the work done by runBatch.
type batchSummary struct {
	Records  int
	URLs     int
	Failed   int
	Duration time.Duration
}

// runBatch streams records from reader through runner into sink, preserving
// input order. Progress may be nil.
func runBatch(ctx context.Context, reader *dataset.Reader, sink dataset.Sink, runner *categorizer.Runner, logger *slog.Logger, progress cli.ProgressReporter) (batchSummary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	fields := reader.Fields()
	tasks := make(chan categorizer.Task, runner.Workers())
	readErr := make(chan error, 1)

	go func() {
		defer close(tasks)
		for seq := 0; ; seq++ {
			rec, err := reader.Read()
			if errors.Is(err, io.EOF) {
				readErr <- nil
				return
			}
			if err != nil {
				readErr <- err
				return
			}

			urls := make([]string, len(fields))
			for i, f := range fields {
				urls[i] = rec.Fields[f]
			}

			select {
			case tasks <- categorizer.Task{Seq: seq, URLs: urls, Payload: rec}:
			case <-ctx.Done():
				readErr <- ctx.Err()
				return
			}
		}
	}()

	if progress != nil {
		progress.Start(0)
	}

	var summary batchSummary
	for outcome := range runner.Run(ctx, tasks) {
		rec := outcome.Task.Payload.(*dataset.Record)
		row := &dataset.Row{Record: rec, Fields: make([]dataset.FieldResult, len(fields))}
		for i, f := range fields {
			fr := dataset.FieldResult{Field: f, URL: outcome.Task.URLs[i]}
			if err := outcome.Errors[i]; err != nil {
				fr.Err = err
				summary.Failed++
				logger.Warn("URL could not be categorized", "line", rec.Line, "field", f, "url", fr.URL, "error", err)
			} else {
				fr.Results = outcome.Results[i]
			}
			row.Fields[i] = fr
		}
		summary.URLs += len(fields)

		if err := sink.Write(ctx, row); err != nil {
			cancel()
			if progress != nil {
				progress.Error(err)
			}
			return summary, fmt.Errorf("failed to write line %d: %w", rec.Line, err)
		}
		summary.Records++
		if progress != nil {
			progress.Update(int64(summary.Records))
		}
	}

	err := <-readErr
	if err == nil {
		// The reader finished, so an early end of outcomes means cancellation.
		err = ctx.Err()
	}
	if err != nil {
		if progress != nil {
			progress.Error(err)
		}
		return summary, err
	}

	if progress != nil {
		progress.Finish()
	}
	summary.Duration = time.Since(start)
	return summary, nil
}
