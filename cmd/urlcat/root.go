package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/urlcat/pkg/cli"
	"mercator-hq/urlcat/pkg/config"
	"mercator-hq/urlcat/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile   string
	logLevel  string
	logFormat string
	verbose   bool
)

// appConfig and appLogger are set up by initRuntime before any subcommand runs.
var (
	appConfig *config.Config
	appLogger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "urlcat",
	Short: "urlcat - rule based URL categorization",
	Long: `urlcat assigns categories to URLs using a plain-text rule file.

Rules are grouped into segments; every URL receives exactly one category
per segment, the first one whose rule matches, or "no_match".

It can:
  - Categorize URL columns of CSV files (csv, jsonl or sqlite output)
  - Evaluate single URLs from the command line or stdin
  - Lint rule files
  - Serve a categorization HTTP API with hot rule reload`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initRuntime,
}

// Execute runs the root command and exits with the status matching the error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !cli.Silent(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "urlcat.yaml", "config file path (defaults apply when missing)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: json, text, console")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return cli.NewConfigError("flags", err.Error())
	})
}

// initRuntime loads the configuration and builds the logger.
func initRuntime(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigOrDefault(cfgFile)
	if err != nil {
		return cli.NewConfigError("config", err.Error())
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	logger, err := logging.New(logging.Config{
		Level:           cfg.Logging.Level,
		Format:          cfg.Logging.Format,
		AddSource:       cfg.Logging.AddSource,
		RedactQuery:     cfg.Logging.RedactQuery,
		SensitiveParams: cfg.Logging.SensitiveParams,
		Writer:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return cli.NewConfigError("logging", err.Error())
	}

	appConfig = cfg
	appLogger = logger
	slog.SetDefault(logger)
	return nil
}

// currentConfig returns a private copy of the loaded configuration and the logger.
// Commands invoked without initRuntime get the defaults and a silent logger.
func currentConfig() (*config.Config, *slog.Logger) {
	if appConfig == nil {
		appConfig = config.NewDefaultConfig()
	}
	if appLogger == nil {
		appLogger = logging.Discard()
	}
	cfg := *appConfig
	return &cfg, appLogger
}

func stdout(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}

func stderr(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stderr
	}
	return cmd.ErrOrStderr()
}

// flagChanged reports whether the named flag was set on the command line.
// Direct invocations without a command treat every flag as set.
func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return true
	}
	return cmd.Flags().Changed(name)
}
