/*
Package cli provides command-line helpers shared by the urlcat commands.

Output Formatting:

Commands that support --format render their results through a Formatter:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, report); err != nil {
		return err
	}

Text output uses the value's Text method when it has one.

Progress Reporting:

Batch runs report progress on stderr. The total may be unknown (zero), in
which case only the processed count and rate are shown:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(0)
	progress.Update(n)
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

Exit Codes:

ExitCode maps a command error to the process exit status: 0 on success,
2 for configuration and usage errors, the embedded code of an ExitError,
and 1 otherwise.
*/
package cli
