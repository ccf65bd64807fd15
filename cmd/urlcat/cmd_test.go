package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"

	"mercator-hq/urlcat/pkg/config"
	"mercator-hq/urlcat/pkg/telemetry/logging"
)

const testRules = "testdata/categorization.txt"

// newTestCommand returns a bare command whose output is captured.
func newTestCommand() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	return cmd, &out, &errOut
}

// useDefaultRuntime installs default configuration and a silent logger for
// the duration of the test.
func useDefaultRuntime(t *testing.T) {
	t.Helper()
	prevConfig, prevLogger := appConfig, appLogger
	appConfig = config.NewDefaultConfig()
	appLogger = logging.Discard()
	t.Cleanup(func() {
		appConfig, appLogger = prevConfig, prevLogger
	})
}
