package main

import (
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	t.Cleanup(func() { Version, GitCommit = origVersion, origCommit })

	Version = "0.1.0-test"
	GitCommit = "abc123"

	cmd, out, _ := newTestCommand()
	versionCmd.Run(cmd, nil)

	for _, want := range []string{"urlcat 0.1.0-test", "Git Commit: abc123", "Go Version: go"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}
