package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalHandler returns a context cancelled on the first SIGINT or
// SIGTERM. Calling stop restores default signal handling, so a second signal
// terminates the process.
func SetupSignalHandler() (ctx context.Context, stop context.CancelFunc) {
	return SetupSignalHandlerWithParent(context.Background())
}

// SetupSignalHandlerWithParent is SetupSignalHandler derived from parent.
func SetupSignalHandlerWithParent(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
