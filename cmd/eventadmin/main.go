// Command eventadmin runs maintenance tasks against the event database:
// migrations, account administration, reminders and counter reconciliation.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(openEnv).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
