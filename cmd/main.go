/*
Package main is the entry point for the zimage command line client.

It installs a signal-aware context so interrupts (SIGINT, SIGTERM) stop polling loops and
the chat connection cleanly, runs the cobra command tree and turns any returned error into
a one-line message and a non-zero exit status.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"zimage/internal/cli"
	"zimage/internal/pkg/errs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", errs.Message(err))
		stop()
		os.Exit(1)
	}
}
