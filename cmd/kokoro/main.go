// Command kokoro is the command line client for a kokoro server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kokoro-wiki/kokoro/internal/client/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
