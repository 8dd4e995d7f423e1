// Package main is the entry point for the wsm CLI application.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/onecx/workspace-menu/cmd"
)

func main() {
	// Cancelled on SIGINT or SIGTERM so serve shuts down gracefully.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := cmd.ExecuteContext(ctx)
	cancel()
	os.Exit(code)
}
