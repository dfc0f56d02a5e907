// Package main is the entry point for the tds command.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/satishbabariya/tds-go/cmd/tds/commands"
	"github.com/satishbabariya/tds-go/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.NewRootCommand().ExecuteContext(ctx); err != nil {
		ui.PrintError("%v", err)
		os.Exit(1)
	}
}
