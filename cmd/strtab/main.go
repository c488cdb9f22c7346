// Package main provides the entry point for the strtab CLI tool.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/afero"

	"github.com/Sumatoshi-tech/strtab/cmd/strtab/commands"
	"github.com/Sumatoshi-tech/strtab/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := commands.NewRootCommand(afero.NewOsFs()).ExecuteContext(ctx)

	stop()

	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
