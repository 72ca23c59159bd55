package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen)
	failure = color.New(color.FgRed)

	rootCmd = &cobra.Command{
		Use:           "rticgen",
		Short:         "Generate static priority-ceiling runtimes",
		Long:          "rticgen reads an application graph and generates the Go source binding its tasks, resources and dispatchers to one interrupt backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.AddCommand(buildCmd, analyzeCmd, targetsCmd, envCmd, svdCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		failure.Fprintln(os.Stderr, "rticgen:", err)
		stop()
		os.Exit(1)
	}
}
