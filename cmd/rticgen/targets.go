package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"omibyte.io/rtic/codegen"
	"omibyte.io/rtic/targets"
)

var (
	targetsOpts = struct {
		verbose bool
	}{}

	targetsCmd = &cobra.Command{
		Use:   "targets",
		Short: "List the supported targets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			for _, name := range targets.All().Names() {
				target, _ := targets.All().FindByName(name)
				heading.Fprintf(w, "%s", target.Name)
				fmt.Fprintf(w, "  levels 1-%d, %d sources, backends: %s\n", target.MaxLevel, target.Sources, strings.Join(target.Backends, ", "))
				if targetsOpts.verbose {
					for _, irq := range target.Interrupts {
						fmt.Fprintf(w, "  %4d %s\n", irq.Number, irq.Name)
					}
				}
			}
		},
	}

	envCmd = &cobra.Command{
		Use:   "env",
		Short: "Print rticgen environment information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			codegen.Environment().Print(cmd.OutOrStdout())
		},
	}
)

func init() {
	targetsCmd.Flags().BoolVarP(&targetsOpts.verbose, "verbose", "v", false, "list interrupt vectors")
}
