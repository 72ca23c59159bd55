package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"omibyte.io/rtic/analysis"
	"omibyte.io/rtic/app"
	"omibyte.io/rtic/codegen"
)

var (
	analyzeOpts = struct {
		target string
		dot    bool
	}{}

	analyzeCmd = &cobra.Command{
		Use:   "analyze <app.yaml>",
		Short: "Print resource ceilings, dispatchers and sharing groups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Load(args[0])
			if err != nil {
				return err
			}

			target, err := codegen.ResolveTarget(analyzeOpts.target, a.Config)
			if err != nil {
				return err
			}

			an, err := analysis.Analyze(a, target.MaxLevel)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if analyzeOpts.dot {
				return an.WriteDot(w, a)
			}

			heading.Fprintf(w, "%s on %s (levels 1-%d)\n", a.Config.Name, target.Name, target.MaxLevel)

			heading.Fprintln(w, "ceilings")
			resources := maps.Keys(an.Ceilings)
			slices.Sort(resources)
			for _, r := range resources {
				note := ""
				if an.IsExclusive(r) {
					note = " (exclusive)"
				}
				fmt.Fprintf(w, "  %-16s %3d%s\n", r, an.Ceilings[r], note)
			}

			heading.Fprintln(w, "dispatchers")
			for _, p := range an.Priorities() {
				fmt.Fprintf(w, "  priority %-7d %s\n", p, an.Dispatchers[p])
			}
			if an.MaxAsyncPriority == analysis.NoAsyncLimit {
				fmt.Fprintln(w, "  async priority limit: none")
			} else {
				fmt.Fprintf(w, "  async priority limit: %d\n", an.MaxAsyncPriority)
			}

			heading.Fprintln(w, "groups")
			for _, group := range an.Groups {
				fmt.Fprintf(w, "  %s\n", strings.Join(group, " "))
			}
			return nil
		},
	}
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeOpts.target, "target", codegen.Environment()["RTICGEN_TARGET"], "target chip. Default: $RTICGEN_TARGET")
	analyzeCmd.Flags().BoolVar(&analyzeOpts.dot, "dot", false, "print the access graph in Graphviz form")
}
