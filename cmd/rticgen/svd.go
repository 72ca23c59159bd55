package main

import (
	"os"

	"github.com/spf13/cobra"

	"omibyte.io/rtic/backend/critical"
	"omibyte.io/rtic/backend/riscvrt"
	"omibyte.io/rtic/targets"
)

var (
	svdOpts = struct {
		backends []string
	}{}

	svdCmd = &cobra.Command{
		Use:   "svd <device.svd>",
		Short: "Print a target catalogue entry for an SVD device description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			target, err := targets.FromSVD(f, svdOpts.backends)
			if err != nil {
				return err
			}
			return target.WriteYAML(cmd.OutOrStdout())
		},
	}
)

func init() {
	svdCmd.Flags().StringSliceVar(&svdOpts.backends, "backend", []string{riscvrt.Name, critical.Name}, "backends the target supports")
}
