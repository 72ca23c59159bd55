package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"omibyte.io/rtic/app"
	"omibyte.io/rtic/codegen"
)

var (
	buildOpts = struct {
		output       string
		backend      string
		target       string
		device       string
		verifyDevice bool
		verbose      bool
	}{}

	buildCmd = &cobra.Command{
		Use:   "build <app.yaml>",
		Short: "Generate the runtime binding of an application",
		Long:  "Generate the Go source that binds the tasks of an application to its backend. The output is written next to the application file unless -o is given; -o - writes to stdout.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Load(args[0])
			if err != nil {
				return err
			}

			output := buildOpts.output
			if len(output) == 0 {
				output = filepath.Join(filepath.Dir(args[0]), codegen.DefaultOutput)
			}

			options := codegen.Options{
				Output:       filepath.Base(output),
				Backend:      buildOpts.backend,
				Target:       buildOpts.target,
				Device:       buildOpts.device,
				VerifyDevice: buildOpts.verifyDevice,
				Verbose:      buildOpts.verbose,
				Environment:  codegen.Environment(),
			}

			src, err := codegen.Generate(cmd.Context(), a, options)
			if err != nil {
				return err
			}

			if output == "-" {
				_, err = cmd.OutOrStdout().Write(src)
				return err
			}
			if err = os.WriteFile(output, src, 0644); err != nil {
				return err
			}
			success.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
)

func init() {
	env := codegen.Environment()
	buildCmd.Flags().StringVarP(&buildOpts.output, "output", "o", "", "output file")
	buildCmd.Flags().StringVar(&buildOpts.backend, "backend", env["RTICGEN_BACKEND"], "backend to generate for. Default: $RTICGEN_BACKEND")
	buildCmd.Flags().StringVar(&buildOpts.target, "target", env["RTICGEN_TARGET"], "target chip. Default: $RTICGEN_TARGET")
	buildCmd.Flags().StringVar(&buildOpts.device, "device", "", "import path of the device package")
	buildCmd.Flags().BoolVar(&buildOpts.verifyDevice, "verify-device", false, "load the device package and check every interrupt name")
	buildCmd.Flags().BoolVarP(&buildOpts.verbose, "verbose", "v", false, "log generation details")
}
