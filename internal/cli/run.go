package cli

import (
	"github.com/spf13/cobra"

	"github.com/danieljhkim/hdlplan/internal/delegate"
	"github.com/danieljhkim/hdlplan/internal/engine"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [-- engine-args...]",
		Short: "Freeze the plan and hand it to the simulation engine",
		Long: `Freeze the project and run the configured simulation engine once.

The plan manifest is written to the engine's stdin in the runner format.
Arguments after -- are passed to the engine unchanged, and hdlplan exits
with the engine's status.`,
		Example: `  hdlplan run
  hdlplan run -- --gui 'lib.tb_i2c.*'`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := projectFrom(cmd.Context())
			if err != nil {
				return err
			}

			result, err := newEngine(cmd, p).Run(cmd.Context(), engine.RunRequest{
				Project: p,
				Args:    args,
			})
			if err != nil {
				return err
			}

			if jsonOutput(cmd) {
				if err := outputJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			}
			if !result.Status.Success() {
				return &delegate.ExitError{Status: result.Status}
			}
			return nil
		},
	}
}
