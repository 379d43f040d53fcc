package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/hdlplan/internal/engine"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the project configuration without running",
		Long: `Resolve and freeze the project exactly as run would, then stop.

Reports duplicate libraries, libraries whose patterns matched no files,
missing roots and malformed options.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := projectFrom(cmd.Context())
			if err != nil {
				return err
			}

			result, err := newEngine(cmd, p).Plan(cmd.Context(), engine.PlanRequest{
				Project:         p,
				SkipFingerprint: true,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			libs := len(result.Plan.Libraries())
			if jsonOutput(cmd) {
				return outputJSON(w, map[string]any{
					"valid":     true,
					"libraries": libs,
					"files":     result.Plan.FileCount(),
				})
			}
			PrintSuccess(w, fmt.Sprintf("Configuration is valid: %s, %s",
				PrintCount(libs, "library", "libraries"),
				PrintCount(result.Plan.FileCount(), "file", "files")))
			return nil
		},
	}
}
