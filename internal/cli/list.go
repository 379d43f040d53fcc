package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/hdlplan/internal/engine"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List libraries in compile order",
		Long:  `Display every library with its file count and source patterns, in the order the engine compiles them.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := projectFrom(cmd.Context())
			if err != nil {
				return err
			}

			result, err := newEngine(cmd, p).List(cmd.Context(), engine.ListRequest{Project: p})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				return outputJSON(w, result)
			}

			if len(result.Libraries) == 0 {
				PrintInfo(w, "No libraries declared")
				return nil
			}

			rows := make([][]string, len(result.Libraries))
			for i, lib := range result.Libraries {
				rows[i] = []string{
					strconv.Itoa(i + 1),
					lib.Name,
					strconv.Itoa(lib.Files),
					strings.Join(lib.Patterns, "\n"),
				}
			}
			PrintTable(w,
				[]string{"#", "Library", "Files", "Patterns"},
				rows,
				"", "Total", strconv.Itoa(result.TotalFiles()), "",
			)

			if len(result.Builtins) > 0 {
				PrintLabelValue(w, "Builtins", strings.Join(result.Builtins, ", "))
			}
			if len(result.Backends) > 0 {
				PrintLabelValue(w, "Backends", strings.Join(result.Backends, ", "))
			}
			return nil
		},
	}
}
