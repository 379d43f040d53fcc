package cli

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/hdlplan/internal/config"
	"github.com/danieljhkim/hdlplan/internal/engine"
	"github.com/danieljhkim/hdlplan/internal/fsops"
	"github.com/danieljhkim/hdlplan/internal/planner"
)

// fingerprintPrefix is how much of the fingerprint names a saved plan.
const fingerprintPrefix = 12

func newPlanCmd() *cobra.Command {
	var (
		format string
		out    string
		save   bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Freeze the project and print its compile plan",
		Long: `Resolve every library's source patterns, validate the configuration and
print the frozen compile plan.

With --format the plan manifest is written in that encoding instead; --out
writes it to a file, and --save stores it under ~/.hdlplan/plans named by
its fingerprint.`,
		Example: `  hdlplan plan
  hdlplan plan --json
  hdlplan plan --format yaml --out build/plan.yaml
  hdlplan plan --format msgpack --save`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := projectFrom(cmd.Context())
			if err != nil {
				return err
			}

			result, err := newEngine(cmd, p).Plan(cmd.Context(), engine.PlanRequest{Project: p})
			if err != nil {
				return err
			}

			f, err := exportFormat(format, out)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			if out == "" && !save {
				switch {
				case format != "":
					return result.Plan.Manifest().Encode(w, f)
				case jsonOutput(cmd):
					return outputJSON(w, planOutput{
						Fingerprint: result.Fingerprint,
						Plan:        result.Plan.Manifest(),
					})
				default:
					printPlan(w, p, result)
					return nil
				}
			}

			var buf bytes.Buffer
			if err := result.Plan.Manifest().Encode(&buf, f); err != nil {
				return err
			}

			var targets []string
			if out != "" {
				targets = append(targets, out)
			}
			if save {
				paths, err := pathsFrom(cmd.Context())
				if err != nil {
					return err
				}
				targets = append(targets, savedPlanPath(paths, result.Fingerprint, f))
			}

			fs := fsops.NewRealFS()
			for _, target := range targets {
				existed, err := fs.Exists(target)
				if err != nil {
					return fmt.Errorf("failed to check %s: %w", target, err)
				}
				if err := fs.AtomicWrite(target, buf.Bytes(), 0644); err != nil {
					return fmt.Errorf("failed to write plan to %s: %w", target, err)
				}
				if jsonOutput(cmd) {
					continue
				}
				if existed {
					PrintWarning(w, "Replaced existing "+target)
				}
				PrintSuccess(w, fmt.Sprintf("Wrote %s plan to %s", f, target))
			}
			if jsonOutput(cmd) {
				return outputJSON(w, exportOutput{Fingerprint: result.Fingerprint, Format: f, Files: targets})
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Manifest encoding: json, yaml, toml or msgpack")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the manifest to this file")
	cmd.Flags().BoolVar(&save, "save", false, "Store the manifest under the user plans directory")
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, len(planner.Formats))
		for i, f := range planner.Formats {
			names[i] = string(f)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

type planOutput struct {
	Fingerprint string           `json:"fingerprint"`
	Plan        planner.Manifest `json:"plan"`
}

type exportOutput struct {
	Fingerprint string         `json:"fingerprint"`
	Format      planner.Format `json:"format"`
	Files       []string       `json:"files"`
}

// exportFormat picks the manifest encoding: --format if given, else the
// extension of --out, else JSON.
func exportFormat(format, out string) (planner.Format, error) {
	if format != "" {
		return planner.ParseFormat(format)
	}
	if ext := strings.TrimPrefix(filepath.Ext(out), "."); ext != "" {
		if f, err := planner.ParseFormat(ext); err == nil {
			return f, nil
		}
	}
	return planner.FormatJSON, nil
}

// savedPlanPath names a saved plan after its fingerprint.
func savedPlanPath(paths *config.Paths, fingerprint string, f planner.Format) string {
	name := fingerprint
	if len(name) > fingerprintPrefix {
		name = name[:fingerprintPrefix]
	}
	return filepath.Join(paths.Plans, name+"."+string(f))
}

// printPlan renders the plan for humans. File paths are shown relative to
// the project root when they lie under it.
func printPlan(w io.Writer, p *config.Project, result *engine.PlanResult) {
	plan := result.Plan
	libs := plan.Libraries()

	PrintSection(w, "Build plan")
	PrintLabelValue(w, "Root", p.Root)
	if p.Simulator != "" {
		PrintLabelValue(w, "Simulator", p.Simulator)
	}
	PrintLabelValue(w, "Libraries", fmt.Sprintf("%d (%s)", len(libs), PrintCount(plan.FileCount(), "file", "files")))
	if builtins := plan.Builtins(); len(builtins) > 0 {
		PrintLabelValue(w, "Builtins", strings.Join(builtins, ", "))
	}
	PrintLabelValue(w, "Fingerprint", result.Fingerprint)

	if len(libs) == 0 {
		_, _ = fmt.Fprintln(w)
		PrintEmptyState(w, "No libraries declared")
		return
	}

	for i, lib := range libs {
		_, _ = fmt.Fprintln(w)
		PrintSubsection(w, fmt.Sprintf("%d. %s", i+1, lib.Name))
		PrintList(w, displayPaths(p.Root, lib.Paths()), 2)
	}

	printOptions(w, "Compile options", plan.Manifest().CompileOptions)
	printOptions(w, "Simulation options", plan.Manifest().SimOptions)
}

func printOptions(w io.Writer, title string, opts []planner.ManifestOption) {
	if len(opts) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w)
	PrintSubsection(w, title)
	for _, opt := range opts {
		PrintLabelValue(w, "  "+opt.Backend+"."+opt.Key, strings.Join(opt.Values, " "))
	}
}

func displayPaths(root string, paths []string) []string {
	out := make([]string, len(paths))
	for i, path := range paths {
		rel, err := filepath.Rel(root, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			out[i] = path
			continue
		}
		out[i] = rel
	}
	return out
}
