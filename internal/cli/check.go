package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"nativeabi/internal/validation"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func newCheckCmd(opts *globalOptions) *cobra.Command {
	var (
		format     string
		werror     bool
		strictOnly bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report const annotation findings",
		Long: `Resolve the const metadata of every function in the snapshot and report findings.

Natively-exported functions are checked with the strict profile, which requires
IsConst and IsPtrConst on every pointer slot and ConstMeta on function pointers.
Every other function only gets findings for annotations that have no effect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatText && format != formatJSON {
				return fmt.Errorf("unsupported format %q (want %s or %s)", format, formatText, formatJSON)
			}

			s, err := opts.analyze(cmd, nil)
			if err != nil {
				return err
			}

			var diagnostics []validation.Diagnostic
			for _, function := range s.result.Functions {
				if strictOnly && function.Profile != validation.ProfileStrict {
					continue
				}
				diagnostics = append(diagnostics, function.Diagnostics...)
			}

			if err := writeDiagnostics(cmd.OutOrStdout(), format, diagnostics); err != nil {
				return err
			}

			s.logger.Info().Int("diagnostics", len(diagnostics)).Msg("check finished")
			if werror && len(diagnostics) > 0 {
				return fmt.Errorf("%d diagnostics reported", len(diagnostics))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format (text, json)")
	cmd.Flags().BoolVar(&werror, "werror", false, "exit with an error when anything is reported")
	cmd.Flags().BoolVar(&strictOnly, "strict-only", false, "only report natively-exported functions")

	return cmd
}

func writeDiagnostics(w io.Writer, format string, diagnostics []validation.Diagnostic) error {
	if format == formatJSON {
		if diagnostics == nil {
			diagnostics = []validation.Diagnostic{}
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(diagnostics)
	}

	for _, diagnostic := range diagnostics {
		if _, err := fmt.Fprintln(w, diagnostic.String()); err != nil {
			return err
		}
	}
	return nil
}
