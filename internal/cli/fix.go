package cli

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"nativeabi/internal/codefix"
	"nativeabi/internal/safe"
)

func newFixCmd(opts *globalOptions) *cobra.Command {
	var (
		sourceRoot string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Apply the suggested fixes to the source files",
		Long: `Apply the first suggested fix of every finding to the source files named by the
snapshot locations. Only annotations without effect have fixes; missing
annotations have to be written by hand.

Run check again afterwards: removing IsPtrConst may leave an IsConst that is
reported on its own.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.analyze(cmd, nil)
			if err != nil {
				return err
			}

			editsByFile := make(map[string][]codefix.TextEdit)
			for _, diagnostic := range s.result.Diagnostics() {
				if len(diagnostic.Fixes) == 0 {
					continue
				}
				for _, edit := range diagnostic.Fixes[0].TextEdits {
					if edit.File == "" {
						s.logger.Warn().Str("function", diagnostic.Function).Msg("fix has no file, skipped")
						continue
					}
					editsByFile[edit.File] = append(editsByFile[edit.File], edit)
				}
			}

			files := make([]string, 0, len(editsByFile))
			for file := range editsByFile {
				files = append(files, file)
			}
			sort.Strings(files)

			for _, file := range files {
				path := file
				if !filepath.IsAbs(path) {
					path = filepath.Join(sourceRoot, path)
				}

				src, err := safe.ReadFile(path, 0)
				if err != nil {
					return fmt.Errorf("failed to read source: %w", err)
				}

				fixed, applied, err := codefix.Apply(src, editsByFile[file])
				if err != nil {
					return fmt.Errorf("failed to fix %s: %w", file, err)
				}

				if !dryRun {
					if err := safe.WriteFileAtomic(path, fixed, s.logger); err != nil {
						return err
					}
				}
				cmd.Printf("%s: %d edits applied\n", file, applied)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&sourceRoot, "source-root", ".", "directory relative source paths are resolved against")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report the edits without writing files")

	return cmd
}
