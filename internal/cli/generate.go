package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"nativeabi/internal/config"
	"nativeabi/internal/generation"
	"nativeabi/internal/logging"
)

func newGenerateCmd(opts *globalOptions) *cobra.Command {
	var (
		stdout        bool
		rootNamespace string
		assemblyName  string
		projectDir    string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the C/C++ header of the exported functions",
		Long: `Render one declaration per natively-exported function, ordered by export name,
and write the header to {projectDir}/{assemblyName}.h.

Nothing is written when there are no exported functions or when the root
namespace, assembly name or project directory is unknown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.analyze(cmd, func(cfg *config.Config) {
				if rootNamespace != "" {
					cfg.RootNamespace = rootNamespace
				}
				if assemblyName != "" {
					cfg.AssemblyName = assemblyName
				}
				if projectDir != "" {
					cfg.ProjectDir = projectDir
				}
			})
			if err != nil {
				return err
			}

			generator := generation.NewGenerator(s.config, logging.WithComponent(s.logger, "generator"))
			for _, function := range s.result.Exported() {
				generator.RegisterFunction(function.Method, function.Metadata)
			}

			if stdout {
				header, err := generator.Emit(cmd.Context())
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), header)
				return err
			}

			path, err := generator.Generate(cmd.Context())
			if err != nil {
				return err
			}
			if path != "" {
				cmd.Println(path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&stdout, "stdout", false, "print the header instead of writing it")
	cmd.Flags().StringVar(&rootNamespace, "root-namespace", "", "dotted root namespace of the project")
	cmd.Flags().StringVar(&assemblyName, "assembly-name", "", "assembly name, used as header file name")
	cmd.Flags().StringVar(&projectDir, "project-dir", "", "directory the header is written to")

	return cmd
}
