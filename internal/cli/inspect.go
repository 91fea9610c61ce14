package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"nativeabi/internal/constmeta"
	"nativeabi/internal/generation"
	"nativeabi/internal/metadata"
)

func newInspectCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <assembly> [method...]",
		Short: "Print the C declarations of methods read from a compiled assembly",
		Long: `Read method signatures straight from the metadata tables of a compiled assembly
and print them the way generate would. Attributes are not decoded, so no const
qualifiers are applied. Without method names every method is listed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			reader, err := metadata.NewAssemblyReader(args[0])
			if err != nil {
				return err
			}

			names := args[1:]
			if len(names) == 0 {
				names = reader.MethodNames()
			}

			for _, name := range names {
				method, found := reader.TryGetMethod(name)
				if !found {
					logger.Warn().Str("method", name).Msg("method not found")
					continue
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), generation.Declaration(&method, constmeta.ResolveMethod(&method), cfg.Platform)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
