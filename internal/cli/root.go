// Package cli wires the nativeabi commands.
package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"nativeabi/internal/analysis"
	"nativeabi/internal/config"
	"nativeabi/internal/logging"
	"nativeabi/internal/metadata"
)

// Version is set at build time with -ldflags "-X nativeabi/internal/cli.Version=...".
var Version = "dev"

const defaultSnapshotPath = "nativeabi.snapshot.yaml"

// globalOptions are the persistent flags. Set flags override the config file and environment.
type globalOptions struct {
	configPath   string
	snapshotPath string
	logLevel     string
	platform     string
	workers      int
}

func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "nativeabi",
		Short: "Validate const annotations of native exports and generate their C header",
		Long: `nativeabi reads a snapshot of the natively-exported functions of a managed
assembly and checks the IsConst / IsNotConst / ConstMeta annotations on their
pointer parameters and return values. The same resolved metadata is projected
into a C/C++ header with matching calling conventions and const qualifiers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default ./"+config.DefaultFileName+" when present)")
	flags.StringVarP(&opts.snapshotPath, "snapshot", "s", defaultSnapshotPath, "host snapshot describing the exported functions")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	flags.StringVar(&opts.platform, "platform", "", "target platform for default calling conventions")
	flags.IntVar(&opts.workers, "workers", 0, "functions analyzed concurrently")

	rootCmd.AddCommand(newCheckCmd(opts))
	rootCmd.AddCommand(newGenerateCmd(opts))
	rootCmd.AddCommand(newFixCmd(opts))
	rootCmd.AddCommand(newInspectCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("nativeabi version %s\n", Version)
		},
	}
}

// session is what every analysis command starts from.
type session struct {
	config   config.Config
	logger   zerolog.Logger
	snapshot *metadata.Snapshot
	result   *analysis.Result
}

func (opts *globalOptions) loadConfig(cmd *cobra.Command) (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}

	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.platform != "" {
		cfg.Platform = opts.platform
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		Output: cmd.ErrOrStderr(),
	})
	return cfg, logger, nil
}

func (opts *globalOptions) analyze(cmd *cobra.Command, overrides func(*config.Config)) (*session, error) {
	cfg, logger, err := opts.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if overrides != nil {
		overrides(&cfg)
	}

	snapshot, err := metadata.LoadSnapshot(opts.snapshotPath)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Str("snapshot", opts.snapshotPath).
		Int("functions", len(snapshot.Functions)).
		Msg("snapshot loaded")

	result, err := analysis.Run(cmd.Context(), snapshot, analysis.Options{Workers: cfg.Workers}, logging.WithComponent(logger, "analysis"))
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	return &session{config: cfg, logger: logger, snapshot: snapshot, result: result}, nil
}
