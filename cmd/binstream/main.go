package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"binstream/internal/config"
	"binstream/internal/logging"
	"binstream/pkg/binstream"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	configPath  string
	verbose     bool
	skipInvalid bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "binstream",
		Short: "Compile textual binary descriptions into raw bytes",
		Long: `binstream turns a whitespace-separated description of binary data into bytes.

Tokens:
  0x1F 0b1010 017 42 -7   numbers (hex, binary, octal, decimal)
  "text" 'text'           strings, emitted without quotes or terminator
  .u8 .i8 .u16 .i16       width and signedness (also .u32 .i32 .u64 .i64,
                          or the long forms .uint16, .int32, ...)
  .le .be                 byte order (also .little, .big)
  .default                back to .u8 .le
  # ...                   comment to end of line

Example:
  binstream build -e '.u16 .be 0x0800 "hi"' --format hex`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.skipInvalid {
				cfg.Engine.FailPolicy = "skip"
			}
			a.cfg = cfg

			logger, err := logging.New(cfg.Logging, a.verbose)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath, "config file path")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log every token at debug level")
	root.PersistentFlags().BoolVar(&a.skipInvalid, "skip-invalid", false, "skip invalid tokens instead of stopping at the first")

	root.AddCommand(
		newBuildCmd(a),
		newDumpCmd(a),
		newTokensCmd(a),
		newFixtureCmd(a),
	)
	return root
}

// newEngine returns an engine configured from the loaded config.
func (a *app) newEngine() *binstream.Engine {
	return binstream.New(
		binstream.WithLogger(a.logger),
		binstream.WithFailPolicy(a.cfg.GetFailPolicy()),
	)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
