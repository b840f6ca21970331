package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"binstream/pkg/binio"
	"binstream/pkg/utils"
)

type buildOptions struct {
	exprs   []string
	out     string
	format  string
	stdout  bool
	partial bool
}

func newBuildCmd(a *app) *cobra.Command {
	opts := &buildOptions{}
	cmd := &cobra.Command{
		Use:   "build [file|-]",
		Short: "Compile a description into a binary payload",
		Long: `Compiles a description file, standard input ("-" or no file), or inline
--expr text into bytes.

With a file argument and raw format the payload is written next to the file
with a .bin extension unless --out or --stdout is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, a, opts, args)
		},
	}
	cmd.Flags().StringArrayVarP(&opts.exprs, "expr", "e", nil, "inline description text (repeatable)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file path")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: raw, hex, dump (default from config)")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "write to standard output")
	cmd.Flags().BoolVar(&opts.partial, "partial", false, "write the bytes produced before a failing token")
	return cmd
}

func newDumpCmd(a *app) *cobra.Command {
	opts := &buildOptions{format: "dump", stdout: true}
	cmd := &cobra.Command{
		Use:   "dump [file|-]",
		Short: "Compile a description and print a hex dump",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, a, opts, args)
		},
	}
	cmd.Flags().StringArrayVarP(&opts.exprs, "expr", "e", nil, "inline description text (repeatable)")
	cmd.Flags().BoolVar(&opts.partial, "partial", false, "dump the bytes produced before a failing token")
	return cmd
}

func runBuild(cmd *cobra.Command, a *app, opts *buildOptions, args []string) error {
	format := opts.format
	if format == "" {
		format = a.cfg.Output.Format
	}

	e := a.newEngine()
	inPath, err := loadDescription(cmd, e, args, opts.exprs)
	if err != nil {
		return err
	}

	parseErr := e.Parse()
	if parseErr != nil {
		a.logger.Warn("parse failed", zap.Error(parseErr), zap.Int("partial_bytes", e.Size()))
		if !opts.partial {
			return parseErr
		}
	}

	outPath := opts.out
	if outPath == "" && !opts.stdout && format == "raw" && inPath != "" {
		outPath = utils.OutputPath(inPath)
	}

	if outPath != "" {
		if format != "raw" {
			return fmt.Errorf("format %q can only be written to standard output", format)
		}
		if err := binio.WriteFile(e, outPath); err != nil {
			return err
		}
		a.logger.Info("payload written", zap.String("path", outPath), zap.Int("bytes", e.Size()))
		return parseErr
	}

	if err := render(e, cmd.OutOrStdout(), format); err != nil {
		return err
	}
	return parseErr
}

// loadDescription feeds the engine from --expr text, a file, or stdin and
// returns the input file path when one was used.
func loadDescription(cmd *cobra.Command, e binio.Loader, args, exprs []string) (string, error) {
	for _, expr := range exprs {
		binio.LoadString(e, expr)
	}

	if len(args) == 1 && args[0] != "-" {
		return args[0], binio.LoadFile(e, args[0])
	}
	if len(exprs) == 0 || (len(args) == 1 && args[0] == "-") {
		return "", binio.LoadReader(e, cmd.InOrStdin())
	}
	return "", nil
}

func render(p binio.Producer, w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "raw":
		_, err := binio.WriteTo(p, w)
		return err
	case "hex":
		return binio.WriteHex(p, w)
	case "dump":
		return binio.Dump(p, w)
	}
	return fmt.Errorf("unknown output format %q", format)
}
