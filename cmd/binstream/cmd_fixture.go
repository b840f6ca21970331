package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"binstream/pkg/binstream"
	"binstream/pkg/fixtures"
)

func newFixtureCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixture",
		Short: "Manage named payload fixtures in the fixtures directory",
	}
	cmd.AddCommand(
		newFixtureAddCmd(a),
		newFixtureGetCmd(a),
		newFixtureListCmd(a),
		newFixtureRmCmd(a),
		newFixtureRebuildCmd(a),
	)
	return cmd
}

// openStore loads the configured fixtures directory.
func (a *app) openStore() (*fixtures.Store, error) {
	s := fixtures.NewStore(a.cfg.Fixtures.QuotaBytes, fixtures.WithCompiler(a.compileFixture))
	if err := s.Load(a.cfg.Fixtures.Dir); err != nil {
		return nil, fmt.Errorf("load fixtures from %s: %w", a.cfg.Fixtures.Dir, err)
	}
	return s, nil
}

// compileFixture compiles with the configured engine. Tokens dropped under
// the skip policy are logged rather than failing the fixture.
func (a *app) compileFixture(source string) ([]byte, error) {
	e := a.newEngine()
	e.Append(source)
	if err := e.Parse(); err != nil {
		if a.cfg.GetFailPolicy() != binstream.SkipInvalid || errors.Is(err, binstream.ErrNotReady) {
			return nil, err
		}
		a.logger.Warn("invalid tokens skipped", zap.Error(err))
	}
	return e.Output()
}

func newFixtureAddCmd(a *app) *cobra.Command {
	var exprs []string
	cmd := &cobra.Command{
		Use:   "add <name> [file|-]",
		Short: "Compile a description and store it as a fixture",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src textCollector
			if _, err := loadDescription(cmd, &src, args[1:], exprs); err != nil {
				return err
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			data, err := s.Put(args[0], src.String())
			if err != nil {
				return err
			}
			if err := s.Persist(a.cfg.Fixtures.Dir); err != nil {
				return err
			}

			a.logger.Info("fixture stored", zap.String("name", args[0]), zap.Int("bytes", len(data)))
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bytes\n", args[0], len(data))
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&exprs, "expr", "e", nil, "inline description text (repeatable)")
	return cmd
}

func newFixtureGetCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Print a stored fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			data, err := s.Get(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if format == "" {
				format = a.cfg.Output.Format
			}
			return render(bytesProducer(data), cmd.OutOrStdout(), format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: raw, hex, dump (default from config)")
	return cmd
}

func newFixtureListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored fixtures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tBYTES\tSOURCE\tMODIFIED")
			for _, name := range s.List() {
				e, err := s.Stat(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%d\t%t\t%s\n", name, len(e.Data), e.Source != "", e.Modified.Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}
}

func newFixtureRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a stored fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			if err := s.Delete(args[0]); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return s.Persist(a.cfg.Fixtures.Dir)
		},
	}
}

func newFixtureRebuildCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild [name...]",
		Short: "Recompile fixtures from their stored descriptions",
		Long:  "Recompiles the named fixtures, or every fixture that has a description when no name is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}

			names := args
			if len(names) == 0 {
				for _, name := range s.List() {
					if e, err := s.Stat(name); err == nil && e.Source != "" {
						names = append(names, name)
					}
				}
			}
			var errs []error
			for _, name := range names {
				data, err := s.Rebuild(name)
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", name, err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bytes\n", name, len(data))
			}
			errs = append(errs, s.Persist(a.cfg.Fixtures.Dir))
			return errors.Join(errs...)
		},
	}
}

// bytesProducer adapts stored bytes to the binio writers.
type bytesProducer []byte

func (b bytesProducer) Output() ([]byte, error) {
	return b, nil
}
