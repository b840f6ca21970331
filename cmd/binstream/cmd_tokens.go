package main

import (
	"encoding/hex"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"binstream/pkg/binstream"
)

// textCollector gathers description text the same way the engine does.
type textCollector struct {
	strings.Builder
}

func (c *textCollector) Append(text string) {
	if text == "" {
		return
	}
	if c.Len() > 0 {
		c.WriteByte('\n')
	}
	c.WriteString(text)
}

func newTokensCmd(a *app) *cobra.Command {
	var exprs []string
	cmd := &cobra.Command{
		Use:   "tokens [file|-]",
		Short: "List each token with its type, mode and encoding",
		Long: `Compiles the description one token at a time and prints, per token, its
line, classified type, the mode in effect after it, and the bytes it produced
or the error it raised. Unlike build, listing continues past invalid tokens.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src textCollector
			if _, err := loadDescription(cmd, &src, args, exprs); err != nil {
				return err
			}
			return listTokens(cmd, a, src.String())
		},
	}
	cmd.Flags().StringArrayVarP(&exprs, "expr", "e", nil, "inline description text (repeatable)")
	return cmd
}

func listTokens(cmd *cobra.Command, a *app, text string) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tTYPE\tMODE\tTOKEN\tRESULT")

	e := a.newEngine()
	invalid := 0
	for _, tok := range binstream.Tokenize(text) {
		before := e.Size()
		e.Append(tok.Text)

		result := ""
		if err := e.Parse(); err != nil {
			invalid++
			result = "error: " + err.Error()
		} else {
			out, _ := e.Output()
			result = hex.EncodeToString(out[before:])
		}

		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", tok.Line, binstream.Classify(tok.Text), e.Mode(), tok.Text, result)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if invalid > 0 {
		return fmt.Errorf("%d invalid token(s)", invalid)
	}
	return nil
}
