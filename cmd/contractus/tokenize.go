package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haiman1024/Contractus/internal/diagfmt"
	"github.com/haiman1024/Contractus/internal/driver"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.ctx",
	Short: "Tokenize a Contractus source file",
	Long:  `Tokenize breaks a Contractus source file into its tokens, one per line`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func runTokenize(cmd *cobra.Command, args []string) error {
	out, err := driver.CompilePath(args[0], driver.Options{
		MaxErrors: maxDiagnostics(cmd),
		StopAfter: driver.StageTokens,
	})
	if err != nil {
		return fmt.Errorf("tokenize: %w", err)
	}

	if out.Diags.Len() > 0 {
		diagfmt.RenderAll(os.Stderr, out.File, out.Diags, diagfmt.Options{
			Color: useColor(cmd, os.Stderr),
		})
	}
	for _, tok := range out.Tokens {
		lc := out.File.Resolve(tok.Span.Start)
		if tok.Text != "" {
			fmt.Fprintf(os.Stdout, "%d:%d\t%s\t%q\n", lc.Line, lc.Column, tok.Kind, tok.Text)
		} else {
			fmt.Fprintf(os.Stdout, "%d:%d\t%s\n", lc.Line, lc.Column, tok.Kind)
		}
	}
	if out.Diags.HasErrors() {
		return fmt.Errorf("%d error(s)", out.Diags.Len())
	}
	return nil
}
