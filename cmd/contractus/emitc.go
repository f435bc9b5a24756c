package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haiman1024/Contractus/internal/diagfmt"
	"github.com/haiman1024/Contractus/internal/driver"
)

var emitCCmd = &cobra.Command{
	Use:   "emit-c [flags] file.ctx",
	Short: "Compile one file and print the C to stdout",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmitC,
}

func runEmitC(cmd *cobra.Command, args []string) error {
	out, err := driver.CompilePath(args[0], driver.Options{
		MaxErrors: maxDiagnostics(cmd),
	})
	if err != nil {
		return fmt.Errorf("emit-c: %w", err)
	}
	if out.Diags.Len() > 0 {
		diagfmt.RenderAll(os.Stderr, out.File, out.Diags, diagfmt.Options{
			Color: useColor(cmd, os.Stderr),
		})
	}
	if !out.Ok() {
		return fmt.Errorf("compilation failed")
	}
	fmt.Fprint(os.Stdout, out.C)
	return nil
}
