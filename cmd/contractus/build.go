package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haiman1024/Contractus/internal/diagfmt"
	"github.com/haiman1024/Contractus/internal/driver"
	"github.com/haiman1024/Contractus/internal/project"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [file.ctx...]",
	Short: "Compile Contractus sources to C",
	Long: `Build compiles each source file to a .c translation unit. With no
arguments it builds every source file listed by the contractus.toml
manifest into the manifest's output directory.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringP("out", "o", "", "output file (single input) or directory")
}

func runBuild(cmd *cobra.Command, args []string) error {
	outFlag, _ := cmd.Flags().GetString("out")

	paths := args
	outDir := outFlag
	if len(paths) == 0 {
		manifest, err := project.Find(".")
		if err != nil {
			return fmt.Errorf("no input files and %w", err)
		}
		paths, err = manifest.SourcePaths()
		if err != nil {
			return err
		}
		if outDir == "" {
			outDir = filepath.Join(manifest.Dir, manifest.Build.OutDir)
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("nothing to build")
	}

	outs, err := driver.CompileAll(context.Background(), paths, driver.Options{
		MaxErrors: maxDiagnostics(cmd),
		Jobs:      jobs(cmd),
	})
	if err != nil {
		return err
	}

	failed := 0
	for i, out := range outs {
		if out.Diags.Len() > 0 {
			diagfmt.RenderAll(os.Stderr, out.File, out.Diags, diagfmt.Options{
				Color: useColor(cmd, os.Stderr),
			})
		}
		if !out.Ok() {
			failed++
			continue
		}
		target, err := outputPath(paths[i], outFlag, outDir, len(paths))
		if err != nil {
			return err
		}
		if err := writeOutput(target, out.C); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s -> %s\n", filepath.ToSlash(paths[i]), filepath.ToSlash(target))
	}

	if failed > 0 {
		return fmt.Errorf("%d file(s) failed", failed)
	}
	return nil
}

// outputPath picks the .c destination: an explicit -o wins for a single
// input, a directory is joined with the source stem, and the default sits
// next to the source.
func outputPath(src, outFlag, outDir string, inputs int) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + ".c"
	if outFlag != "" && inputs == 1 {
		if isDir(outFlag) {
			return filepath.Join(outFlag, stem), nil
		}
		return outFlag, nil
	}
	if outDir != "" {
		return filepath.Join(outDir, stem), nil
	}
	return filepath.Join(filepath.Dir(src), stem), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func writeOutput(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}
