package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/haiman1024/Contractus/internal/diagfmt"
	"github.com/haiman1024/Contractus/internal/driver"
	"github.com/haiman1024/Contractus/internal/project"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [file.ctx...]",
	Short: "Parse and type-check without generating code",
	Long: `Check runs the front end only. With no arguments it looks for a
contractus.toml manifest and checks every source file in the project.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("no-cache", false, "re-analyze files even when unchanged")
	checkCmd.Flags().String("cache-dir", "", "diagnostics cache directory (default .contractus-cache)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		manifest, err := project.Find(".")
		if err != nil {
			return fmt.Errorf("no input files and %w", err)
		}
		paths, err = manifest.SourcePaths()
		if err != nil {
			return err
		}
	}

	opts := driver.Options{
		MaxErrors: maxDiagnostics(cmd),
		StopAfter: driver.StageSema,
		Jobs:      jobs(cmd),
	}

	noCache, _ := cmd.Flags().GetBool("no-cache")
	var cache *driver.DiagCache
	if !noCache {
		dir, _ := cmd.Flags().GetString("cache-dir")
		if dir == "" {
			dir = ".contractus-cache"
		}
		var err error
		cache, err = driver.OpenDiagCache(dir)
		if err != nil {
			return err
		}
	}

	failed := 0
	if cache != nil {
		for _, path := range paths {
			out, _, err := driver.CheckCached(cache, path, opts)
			if err != nil {
				return err
			}
			failed += reportCheck(cmd, path, out)
		}
	} else {
		outs, err := driver.CompileAll(context.Background(), paths, opts)
		if err != nil {
			return err
		}
		for i, out := range outs {
			failed += reportCheck(cmd, paths[i], out)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d file(s) failed", failed)
	}
	return nil
}

func reportCheck(cmd *cobra.Command, path string, out *driver.Output) int {
	if out.Diags.Len() > 0 {
		diagfmt.RenderAll(os.Stderr, out.File, out.Diags, diagfmt.Options{
			Color: useColor(cmd, os.Stderr),
		})
	}
	if out.Diags.HasErrors() {
		return 1
	}
	fmt.Fprintf(os.Stdout, "%s: ok\n", filepath.ToSlash(path))
	return 0
}
