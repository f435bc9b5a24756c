package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/haiman1024/Contractus/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "contractus",
	Short: "Contractus language compiler",
	Long:  `Contractus compiles .ctx source files to portable C`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(emitCCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 64, "maximum number of diagnostics per file")
	rootCmd.PersistentFlags().Int("jobs", 0, "number of files compiled in parallel (0 = all CPUs)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves the persistent color flag against the stream.
func useColor(cmd *cobra.Command, f *os.File) bool {
	mode, _ := cmd.Root().PersistentFlags().GetString("color")
	return mode == "on" || (mode == "auto" && isTerminal(f))
}

func maxDiagnostics(cmd *cobra.Command) uint16 {
	n, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil || n <= 0 || n > 0xFFFF {
		return 0
	}
	return uint16(n)
}

func jobs(cmd *cobra.Command) int {
	n, _ := cmd.Root().PersistentFlags().GetInt("jobs")
	return n
}
