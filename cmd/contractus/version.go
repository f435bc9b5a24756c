package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haiman1024/Contractus/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build metadata",
	RunE: func(cmd *cobra.Command, args []string) error {
		short, _ := cmd.Flags().GetBool("short")
		if short {
			fmt.Fprintln(os.Stdout, version.Short())
			return nil
		}
		fmt.Fprintln(os.Stdout, version.Human(useColor(cmd, os.Stdout)))
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "print only the version number")
}
