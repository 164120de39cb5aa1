package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set by ldflags at release time.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the orchestrator version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
