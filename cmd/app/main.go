package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/task-tracker/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "task-tracker",
	Short:         "Multi-user task tracker: API server and command line client",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadDotEnv()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
