package cmd

import (
	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Inspect and trigger background maintenance tasks",
	Long:  `List, trigger and read the logs of server-side maintenance tasks. Requires an authenticated session (pbichat login).`,
}

func init() {
	rootCmd.AddCommand(tasksCmd)
}
