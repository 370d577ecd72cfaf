package cmd

import (
	"github.com/spf13/cobra"
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Acquire service tokens and create admin sessions",
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
