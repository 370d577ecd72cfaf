package cmd

import (
	"github.com/spf13/cobra"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Mint and watch embed configurations",
}

func init() {
	rootCmd.AddCommand(embedCmd)
}
