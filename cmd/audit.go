package cmd

import (
	"github.com/spf13/cobra"
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check the audit log and view active embed tokens",
	Long:  `View audit logs and inspect active embed tokens on the server. Requires an authenticated session (pbichat login).`,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}
