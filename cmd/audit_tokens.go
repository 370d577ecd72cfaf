package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var auditTokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "List embed tokens that have not expired yet",
	Long: `Retrieves the records of embed tokens handed out by the gateway which are still valid.
Tokens are identified by their fingerprint only; the gateway never stores the token itself.

This command requires an admin session (see 'pbichat login').`,
	Example: `  pbichat audit tokens`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Debug().Msg("Fetching active embed tokens...")
		records, correlation, err := cli.ListActiveTokens(cmd.Context())
		if err != nil {
			return logError(err, correlation, "failed to list active tokens")
		}
		if len(records) == 0 {
			log.Info().Msg("No active embed tokens found")
			return nil
		}
		log.Debug().Msgf("Retrieved %d active token(s)", len(records))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Issued", "Expires", "Fingerprint", "Report", "Workspace", "Strategy"})

		for _, rec := range records {
			left := time.Until(rec.ExpiresAt).Round(time.Minute)
			t.AppendRow(table.Row{
				rec.IssuedAt.Local().Format(time.DateTime),
				fmt.Sprintf("%s (%s)", rec.ExpiresAt.Local().Format("15:04"), faint(left.String())),
				bold(rec.Fingerprint),
				rec.ReportID,
				rec.WorkspaceID,
				rec.Strategy,
			})
		}

		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditTokensCmd)
}
