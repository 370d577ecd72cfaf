package cmd

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Ayaan2907/powerBiChat/pkg/client"
)

var auditLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent audit entries",
	Long: `Retrieves the latest audit entries of the gateway: embed configurations handed out,
export jobs submitted, polled and downloaded. Entries can be filtered by action, export ID or
token fingerprint.

This command requires an admin session (see 'pbichat login').`,
	Example: `  pbichat audit log -n 10
  pbichat audit log --action export.submit
  pbichat audit log --fingerprint $(pbichat fingerprint - < token.txt)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetUint("limit")
		action, _ := cmd.Flags().GetString("action")
		exportID, _ := cmd.Flags().GetString("export")
		fingerprint, _ := cmd.Flags().GetString("fingerprint")

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Debug().Msg("Fetching audit log...")
		audits, correlation, err := cli.ListAudits(cmd.Context(), client.ListAuditsOpts{
			Limit:       limit,
			Action:      action,
			ExportID:    exportID,
			Fingerprint: fingerprint,
		})
		if err != nil {
			return logError(err, correlation, "failed to retrieve audit log")
		}
		if len(audits) == 0 {
			log.Info().Msg("No audit entries found")
			return nil
		}
		log.Debug().Msgf("Retrieved %d audit entries", len(audits))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Time", "Correlation ID", "Action", "Strategy", "Report", "OK", "Error"})

		for _, e := range audits {
			ok := greenCheck
			if !e.Success {
				ok = redCross
			}

			strategy := e.Strategy
			if e.FallbackUsed {
				strategy += faint(" (fallback)")
			}

			report := e.ReportID
			if e.ExportID != "" {
				report += faint(" / " + e.ExportID)
			}

			t.AppendRow(table.Row{
				e.Time.Local().Format(time.DateTime),
				faint(e.ID),
				bold(e.Action),
				strategy,
				report,
				ok,
				truncate(e.Error, 60),
			})
		}

		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditLogCmd)

	auditLogCmd.Flags().UintP("limit", "n", 25, "Number of audit entries to retrieve")
	auditLogCmd.Flags().String("action", "", "Only show entries of this action")
	auditLogCmd.Flags().String("export", "", "Only show entries of this export job")
	auditLogCmd.Flags().String("fingerprint", "", "Only show entries for this token fingerprint")
}
