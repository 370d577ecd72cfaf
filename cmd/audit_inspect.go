package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Ayaan2907/powerBiChat/pkg/client"
)

var auditInspectCmd = &cobra.Command{
	Use:     "inspect CORRELATION-ID",
	Short:   "Show full details of a specific audit entry",
	Example: `  pbichat audit inspect d0k3q1m0j5oc73a2f3tg`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		correlationID := args[0]
		if correlationID == "" {
			return errors.New("correlation ID cannot be empty")
		}

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Debug().Msgf("Retrieving entry with correlation ID '%s'...", correlationID)
		audits, correlation, err := cli.ListAudits(cmd.Context(), client.ListAuditsOpts{
			Limit:         1,
			CorrelationID: correlationID,
		})
		if err != nil {
			return logError(err, correlation, "failed to retrieve audit entry")
		}
		if len(audits) == 0 {
			log.Warn().Str("correlation_id", correlationID).Msg("no audit entry found")
			return nil
		}

		entry := audits[0]

		printKV := func(key string, val any) {
			fmt.Printf("  %-26s %v\n", faint(key)+":", val)
		}
		orNone := func(s string) string {
			if s == "" {
				return faint("(none)")
			}
			return s
		}

		status := color.GreenString("success")
		if !entry.Success {
			status = color.RedString("failed")
		}

		fmt.Println(bold("\n── Audit Entry ──"))
		printKV("Correlation ID", entry.ID)
		printKV("Time", entry.Time.Local().Format(time.RFC1123))
		printKV("Action", bold(entry.Action))
		printKV("Result", status)
		if entry.Kind != "" {
			printKV("Error Kind", entry.Kind)
		}
		if entry.Error != "" {
			printKV("Error Message", color.RedString(entry.Error))
		}

		fmt.Println(bold("\n── Credentials ──"))
		printKV("Strategy", orNone(entry.Strategy))
		printKV("Fallback Used", entry.FallbackUsed)

		fmt.Println(bold("\n── Report ──"))
		printKV("Report ID", orNone(entry.ReportID))
		printKV("Workspace ID", orNone(entry.WorkspaceID))
		if entry.ExportID != "" || entry.Format != "" {
			printKV("Export ID", orNone(entry.ExportID))
			printKV("Format", orNone(entry.Format))
		}

		fmt.Println(bold("\n── Output ──"))
		printKV("Fingerprint", orNone(entry.TokenFingerprint))
		if !entry.ExpiresAt.IsZero() {
			printKV("Expires", entry.ExpiresAt.Local().Format(time.RFC1123))
		}
		fmt.Println()

		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditInspectCmd)
}
