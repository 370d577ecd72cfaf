package cmd

import (
	"fmt"
	"io"
	"mime"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Ayaan2907/powerBiChat/internal/core"
	"github.com/Ayaan2907/powerBiChat/internal/exporter"
	"github.com/Ayaan2907/powerBiChat/internal/lifecycle"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a report to PDF, PPTX or PNG through the gateway",
	Long: `Submits an export job, polls its status every few seconds and downloads the
file once it has succeeded. Report and workspace default to the gateway's embed configuration.`,
	Example: `  pbichat export --server http://localhost:8080 --format pptx -o quarterly.pptx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		formatStr, _ := cmd.Flags().GetString("format")
		reportID, _ := cmd.Flags().GetString("report")
		workspaceID, _ := cmd.Flags().GetString("workspace")
		output, _ := cmd.Flags().GetString("output")
		interval, _ := cmd.Flags().GetDuration("interval")

		format, err := core.ParseExportFormat(formatStr)
		if err != nil {
			return err
		}

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		configs := lifecycle.New(cli)
		defer configs.Close()
		if reportID == "" || workspaceID == "" {
			log.Debug().Msg("Resolving report from the embed configuration...")
			if _, err := configs.Refresh(ctx); err != nil {
				return logError(err, "", "failed to load embed configuration")
			}
		}

		orch := exporter.New(cli, configs,
			exporter.WithPollInterval(interval),
			exporter.WithProgress(printProgress),
		)

		res, err := orch.Run(ctx, core.ExportRequest{
			Format:      format,
			ReportID:    reportID,
			WorkspaceID: workspaceID,
		})
		if err != nil {
			return logError(err, "", "export failed")
		}
		defer func() {
			_ = res.File.Body.Close()
		}()

		if output == "" {
			output = outputName(res.File, res.Submission)
		}
		out, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		n, err := io.Copy(out, res.File.Body)
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}

		log.Info().Msgf("%s saved %s (%d bytes, %d status checks)", greenCheck, bold(output), n, res.Attempts)
		return nil
	},
}

func printProgress(p exporter.Progress) {
	msg := p.Message
	switch p.Phase {
	case exporter.PhaseDone:
		msg = color.GreenString(msg)
	case exporter.PhaseFailed, exporter.PhaseTimedOut:
		msg = color.RedString(msg)
	case exporter.PhasePolling:
		msg = color.BlueString(msg)
	}
	ev := log.Info()
	if p.ExportID != "" {
		ev = ev.Str("export_id", p.ExportID)
	}
	if p.Attempt > 0 {
		ev = ev.Int("attempt", p.Attempt)
	}
	ev.Msg(msg)
}

// outputName prefers the file name announced by the server.
func outputName(file *core.ExportFile, sub *core.ExportSubmission) string {
	if _, params, err := mime.ParseMediaType(file.ContentDisposition); err == nil {
		if name := params["filename"]; name != "" && !strings.ContainsAny(name, `/\`) {
			return name
		}
	}
	return fmt.Sprintf("report-%s.%s", sub.ExportID, strings.ToLower(string(sub.Format)))
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("format", "PDF", "Export format (PDF, PPTX, PNG)")
	f.bindReportFlags(exportCmd.Flags(), "embed configuration")
	exportCmd.Flags().StringP("output", "o", "", "Output file (default: name sent by the server)")
	exportCmd.Flags().Duration("interval", exporter.DefaultPollInterval, "Wait between status checks")
	_ = exportCmd.Flags().MarkHidden("interval")
}
