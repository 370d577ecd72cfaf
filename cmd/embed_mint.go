package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Ayaan2907/powerBiChat/internal/core"
	"github.com/Ayaan2907/powerBiChat/internal/correlation"
)

var embedMintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint an embed configuration",
	Long: `Mints an embed configuration through the strategy fallback chain.
With --server the gateway does the work, otherwise the local settings are used.
The embed token is only printed with --json.`,
	Example: `  pbichat embed mint
  pbichat embed mint --server http://localhost:8080 --report 1f2e...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		req := core.EmbedRequest{}
		req.ReportID, _ = cmd.Flags().GetString("report")
		req.DatasetID, _ = cmd.Flags().GetString("dataset")
		req.WorkspaceID, _ = cmd.Flags().GetString("workspace")

		var cfg *core.EmbedConfig
		if f.RemoteAddr != "" {
			cli, err := f.GetClient()
			if err != nil {
				return err
			}
			var corr string
			cfg, corr, err = cli.Config(cmd.Context(), req)
			if err != nil {
				return logError(err, corr, "failed to mint embed configuration")
			}
		} else {
			settings, err := f.LoadSettings()
			if err != nil {
				return err
			}
			gw, err := f.BuildGateway(settings, nil)
			if err != nil {
				return err
			}
			ctx, id := correlation.Ensure(cmd.Context())
			cfg, err = gw.Embeds.MintConfig(ctx, req)
			if err != nil {
				return logError(err, id, "failed to mint embed configuration")
			}
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		}

		log.Info().Msgf("%s embed configuration minted", greenCheck)
		printEmbedConfig(cfg)
		return nil
	},
}

func printEmbedConfig(cfg *core.EmbedConfig) {
	fmt.Println(bold("\n── Embed Configuration ──"))
	fmt.Printf("  %-20s %s\n", faint("Report:"), cfg.ReportID)
	if cfg.WorkspaceID != "" {
		fmt.Printf("  %-20s %s\n", faint("Workspace:"), cfg.WorkspaceID)
	}
	if cfg.DatasetID != "" {
		fmt.Printf("  %-20s %s\n", faint("Dataset:"), cfg.DatasetID)
	}
	fmt.Printf("  %-20s %s\n", faint("Embed URL:"), cfg.EmbedURL)
	fmt.Printf("  %-20s %s\n", faint("Token:"), core.Fingerprint(cfg.AccessToken))
	fmt.Printf("  %-20s %s (%s)\n", faint("Expires:"),
		cfg.TokenExpiration.Local().Format(time.RFC1123),
		time.Until(cfg.TokenExpiration).Round(time.Second))
	fmt.Println()
}

func init() {
	embedCmd.AddCommand(embedMintCmd)

	embedMintCmd.Flags().Bool("json", false, "Print the full configuration as JSON, including the token")
	f.bindReportFlags(embedMintCmd.Flags(), "gateway settings")
	embedMintCmd.Flags().String("dataset", "", "Dataset ID (default: POWERBI_DATASET_ID)")
}
