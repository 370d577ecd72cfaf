package cmd

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var tokenAcquireCmd = &cobra.Command{
	Use:   "acquire [STRATEGY]",
	Short: "Acquire a service access token to test a credential strategy",
	Long: `Runs the client-credentials exchange of one strategy (default: the first configured)
and prints the fingerprint and expiry of the resulting token. The token itself is only
printed with --show-token.`,
	Example: `  pbichat token acquire
  pbichat token acquire legacy`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		showToken, _ := cmd.Flags().GetBool("show-token")

		cfg, err := f.LoadSettings()
		if err != nil {
			return err
		}
		gw, err := f.BuildGateway(cfg, nil)
		if err != nil {
			return err
		}

		strategy := gw.Strategies.Primary()
		if len(args) == 1 {
			s, ok := gw.Strategies.Get(args[0])
			if !ok {
				return fmt.Errorf("strategy '%s' not found", args[0])
			}
			strategy = s
		}

		log.Debug().Str("strategy", strategy.Name()).Msg("Acquiring access token...")
		token, err := strategy.AcquireAccessToken(cmd.Context())
		if err != nil {
			return fmt.Errorf("acquiring token via %s: %w", strategy.Name(), err)
		}

		log.Info().Msgf("%s acquired access token via '%s'", greenCheck, bold(strategy.Name()))
		fmt.Printf("  %s: %s\n", faint("Fingerprint"), token.Fingerprint())
		if !token.ExpiresAt.IsZero() {
			fmt.Printf("  %s:     %s (%s)\n", faint("Expires"),
				token.ExpiresAt.Local().Format(time.RFC1123),
				time.Until(token.ExpiresAt).Round(time.Second))
		}
		if showToken {
			fmt.Println(token.Value)
		}
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenAcquireCmd)

	tokenAcquireCmd.Flags().Bool("show-token", false, "Print the raw access token")
}
