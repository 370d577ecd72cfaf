package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the settings file and environment",
	Long: `Loads the settings file (--config) and applies environment overrides.
Reports missing service identity values, which are only required once a token is requested.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := f.LoadSettings()
		if err != nil {
			log.Error().Err(err).Msg("Configuration is invalid.")
			return BeQuietError{}
		}
		if missing := cfg.PowerBI.MissingIdentity(); len(missing) > 0 {
			log.Warn().Strs("missing", missing).Msg("Service identity is incomplete.")
		}
		if _, err := f.BuildGateway(cfg, nil); err != nil {
			log.Error().Err(err).Msg("Configuration is invalid.")
			return BeQuietError{}
		}
		log.Info().Int("strategies", len(cfg.Strategies)).Msg("Configuration is valid.")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}
