package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Ayaan2907/powerBiChat/internal/cliconfig"
	"github.com/Ayaan2907/powerBiChat/pkg/client"
)

var loginCmd = &cobra.Command{
	Use:   "login SESSION-TOKEN",
	Short: "Save an admin session token for a gateway server",
	Long: `Verifies an admin session token (see 'pbichat token admin') or an ID token of the
operators' OIDC tenant against the server and saves it locally to allow future authenticated requests (like audit logs).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionToken := args[0]
		if sessionToken == "" {
			return fmt.Errorf("token cannot be empty")
		}

		server := f.RemoteAddr
		if server == "" {
			return fmt.Errorf("server address not configured, provide via --server or env")
		}

		cli, err := client.New(server, client.WithAuthToken(sessionToken))
		if err != nil {
			return err
		}

		log.Info().Msgf("Verifying session with server %q...", server)
		if _, correlation, err := cli.ListTasks(cmd.Context()); err != nil {
			return logError(err, correlation, "session token was rejected")
		}

		cfg, err := cliconfig.LoadOrEmpty()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.SetCredential(server, sessionToken); err != nil {
			return err
		}
		if err := cliconfig.Save(cfg); err != nil {
			return logError(err, "", "login succeeded but could not save credentials")
		}

		log.Info().Msgf("%s saved credentials for %s", greenCheck, bold(server))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved session token of a gateway server",
	RunE: func(cmd *cobra.Command, args []string) error {
		server := f.RemoteAddr
		if server == "" {
			return fmt.Errorf("server address not configured, provide via --server or env")
		}
		cfg, err := cliconfig.LoadOrEmpty()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		removed, err := cfg.RemoveCredential(server)
		if err != nil {
			return err
		}
		if !removed {
			log.Info().Msgf("No saved credentials for %s", server)
			return nil
		}
		if err := cliconfig.Save(cfg); err != nil {
			return err
		}
		log.Info().Msgf("%s removed credentials for %s", greenCheck, bold(server))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
