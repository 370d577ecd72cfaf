package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Ayaan2907/powerBiChat/internal/api"
	"github.com/Ayaan2907/powerBiChat/internal/assistant"
	"github.com/Ayaan2907/powerBiChat/internal/audit"
	"github.com/Ayaan2907/powerBiChat/internal/issuers"
	"github.com/Ayaan2907/powerBiChat/internal/tasks"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway server",
	Long: `Serves embed configurations, export proxying and the assistant relay.
Service credentials are read from the POWERBI_* environment variables or the --config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		cfg, err := f.LoadSettings()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		if missing := cfg.PowerBI.MissingIdentity(); len(missing) > 0 {
			// not fatal: requests fail with a configuration error until they are set
			log.Warn().Strs("missing", missing).Msg("Service identity is incomplete")
		}

		auditor, err := audit.New(cfg.Audit)
		if err != nil {
			return fmt.Errorf("creating auditor: %w", err)
		}
		defer func() {
			if err := auditor.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close auditor")
			}
		}()

		log.Info().Msg("Initializing credential strategies...")
		gw, err := f.BuildGateway(cfg, auditor)
		if err != nil {
			return err
		}
		for _, s := range gw.Strategies.List() {
			log.Info().Str("strategy", s.Name()).Str("type", s.Type()).Msg("Strategy registered")
		}

		var relay http.Handler
		if cfg.Assistant.BackendURL != "" {
			rl, err := assistant.New(cfg.Assistant, gw.HTTPClient.Transport)
			if err != nil {
				return fmt.Errorf("creating assistant relay: %w", err)
			}
			relay = rl
			log.Info().Str("backend", cfg.Assistant.BackendURL).Msg("Assistant relay enabled")
		}

		taskManager := tasks.NewManager()
		taskManager.RegisterAll(tasks.TaskDefinition{
			Name:     tasks.PruneTokensTask,
			Interval: cfg.Tasks.PruneInterval,
			Handler:  tasks.PruneExpiredTokens(gw.TokenStore),
		})
		defer taskManager.Stop()

		var admin issuers.Verifier
		registry, err := issuers.BuildRegistry(cmd.Context(), cfg.Admin, gw.HTTPClient)
		if err != nil {
			return fmt.Errorf("building admin verifiers: %w", err)
		}
		if registry != nil {
			admin = registry
		} else {
			log.Info().Msg("Admin routes disabled (no signing key or OIDC issuer configured)")
		}

		srv := api.NewServer(gw.Embeds, gw.Exports, taskManager, auditor, relay)
		server := &http.Server{
			Addr:              addr,
			Handler:           srv.Routes(admin),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info().Msgf("Starting server on %s...", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
		case err := <-errCh:
			return fmt.Errorf("server crashed: %w", err)
		}
		log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info().Msg("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "address to listen on")
}
