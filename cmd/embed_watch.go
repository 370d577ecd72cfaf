package cmd

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Ayaan2907/powerBiChat/internal/core"
	"github.com/Ayaan2907/powerBiChat/internal/lifecycle"
)

var embedWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep an embed configuration fresh, renewing it before it expires",
	Long: `Fetches the embed configuration from the gateway and renews it ahead of expiry,
the way the browser client does. Runs until interrupted.`,
	Example: `  pbichat embed watch --server http://localhost:8080 --lead 5m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lead, _ := cmd.Flags().GetDuration("lead")

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// observers run on the refresh and ticker goroutines
		var mu sync.Mutex
		var lastState lifecycle.State = -1
		var lastToken string
		mgr := lifecycle.New(cli,
			lifecycle.WithLeadTime(lead),
			lifecycle.WithObserver(func(s lifecycle.Snapshot) {
				mu.Lock()
				defer mu.Unlock()
				token := ""
				if s.Config != nil {
					token = s.Config.AccessToken
				}
				if s.State == lastState && token == lastToken {
					log.Debug().Dur("remaining", s.TimeRemaining.Round(time.Second)).Msg("tick")
					return
				}
				lastState, lastToken = s.State, token
				printSnapshot(s)
			}),
		)
		defer mgr.Close()

		if _, err := mgr.Refresh(ctx); err != nil {
			return logError(err, "", "failed to load embed configuration")
		}

		<-ctx.Done()
		log.Info().Msg("Stopped watching")
		return nil
	},
}

func printSnapshot(s lifecycle.Snapshot) {
	var state string
	switch s.State {
	case lifecycle.StateReady:
		state = color.GreenString(s.State.String())
	case lifecycle.StateError:
		state = color.RedString(s.State.String())
	default:
		state = color.BlueString(s.State.String())
	}

	ev := log.Info().Str("state", state)
	if s.Config != nil {
		ev = ev.Str("report_id", s.Config.ReportID).
			Str("token_fingerprint", core.Fingerprint(s.Config.AccessToken)).
			Dur("remaining", s.TimeRemaining.Round(time.Second))
	}
	if !s.NextRefresh.IsZero() {
		ev = ev.Time("next_refresh", s.NextRefresh)
	}
	if s.Err != nil {
		ev = ev.AnErr("error", s.Err)
	}
	ev.Msg("embed configuration")
}

func init() {
	embedCmd.AddCommand(embedWatchCmd)

	embedWatchCmd.Flags().Duration("lead", lifecycle.DefaultLeadTime, "Renew this long before the token expires")
}
