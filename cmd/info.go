package cmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Ayaan2907/powerBiChat/internal/buildinfo"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show build information of the CLI and, with --server, of the gateway",
	Example: `  pbichat info
  pbichat info --server http://localhost:8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		local := buildinfo.GetBuildInfo()
		rows := []infoColumn{{"CLI", &local}}

		if f.RemoteAddr != "" {
			cli, err := f.GetClient()
			if err != nil {
				return err
			}
			log.Debug().Msg("Fetching build info from server...")
			remote, correlation, err := cli.Info(cmd.Context())
			if err != nil {
				return logError(err, correlation, "failed to get info from server")
			}
			rows = append(rows, infoColumn{"Gateway", remote})

			if remote.Version != local.Version {
				log.Warn().
					Str("cli", local.Version).
					Str("gateway", remote.Version).
					Msg("CLI and gateway versions differ")
			}
		}

		printInfo(rows)
		return nil
	},
}

type infoColumn struct {
	name string
	info *buildinfo.Info
}

func printInfo(cols []infoColumn) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)

	header := table.Row{""}
	version, commit, goVersion := table.Row{faint("Version")}, table.Row{faint("Commit")}, table.Row{faint("Go")}
	for _, c := range cols {
		header = append(header, bold(c.name))
		version = append(version, c.info.Version)
		commit = append(commit, c.info.CommitHash)
		goVersion = append(goVersion, c.info.GoVersion)
	}
	t.AppendHeader(header)
	t.AppendRows([]table.Row{version, commit, goVersion})

	applyTableFormat(t)
	t.Render()
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
