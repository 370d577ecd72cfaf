package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var tasksLogsCmd = &cobra.Command{
	Use:     "logs NAME",
	Short:   "Show the output of a background task's runs",
	Example: `  pbichat tasks logs prune-expired-tokens`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(args[0])
		if name == "" {
			return errors.New("task name cannot be empty")
		}

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Debug().Msgf("Retrieving logs for task '%s'...", name)
		entries, correlation, err := cli.GetTaskLogs(cmd.Context(), name)
		if err != nil {
			return logError(err, correlation, "failed to retrieve task logs")
		}
		if len(entries) == 0 {
			log.Info().Msgf("Task '%s' has not logged anything yet", name)
			return nil
		}

		for _, entry := range entries {
			var level string
			switch entry.Level {
			case "info":
				level = color.GreenString("INF")
			case "warn":
				level = color.YellowString("WRN")
			case "error":
				level = color.RedString("ERR")
			case "debug":
				level = faint("DBG")
			default:
				level = strings.ToUpper(entry.Level)
			}
			fmt.Printf("%s %s %s\n", faint(entry.Time.Format("15:04:05")), level, entry.Message)
		}
		return nil
	},
}

func init() {
	tasksCmd.AddCommand(tasksLogsCmd)
}
