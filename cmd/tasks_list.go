package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Ayaan2907/powerBiChat/internal/tasks"
)

var tasksListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the gateway's background tasks",
	Example: `  pbichat tasks list`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Debug().Msg("Retrieving tasks...")
		list, correlation, err := cli.ListTasks(cmd.Context())
		if err != nil {
			return logError(err, correlation, "failed to list tasks")
		}
		if len(list) == 0 {
			log.Info().Msg("No background tasks registered")
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Task", "State", "Runs", "Last Run", "Next Run", "Result"})

		for _, task := range list {
			state := faint("idle")
			if task.Running {
				state = color.BlueString("running")
			}

			lastRun := faint("never")
			var result string
			if last := task.Last; last != nil {
				lastRun = time.Since(last.StartedAt).Round(time.Second).String() + " ago"
				switch last.Outcome {
				case tasks.OutcomeSuccess:
					result = greenCheck + " success in " + last.Duration.Round(time.Millisecond).String()
				default:
					result = redCross + " " + string(last.Outcome) + ": " + truncate(last.Error, 40)
				}
			}

			nextRun := faint("n/a")
			if !task.NextRun.IsZero() {
				nextRun = "in " + time.Until(task.NextRun).Round(time.Second).String()
			}

			t.AppendRow(table.Row{bold(task.Name), state, fmt.Sprintf("%d (%d failed)", task.Runs, task.Failures), lastRun, nextRun, result})
		}

		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func init() {
	tasksCmd.AddCommand(tasksListCmd)
}
