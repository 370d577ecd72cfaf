package cmd

import (
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

var debugSettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Dump the effective settings with secrets redacted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := f.LoadSettings()
		if err != nil {
			return err
		}
		cs := spew.ConfigState{
			Indent:                  "  ",
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
		}
		cs.Fdump(os.Stdout, cfg.Redacted())
		return nil
	},
}

func init() {
	debugCmd.AddCommand(debugSettingsCmd)
}
