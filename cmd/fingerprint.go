package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Ayaan2907/powerBiChat/internal/core"
)

var fingerprintCmd = &cobra.Command{
	Use:     "fingerprint TOKEN...",
	Aliases: []string{"fp"},
	Short:   "Calculate the fingerprint of embed or access tokens",
	Long: `Prints the fingerprint of each token, one per line. This is the value the gateway
logs and stores instead of the token ('token_fingerprint' in the audit log, 'fingerprint'
in the active token list). Use '-' to read tokens from stdin, one per line.`,
	Example: `  pbichat fingerprint eyJ0eXAiOiJKV1Qi...

  # read the token from stdin
  echo "eyJ0eXAi..." | pbichat fingerprint -

  # check a token against an audit entry
  pbichat fingerprint --match 3q2-7u8_kXcB9a0f eyJ0eXAi...`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		match, _ := cmd.Flags().GetString("match")

		var tokens []string
		for _, arg := range args {
			if arg != "-" {
				tokens = append(tokens, arg)
				continue
			}
			log.Debug().Msg("Reading tokens from stdin")
			scanner := bufio.NewScanner(os.Stdin)
			scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
			for scanner.Scan() {
				if line := strings.TrimSpace(scanner.Text()); line != "" {
					tokens = append(tokens, line)
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading tokens from stdin: %w", err)
			}
		}
		if len(tokens) == 0 {
			return errors.New("no token given")
		}

		matched := false
		for _, token := range tokens {
			fp := core.Fingerprint(token)
			if match == "" {
				fmt.Println(fp)
				continue
			}
			if fp == match {
				matched = true
				fmt.Printf("%s %s\n", greenCheck, fp)
			} else {
				fmt.Printf("%s %s\n", redCross, faint(fp))
			}
		}

		if match != "" && !matched {
			return fmt.Errorf("no token matches fingerprint %s", match)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fingerprintCmd)

	fingerprintCmd.Flags().String("match", "", "Only succeed if a token has this fingerprint")
}
