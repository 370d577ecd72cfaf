package cmd

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Ayaan2907/powerBiChat/internal/issuers"
)

var tokenAdminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Create an admin session token for the admin routes",
	Long: `Signs an HS256 session token with the configured admin signing key
(POWERBI_ADMIN_SIGNING_KEY). Use it with 'pbichat login' or PBICHAT_TOKEN.`,
	Example: `  pbichat token admin --subject alice --ttl 8h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		cfg, err := f.LoadSettings()
		if err != nil {
			return err
		}
		if cfg.Admin.SigningKey == "" {
			return fmt.Errorf("no admin signing key configured (set POWERBI_ADMIN_SIGNING_KEY)")
		}

		now := time.Now()
		claims := issuers.AdminClaims{
			Roles: []string{issuers.AdminRole},
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   subject,
				Issuer:    cfg.Admin.Issuer,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			},
		}
		signed, err := issuers.Sign([]byte(cfg.Admin.SigningKey), claims)
		if err != nil {
			return fmt.Errorf("signing session token: %w", err)
		}

		log.Info().Str("subject", subject).Dur("ttl", ttl).Msg("Admin session token created")
		fmt.Println(signed)
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenAdminCmd)

	tokenAdminCmd.Flags().String("subject", "operator", "Subject of the session")
	tokenAdminCmd.Flags().Duration("ttl", 8*time.Hour, "Lifetime of the session token")
}
