package cmd

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jjenkins/agencydash/internal/auth"
)

var (
	tokenUser string
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a session token for a user",
	Long: `Token prints a signed session token for the given user id. Paste it
into the sign-in page or send it as "Authorization: Bearer <token>".`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, _, closer := setup()
		defer closer.Close()

		ttl := tokenTTL
		if ttl == 0 {
			var err error
			if ttl, err = cfg.SessionTTL(); err != nil {
				log.Fatal(err)
			}
		}

		issuer := auth.NewIssuer(cfg.Session.Secret, cfg.Session.Issuer, cfg.Session.Audience, ttl)
		token, err := issuer.Issue(tokenUser)
		if err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVarP(&tokenUser, "user", "u", "", "User id to embed in the token")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (defaults to session.ttl)")
	_ = tokenCmd.MarkFlagRequired("user")
}
