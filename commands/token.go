package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrewpaige1/engcard-api/auth"
)

func newTokenCmd(a *app) *cobra.Command {
	var subject string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := auth.CreateToken(a.env.JWTSecret, a.env.JWTIssuer, a.env.JWTAudience, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "owner", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "token lifetime")
	return cmd
}
