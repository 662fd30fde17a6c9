package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/internal/service"
)

func (c *cli) tokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Operator access tokens",
	}

	var userID, role, email, name string
	var expiry time.Duration
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Sign an access token with the configured JWT secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if expiry <= 0 {
				expiry = c.cfg.JWT.Expiration
			}
			auth := service.NewAuthService(c.logger, service.AuthConfig{
				Secret: c.cfg.JWT.Secret,
				Issuer: c.cfg.JWT.Issuer,
				Expiry: expiry,
			})
			token, expiresAt, err := auth.IssueToken(userID, models.Role(role), email, name)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, token)
			fmt.Fprintf(c.err, "expires %s\n", expiresAt.Local().Format(time.RFC3339))
			return nil
		},
	}
	issue.Flags().StringVar(&userID, "user", "", "operator account id")
	issue.Flags().StringVar(&role, "role", string(models.RoleSiteAdmin), "operator role")
	issue.Flags().StringVar(&email, "email", "", "operator email")
	issue.Flags().StringVar(&name, "name", "", "operator display name")
	issue.Flags().DurationVar(&expiry, "expiry", 0, "token lifetime (defaults to JWT_EXPIRATION)")
	_ = issue.MarkFlagRequired("user")

	cmd.AddCommand(issue)
	return cmd
}
