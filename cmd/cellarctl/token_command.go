package main

import (
	"errors"
	"fmt"
	"time"

	"wine-cellar/internal/service"

	"github.com/spf13/cobra"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Manage admin API tokens",
	}

	var subject, role string
	var ttl time.Duration

	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a bearer token with the configured JWT secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.JWT.Secret == "" {
				return errors.New("JWT_SECRET is not set")
			}

			token, err := service.NewTokenService(cfg.JWT.Secret).Issue(subject, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	issueCmd.Flags().StringVar(&subject, "subject", "", "Token subject, usually the operator's name")
	issueCmd.Flags().StringVar(&role, "role", service.RoleAdmin, "Role claim")
	issueCmd.Flags().DurationVar(&ttl, "ttl", service.DefaultTokenExpiration, "Token lifetime")
	_ = issueCmd.MarkFlagRequired("subject")

	tokenCmd.AddCommand(issueCmd)
	return tokenCmd
}
