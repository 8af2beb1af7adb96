package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shenikar/safe_route_system/internal/auth"
	"github.com/spf13/cobra"
)

// tokenCommand создаёт подкоманду 'token', которая выпускает токен для существующего пользователя
func tokenCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generates a bearer token for given user ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.RequireJWT(); err != nil {
				return err
			}
			subject, _ := cmd.Flags().GetString("user")
			ttl, _ := cmd.Flags().GetDuration("ttl")
			if ttl <= 0 {
				ttl = a.cfg.JWTTTL
			}

			userID, err := uuid.Parse(subject)
			if err != nil {
				return fmt.Errorf("invalid user ID %q: %w", subject, err)
			}

			signed, err := auth.NewTokenManager(a.cfg.JWTSecret, ttl).Issue(userID)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}

	cmd.Flags().String("user", "", "User ID (token subject)")
	cmd.Flags().Duration("ttl", 0, "Token TTL (e.g., 30s, 15m, 1h), JWT_TTL by default")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
