package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lore-keeper/backend/internal/api"
	"lore-keeper/backend/internal/constants"
)

func tokenCmd(opts *options) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint a bearer token signed with JWT_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := opts.jwtSecret
			if secret == "" {
				secret = constants.DevJWTSecret
			}
			token, err := api.IssueToken([]byte(secret), args[0], ttl)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", constants.DefaultTokenTTL, "Token lifetime")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print lorekeeper version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(constants.Version)
		},
	}
}
