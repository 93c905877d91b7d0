package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/MrEthical07/goSession/internal/logging"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue or inspect session tokens",
	}
	cmd.AddCommand(newTokenIssueCmd(), newTokenInspectCmd())
	return cmd
}

type tokenOutput struct {
	Token     string    `json:"token,omitempty"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	TokenID   string    `json:"tokenId"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func newTokenIssueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a session token for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, _ := cmd.Flags().GetString("user")
			email, _ := cmd.Flags().GetString("email")

			cfg, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}
			// Tooling never needs the revocation store.
			cfg.ValidationMode = "jwt_only"
			engine, cleanup, err := buildEngine(cfg, logging.NewNop())
			if err != nil {
				return err
			}
			defer cleanup()

			token, payload, err := engine.IssueToken(user, email)
			if err != nil {
				return err
			}
			return writeJSON(cmd, tokenOutput{
				Token:     token,
				UserID:    payload.UserID,
				Email:     payload.Email,
				TokenID:   payload.TokenID,
				IssuedAt:  payload.IssuedAt.UTC(),
				ExpiresAt: payload.ExpiresAt.UTC(),
			})
		},
	}
	cmd.Flags().String("user", "", "User id")
	cmd.Flags().String("email", "", "User email")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newTokenInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <token>",
		Short: "Verify a token and print its payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}
			cfg.ValidationMode = "jwt_only"
			engine, cleanup, err := buildEngine(cfg, logging.NewNop())
			if err != nil {
				return err
			}
			defer cleanup()

			payload, err := engine.Inspect(args[0])
			if err != nil {
				return fmt.Errorf("token rejected: %w", err)
			}
			return writeJSON(cmd, tokenOutput{
				UserID:    payload.UserID,
				Email:     payload.Email,
				TokenID:   payload.TokenID,
				IssuedAt:  payload.IssuedAt.UTC(),
				ExpiresAt: payload.ExpiresAt.UTC(),
			})
		},
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
