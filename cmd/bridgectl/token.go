package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/Dan9191/salary-bridge/internal/middleware"
)

var (
	flagSecret string
	flagEmail  string
	flagTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Sign a bearer token for local testing",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&flagSecret, "secret", os.Getenv("JWT_SECRET"), "HS256 signing secret")
	tokenCmd.Flags().StringVar(&flagEmail, "email", "", "Email claim")
	tokenCmd.Flags().DurationVar(&flagTTL, "ttl", time.Hour, "Token lifetime")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	if flagSecret == "" {
		return errors.New("no secret: set --secret or JWT_SECRET")
	}
	now := time.Now()
	signed, err := middleware.IssueToken(flagSecret, args[0], flagEmail, jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(flagTTL)),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), signed)
	return nil
}
