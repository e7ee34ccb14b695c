package main

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wastepolicy/internal/config"
	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/logger"
)

// signToken issues an RS256 token whose subject is userID.
func signToken(privateKey, issuer string, userID domain.UserID, ttl time.Duration) (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKey))
	if err != nil {
		return "", fmt.Errorf("could not parse RSA private key: %w", err)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   userID.String(),
		ID:        uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("could not sign token: %w", err)
	}

	return signed, nil
}

// JWTCommand constructs the 'jwt' subcommand printing an API token. Without
// --subject a new user is created, so every token owns a separate set of runs.
func JWTCommand(cfg *config.Config) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "jwt",
		Short: "Generates an API token for a user",
		Run: func(cmd *cobra.Command, _ []string) {
			ctx := cmd.Context()

			userID := domain.UserID(uuid.New())
			if subject != "" {
				var err error
				if userID, err = domain.ParseUserID(subject); err != nil {
					logger.Fatal(ctx, "subject must be a user UUID", zap.Error(err))
				}
			}

			signed, err := signToken(cfg.JWT.PrivateKey, cfg.JWT.Issuer, userID, ttl)
			if err != nil {
				logger.Fatal(ctx, "could not generate token", zap.Error(err))
			}
			logger.Info(ctx, "generated token", zap.Stringer("userID", userID), zap.Duration("ttl", ttl))

			fmt.Fprintln(cmd.OutOrStdout(), signed) //nolint: errcheck
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "User UUID the token is issued for (default a new user)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token TTL (e.g., 30s, 15m, 1h)")

	return cmd
}
