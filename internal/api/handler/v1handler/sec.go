package v1handler

import (
	"context"
	"crypto/rsa"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"wastepolicy/internal/config"
	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/logger"
	"wastepolicy/pkg/serrors"
)

type ctxKey string

// UserIDKey is the context key holding the authenticated domain.UserID.
const UserIDKey ctxKey = "userID"

// BearerAuth carries the token of an Authorization: Bearer header.
type BearerAuth struct {
	Token string
}

// SecHandlerOptions configure token verification.
type SecHandlerOptions struct {
	// PublicKey is the PEM encoded RSA key verifying RS256 tokens.
	PublicKey string
	// Issuer, when set, must match the iss claim.
	Issuer string
}

// NewSecHandlerOptions maps the JWT section of the config.
func NewSecHandlerOptions(cfg *config.Config) *SecHandlerOptions {
	return &SecHandlerOptions{PublicKey: cfg.JWT.PublicKey, Issuer: cfg.JWT.Issuer}
}

// SecHandler authenticates API requests using RS256 signed JWTs whose
// subject is the user ID.
type SecHandler struct {
	key    *rsa.PublicKey
	parser *jwt.Parser
}

// NewSecHandler parses the public key of opts.
func NewSecHandler(opts *SecHandlerOptions) (*SecHandler, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(opts.PublicKey))
	if err != nil {
		return nil, errors.Wrap(err, "could not parse RSA public key")
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}

	return &SecHandler{key: key, parser: jwt.NewParser(parserOpts...)}, nil
}

// HandleBearerAuth verifies t and stores the user ID of its subject in the
// returned context.
func (s SecHandler) HandleBearerAuth(
	ctx context.Context,
	operationName string,
	t BearerAuth,
) (context.Context, error) {
	if t.Token == "" {
		return ctx, serrors.With(serrors.ErrUnauthorized, "missing bearer token")
	}

	var claims jwt.RegisteredClaims
	if _, err := s.parser.ParseWithClaims(t.Token, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	}); err != nil {
		logger.Debug(ctx, "rejected token", zap.String("operation", operationName), zap.Error(err))

		return ctx, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token")
	}

	userID, err := domain.ParseUserID(claims.Subject)
	if err != nil {
		return ctx, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token subject")
	}

	ctx = context.WithValue(ctx, UserIDKey, userID)

	return logger.WithFields(ctx, zap.String("userID", userID.String())), nil
}

func bearer(r *http.Request) BearerAuth {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) < len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return BearerAuth{}
	}

	return BearerAuth{Token: strings.TrimSpace(h[len(prefix):])}
}

// GetUserIDFromContext returns the user authenticated by HandleBearerAuth.
func GetUserIDFromContext(ctx context.Context) domain.UserID {
	id, _ := ctx.Value(UserIDKey).(domain.UserID)

	return id
}
