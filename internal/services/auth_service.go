package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/matcha/internal/apperror"
	"github.com/thereayou/matcha/internal/models"
	"github.com/thereayou/matcha/pkg/auth"
	"github.com/thereayou/matcha/pkg/logger"
)

var (
	errAuthRequired = apperror.New(apperror.CodeAuthRequired, "access token required")
	errAuthInvalid  = apperror.New(apperror.CodeAuthInvalid, "invalid access token")
)

// Handshake holds the token sources of a connection attempt. Fields are raw:
// Authorization is the header value, AuthPayload and Query the bare token.
type Handshake struct {
	Authorization string
	AuthPayload   string
	Query         string
}

// Token picks the first usable token in precedence order: header, auth
// payload, query parameter.
func (h Handshake) Token() (string, bool) {
	if token, ok := auth.BearerToken(h.Authorization); ok {
		return token, true
	}
	if h.AuthPayload != "" {
		return h.AuthPayload, true
	}
	if h.Query != "" {
		return h.Query, true
	}
	return "", false
}

// SessionAuthenticator turns a handshake into a session identity. It never
// creates any state on failure.
type SessionAuthenticator struct {
	jwt       *auth.JWTManager
	blacklist TokenBlacklist
}

// NewSessionAuthenticator builds an authenticator. blacklist may be nil when
// revocation is not deployed.
func NewSessionAuthenticator(jwt *auth.JWTManager, blacklist TokenBlacklist) *SessionAuthenticator {
	return &SessionAuthenticator{jwt: jwt, blacklist: blacklist}
}

func (a *SessionAuthenticator) Authenticate(ctx context.Context, hs Handshake) (*models.Session, error) {
	token, ok := hs.Token()
	if !ok {
		return nil, errAuthRequired
	}
	return a.AuthenticateToken(ctx, token)
}

// AuthenticateToken verifies a bare access token.
func (a *SessionAuthenticator) AuthenticateToken(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, errAuthRequired
	}

	claims, err := a.jwt.Verify(token)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeAuthInvalid, "invalid access token", err)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeAuthInvalid, "invalid token subject", err)
	}

	if a.blacklist != nil {
		revoked, err := a.blacklist.IsRevoked(ctx, token)
		if err != nil {
			// fail closed
			logger.Warn(ctx, "token blacklist lookup failed", logger.ErrorField(err))
			return nil, errAuthInvalid
		}
		if revoked {
			return nil, apperror.New(apperror.CodeAuthInvalid, "access token revoked")
		}
	}

	return &models.Session{
		ID:              uuid.New(),
		UserID:          userID,
		AuthenticatedAt: time.Now().UTC(),
		ExpiresAt:       claims.ExpiresAt.Time,
	}, nil
}
