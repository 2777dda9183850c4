package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/matcha/internal/apperror"
	"github.com/thereayou/matcha/internal/middleware"
	"github.com/thereayou/matcha/pkg/auth"
)

// TokenRevoker blacklists an access token. Implemented by cache.Blacklist.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

type AuthHandler struct {
	jwtManager *auth.JWTManager
	revoker    TokenRevoker
}

// NewAuthHandler builds the logout handler. revoker may be nil when redis is
// not configured; logout then answers UNAVAILABLE.
func NewAuthHandler(jwtMgr *auth.JWTManager, revoker TokenRevoker) *AuthHandler {
	return &AuthHandler{jwtManager: jwtMgr, revoker: revoker}
}

// Logout blacklists the presented access token until it expires.
func (h *AuthHandler) Logout(c *gin.Context) {
	if h.revoker == nil {
		middleware.WriteError(c, apperror.New(apperror.CodeUnavailable, "token revocation is not configured"))
		return
	}
	rawToken := c.GetString(middleware.TokenKey)

	exp, err := h.jwtManager.Expiry(rawToken)
	if err != nil {
		middleware.WriteError(c, apperror.Wrap(apperror.CodeAuthInvalid, "invalid access token", err))
		return
	}

	if err := h.revoker.Revoke(c.Request.Context(), rawToken, time.Until(exp)); err != nil {
		middleware.WriteError(c, apperror.Wrap(apperror.CodeUnavailable, "token revocation failed", err))
		return
	}
	c.Status(http.StatusNoContent)
}
