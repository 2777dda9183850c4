package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/matcha/internal/apperror"
	"github.com/thereayou/matcha/internal/models"
	"github.com/thereayou/matcha/pkg/auth"
	"github.com/thereayou/matcha/pkg/logger"
)

const (
	UserIDKey  = "userID"
	SessionKey = "session"
	TokenKey   = "accessToken"
)

// TokenAuthenticator verifies a bare access token. Implemented by
// services.SessionAuthenticator.
type TokenAuthenticator interface {
	AuthenticateToken(ctx context.Context, token string) (*models.Session, error)
}

// AuthMiddleware authenticates REST calls from the Authorization header and
// stores the session, the user id and the raw token on the gin context.
func AuthMiddleware(authenticator TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromHeader(c.Request)
		if err != nil {
			AbortWithError(c, apperror.New(apperror.CodeAuthRequired, "missing or invalid Authorization header"))
			return
		}

		session, err := authenticator.AuthenticateToken(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(SessionKey, *session)
		c.Set(UserIDKey, session.UserID)
		c.Set(TokenKey, token)
		c.Request = c.Request.WithContext(logger.WithFields(c.Request.Context(),
			logger.Stringer("user_id", session.UserID),
		))
		c.Next()
	}
}

// CurrentSession returns the session stored by AuthMiddleware.
func CurrentSession(c *gin.Context) models.Session {
	return c.MustGet(SessionKey).(models.Session)
}

// CurrentUserID returns the user id stored by AuthMiddleware.
func CurrentUserID(c *gin.Context) uuid.UUID {
	return c.MustGet(UserIDKey).(uuid.UUID)
}

// WriteError renders err as {"error": {"code", "message"}} with the status
// of its code.
func WriteError(c *gin.Context, err error) {
	code := apperror.CodeOf(err)
	if code == apperror.CodeInternal || code == apperror.CodeUnavailable {
		logger.Error(c.Request.Context(), "request failed",
			logger.String("path", c.FullPath()),
			logger.ErrorField(err),
		)
	}
	c.JSON(apperror.HTTPStatus(code), gin.H{
		"error": gin.H{
			"code":    code,
			"message": apperror.MessageOf(err),
		},
	})
}

func AbortWithError(c *gin.Context, err error) {
	WriteError(c, err)
	c.Abort()
}

// NoRoute answers unknown paths in the same error shape.
func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error": gin.H{"code": apperror.CodeNotFound, "message": "route not found"},
	})
}
