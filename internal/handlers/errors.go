package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/matcha/internal/apperror"
	"github.com/thereayou/matcha/internal/middleware"
)

// bindJSON decodes the body into req and answers VALIDATION on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.WriteError(c, apperror.Wrap(apperror.CodeValidation, "invalid request body", err))
		return false
	}
	return true
}

// uuidParam parses a path parameter and answers VALIDATION on failure.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		middleware.WriteError(c, apperror.Wrap(apperror.CodeValidation, "invalid "+name, err))
		return uuid.Nil, false
	}
	return id, true
}
