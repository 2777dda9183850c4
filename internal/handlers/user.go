package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/matcha/internal/middleware"
	"github.com/thereayou/matcha/internal/services"
)

type UserHandler struct {
	views *services.ProfileViews
}

func NewUserHandler(views *services.ProfileViews) *UserHandler {
	return &UserHandler{views: views}
}

// GetUser returns a profile preview by id. Viewing someone else's profile
// notifies them.
func (h *UserHandler) GetUser(c *gin.Context) {
	targetID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	preview, err := h.views.ViewProfile(c.Request.Context(), middleware.CurrentUserID(c), targetID)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}
