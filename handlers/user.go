package handlers

import (
	"net/http"

	userService "taskpilot/services/user"
	"taskpilot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler serves user management endpoints for managers.
type UserHandler struct {
	Users userService.UserService
}

// ListUsersHandler handles GET /api/users.
func (h *UserHandler) ListUsersHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	role := c.Query("role")
	activeOnly := c.Query("activeOnly") == "true"

	users, err := h.Users.List(actor, role, activeOnly)
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetUserHandler handles GET /api/users/:id.
func (h *UserHandler) GetUserHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	u, err := h.Users.GetByID(actor, c.Param("id"))
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// DeactivateUserHandler handles DELETE /api/users/:id.
func (h *UserHandler) DeactivateUserHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	u, err := h.Users.Deactivate(actor, c.Param("id"))
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	utils.GetLogger().Info("User deactivated", zap.String("userId", u.ID), zap.String("by", actor.ID))
	c.JSON(http.StatusOK, u)
}
