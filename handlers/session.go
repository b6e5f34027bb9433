package handlers

import (
	"net/http"

	sessionService "taskpilot/services/session"
	"taskpilot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionHandler serves work-session lifecycle endpoints.
type SessionHandler struct {
	Sessions sessionService.SessionService
}

// StartSessionHandler handles POST /api/sessions/start.
func (h *SessionHandler) StartSessionHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req struct {
		AccountID string `json:"accountId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := h.Sessions.Start(actor, req.AccountID)
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	utils.GetLogger().Info("Session started",
		zap.String("sessionId", sess.ID),
		zap.String("accountId", sess.AccountID),
		zap.String("taskerId", sess.TaskerID))
	c.JSON(http.StatusCreated, sess)
}

// StopSessionHandler handles POST /api/sessions/:id/stop.
func (h *SessionHandler) StopSessionHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	sess, err := h.Sessions.Stop(actor, c.Param("id"))
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	utils.GetLogger().Info("Session stopped",
		zap.String("sessionId", sess.ID),
		zap.Float64p("totalHours", sess.TotalHours),
		zap.Float64p("totalPayment", sess.TotalPayment))
	c.JSON(http.StatusOK, sess)
}

// GetSessionHandler handles GET /api/sessions/:id.
func (h *SessionHandler) GetSessionHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	sess, err := h.Sessions.GetByID(actor, c.Param("id"))
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// ListActiveSessionsHandler handles GET /api/sessions/active.
func (h *SessionHandler) ListActiveSessionsHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	sessions, err := h.Sessions.ListActive(actor)
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// ListSessionsHandler handles GET /api/sessions.
func (h *SessionHandler) ListSessionsHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	from, to, err := parseDateRange(c)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "dates must use YYYY-MM-DD format")
		return
	}

	query := sessionService.ListQuery{
		AccountID: c.Query("accountId"),
		Status:    c.Query("status"),
		From:      from,
		To:        to,
	}

	sessions, totals, err := h.Sessions.List(actor, query)
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "totals": totals})
}
