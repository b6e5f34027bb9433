package handlers

import (
	"net/http"
	"strconv"

	"taskpilot/services/audit"
	"taskpilot/utils"

	"github.com/gin-gonic/gin"
)

// AuditHandler serves the manager-only audit log.
type AuditHandler struct {
	Audit audit.Trail
}

// ListAuditHandler handles GET /api/audit.
func (h *AuditHandler) ListAuditHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var limit int64
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			utils.JSONError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	entries, err := h.Audit.List(actor, c.Query("userId"), c.Query("entityType"), limit)
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
