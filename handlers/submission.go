package handlers

import (
	"net/http"

	submissionService "taskpilot/services/submission"
	"taskpilot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxScreenshotSize caps uploaded evidence files at 10 MB.
const maxScreenshotSize = 10 << 20

// SubmissionHandler serves task-submission endpoints.
type SubmissionHandler struct {
	Submissions submissionService.SubmissionService
}

// CreateSubmissionHandler handles POST /api/submissions. The request is
// multipart: a screenshot file plus accountId, taskId and optional notes.
func (h *SubmissionHandler) CreateSubmissionHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("screenshot")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "screenshot file is required")
		return
	}
	if fileHeader.Size > maxScreenshotSize {
		utils.JSONError(c, http.StatusBadRequest, "screenshot must be 10MB or smaller")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "failed to read screenshot")
		return
	}
	defer file.Close()

	input := submissionService.CreateInput{
		AccountID:  c.PostForm("accountId"),
		TaskID:     c.PostForm("taskId"),
		Notes:      c.PostForm("notes"),
		Screenshot: file,
	}

	sub, err := h.Submissions.Create(c.Request.Context(), actor, input)
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	utils.GetLogger().Info("Task submitted",
		zap.String("submissionId", sub.ID),
		zap.String("accountId", sub.AccountID),
		zap.String("taskerId", sub.TaskerID))
	c.JSON(http.StatusCreated, sub)
}

// ReviewSubmissionHandler handles POST /api/submissions/:id/review.
func (h *SubmissionHandler) ReviewSubmissionHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req submissionService.ReviewInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.Submissions.Review(actor, c.Param("id"), req)
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// GetSubmissionHandler handles GET /api/submissions/:id.
func (h *SubmissionHandler) GetSubmissionHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	sub, err := h.Submissions.GetByID(actor, c.Param("id"))
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// ListSubmissionsHandler handles GET /api/submissions.
func (h *SubmissionHandler) ListSubmissionsHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	from, to, err := parseDateRange(c)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "dates must use YYYY-MM-DD format")
		return
	}

	query := submissionService.ListQuery{
		AccountID: c.Query("accountId"),
		TaskerID:  c.Query("taskerId"),
		Status:    c.Query("status"),
		From:      from,
		To:        to,
	}

	subs, err := h.Submissions.List(actor, query)
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": subs})
}
