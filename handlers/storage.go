package handlers

import (
	"net/http"

	"taskpilot/services/storage"
	"taskpilot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StorageHandler serves standalone file uploads. Clients that stage the
// screenshot before creating a submission use this to get the URL first.
type StorageHandler struct {
	Storage storage.StorageService
}

// UploadFileHandler handles POST /api/storage/upload.
func (h *StorageHandler) UploadFileHandler(c *gin.Context) {
	if _, ok := mustActor(c); !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "file is required")
		return
	}
	if fileHeader.Size > maxScreenshotSize {
		utils.JSONError(c, http.StatusBadRequest, "file must be 10MB or smaller")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "failed to read file")
		return
	}
	defer file.Close()

	folder := c.DefaultPostForm("folder", "task-submissions")
	url, err := h.Storage.UploadFile(c.Request.Context(), file, folder)
	if err != nil {
		utils.GetLogger().Error("Upload failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "upload failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
