package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/notebook-buddy/backend/internal/http/response"
	"github.com/notebook-buddy/backend/internal/platform/apierr"
	"github.com/notebook-buddy/backend/internal/services"
)

type UploadHandler struct {
	uploadService services.UploadService
	docGenService services.DocGenService
}

func NewUploadHandler(uploadService services.UploadService, docGenService services.DocGenService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, docGenService: docGenService}
}

func (uh *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, apierr.Validation("multipart file field required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.RespondError(c, apierr.Validation("unreadable upload"))
		return
	}
	defer src.Close()

	path, err := uh.uploadService.SaveUpload(fileHeader.Filename, src, fileHeader.Size)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"filePath": path})
}

func (uh *UploadHandler) GenerateTextBlocks(c *gin.Context) {
	var req struct {
		FilePath string `json:"file_path" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondValidationError(c, err)
		return
	}
	blocks, err := uh.docGenService.GenerateTextBlocks(c.Request.Context(), req.FilePath)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"blocks": blocks})
}
