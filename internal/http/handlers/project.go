package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/notebook-buddy/backend/internal/http/response"
	"github.com/notebook-buddy/backend/internal/platform/apierr"
	"github.com/notebook-buddy/backend/internal/services"
)

type ProjectHandler struct {
	projectService services.ProjectService
}

func NewProjectHandler(projectService services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

type projectRequest struct {
	UserID string              `json:"userId" binding:"required"`
	Canvas services.CanvasData `json:"canvas" binding:"required"`
}

func (ph *ProjectHandler) Create(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondValidationError(c, err)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.RespondError(c, apierr.Validation("invalid userId"))
		return
	}
	project, assistant, err := ph.projectService.CreateProject(c.Request.Context(), userID, req.Canvas)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"project": project, "assistant": assistant})
}

// Update is a full overwrite of the project record. Concurrent writers
// clobber each other field-by-field; the last save wins.
func (ph *ProjectHandler) Update(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondValidationError(c, err)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.RespondError(c, apierr.Validation("invalid userId"))
		return
	}
	project, err := ph.projectService.UpdateProject(c.Request.Context(), userID, req.Canvas)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"project": project})
}

func (ph *ProjectHandler) ListByUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		response.RespondError(c, apierr.Validation("invalid user id"))
		return
	}
	projects, degraded, err := ph.projectService.GetUserProjects(c.Request.Context(), userID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if degraded {
		response.RespondOKWithWarnings(c, projects, []string{"served from full-scan fallback"})
		return
	}
	response.RespondOK(c, projects)
}
