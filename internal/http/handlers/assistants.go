package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/notebook-buddy/backend/internal/http/response"
	"github.com/notebook-buddy/backend/internal/services"
)

// AssistantHandler proxies the provider's assistants and vector stores APIs.
type AssistantHandler struct {
	assistantService services.AssistantService
}

func NewAssistantHandler(assistantService services.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistantService: assistantService}
}

func (ah *AssistantHandler) CreateAssistant(c *gin.Context) {
	var req services.AssistantParams
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondValidationError(c, err)
		return
	}
	assistant, err := ah.assistantService.CreateAssistant(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, assistant)
}

func (ah *AssistantHandler) ListAssistants(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	order := c.DefaultQuery("order", "desc")
	assistants, err := ah.assistantService.ListAssistants(c.Request.Context(), limit, order)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, assistants)
}

func (ah *AssistantHandler) GetAssistant(c *gin.Context) {
	assistant, err := ah.assistantService.GetAssistant(c.Request.Context(), c.Param("assistant_id"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, assistant)
}

func (ah *AssistantHandler) CreateVectorStore(c *gin.Context) {
	var req struct {
		Name    string   `json:"name" binding:"required"`
		FileIDs []string `json:"file_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondValidationError(c, err)
		return
	}
	store, err := ah.assistantService.CreateVectorStore(c.Request.Context(), req.Name, req.FileIDs)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, store)
}

func (ah *AssistantHandler) AddVectorStoreFiles(c *gin.Context) {
	var req struct {
		FileIDs []string `json:"file_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondValidationError(c, err)
		return
	}
	files, err := ah.assistantService.AddVectorStoreFiles(c.Request.Context(), c.Param("vector_store_id"), req.FileIDs)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"files": files})
}

func (ah *AssistantHandler) GetVectorStore(c *gin.Context) {
	store, err := ah.assistantService.GetVectorStore(c.Request.Context(), c.Param("vector_store_id"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, store)
}
