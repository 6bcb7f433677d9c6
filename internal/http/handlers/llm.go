package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/notebook-buddy/backend/internal/http/response"
	"github.com/notebook-buddy/backend/internal/services"
)

type LLMHandler struct {
	llmService services.LLMService
}

func NewLLMHandler(llmService services.LLMService) *LLMHandler {
	return &LLMHandler{llmService: llmService}
}

func (lh *LLMHandler) GPTChat(c *gin.Context) {
	var req services.GPTChatParams
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondValidationError(c, err)
		return
	}
	resp, err := lh.llmService.GPTChat(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, resp)
}

func (lh *LLMHandler) ClaudeMessage(c *gin.Context) {
	var req services.ClaudeMessageParams
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondValidationError(c, err)
		return
	}
	result, err := lh.llmService.ClaudeMessage(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, result)
}
