package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/notebook-buddy/backend/internal/http/response"
	"github.com/notebook-buddy/backend/internal/services"
)

type TextBlockHandler struct {
	blockService services.TextBlockService
}

func NewTextBlockHandler(blockService services.TextBlockService) *TextBlockHandler {
	return &TextBlockHandler{blockService: blockService}
}

// Save persists a submitted batch. Blocks without an explicit order take
// their position in the batch; the response comes back sorted ascending.
func (th *TextBlockHandler) Save(c *gin.Context) {
	var req struct {
		Blocks []services.BlockInput `json:"blocks" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondValidationError(c, err)
		return
	}
	blocks, err := th.blockService.SaveBlocks(c.Request.Context(), c.Param("project_id"), req.Blocks)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"blocks": blocks})
}

func (th *TextBlockHandler) List(c *gin.Context) {
	blocks, err := th.blockService.GetBlocks(c.Request.Context(), c.Param("project_id"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"blocks": blocks})
}

// Delete succeeds whether or not the block exists.
func (th *TextBlockHandler) Delete(c *gin.Context) {
	if err := th.blockService.DeleteBlock(c.Request.Context(), c.Param("project_id"), c.Param("block_id")); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}
