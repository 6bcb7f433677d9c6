package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/notebook-buddy/backend/internal/http/response"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (hh *HealthHandler) HealthCheck(c *gin.Context) {
	response.RespondOK(c, gin.H{"healthy": true})
}

func (hh *HealthHandler) Root(c *gin.Context) {
	c.JSON(200, gin.H{"message": "Welcome to the Notebook Buddy API"})
}

func (hh *HealthHandler) Test(c *gin.Context) {
	response.RespondOK(c, gin.H{"timestamp": time.Now().Format(time.RFC3339)})
}
