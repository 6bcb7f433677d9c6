package app

import (
	"github.com/gin-gonic/gin"

	internalhttp "github.com/notebook-buddy/backend/internal/http"
	"github.com/notebook-buddy/backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, clients Clients) *gin.Engine {
	return internalhttp.NewRouter(internalhttp.RouterConfig{
		Log:            log,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimiter:    clients.RateLimiter,

		AuthHandler:    handlers.Auth,
		AuthMiddleware: middleware.Auth,

		ProjectHandler:   handlers.Project,
		TextBlockHandler: handlers.TextBlock,
		PineconeHandler:  handlers.Pinecone,
		LLMHandler:       handlers.LLM,
		AssistantHandler: handlers.Assistant,
		UploadHandler:    handlers.Upload,

		HealthHandler: handlers.Health,
	})
}
