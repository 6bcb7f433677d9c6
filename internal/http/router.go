package http

import (
	"github.com/gin-gonic/gin"

	"github.com/notebook-buddy/backend/internal/clients/redis"
	httpH "github.com/notebook-buddy/backend/internal/http/handlers"
	httpMW "github.com/notebook-buddy/backend/internal/http/middleware"
	"github.com/notebook-buddy/backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AllowedOrigins []string
	RateLimiter    redis.Limiter

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware

	ProjectHandler   *httpH.ProjectHandler
	TextBlockHandler *httpH.TextBlockHandler
	PineconeHandler  *httpH.PineconeHandler
	LLMHandler       *httpH.LLMHandler
	AssistantHandler *httpH.AssistantHandler
	UploadHandler    *httpH.UploadHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/", cfg.HealthHandler.Root)
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/test", cfg.HealthHandler.Test)
	}

	// Auth (public)
	if cfg.AuthHandler != nil {
		auth := r.Group("/auth")
		auth.POST("/register", cfg.AuthHandler.Register)
		auth.POST("/create-user", cfg.AuthHandler.Register)
		auth.POST("/login", cfg.AuthHandler.Login)
		auth.POST("/create-demo-user",
			httpMW.RateLimit(cfg.Log, cfg.RateLimiter),
			cfg.AuthHandler.CreateDemoUser)
	}

	protected := r.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Projects
		if cfg.ProjectHandler != nil {
			protected.POST("/projects/create", cfg.ProjectHandler.Create)
			protected.POST("/projects/update", cfg.ProjectHandler.Update)
			protected.GET("/projects/:user_id", cfg.ProjectHandler.ListByUser)
		}

		// Text blocks
		if cfg.TextBlockHandler != nil {
			protected.GET("/text-blocks/:project_id", cfg.TextBlockHandler.List)
			protected.PUT("/text-blocks/:project_id", cfg.TextBlockHandler.Save)
			protected.DELETE("/text-blocks/:project_id/:block_id", cfg.TextBlockHandler.Delete)
		}

		// LLM proxy
		if cfg.LLMHandler != nil {
			protected.POST("/llm/gpt/chat", cfg.LLMHandler.GPTChat)
			protected.POST("/llm/claude/message", cfg.LLMHandler.ClaudeMessage)
		}

		// Vector indexes and records
		if cfg.PineconeHandler != nil {
			protected.POST("/pinecone/indexes", cfg.PineconeHandler.CreateIndex)
			protected.POST("/pinecone/indexes/with-embedding", cfg.PineconeHandler.CreateIndexWithEmbedding)
			protected.GET("/pinecone/indexes", cfg.PineconeHandler.ListIndexes)
			protected.GET("/pinecone/indexes/:index_name", cfg.PineconeHandler.DescribeIndex)
			protected.DELETE("/pinecone/indexes/:index_name", cfg.PineconeHandler.DeleteIndex)
			protected.GET("/pinecone/indexes/:index_name/stats", cfg.PineconeHandler.IndexStats)
			protected.POST("/pinecone/indexes/:index_name/upsert-vectors", cfg.PineconeHandler.UpsertVectors)
			protected.POST("/pinecone/indexes/:index_name/query", cfg.PineconeHandler.QueryVectors)
			protected.POST("/pinecone/indexes/:index_name/records", cfg.PineconeHandler.UpsertRecords)
			protected.GET("/pinecone/indexes/:index_name/records", cfg.PineconeHandler.ListRecords)
			protected.POST("/pinecone/indexes/:index_name/search", cfg.PineconeHandler.SearchRecords)
			protected.DELETE("/pinecone/indexes/:index_name/records", cfg.PineconeHandler.DeleteRecords)
		}

		// Assistants and vector stores
		if cfg.AssistantHandler != nil {
			protected.POST("/assistants", cfg.AssistantHandler.CreateAssistant)
			protected.GET("/assistants", cfg.AssistantHandler.ListAssistants)
			protected.GET("/assistants/:assistant_id", cfg.AssistantHandler.GetAssistant)
			protected.POST("/vector-stores", cfg.AssistantHandler.CreateVectorStore)
			protected.POST("/vector-stores/:vector_store_id/files", cfg.AssistantHandler.AddVectorStoreFiles)
			protected.GET("/vector-stores/:vector_store_id", cfg.AssistantHandler.GetVectorStore)
		}

		// PDF pipeline
		if cfg.UploadHandler != nil {
			protected.POST("/upload", cfg.UploadHandler.Upload)
			protected.POST("/generate-text-blocks", cfg.UploadHandler.GenerateTextBlocks)
		}
	}

	return r
}
