package app

import (
	httpH "github.com/notebook-buddy/backend/internal/http/handlers"
	"github.com/notebook-buddy/backend/internal/platform/logger"
)

type Handlers struct {
	Health    *httpH.HealthHandler
	Auth      *httpH.AuthHandler
	Project   *httpH.ProjectHandler
	TextBlock *httpH.TextBlockHandler
	Pinecone  *httpH.PineconeHandler
	LLM       *httpH.LLMHandler
	Assistant *httpH.AssistantHandler
	Upload    *httpH.UploadHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	h := Handlers{
		Health:    httpH.NewHealthHandler(),
		Auth:      httpH.NewAuthHandler(services.Auth),
		Project:   httpH.NewProjectHandler(services.Project),
		TextBlock: httpH.NewTextBlockHandler(services.TextBlock),
		LLM:       httpH.NewLLMHandler(services.LLM),
		Assistant: httpH.NewAssistantHandler(services.Assistant),
		Upload:    httpH.NewUploadHandler(services.Upload, services.DocGen),
	}
	if services.Vector != nil && services.IndexAdmin != nil {
		h.Pinecone = httpH.NewPineconeHandler(services.IndexAdmin, services.Vector)
	}
	return h
}
