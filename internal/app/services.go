package app

import (
	"fmt"

	"github.com/notebook-buddy/backend/internal/platform/logger"
	"github.com/notebook-buddy/backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	Project    services.ProjectService
	TextBlock  services.TextBlockService
	Embedding  services.EmbeddingService
	Vector     services.VectorService
	IndexAdmin services.IndexAdminService
	LLM        services.LLMService
	Assistant  services.AssistantService
	Upload     services.UploadService
	DocGen     services.DocGenService
}

func wireServices(log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	auth, err := services.NewAuthService(log, repos.User, services.AuthConfig{
		JWTSecret: cfg.JWTSecret,
		AccessTTL: cfg.AccessTTL,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init auth service: %w", err)
	}

	project, err := services.NewProjectService(log, repos.Project, clients.OpenAI)
	if err != nil {
		return Services{}, fmt.Errorf("init project service: %w", err)
	}

	textBlock, err := services.NewTextBlockService(log, repos.Block)
	if err != nil {
		return Services{}, fmt.Errorf("init text block service: %w", err)
	}

	embedding, err := services.NewEmbeddingService(log, clients.OpenAI, cfg.EmbedDimension)
	if err != nil {
		return Services{}, fmt.Errorf("init embedding service: %w", err)
	}

	var (
		vector     services.VectorService
		indexAdmin services.IndexAdminService
	)
	if clients.Pinecone != nil {
		vector, err = services.NewVectorService(log, clients.Pinecone, embedding)
		if err != nil {
			return Services{}, fmt.Errorf("init vector service: %w", err)
		}
		indexAdmin, err = services.NewIndexAdminService(log, clients.Pinecone)
		if err != nil {
			return Services{}, fmt.Errorf("init index admin service: %w", err)
		}
	}

	llm, err := services.NewLLMService(log, clients.OpenAI, clients.Anthropic)
	if err != nil {
		return Services{}, fmt.Errorf("init llm service: %w", err)
	}

	assistant, err := services.NewAssistantService(log, clients.OpenAI)
	if err != nil {
		return Services{}, fmt.Errorf("init assistant service: %w", err)
	}

	upload, err := services.NewUploadService(log, cfg.UploadDir)
	if err != nil {
		return Services{}, fmt.Errorf("init upload service: %w", err)
	}

	docGen, err := services.NewDocGenService(log, clients.OpenAI)
	if err != nil {
		return Services{}, fmt.Errorf("init docgen service: %w", err)
	}

	return Services{
		Auth:       auth,
		Project:    project,
		TextBlock:  textBlock,
		Embedding:  embedding,
		Vector:     vector,
		IndexAdmin: indexAdmin,
		LLM:        llm,
		Assistant:  assistant,
		Upload:     upload,
		DocGen:     docGen,
	}, nil
}
