package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/notebook-buddy/backend/internal/clients/openai"
	"github.com/notebook-buddy/backend/internal/platform/apierr"
	"github.com/notebook-buddy/backend/internal/platform/logger"
)

type AssistantParams struct {
	Model        string            `json:"model"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Instructions string            `json:"instructions"`
	Tools        []map[string]any  `json:"tools"`
	ToolChoice   any               `json:"tool_choice"`
	Metadata     map[string]string `json:"metadata"`
	Temperature  *float64          `json:"temperature"`
	TopP         *float64          `json:"top_p"`
}

// AssistantService proxies the provider's assistants and vector stores APIs.
type AssistantService interface {
	CreateAssistant(ctx context.Context, params AssistantParams) (map[string]any, error)
	ListAssistants(ctx context.Context, limit int, order string) (map[string]any, error)
	GetAssistant(ctx context.Context, assistantID string) (map[string]any, error)

	CreateVectorStore(ctx context.Context, name string, fileIDs []string) (map[string]any, error)
	AddVectorStoreFiles(ctx context.Context, vectorStoreID string, fileIDs []string) ([]map[string]any, error)
	GetVectorStore(ctx context.Context, vectorStoreID string) (map[string]any, error)
}

type assistantService struct {
	log    *logger.Logger
	openai openai.Client
}

func NewAssistantService(log *logger.Logger, openaiClient openai.Client) (AssistantService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &assistantService{
		log:    log.With("service", "AssistantService"),
		openai: openaiClient,
	}, nil
}

func (s *assistantService) ready() error {
	if s.openai == nil {
		return apierr.Upstream(errors.New("OpenAI is not configured"))
	}
	return nil
}

func (s *assistantService) CreateAssistant(ctx context.Context, params AssistantParams) (map[string]any, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	out, err := s.openai.CreateAssistant(ctx, openai.AssistantOptions{
		Model:        params.Model,
		Name:         params.Name,
		Description:  params.Description,
		Instructions: params.Instructions,
		Tools:        params.Tools,
		ToolChoice:   params.ToolChoice,
		Metadata:     params.Metadata,
		Temperature:  params.Temperature,
		TopP:         params.TopP,
	})
	if err != nil {
		return nil, apierr.Upstream(err)
	}
	return out, nil
}

func (s *assistantService) ListAssistants(ctx context.Context, limit int, order string) (map[string]any, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	out, err := s.openai.ListAssistants(ctx, limit, order)
	if err != nil {
		return nil, apierr.Upstream(err)
	}
	return out, nil
}

func (s *assistantService) GetAssistant(ctx context.Context, assistantID string) (map[string]any, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(assistantID) == "" {
		return nil, apierr.Validation("assistant id required")
	}
	out, err := s.openai.GetAssistant(ctx, assistantID)
	if err != nil {
		return nil, apierr.Upstream(err)
	}
	return out, nil
}

func (s *assistantService) CreateVectorStore(ctx context.Context, name string, fileIDs []string) (map[string]any, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	out, err := s.openai.CreateVectorStore(ctx, name, fileIDs)
	if err != nil {
		return nil, apierr.Upstream(err)
	}
	return out, nil
}

func (s *assistantService) AddVectorStoreFiles(ctx context.Context, vectorStoreID string, fileIDs []string) ([]map[string]any, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(vectorStoreID) == "" {
		return nil, apierr.Validation("vector store id required")
	}
	if len(fileIDs) == 0 {
		return nil, apierr.Validation("file ids required")
	}
	out, err := s.openai.AddVectorStoreFiles(ctx, vectorStoreID, fileIDs)
	if err != nil {
		return nil, apierr.Upstream(err)
	}
	return out, nil
}

func (s *assistantService) GetVectorStore(ctx context.Context, vectorStoreID string) (map[string]any, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(vectorStoreID) == "" {
		return nil, apierr.Validation("vector store id required")
	}
	out, err := s.openai.GetVectorStore(ctx, vectorStoreID)
	if err != nil {
		return nil, apierr.Upstream(err)
	}
	return out, nil
}
