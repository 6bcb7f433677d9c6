package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/notebook-buddy/backend/internal/clients/anthropic"
	"github.com/notebook-buddy/backend/internal/clients/openai"
	"github.com/notebook-buddy/backend/internal/platform/apierr"
	"github.com/notebook-buddy/backend/internal/platform/logger"
)

type GPTChatParams struct {
	Messages      []openai.ChatMessage `json:"messages" binding:"required"`
	Model         string               `json:"model"`
	Temperature   *float64             `json:"temperature"`
	MaxTokens     *int                 `json:"max_tokens"`
	TopP          *float64             `json:"top_p"`
	Stream        bool                 `json:"stream"`
	SystemMessage string               `json:"system_message"`
}

type ClaudeMessageParams struct {
	Messages    []anthropic.Message `json:"messages" binding:"required"`
	System      string              `json:"system"`
	MaxTokens   int                 `json:"max_tokens"`
	Temperature *float64            `json:"temperature"`
	TopP        *float64            `json:"top_p"`
	Metadata    map[string]string   `json:"metadata"`
}

type ClaudeMessageResult struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Role    string `json:"role"`
}

// LLMService is a thin proxy over the chat providers; it validates, applies
// defaults, and forwards.
type LLMService interface {
	GPTChat(ctx context.Context, params GPTChatParams) (*openai.ChatResponse, error)
	ClaudeMessage(ctx context.Context, params ClaudeMessageParams) (*ClaudeMessageResult, error)
}

type llmService struct {
	log       *logger.Logger
	openai    openai.Client
	anthropic anthropic.Client
}

func NewLLMService(log *logger.Logger, openaiClient openai.Client, anthropicClient anthropic.Client) (LLMService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &llmService{
		log:       log.With("service", "LLMService"),
		openai:    openaiClient,
		anthropic: anthropicClient,
	}, nil
}

func (s *llmService) GPTChat(ctx context.Context, params GPTChatParams) (*openai.ChatResponse, error) {
	if s.openai == nil {
		return nil, apierr.Upstream(errors.New("OpenAI is not configured"))
	}
	if len(params.Messages) == 0 {
		return nil, apierr.Validation("messages required")
	}
	if params.Stream {
		return nil, apierr.NotImplemented("streaming responses are not proxied")
	}

	messages := params.Messages
	if params.SystemMessage != "" {
		messages = append([]openai.ChatMessage{{Role: "system", Content: params.SystemMessage}}, messages...)
	}

	resp, err := s.openai.ChatCompletion(ctx, openai.ChatRequest{
		Model:       params.Model,
		Messages:    messages,
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
		TopP:        params.TopP,
	})
	if err != nil {
		return nil, s.upstream(ctx, "openai", err)
	}
	return resp, nil
}

func (s *llmService) ClaudeMessage(ctx context.Context, params ClaudeMessageParams) (*ClaudeMessageResult, error) {
	if s.anthropic == nil {
		return nil, apierr.Upstream(errors.New("Anthropic is not configured"))
	}
	if len(params.Messages) == 0 {
		return nil, apierr.Validation("messages required")
	}

	resp, err := s.anthropic.CreateMessage(ctx, anthropic.MessagesRequest{
		Messages:    params.Messages,
		System:      params.System,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		TopP:        params.TopP,
		Metadata:    params.Metadata,
	})
	if err != nil {
		return nil, s.upstream(ctx, "anthropic", err)
	}
	return &ClaudeMessageResult{
		Content: resp.Text(),
		Model:   resp.Model,
		Role:    resp.Role,
	}, nil
}

func (s *llmService) upstream(ctx context.Context, provider string, err error) *apierr.Error {
	if ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apierr.UpstreamTimeout(err)
	}
	s.log.Error("LLM provider call failed", "provider", provider, "error", err)
	return apierr.Upstream(err)
}
