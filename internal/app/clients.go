package app

import (
	"fmt"

	"github.com/notebook-buddy/backend/internal/clients/anthropic"
	"github.com/notebook-buddy/backend/internal/clients/openai"
	"github.com/notebook-buddy/backend/internal/clients/pinecone"
	"github.com/notebook-buddy/backend/internal/clients/redis"
	"github.com/notebook-buddy/backend/internal/platform/logger"
)

// Clients holds the outbound vendor clients. Any of them may be nil when
// the matching credential is absent; dependent services degrade or reject
// instead of failing startup.
type Clients struct {
	OpenAI      openai.Client
	Anthropic   anthropic.Client
	Pinecone    pinecone.Client
	RateLimiter redis.Limiter
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var clients Clients

	if cfg.OpenAIAPIKey != "" {
		c, err := openai.New(log, openai.Config{
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.OpenAIModel,
			EmbedModel: cfg.EmbedModel,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init openai client: %w", err)
		}
		clients.OpenAI = c
	} else {
		log.Warn("OPENAI_API_KEY not set; embeddings will use placeholders and assistant features are disabled")
	}

	if cfg.AnthropicAPIKey != "" {
		c, err := anthropic.New(log, anthropic.Config{
			APIKey: cfg.AnthropicAPIKey,
			Model:  cfg.AnthropicModel,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init anthropic client: %w", err)
		}
		clients.Anthropic = c
	} else {
		log.Warn("ANTHROPIC_API_KEY not set; Claude proxying is disabled")
	}

	if cfg.PineconeAPIKey != "" {
		c, err := pinecone.New(log, pinecone.Config{
			APIKey:  cfg.PineconeAPIKey,
			BaseURL: cfg.PineconeBaseURL,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init pinecone client: %w", err)
		}
		clients.Pinecone = c
	} else {
		log.Warn("PINECONE_API_KEY not set; vector endpoints are disabled")
	}

	if cfg.RedisAddr != "" {
		limiter, err := redis.NewLimiter(log, redis.LimiterConfig{
			Addr:   cfg.RedisAddr,
			Limit:  cfg.RateLimit,
			Window: cfg.RateLimitWindow,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis limiter: %w", err)
		}
		clients.RateLimiter = limiter
	}

	return clients, nil
}
