package services

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/notebook-buddy/backend/internal/clients/openai"
	"github.com/notebook-buddy/backend/internal/platform/apierr"
	"github.com/notebook-buddy/backend/internal/platform/logger"
)

// EmbeddingService produces fixed-dimension vectors for text. When no
// provider is configured, or the provider call fails, it degrades to a
// random placeholder vector so the pipeline keeps working; the degraded
// flag lets callers surface a warning to the client.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) (vec []float32, degraded bool, err error)
	Dimension() int
}

type embeddingService struct {
	log    *logger.Logger
	openai openai.Client // nil when no API key is configured
	dim    int
}

func NewEmbeddingService(log *logger.Logger, openaiClient openai.Client, dimension int) (EmbeddingService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if dimension <= 0 {
		dimension = 3072
	}
	return &embeddingService{
		log:    log.With("service", "EmbeddingService"),
		openai: openaiClient,
		dim:    dimension,
	}, nil
}

func (s *embeddingService) Dimension() int { return s.dim }

func (s *embeddingService) Embed(ctx context.Context, text string) ([]float32, bool, error) {
	if s.openai == nil {
		s.log.Warn("No embedding provider configured; using placeholder vector", "dimension", s.dim)
		return s.placeholder(), true, nil
	}

	vecs, err := s.openai.Embed(ctx, []string{text}, s.dim)
	if err != nil {
		if ctx != nil && ctx.Err() != nil {
			return nil, false, apierr.UpstreamTimeout(err)
		}
		s.log.Warn("Embedding provider failed; using placeholder vector", "error", err)
		return s.placeholder(), true, nil
	}
	if len(vecs) != 1 || len(vecs[0]) != s.dim {
		s.log.Warn("Embedding provider returned unexpected shape; using placeholder vector",
			"returned", len(vecs))
		return s.placeholder(), true, nil
	}
	return vecs[0], false, nil
}

// placeholder samples each component uniformly from [-1, 1). The values are
// deliberately not reproducible: placeholder vectors carry no meaning and
// must never look like real embeddings across runs.
func (s *embeddingService) placeholder() []float32 {
	vec := make([]float32, s.dim)
	for i := range vec {
		vec[i] = rand.Float32()*2 - 1
	}
	return vec
}
