package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/notebook-buddy/backend/internal/clients/pinecone"
	"github.com/notebook-buddy/backend/internal/platform/apierr"
	"github.com/notebook-buddy/backend/internal/platform/logger"
)

type CreateIndexParams struct {
	Name          string `json:"name" binding:"required"`
	Dimension     int    `json:"dimension" binding:"required"`
	Metric        string `json:"metric"`
	CloudProvider string `json:"cloud_provider"`
	Region        string `json:"region"`
}

type CreateIndexWithEmbeddingParams struct {
	Name          string            `json:"name" binding:"required"`
	EmbedModel    string            `json:"embed_model"`
	FieldMap      map[string]string `json:"field_map"`
	CloudProvider string            `json:"cloud_provider"`
	Region        string            `json:"region"`
}

// IndexAdminService manages vector indexes through the control plane.
type IndexAdminService interface {
	CreateIndex(ctx context.Context, params CreateIndexParams) (*pinecone.IndexDescription, error)
	// CreateIndexWithEmbedding provisions an index whose embedding runs on
	// the vendor's hosted model, so records can be written without local
	// embedding.
	CreateIndexWithEmbedding(ctx context.Context, params CreateIndexWithEmbeddingParams) (*pinecone.IndexDescription, error)
	ListIndexes(ctx context.Context) ([]pinecone.IndexDescription, error)
	DescribeIndex(ctx context.Context, indexName string) (*pinecone.IndexDescription, error)
	DeleteIndex(ctx context.Context, indexName string) error
	IndexStats(ctx context.Context, indexName string) (*pinecone.IndexStats, error)
}

type indexAdminService struct {
	log      *logger.Logger
	pinecone pinecone.Client
}

func NewIndexAdminService(log *logger.Logger, pineconeClient pinecone.Client) (IndexAdminService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if pineconeClient == nil {
		return nil, fmt.Errorf("pinecone client required")
	}
	return &indexAdminService{
		log:      log.With("service", "IndexAdminService"),
		pinecone: pineconeClient,
	}, nil
}

func (s *indexAdminService) CreateIndex(ctx context.Context, params CreateIndexParams) (*pinecone.IndexDescription, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, apierr.Validation("index name required")
	}
	if params.Dimension <= 0 {
		return nil, apierr.Validation("dimension must be positive")
	}

	req := pinecone.CreateIndexRequest{
		Name:      params.Name,
		Dimension: params.Dimension,
		Metric:    params.Metric,
	}
	req.Spec.Serverless.Cloud = params.CloudProvider
	req.Spec.Serverless.Region = params.Region

	desc, err := s.pinecone.CreateIndex(ctx, req)
	if err != nil {
		return nil, apierr.Upstream(err)
	}
	s.log.Info("Index created", "index", desc.Name, "dimension", desc.Dimension)
	return desc, nil
}

func (s *indexAdminService) CreateIndexWithEmbedding(ctx context.Context, params CreateIndexWithEmbeddingParams) (*pinecone.IndexDescription, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, apierr.Validation("index name required")
	}

	req := pinecone.CreateIndexForModelRequest{
		Name:   params.Name,
		Cloud:  params.CloudProvider,
		Region: params.Region,
	}
	req.Embed.Model = params.EmbedModel
	req.Embed.FieldMap = params.FieldMap

	desc, err := s.pinecone.CreateIndexForModel(ctx, req)
	if err != nil {
		return nil, apierr.Upstream(err)
	}
	s.log.Info("Index created with integrated embedding", "index", desc.Name)
	return desc, nil
}

func (s *indexAdminService) ListIndexes(ctx context.Context) ([]pinecone.IndexDescription, error) {
	indexes, err := s.pinecone.ListIndexes(ctx)
	if err != nil {
		return nil, apierr.Upstream(err)
	}
	return indexes, nil
}

func (s *indexAdminService) DescribeIndex(ctx context.Context, indexName string) (*pinecone.IndexDescription, error) {
	if strings.TrimSpace(indexName) == "" {
		return nil, apierr.Validation("index name required")
	}
	desc, err := s.pinecone.DescribeIndex(ctx, indexName)
	if err != nil {
		if pinecone.IsNotFound(err) {
			return nil, apierr.NotFound("index %s not found", indexName)
		}
		return nil, apierr.Upstream(err)
	}
	return desc, nil
}

func (s *indexAdminService) DeleteIndex(ctx context.Context, indexName string) error {
	if strings.TrimSpace(indexName) == "" {
		return apierr.Validation("index name required")
	}
	if err := s.pinecone.DeleteIndex(ctx, indexName); err != nil {
		if pinecone.IsNotFound(err) {
			return apierr.NotFound("index %s not found", indexName)
		}
		return apierr.Upstream(err)
	}
	s.log.Info("Index deleted", "index", indexName)
	return nil
}

func (s *indexAdminService) IndexStats(ctx context.Context, indexName string) (*pinecone.IndexStats, error) {
	if strings.TrimSpace(indexName) == "" {
		return nil, apierr.Validation("index name required")
	}
	stats, err := s.pinecone.DescribeIndexStats(ctx, indexName)
	if err != nil {
		if pinecone.IsNotFound(err) {
			return nil, apierr.NotFound("index %s not found", indexName)
		}
		return nil, apierr.Upstream(err)
	}
	return stats, nil
}
