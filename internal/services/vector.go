package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/notebook-buddy/backend/internal/clients/pinecone"
	"github.com/notebook-buddy/backend/internal/platform/apierr"
	"github.com/notebook-buddy/backend/internal/platform/ctxutil"
	"github.com/notebook-buddy/backend/internal/platform/logger"
)

// tenantField is the metadata key that scopes every vector to its owner.
const tenantField = "userId"

const embedConcurrency = 4

type VectorRecord struct {
	ID       string         `json:"_id"`
	Content  string         `json:"content"`
	Title    string         `json:"title,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type UpsertResult struct {
	UpsertedCount int64    `json:"upserted_count"`
	Warnings      []string `json:"-"`
}

// RawVector is a pre-embedded vector supplied by the caller, bypassing the
// embedding pipeline.
type RawVector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type QueryParams struct {
	Vector    []float32
	TopK      int
	Namespace string
	// ExcludeMetadata strips metadata from the returned matches. The tenant
	// filter always runs on the index-side metadata first.
	ExcludeMetadata bool
}

// StoredRecord is a vector as it sits in the index, without its values.
type StoredRecord struct {
	ID       string         `json:"id"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type SearchParams struct {
	Query     string
	TopK      int
	Namespace string
	Rerank    bool
	// IDs, when non-empty, restricts matches to this explicit allow-list.
	IDs []string
}

type SearchMatch struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type VectorService interface {
	// UpsertRecords validates the whole batch, embeds each record's content,
	// and writes the vectors in one call. Nothing is persisted when any
	// record fails validation.
	UpsertRecords(ctx context.Context, indexName, namespace string, records []VectorRecord) (*UpsertResult, error)
	// UpsertVectors writes caller-supplied vectors as-is, stamping each one
	// with the authenticated tenant.
	UpsertVectors(ctx context.Context, indexName, namespace string, vectors []RawVector) (*UpsertResult, error)
	// SearchRecords embeds the query and returns matches owned by the
	// authenticated caller. Matches belonging to other tenants never leave
	// this method.
	SearchRecords(ctx context.Context, indexName string, params SearchParams) ([]SearchMatch, []string, error)
	// QueryVectors runs a similarity query with a pre-computed vector,
	// tenant-filtered the same way as SearchRecords.
	QueryVectors(ctx context.Context, indexName string, params QueryParams) ([]SearchMatch, error)
	// ListRecords enumerates the caller's stored records in a namespace
	// without a similarity query.
	ListRecords(ctx context.Context, indexName, namespace string, limit int) ([]StoredRecord, error)
	// DeleteRecords removes the listed ids the caller owns and reports how
	// many were deleted. Ids owned by other tenants are left untouched.
	DeleteRecords(ctx context.Context, indexName, namespace string, ids []string) (int, error)
}

type vectorService struct {
	log       *logger.Logger
	pinecone  pinecone.Client
	embedding EmbeddingService
}

func NewVectorService(log *logger.Logger, pineconeClient pinecone.Client, embedding EmbeddingService) (VectorService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if pineconeClient == nil {
		return nil, fmt.Errorf("pinecone client required")
	}
	if embedding == nil {
		return nil, fmt.Errorf("embedding service required")
	}
	return &vectorService{
		log:       log.With("service", "VectorService"),
		pinecone:  pineconeClient,
		embedding: embedding,
	}, nil
}

func (s *vectorService) UpsertRecords(ctx context.Context, indexName, namespace string, records []VectorRecord) (*UpsertResult, error) {
	indexName = strings.TrimSpace(indexName)
	if indexName == "" {
		return nil, apierr.Validation("index name required")
	}
	if len(records) == 0 {
		return nil, apierr.Validation("records required")
	}
	// All-or-nothing: reject the whole batch before anything embeds or persists.
	for i, r := range records {
		if strings.TrimSpace(r.ID) == "" {
			return nil, apierr.Validation("record at position %d missing _id", i)
		}
		if strings.TrimSpace(r.Content) == "" {
			return nil, apierr.Validation("record at position %d missing content", i)
		}
	}

	tenant := tenantFromContext(ctx)
	if tenant == "" {
		return nil, apierr.Auth("authenticated identity required")
	}

	vectors := make([]pinecone.Vector, len(records))
	degradedCount := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	results := make([]struct {
		vec      []float32
		degraded bool
	}, len(records))
	for i := range records {
		i := i
		g.Go(func() error {
			vec, degraded, err := s.embedding.Embed(gctx, records[i].Content)
			if err != nil {
				return err
			}
			results[i].vec = vec
			results[i].degraded = degraded
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apierr.From(err)
	}

	for i, r := range records {
		metadata := map[string]any{
			"content":   r.Content,
			tenantField: tenant,
		}
		if strings.TrimSpace(r.Title) != "" {
			metadata["title"] = r.Title
		}
		for k, v := range r.Metadata {
			if k == tenantField {
				continue
			}
			metadata[k] = v
		}
		vectors[i] = pinecone.Vector{
			ID:       r.ID,
			Values:   results[i].vec,
			Metadata: metadata,
		}
		if results[i].degraded {
			degradedCount++
		}
	}

	resp, err := s.pinecone.UpsertVectors(ctx, indexName, pinecone.UpsertRequest{
		Vectors:   vectors,
		Namespace: namespace,
	})
	if err != nil {
		return nil, s.upstream(indexName, err)
	}

	result := &UpsertResult{UpsertedCount: resp.UpsertedCount}
	if degradedCount > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d of %d records embedded with placeholder vectors", degradedCount, len(records)))
	}
	return result, nil
}

func (s *vectorService) UpsertVectors(ctx context.Context, indexName, namespace string, vectors []RawVector) (*UpsertResult, error) {
	indexName = strings.TrimSpace(indexName)
	if indexName == "" {
		return nil, apierr.Validation("index name required")
	}
	if len(vectors) == 0 {
		return nil, apierr.Validation("vectors required")
	}
	for i, v := range vectors {
		if strings.TrimSpace(v.ID) == "" {
			return nil, apierr.Validation("vector at position %d missing id", i)
		}
		if len(v.Values) == 0 {
			return nil, apierr.Validation("vector at position %d missing values", i)
		}
	}

	tenant := tenantFromContext(ctx)
	if tenant == "" {
		return nil, apierr.Auth("authenticated identity required")
	}

	out := make([]pinecone.Vector, len(vectors))
	for i, v := range vectors {
		metadata := map[string]any{tenantField: tenant}
		for k, val := range v.Metadata {
			if k == tenantField {
				continue
			}
			metadata[k] = val
		}
		out[i] = pinecone.Vector{ID: v.ID, Values: v.Values, Metadata: metadata}
	}

	resp, err := s.pinecone.UpsertVectors(ctx, indexName, pinecone.UpsertRequest{
		Vectors:   out,
		Namespace: namespace,
	})
	if err != nil {
		return nil, s.upstream(indexName, err)
	}
	return &UpsertResult{UpsertedCount: resp.UpsertedCount}, nil
}

func (s *vectorService) SearchRecords(ctx context.Context, indexName string, params SearchParams) ([]SearchMatch, []string, error) {
	indexName = strings.TrimSpace(indexName)
	if indexName == "" {
		return nil, nil, apierr.Validation("index name required")
	}
	if strings.TrimSpace(params.Query) == "" {
		return nil, nil, apierr.Validation("text query required")
	}
	if params.Rerank {
		return nil, nil, apierr.NotImplemented("rerank is not supported")
	}
	if params.TopK <= 0 {
		params.TopK = 10
	}

	tenant := tenantFromContext(ctx)
	if tenant == "" {
		return nil, nil, apierr.Auth("authenticated identity required")
	}

	vec, degraded, err := s.embedding.Embed(ctx, params.Query)
	if err != nil {
		return nil, nil, apierr.From(err)
	}

	resp, err := s.pinecone.Query(ctx, indexName, pinecone.QueryRequest{
		Namespace:       params.Namespace,
		Vector:          vec,
		TopK:            params.TopK,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, nil, s.upstream(indexName, err)
	}

	allowed := map[string]bool{}
	for _, id := range params.IDs {
		allowed[id] = true
	}

	matches := make([]SearchMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		owner, _ := m.Metadata[tenantField].(string)
		if owner != tenant {
			continue
		}
		if len(allowed) > 0 && !allowed[m.ID] {
			continue
		}
		matches = append(matches, SearchMatch{ID: m.ID, Score: m.Score, Metadata: m.Metadata})
	}

	var warnings []string
	if degraded {
		warnings = append(warnings, "query embedded with a placeholder vector")
	}
	return matches, warnings, nil
}

func (s *vectorService) QueryVectors(ctx context.Context, indexName string, params QueryParams) ([]SearchMatch, error) {
	indexName = strings.TrimSpace(indexName)
	if indexName == "" {
		return nil, apierr.Validation("index name required")
	}
	if len(params.Vector) == 0 {
		return nil, apierr.Validation("query vector required")
	}
	if params.TopK <= 0 {
		params.TopK = 10
	}

	tenant := tenantFromContext(ctx)
	if tenant == "" {
		return nil, apierr.Auth("authenticated identity required")
	}

	resp, err := s.pinecone.Query(ctx, indexName, pinecone.QueryRequest{
		Namespace:       params.Namespace,
		Vector:          params.Vector,
		TopK:            params.TopK,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, s.upstream(indexName, err)
	}

	matches := make([]SearchMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		owner, _ := m.Metadata[tenantField].(string)
		if owner != tenant {
			continue
		}
		match := SearchMatch{ID: m.ID, Score: m.Score, Metadata: m.Metadata}
		if params.ExcludeMetadata {
			match.Metadata = nil
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func (s *vectorService) ListRecords(ctx context.Context, indexName, namespace string, limit int) ([]StoredRecord, error) {
	indexName = strings.TrimSpace(indexName)
	if indexName == "" {
		return nil, apierr.Validation("index name required")
	}
	if limit <= 0 {
		limit = 100
	}

	tenant := tenantFromContext(ctx)
	if tenant == "" {
		return nil, apierr.Auth("authenticated identity required")
	}

	listed, err := s.pinecone.ListVectors(ctx, indexName, pinecone.ListVectorsRequest{
		Namespace: namespace,
		Limit:     limit,
	})
	if err != nil {
		return nil, s.upstream(indexName, err)
	}
	ids := make([]string, 0, len(listed.Vectors))
	for _, v := range listed.Vectors {
		ids = append(ids, v.ID)
	}
	if len(ids) == 0 {
		return []StoredRecord{}, nil
	}

	fetched, err := s.pinecone.FetchVectors(ctx, indexName, ids, namespace)
	if err != nil {
		return nil, s.upstream(indexName, err)
	}

	records := make([]StoredRecord, 0, len(ids))
	for _, id := range ids {
		v, ok := fetched.Vectors[id]
		if !ok {
			continue
		}
		owner, _ := v.Metadata[tenantField].(string)
		if owner != tenant {
			continue
		}
		records = append(records, StoredRecord{ID: id, Metadata: v.Metadata})
	}
	return records, nil
}

func (s *vectorService) DeleteRecords(ctx context.Context, indexName, namespace string, ids []string) (int, error) {
	indexName = strings.TrimSpace(indexName)
	if indexName == "" {
		return 0, apierr.Validation("index name required")
	}
	if len(ids) == 0 {
		return 0, nil
	}

	tenant := tenantFromContext(ctx)
	if tenant == "" {
		return 0, apierr.Auth("authenticated identity required")
	}

	// Ownership is checked against the stored metadata before anything is
	// removed. Ids that do not exist need no delete.
	fetched, err := s.pinecone.FetchVectors(ctx, indexName, ids, namespace)
	if err != nil {
		return 0, s.upstream(indexName, err)
	}
	owned := make([]string, 0, len(ids))
	for _, id := range ids {
		v, ok := fetched.Vectors[id]
		if !ok {
			continue
		}
		owner, _ := v.Metadata[tenantField].(string)
		if owner != tenant {
			continue
		}
		owned = append(owned, id)
	}
	if len(owned) == 0 {
		return 0, nil
	}

	if err := s.pinecone.DeleteVectors(ctx, indexName, pinecone.DeleteRequest{
		IDs:       owned,
		Namespace: namespace,
	}); err != nil {
		return 0, s.upstream(indexName, err)
	}
	return len(owned), nil
}

func (s *vectorService) upstream(indexName string, err error) *apierr.Error {
	if pinecone.IsNotFound(err) {
		return apierr.NotFound("index %s not found", indexName)
	}
	s.log.Error("Vector index call failed", "index", indexName, "error", err)
	return apierr.From(err)
}

func tenantFromContext(ctx context.Context) string {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return ""
	}
	return rd.UserID.String()
}
