package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/notebook-buddy/backend/internal/clients/pinecone"
	"github.com/notebook-buddy/backend/internal/data/repos/testutil"
	"github.com/notebook-buddy/backend/internal/platform/apierr"
	"github.com/notebook-buddy/backend/internal/platform/ctxutil"
)

type fakePinecone struct {
	upserts []pinecone.UpsertRequest
	matches []pinecone.QueryMatch
	listed  []string
	stored  map[string]pinecone.Vector
	deleted []string
}

func (f *fakePinecone) CreateIndex(ctx context.Context, req pinecone.CreateIndexRequest) (*pinecone.IndexDescription, error) {
	return &pinecone.IndexDescription{Name: req.Name, Dimension: req.Dimension}, nil
}

func (f *fakePinecone) ListIndexes(ctx context.Context) ([]pinecone.IndexDescription, error) {
	return nil, nil
}

func (f *fakePinecone) DescribeIndex(ctx context.Context, indexName string) (*pinecone.IndexDescription, error) {
	return &pinecone.IndexDescription{Name: indexName, Host: "example"}, nil
}

func (f *fakePinecone) DeleteIndex(ctx context.Context, indexName string) error { return nil }

func (f *fakePinecone) UpsertVectors(ctx context.Context, indexName string, req pinecone.UpsertRequest) (*pinecone.UpsertResponse, error) {
	f.upserts = append(f.upserts, req)
	return &pinecone.UpsertResponse{UpsertedCount: int64(len(req.Vectors))}, nil
}

func (f *fakePinecone) Query(ctx context.Context, indexName string, req pinecone.QueryRequest) (*pinecone.QueryResponse, error) {
	return &pinecone.QueryResponse{Matches: f.matches}, nil
}

func (f *fakePinecone) CreateIndexForModel(ctx context.Context, req pinecone.CreateIndexForModelRequest) (*pinecone.IndexDescription, error) {
	return &pinecone.IndexDescription{Name: req.Name}, nil
}

func (f *fakePinecone) ListVectors(ctx context.Context, indexName string, req pinecone.ListVectorsRequest) (*pinecone.ListVectorsResponse, error) {
	resp := &pinecone.ListVectorsResponse{Namespace: req.Namespace}
	for _, id := range f.listed {
		resp.Vectors = append(resp.Vectors, pinecone.ListedVector{ID: id})
	}
	return resp, nil
}

func (f *fakePinecone) FetchVectors(ctx context.Context, indexName string, ids []string, namespace string) (*pinecone.FetchVectorsResponse, error) {
	resp := &pinecone.FetchVectorsResponse{Vectors: map[string]pinecone.Vector{}, Namespace: namespace}
	for _, id := range ids {
		if v, ok := f.stored[id]; ok {
			resp.Vectors[id] = v
		}
	}
	return resp, nil
}

func (f *fakePinecone) DeleteVectors(ctx context.Context, indexName string, req pinecone.DeleteRequest) error {
	f.deleted = append(f.deleted, req.IDs...)
	return nil
}

func (f *fakePinecone) DescribeIndexStats(ctx context.Context, indexName string) (*pinecone.IndexStats, error) {
	return &pinecone.IndexStats{}, nil
}

func newVectorService(t *testing.T, pc pinecone.Client) VectorService {
	t.Helper()
	embed, err := NewEmbeddingService(testutil.Logger(t), nil, 8)
	if err != nil {
		t.Fatalf("NewEmbeddingService: %v", err)
	}
	svc, err := NewVectorService(testutil.Logger(t), pc, embed)
	if err != nil {
		t.Fatalf("NewVectorService: %v", err)
	}
	return svc
}

func authedCtx(userID uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{
		UserID: userID,
		Email:  "tenant@example.com",
	})
}

func TestUpsertRecordsValidatesWholeBatch(t *testing.T) {
	fake := &fakePinecone{}
	svc := newVectorService(t, fake)
	ctx := authedCtx(uuid.New())

	_, err := svc.UpsertRecords(ctx, "notebook", "", []VectorRecord{
		{ID: "1", Content: "fine"},
		{ID: "", Content: "missing id"},
	})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if apiErr := apierr.From(err); apiErr.Code != "validation_error" {
		t.Fatalf("code = %s", apiErr.Code)
	}
	// Nothing may persist when any record is invalid.
	if len(fake.upserts) != 0 {
		t.Fatalf("batch partially persisted: %d upserts", len(fake.upserts))
	}

	_, err = svc.UpsertRecords(ctx, "notebook", "", []VectorRecord{
		{ID: "1", Content: "fine"},
		{ID: "2", Content: ""},
	})
	if err == nil || len(fake.upserts) != 0 {
		t.Fatalf("missing content accepted")
	}
}

func TestUpsertRecordsStampsTenantAndWarns(t *testing.T) {
	fake := &fakePinecone{}
	svc := newVectorService(t, fake)
	userID := uuid.New()

	result, err := svc.UpsertRecords(authedCtx(userID), "notebook", "ns", []VectorRecord{
		{ID: "1", Content: "alpha", Title: "A", Metadata: map[string]any{"tag": "x", "userId": "spoofed"}},
		{ID: "2", Content: "beta"},
	})
	if err != nil {
		t.Fatalf("UpsertRecords: %v", err)
	}
	if result.UpsertedCount != 2 {
		t.Fatalf("UpsertedCount = %d", result.UpsertedCount)
	}
	// No provider configured: every record embeds degraded.
	if len(result.Warnings) == 0 {
		t.Fatalf("expected placeholder warning")
	}

	if len(fake.upserts) != 1 {
		t.Fatalf("upserts = %d, want 1 batch call", len(fake.upserts))
	}
	vecs := fake.upserts[0].Vectors
	if fake.upserts[0].Namespace != "ns" {
		t.Fatalf("namespace = %s", fake.upserts[0].Namespace)
	}
	// Tenant comes from the authenticated identity, never the body.
	if vecs[0].Metadata["userId"] != userID.String() {
		t.Fatalf("tenant field = %v", vecs[0].Metadata["userId"])
	}
	if vecs[0].Metadata["title"] != "A" || vecs[0].Metadata["tag"] != "x" {
		t.Fatalf("metadata lost: %v", vecs[0].Metadata)
	}
	if vecs[0].Metadata["content"] != "alpha" {
		t.Fatalf("content not stored: %v", vecs[0].Metadata)
	}
	if len(vecs[0].Values) != 8 {
		t.Fatalf("vector dimension = %d", len(vecs[0].Values))
	}
}

func TestSearchRecordsFiltersOtherTenants(t *testing.T) {
	me := uuid.New()
	fake := &fakePinecone{matches: []pinecone.QueryMatch{
		{ID: "mine", Score: 0.9, Metadata: map[string]any{"userId": me.String()}},
		{ID: "theirs", Score: 0.95, Metadata: map[string]any{"userId": uuid.New().String()}},
		{ID: "untagged", Score: 0.8, Metadata: map[string]any{}},
	}}
	svc := newVectorService(t, fake)

	matches, warnings, err := svc.SearchRecords(authedCtx(me), "notebook", SearchParams{Query: "query"})
	if err != nil {
		t.Fatalf("SearchRecords: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "mine" {
		t.Fatalf("tenant filter leaked: %+v", matches)
	}
	if len(warnings) == 0 {
		t.Fatalf("expected degraded query warning")
	}
}

func TestSearchRecordsAllowList(t *testing.T) {
	me := uuid.New()
	fake := &fakePinecone{matches: []pinecone.QueryMatch{
		{ID: "a", Score: 0.9, Metadata: map[string]any{"userId": me.String()}},
		{ID: "b", Score: 0.8, Metadata: map[string]any{"userId": me.String()}},
	}}
	svc := newVectorService(t, fake)

	matches, _, err := svc.SearchRecords(authedCtx(me), "notebook", SearchParams{
		Query: "query",
		IDs:   []string{"b"},
	})
	if err != nil {
		t.Fatalf("SearchRecords: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "b" {
		t.Fatalf("allow-list ignored: %+v", matches)
	}
}

func TestSearchRecordsRerankRejected(t *testing.T) {
	svc := newVectorService(t, &fakePinecone{})

	_, _, err := svc.SearchRecords(authedCtx(uuid.New()), "notebook", SearchParams{
		Query:  "query",
		Rerank: true,
	})
	if err == nil {
		t.Fatalf("expected not implemented")
	}
	if apiErr := apierr.From(err); apiErr.Status != 501 {
		t.Fatalf("status = %d, want 501", apiErr.Status)
	}
}

func TestSearchRequiresAuthenticatedIdentity(t *testing.T) {
	svc := newVectorService(t, &fakePinecone{})

	_, _, err := svc.SearchRecords(context.Background(), "notebook", SearchParams{Query: "query"})
	if apiErr := apierr.From(err); apiErr == nil || apiErr.Status != 401 {
		t.Fatalf("unauthenticated search allowed: %v", err)
	}
}

func TestUpsertVectorsStampsTenant(t *testing.T) {
	fake := &fakePinecone{}
	svc := newVectorService(t, fake)
	userID := uuid.New()

	result, err := svc.UpsertVectors(authedCtx(userID), "notebook", "ns", []RawVector{
		{ID: "v1", Values: []float32{0.1, 0.2}, Metadata: map[string]any{"tag": "x", "userId": "spoofed"}},
	})
	if err != nil {
		t.Fatalf("UpsertVectors: %v", err)
	}
	if result.UpsertedCount != 1 {
		t.Fatalf("UpsertedCount = %d", result.UpsertedCount)
	}
	vecs := fake.upserts[0].Vectors
	if vecs[0].Metadata["userId"] != userID.String() {
		t.Fatalf("tenant field = %v", vecs[0].Metadata["userId"])
	}
	if vecs[0].Metadata["tag"] != "x" {
		t.Fatalf("metadata lost: %v", vecs[0].Metadata)
	}
	if len(vecs[0].Values) != 2 {
		t.Fatalf("values mangled: %v", vecs[0].Values)
	}
}

func TestUpsertVectorsValidatesBatch(t *testing.T) {
	fake := &fakePinecone{}
	svc := newVectorService(t, fake)

	_, err := svc.UpsertVectors(authedCtx(uuid.New()), "notebook", "", []RawVector{
		{ID: "v1", Values: []float32{0.1}},
		{ID: "v2"},
	})
	if err == nil || len(fake.upserts) != 0 {
		t.Fatalf("vector without values accepted")
	}
}

func TestQueryVectorsFiltersOtherTenants(t *testing.T) {
	me := uuid.New()
	fake := &fakePinecone{matches: []pinecone.QueryMatch{
		{ID: "mine", Score: 0.9, Metadata: map[string]any{"userId": me.String()}},
		{ID: "theirs", Score: 0.95, Metadata: map[string]any{"userId": uuid.New().String()}},
	}}
	svc := newVectorService(t, fake)

	matches, err := svc.QueryVectors(authedCtx(me), "notebook", QueryParams{Vector: []float32{0.5, 0.5}})
	if err != nil {
		t.Fatalf("QueryVectors: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "mine" {
		t.Fatalf("tenant filter leaked: %+v", matches)
	}

	_, err = svc.QueryVectors(authedCtx(me), "notebook", QueryParams{})
	if apiErr := apierr.From(err); apiErr == nil || apiErr.Code != "validation_error" {
		t.Fatalf("empty vector accepted: %v", err)
	}
}

func TestListRecordsReturnsOwnRecordsOnly(t *testing.T) {
	me := uuid.New()
	fake := &fakePinecone{
		listed: []string{"mine", "theirs", "gone"},
		stored: map[string]pinecone.Vector{
			"mine":   {ID: "mine", Metadata: map[string]any{"userId": me.String(), "content": "alpha"}},
			"theirs": {ID: "theirs", Metadata: map[string]any{"userId": uuid.New().String()}},
		},
	}
	svc := newVectorService(t, fake)

	records, err := svc.ListRecords(authedCtx(me), "notebook", "ns", 0)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(records) != 1 || records[0].ID != "mine" {
		t.Fatalf("listing leaked: %+v", records)
	}
	if records[0].Metadata["content"] != "alpha" {
		t.Fatalf("metadata missing: %v", records[0].Metadata)
	}
}

func TestDeleteRecordsOnlyRemovesOwnedIds(t *testing.T) {
	me := uuid.New()
	fake := &fakePinecone{stored: map[string]pinecone.Vector{
		"mine":   {ID: "mine", Metadata: map[string]any{"userId": me.String()}},
		"theirs": {ID: "theirs", Metadata: map[string]any{"userId": uuid.New().String()}},
	}}
	svc := newVectorService(t, fake)

	count, err := svc.DeleteRecords(authedCtx(me), "notebook", "ns", []string{"mine", "theirs", "gone"})
	if err != nil {
		t.Fatalf("DeleteRecords: %v", err)
	}
	if count != 1 || len(fake.deleted) != 1 || fake.deleted[0] != "mine" {
		t.Fatalf("count = %d, deleted = %v", count, fake.deleted)
	}

	// Empty id list is a no-op, not an error.
	count, err = svc.DeleteRecords(authedCtx(me), "notebook", "ns", nil)
	if err != nil || count != 0 {
		t.Fatalf("empty delete: %d %v", count, err)
	}

	// Without an authenticated identity nothing may be deleted.
	_, err = svc.DeleteRecords(context.Background(), "notebook", "ns", []string{"mine"})
	if apiErr := apierr.From(err); apiErr == nil || apiErr.Status != 401 {
		t.Fatalf("unauthenticated delete allowed: %v", err)
	}
}
