package pinecone

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/notebook-buddy/backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// One server plays both planes: control requests hit /indexes*, data
// requests hit the "host" it reports for itself.
func newTestServer(t *testing.T, describeCount *int32) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Api-Key") != "pc-test" {
			t.Errorf("missing Api-Key header")
		}
		switch {
		case r.Method == "GET" && r.URL.Path == "/indexes/notebook":
			atomic.AddInt32(describeCount, 1)
			_ = json.NewEncoder(w).Encode(IndexDescription{
				Name: "notebook", Host: srv.URL, Dimension: 4, Metric: "cosine",
			})
		case r.Method == "GET" && r.URL.Path == "/indexes/missing":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found"}`))
		case r.Method == "POST" && r.URL.Path == "/vectors/upsert":
			var req UpsertRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			_ = json.NewEncoder(w).Encode(UpsertResponse{UpsertedCount: int64(len(req.Vectors))})
		case r.Method == "POST" && r.URL.Path == "/query":
			_ = json.NewEncoder(w).Encode(QueryResponse{
				Matches: []QueryMatch{
					{ID: "1", Score: 0.9, Metadata: map[string]any{"userId": "u1"}},
				},
			})
		case r.Method == "POST" && r.URL.Path == "/indexes/create-for-model":
			var req CreateIndexForModelRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Embed.Model == "" || req.Embed.FieldMap["text"] == "" {
				t.Errorf("embed spec not defaulted: %+v", req.Embed)
			}
			_ = json.NewEncoder(w).Encode(IndexDescription{Name: req.Name, Host: srv.URL})
		case r.Method == "GET" && r.URL.Path == "/vectors/list":
			if r.URL.Query().Get("namespace") != "ns" {
				t.Errorf("namespace not forwarded: %s", r.URL.RawQuery)
			}
			_ = json.NewEncoder(w).Encode(ListVectorsResponse{
				Vectors:   []ListedVector{{ID: "1"}, {ID: "2"}},
				Namespace: "ns",
			})
		case r.Method == "GET" && r.URL.Path == "/vectors/fetch":
			resp := FetchVectorsResponse{Vectors: map[string]Vector{}, Namespace: "ns"}
			for _, id := range r.URL.Query()["ids"] {
				resp.Vectors[id] = Vector{ID: id, Metadata: map[string]any{"userId": "u1"}}
			}
			_ = json.NewEncoder(w).Encode(resp)
		case r.Method == "POST" && r.URL.Path == "/vectors/delete":
			_, _ = w.Write([]byte(`{}`))
		case r.Method == "POST" && r.URL.Path == "/describe_index_stats":
			_ = json.NewEncoder(w).Encode(IndexStats{Dimension: 4, TotalVectorCount: 7})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return srv
}

func TestDataPlaneResolvesAndCachesHost(t *testing.T) {
	var describes int32
	srv := newTestServer(t, &describes)
	defer srv.Close()

	c, err := New(testLogger(t), Config{APIKey: "pc-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	up, err := c.UpsertVectors(ctx, "notebook", UpsertRequest{
		Namespace: "ns",
		Vectors:   []Vector{{ID: "1", Values: []float32{1, 2, 3, 4}}},
	})
	if err != nil {
		t.Fatalf("UpsertVectors: %v", err)
	}
	if up.UpsertedCount != 1 {
		t.Fatalf("UpsertedCount = %d", up.UpsertedCount)
	}

	q, err := c.Query(ctx, "notebook", QueryRequest{
		Vector: []float32{1, 2, 3, 4}, TopK: 5, IncludeMetadata: true,
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(q.Matches) != 1 || q.Matches[0].ID != "1" {
		t.Fatalf("unexpected matches: %+v", q.Matches)
	}

	if err := c.DeleteVectors(ctx, "notebook", DeleteRequest{IDs: []string{"1"}}); err != nil {
		t.Fatalf("DeleteVectors: %v", err)
	}

	stats, err := c.DescribeIndexStats(ctx, "notebook")
	if err != nil {
		t.Fatalf("DescribeIndexStats: %v", err)
	}
	if stats.TotalVectorCount != 7 {
		t.Fatalf("TotalVectorCount = %d", stats.TotalVectorCount)
	}

	// Four data-plane calls, one describe.
	if got := atomic.LoadInt32(&describes); got != 1 {
		t.Fatalf("describe_index called %d times, want 1", got)
	}
}

func TestListAndFetchVectors(t *testing.T) {
	var describes int32
	srv := newTestServer(t, &describes)
	defer srv.Close()

	c, err := New(testLogger(t), Config{APIKey: "pc-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	listed, err := c.ListVectors(ctx, "notebook", ListVectorsRequest{Namespace: "ns", Limit: 10})
	if err != nil {
		t.Fatalf("ListVectors: %v", err)
	}
	if len(listed.Vectors) != 2 || listed.Vectors[0].ID != "1" {
		t.Fatalf("unexpected listing: %+v", listed.Vectors)
	}

	fetched, err := c.FetchVectors(ctx, "notebook", []string{"1", "2"}, "ns")
	if err != nil {
		t.Fatalf("FetchVectors: %v", err)
	}
	if len(fetched.Vectors) != 2 || fetched.Vectors["1"].Metadata["userId"] != "u1" {
		t.Fatalf("unexpected fetch: %+v", fetched.Vectors)
	}

	// No ids: no request is made at all.
	empty, err := c.FetchVectors(ctx, "notebook", nil, "ns")
	if err != nil || len(empty.Vectors) != 0 {
		t.Fatalf("empty fetch: %+v %v", empty, err)
	}
}

func TestCreateIndexForModelDefaults(t *testing.T) {
	var describes int32
	srv := newTestServer(t, &describes)
	defer srv.Close()

	c, err := New(testLogger(t), Config{APIKey: "pc-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	desc, err := c.CreateIndexForModel(context.Background(), CreateIndexForModelRequest{Name: "notebook-embed"})
	if err != nil {
		t.Fatalf("CreateIndexForModel: %v", err)
	}
	if desc.Name != "notebook-embed" {
		t.Fatalf("name = %s", desc.Name)
	}
}

func TestDescribeMissingIndexIsNotFound(t *testing.T) {
	var describes int32
	srv := newTestServer(t, &describes)
	defer srv.Close()

	c, err := New(testLogger(t), Config{APIKey: "pc-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.DescribeIndex(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsNotFound(err) {
		t.Fatalf("IsNotFound = false for %v", err)
	}
}

func TestDeleteVectorsEmptyIsNoop(t *testing.T) {
	c, err := New(testLogger(t), Config{APIKey: "pc-test"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// No ids and no deleteAll: no request is made at all.
	if err := c.DeleteVectors(context.Background(), "notebook", DeleteRequest{}); err != nil {
		t.Fatalf("DeleteVectors: %v", err)
	}
}
