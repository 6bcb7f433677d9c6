package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/notebook-buddy/backend/internal/platform/ctxutil"
	"github.com/notebook-buddy/backend/internal/platform/logger"
)

type Client interface {
	// Control plane.
	CreateIndex(ctx context.Context, req CreateIndexRequest) (*IndexDescription, error)
	CreateIndexForModel(ctx context.Context, req CreateIndexForModelRequest) (*IndexDescription, error)
	ListIndexes(ctx context.Context) ([]IndexDescription, error)
	DescribeIndex(ctx context.Context, indexName string) (*IndexDescription, error)
	DeleteIndex(ctx context.Context, indexName string) error

	// Data plane. The index host is resolved (and cached) via DescribeIndex.
	UpsertVectors(ctx context.Context, indexName string, req UpsertRequest) (*UpsertResponse, error)
	Query(ctx context.Context, indexName string, req QueryRequest) (*QueryResponse, error)
	ListVectors(ctx context.Context, indexName string, req ListVectorsRequest) (*ListVectorsResponse, error)
	FetchVectors(ctx context.Context, indexName string, ids []string, namespace string) (*FetchVectorsResponse, error)
	DeleteVectors(ctx context.Context, indexName string, req DeleteRequest) error
	DescribeIndexStats(ctx context.Context, indexName string) (*IndexStats, error)
}

type Config struct {
	APIKey     string
	APIVersion string
	BaseURL    string
	Timeout    time.Duration
}

type client struct {
	log  *logger.Logger
	cfg  Config
	http *http.Client

	mu    sync.RWMutex
	hosts map[string]string
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing Pinecone API key")
	}
	if strings.TrimSpace(cfg.APIVersion) == "" {
		cfg.APIVersion = "2025-10"
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.pinecone.io"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &client{
		log:   log.With("client", "PineconeClient"),
		cfg:   cfg,
		http:  &http.Client{Timeout: cfg.Timeout},
		hosts: map[string]string{},
	}, nil
}

type pineconeHTTPError struct {
	StatusCode int
	Body       string
}

func (e *pineconeHTTPError) Error() string {
	return fmt.Sprintf("pinecone http %d: %s", e.StatusCode, e.Body)
}

func (e *pineconeHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// IsNotFound reports whether err is a Pinecone 404.
func IsNotFound(err error) bool {
	he, ok := err.(*pineconeHTTPError)
	return ok && he.StatusCode == http.StatusNotFound
}

// -------------------- Control plane --------------------

type ServerlessSpec struct {
	Cloud  string `json:"cloud"`
	Region string `json:"region"`
}

type CreateIndexRequest struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric,omitempty"`
	Spec      struct {
		Serverless ServerlessSpec `json:"serverless"`
	} `json:"spec"`
}

type IndexDescription struct {
	Name      string `json:"name"`
	Host      string `json:"host"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
	Status    struct {
		Ready bool   `json:"ready"`
		State string `json:"state"`
	} `json:"status"`
}

func (c *client) CreateIndex(ctx context.Context, req CreateIndexRequest) (*IndexDescription, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("index name required")
	}
	if req.Dimension <= 0 {
		return nil, fmt.Errorf("dimension required")
	}
	if strings.TrimSpace(req.Metric) == "" {
		req.Metric = "cosine"
	}
	if strings.TrimSpace(req.Spec.Serverless.Cloud) == "" {
		req.Spec.Serverless.Cloud = "aws"
	}
	if strings.TrimSpace(req.Spec.Serverless.Region) == "" {
		req.Spec.Serverless.Region = "us-east-1"
	}
	return doJSON[IndexDescription](c, ctx, "POST", c.cfg.BaseURL+"/indexes", req)
}

// EmbedSpec configures integrated embedding on an index. FieldMap routes a
// record field into the hosted model's text input.
type EmbedSpec struct {
	Model    string            `json:"model"`
	FieldMap map[string]string `json:"field_map"`
}

type CreateIndexForModelRequest struct {
	Name   string    `json:"name"`
	Cloud  string    `json:"cloud"`
	Region string    `json:"region"`
	Embed  EmbedSpec `json:"embed"`
}

func (c *client) CreateIndexForModel(ctx context.Context, req CreateIndexForModelRequest) (*IndexDescription, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("index name required")
	}
	if strings.TrimSpace(req.Embed.Model) == "" {
		req.Embed.Model = "multilingual-e5-large"
	}
	if len(req.Embed.FieldMap) == 0 {
		req.Embed.FieldMap = map[string]string{"text": "content"}
	}
	if strings.TrimSpace(req.Cloud) == "" {
		req.Cloud = "aws"
	}
	if strings.TrimSpace(req.Region) == "" {
		req.Region = "us-east-1"
	}
	return doJSON[IndexDescription](c, ctx, "POST", c.cfg.BaseURL+"/indexes/create-for-model", req)
}

func (c *client) ListIndexes(ctx context.Context) ([]IndexDescription, error) {
	out, err := doJSON[struct {
		Indexes []IndexDescription `json:"indexes"`
	}](c, ctx, "GET", c.cfg.BaseURL+"/indexes", nil)
	if err != nil {
		return nil, err
	}
	return out.Indexes, nil
}

func (c *client) DescribeIndex(ctx context.Context, indexName string) (*IndexDescription, error) {
	indexName = strings.TrimSpace(indexName)
	if indexName == "" {
		return nil, fmt.Errorf("indexName required")
	}

	out, err := doJSON[IndexDescription](c, ctx, "GET", c.cfg.BaseURL+"/indexes/"+indexName, nil)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Host) == "" {
		return nil, fmt.Errorf("pinecone describe_index returned empty host")
	}

	c.mu.Lock()
	c.hosts[indexName] = out.Host
	c.mu.Unlock()

	return out, nil
}

func (c *client) DeleteIndex(ctx context.Context, indexName string) error {
	indexName = strings.TrimSpace(indexName)
	if indexName == "" {
		return fmt.Errorf("indexName required")
	}
	if err := c.doEmpty(ctx, "DELETE", c.cfg.BaseURL+"/indexes/"+indexName, nil); err != nil {
		return err
	}

	c.mu.Lock()
	delete(c.hosts, indexName)
	c.mu.Unlock()
	return nil
}

// -------------------- Data plane --------------------

type Vector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type UpsertRequest struct {
	Vectors   []Vector `json:"vectors"`
	Namespace string   `json:"namespace,omitempty"`
}

type UpsertResponse struct {
	UpsertedCount int64 `json:"upsertedCount"`
}

func (c *client) UpsertVectors(ctx context.Context, indexName string, req UpsertRequest) (*UpsertResponse, error) {
	if len(req.Vectors) == 0 {
		return &UpsertResponse{UpsertedCount: 0}, nil
	}
	host, err := c.hostFor(ctx, indexName)
	if err != nil {
		return nil, err
	}
	return doJSON[UpsertResponse](c, ctx, "POST", host+"/vectors/upsert", req)
}

type QueryRequest struct {
	Namespace       string         `json:"namespace,omitempty"`
	Vector          []float32      `json:"vector,omitempty"`
	TopK            int            `json:"topK"`
	Filter          map[string]any `json:"filter,omitempty"`
	IncludeValues   bool           `json:"includeValues,omitempty"`
	IncludeMetadata bool           `json:"includeMetadata,omitempty"`
}

type QueryMatch struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Values   []float32      `json:"values,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type QueryResponse struct {
	Matches []QueryMatch `json:"matches"`
}

func (c *client) Query(ctx context.Context, indexName string, req QueryRequest) (*QueryResponse, error) {
	if req.TopK <= 0 {
		req.TopK = 10
	}
	if len(req.Vector) == 0 {
		return nil, fmt.Errorf("query vector required")
	}
	host, err := c.hostFor(ctx, indexName)
	if err != nil {
		return nil, err
	}
	return doJSON[QueryResponse](c, ctx, "POST", host+"/query", req)
}

type ListVectorsRequest struct {
	Namespace       string
	Limit           int
	PaginationToken string
}

type ListedVector struct {
	ID string `json:"id"`
}

type ListVectorsResponse struct {
	Vectors    []ListedVector `json:"vectors"`
	Pagination struct {
		Next string `json:"next"`
	} `json:"pagination"`
	Namespace string `json:"namespace"`
}

// ListVectors enumerates vector ids in a namespace. Serverless indexes only.
func (c *client) ListVectors(ctx context.Context, indexName string, req ListVectorsRequest) (*ListVectorsResponse, error) {
	host, err := c.hostFor(ctx, indexName)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	if req.Namespace != "" {
		q.Set("namespace", req.Namespace)
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.PaginationToken != "" {
		q.Set("paginationToken", req.PaginationToken)
	}
	u := host + "/vectors/list"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return doJSON[ListVectorsResponse](c, ctx, "GET", u, nil)
}

type FetchVectorsResponse struct {
	Vectors   map[string]Vector `json:"vectors"`
	Namespace string            `json:"namespace"`
}

func (c *client) FetchVectors(ctx context.Context, indexName string, ids []string, namespace string) (*FetchVectorsResponse, error) {
	if len(ids) == 0 {
		return &FetchVectorsResponse{Vectors: map[string]Vector{}}, nil
	}
	host, err := c.hostFor(ctx, indexName)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	for _, id := range ids {
		q.Add("ids", id)
	}
	if namespace != "" {
		q.Set("namespace", namespace)
	}
	return doJSON[FetchVectorsResponse](c, ctx, "GET", host+"/vectors/fetch?"+q.Encode(), nil)
}

type DeleteRequest struct {
	IDs       []string `json:"ids,omitempty"`
	Namespace string   `json:"namespace,omitempty"`
	DeleteAll bool     `json:"deleteAll,omitempty"`
}

func (c *client) DeleteVectors(ctx context.Context, indexName string, req DeleteRequest) error {
	if len(req.IDs) == 0 && !req.DeleteAll {
		return nil
	}
	host, err := c.hostFor(ctx, indexName)
	if err != nil {
		return err
	}
	return c.doEmpty(ctx, "POST", host+"/vectors/delete", req)
}

type IndexStats struct {
	Namespaces map[string]struct {
		VectorCount int64 `json:"vectorCount"`
	} `json:"namespaces"`
	Dimension        int     `json:"dimension"`
	IndexFullness    float64 `json:"indexFullness"`
	TotalVectorCount int64   `json:"totalVectorCount"`
}

func (c *client) DescribeIndexStats(ctx context.Context, indexName string) (*IndexStats, error) {
	host, err := c.hostFor(ctx, indexName)
	if err != nil {
		return nil, err
	}
	return doJSON[IndexStats](c, ctx, "POST", host+"/describe_index_stats", map[string]any{})
}

// -------------------- helpers --------------------

// hostFor resolves the data-plane host for an index, describing it on first
// use and caching the result.
func (c *client) hostFor(ctx context.Context, indexName string) (string, error) {
	indexName = strings.TrimSpace(indexName)
	if indexName == "" {
		return "", fmt.Errorf("indexName required")
	}

	c.mu.RLock()
	host, ok := c.hosts[indexName]
	c.mu.RUnlock()
	if !ok {
		desc, err := c.DescribeIndex(ctx, indexName)
		if err != nil {
			return "", err
		}
		host = desc.Host
	}

	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return strings.TrimRight(host, "/"), nil
	}
	return "https://" + host, nil
}

func doJSON[T any](c *client, ctx context.Context, method, url string, body any) (*T, error) {
	raw, err := c.doRaw(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("pinecone decode error: %w; raw=%s", err, string(raw))
	}
	return &out, nil
}

func (c *client) doEmpty(ctx context.Context, method, url string, body any) error {
	_, err := c.doRaw(ctx, method, url, body)
	return err
}

func (c *client) doRaw(ctx context.Context, method, url string, body any) ([]byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Api-Key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Pinecone-Api-Version", c.cfg.APIVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &pineconeHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}
