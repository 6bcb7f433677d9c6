package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/notebook-buddy/backend/internal/platform/ctxutil"
	"github.com/notebook-buddy/backend/internal/platform/httpx"
	"github.com/notebook-buddy/backend/internal/platform/logger"
)

// Client is the OpenAI API client used by the rest of the backend.
type Client interface {
	// Chat completions passthrough for the LLM proxy endpoints.
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// Embeddings with an explicit output dimension.
	Embed(ctx context.Context, inputs []string, dimensions int) ([][]float32, error)

	// Structured outputs (json_schema) via chat completions.
	GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error)

	// Assistants API.
	CreateAssistant(ctx context.Context, opts AssistantOptions) (map[string]any, error)
	ListAssistants(ctx context.Context, limit int, order string) (map[string]any, error)
	GetAssistant(ctx context.Context, assistantID string) (map[string]any, error)

	// Vector stores API.
	CreateVectorStore(ctx context.Context, name string, fileIDs []string) (map[string]any, error)
	AddVectorStoreFiles(ctx context.Context, vectorStoreID string, fileIDs []string) ([]map[string]any, error)
	GetVectorStore(ctx context.Context, vectorStoreID string) (map[string]any, error)
}

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	EmbedModel string
	Timeout    time.Duration
	MaxRetries int
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing OpenAI API key")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "gpt-4o"
	}
	if strings.TrimSpace(cfg.EmbedModel) == "" {
		cfg.EmbedModel = "text-embedding-3-large"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return &client{
		log:        log.With("client", "OpenAIClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type openAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (e *openAIHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) doOnce(ctx context.Context, method, path string, extraHeaders map[string]string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), method, c.cfg.BaseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *client) do(ctx context.Context, method, path string, extraHeaders map[string]string, body any, out any) error {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if ctx != nil && ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, method, path, extraHeaders, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("openai decode error: %w; raw=%s", uErr, string(raw))
			}
			return nil
		}

		if !httpx.IsRetryableError(err) {
			return err
		}
		if attempt == c.cfg.MaxRetries {
			return err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("OpenAI request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		time.Sleep(sleepFor)
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}

// -------------------- Chat completions --------------------

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model          string         `json:"model"`
	Messages       []ChatMessage  `json:"messages"`
	Temperature    *float64       `json:"temperature,omitempty"`
	MaxTokens      *int           `json:"max_tokens,omitempty"`
	TopP           *float64       `json:"top_p,omitempty"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ChatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   ChatUsage    `json:"usage"`
}

func (c *client) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if strings.TrimSpace(req.Model) == "" {
		req.Model = c.cfg.Model
	}
	if len(req.Messages) == 0 {
		return nil, errors.New("messages required")
	}

	var resp ChatResponse
	if err := c.do(ctx, "POST", "/v1/chat/completions", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// -------------------- Embeddings --------------------

type embeddingsRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func (c *client) Embed(ctx context.Context, inputs []string, dimensions int) ([][]float32, error) {
	if len(inputs) == 0 {
		return [][]float32{}, nil
	}

	clean := make([]string, len(inputs))
	for i := range inputs {
		s := strings.TrimSpace(inputs[i])
		if s == "" {
			s = " "
		}
		clean[i] = s
	}

	req := embeddingsRequest{
		Model:      c.cfg.EmbedModel,
		Input:      clean,
		Dimensions: dimensions,
	}

	var resp embeddingsResponse
	if err := c.do(ctx, "POST", "/v1/embeddings", nil, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) != len(clean) {
		return nil, fmt.Errorf("openai embeddings: requested=%d returned=%d model=%s", len(clean), len(resp.Data), c.cfg.EmbedModel)
	}

	out := make([][]float32, len(clean))
	for _, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			vec[i] = float32(f)
		}
		if d.Index >= 0 && d.Index < len(out) {
			out[d.Index] = vec
		}
	}
	for i := range out {
		if out[i] == nil {
			return nil, fmt.Errorf("openai embeddings missing index %d", i)
		}
	}
	return out, nil
}

// -------------------- Structured outputs --------------------

func (c *client) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	if schemaName == "" {
		return nil, errors.New("schemaName required")
	}
	if schema == nil {
		return nil, errors.New("schema required")
	}

	req := ChatRequest{
		Model: c.cfg.Model,
		Messages: []ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   schemaName,
				"schema": schema,
				"strict": true,
			},
		},
	}

	var resp ChatResponse
	if err := c.do(ctx, "POST", "/v1/chat/completions", nil, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices returned")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, errors.New("empty structured output")
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("failed to parse model JSON: %w; text=%s", err, text)
	}
	return obj, nil
}

// -------------------- Assistants API --------------------

var assistantsHeaders = map[string]string{"OpenAI-Beta": "assistants=v2"}

// AssistantOptions carries the optional assistant fields explicitly; absent
// options are simply omitted from the request body.
type AssistantOptions struct {
	Name         string
	Model        string
	Instructions string
	Description  string
	Tools        []map[string]any
	ToolChoice   any
	Metadata     map[string]string
	Temperature  *float64
	TopP         *float64
}

func (c *client) CreateAssistant(ctx context.Context, opts AssistantOptions) (map[string]any, error) {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = c.cfg.Model
	}

	body := map[string]any{"model": model}
	if s := strings.TrimSpace(opts.Name); s != "" {
		body["name"] = s
	}
	if s := strings.TrimSpace(opts.Instructions); s != "" {
		body["instructions"] = s
	}
	if s := strings.TrimSpace(opts.Description); s != "" {
		body["description"] = s
	}
	if len(opts.Tools) > 0 {
		body["tools"] = opts.Tools
	}
	if opts.ToolChoice != nil {
		body["tool_choice"] = opts.ToolChoice
	}
	if len(opts.Metadata) > 0 {
		body["metadata"] = opts.Metadata
	}
	if opts.Temperature != nil {
		body["temperature"] = *opts.Temperature
	}
	if opts.TopP != nil {
		body["top_p"] = *opts.TopP
	}

	var out map[string]any
	if err := c.do(ctx, "POST", "/v1/assistants", assistantsHeaders, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) ListAssistants(ctx context.Context, limit int, order string) (map[string]any, error) {
	if limit <= 0 {
		limit = 20
	}
	order = strings.TrimSpace(order)
	if order == "" {
		order = "desc"
	}

	path := fmt.Sprintf("/v1/assistants?limit=%d&order=%s", limit, order)
	var out map[string]any
	if err := c.do(ctx, "GET", path, assistantsHeaders, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) GetAssistant(ctx context.Context, assistantID string) (map[string]any, error) {
	assistantID = strings.TrimSpace(assistantID)
	if assistantID == "" {
		return nil, errors.New("assistantID required")
	}

	var out map[string]any
	if err := c.do(ctx, "GET", "/v1/assistants/"+assistantID, assistantsHeaders, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// -------------------- Vector stores API --------------------

func (c *client) CreateVectorStore(ctx context.Context, name string, fileIDs []string) (map[string]any, error) {
	body := map[string]any{}
	if s := strings.TrimSpace(name); s != "" {
		body["name"] = s
	}
	if len(fileIDs) > 0 {
		body["file_ids"] = fileIDs
	}

	var out map[string]any
	if err := c.do(ctx, "POST", "/v1/vector_stores", assistantsHeaders, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) AddVectorStoreFiles(ctx context.Context, vectorStoreID string, fileIDs []string) ([]map[string]any, error) {
	vectorStoreID = strings.TrimSpace(vectorStoreID)
	if vectorStoreID == "" {
		return nil, errors.New("vectorStoreID required")
	}
	if len(fileIDs) == 0 {
		return nil, errors.New("fileIDs required")
	}

	results := make([]map[string]any, 0, len(fileIDs))
	for _, fileID := range fileIDs {
		body := map[string]any{"file_id": fileID}
		var out map[string]any
		if err := c.do(ctx, "POST", "/v1/vector_stores/"+vectorStoreID+"/files", assistantsHeaders, body, &out); err != nil {
			return results, err
		}
		results = append(results, out)
	}
	return results, nil
}

func (c *client) GetVectorStore(ctx context.Context, vectorStoreID string) (map[string]any, error) {
	vectorStoreID = strings.TrimSpace(vectorStoreID)
	if vectorStoreID == "" {
		return nil, errors.New("vectorStoreID required")
	}

	var out map[string]any
	if err := c.do(ctx, "GET", "/v1/vector_stores/"+vectorStoreID, assistantsHeaders, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
