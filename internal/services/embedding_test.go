package services

import (
	"context"
	"errors"
	"testing"

	"github.com/notebook-buddy/backend/internal/clients/openai"
	"github.com/notebook-buddy/backend/internal/data/repos/testutil"
)

// fakeOpenAI implements the parts of openai.Client the services exercise.
type fakeOpenAI struct {
	embedVecs [][]float32
	embedErr  error
	embedCall int

	jsonOut map[string]any
	jsonErr error

	assistantOut map[string]any
	assistantErr error

	chatReq *openai.ChatRequest
	chatErr error
}

func (f *fakeOpenAI) ChatCompletion(ctx context.Context, req openai.ChatRequest) (*openai.ChatResponse, error) {
	f.chatReq = &req
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	return &openai.ChatResponse{Model: req.Model}, nil
}

func (f *fakeOpenAI) Embed(ctx context.Context, inputs []string, dimensions int) ([][]float32, error) {
	f.embedCall++
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	if f.embedVecs != nil {
		return f.embedVecs, nil
	}
	out := make([][]float32, len(inputs))
	for i := range out {
		out[i] = make([]float32, dimensions)
	}
	return out, nil
}

func (f *fakeOpenAI) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	return f.jsonOut, f.jsonErr
}

func (f *fakeOpenAI) CreateAssistant(ctx context.Context, opts openai.AssistantOptions) (map[string]any, error) {
	return f.assistantOut, f.assistantErr
}

func (f *fakeOpenAI) ListAssistants(ctx context.Context, limit int, order string) (map[string]any, error) {
	return map[string]any{"data": []any{}}, nil
}

func (f *fakeOpenAI) GetAssistant(ctx context.Context, assistantID string) (map[string]any, error) {
	return map[string]any{"id": assistantID}, nil
}

func (f *fakeOpenAI) CreateVectorStore(ctx context.Context, name string, fileIDs []string) (map[string]any, error) {
	return map[string]any{"id": "vs_1", "name": name}, nil
}

func (f *fakeOpenAI) AddVectorStoreFiles(ctx context.Context, vectorStoreID string, fileIDs []string) ([]map[string]any, error) {
	return nil, nil
}

func (f *fakeOpenAI) GetVectorStore(ctx context.Context, vectorStoreID string) (map[string]any, error) {
	return map[string]any{"id": vectorStoreID}, nil
}

func TestEmbedWithoutProviderIsDegraded(t *testing.T) {
	svc, err := NewEmbeddingService(testutil.Logger(t), nil, 16)
	if err != nil {
		t.Fatalf("NewEmbeddingService: %v", err)
	}

	vec, degraded, err := svc.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if !degraded {
		t.Fatalf("expected degraded")
	}
	if len(vec) != 16 {
		t.Fatalf("dimension = %d, want 16", len(vec))
	}
	for i, v := range vec {
		if v < -1 || v > 1 {
			t.Fatalf("component %d = %f out of [-1, 1]", i, v)
		}
	}
}

func TestEmbedProviderErrorFallsBack(t *testing.T) {
	fake := &fakeOpenAI{embedErr: errors.New("rate limited")}
	svc, err := NewEmbeddingService(testutil.Logger(t), fake, 8)
	if err != nil {
		t.Fatalf("NewEmbeddingService: %v", err)
	}

	vec, degraded, err := svc.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if !degraded || len(vec) != 8 {
		t.Fatalf("degraded=%v len=%d", degraded, len(vec))
	}
}

func TestEmbedProviderSuccess(t *testing.T) {
	fake := &fakeOpenAI{embedVecs: [][]float32{{1, 2, 3, 4}}}
	svc, err := NewEmbeddingService(testutil.Logger(t), fake, 4)
	if err != nil {
		t.Fatalf("NewEmbeddingService: %v", err)
	}

	vec, degraded, err := svc.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if degraded {
		t.Fatalf("unexpected degraded flag")
	}
	if len(vec) != 4 || vec[0] != 1 {
		t.Fatalf("unexpected vector: %v", vec)
	}
}
