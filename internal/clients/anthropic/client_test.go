package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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

func TestCreateMessageDefaults(t *testing.T) {
	var gotBody map[string]any
	var gotKey, gotVersion string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(MessagesResponse{
			ID:    "msg_1",
			Model: DefaultModel,
			Role:  "assistant",
			Content: []ContentBlock{
				{Type: "text", Text: "hello "},
				{Type: "text", Text: "world"},
			},
			StopReason: "end_turn",
		})
	}))
	defer srv.Close()

	c, err := New(testLogger(t), Config{APIKey: "ak-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := c.CreateMessage(context.Background(), MessagesRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}

	if gotKey != "ak-test" {
		t.Fatalf("x-api-key = %s", gotKey)
	}
	if gotVersion != apiVersion {
		t.Fatalf("anthropic-version = %s", gotVersion)
	}
	if gotBody["model"] != DefaultModel {
		t.Fatalf("model default not applied: %v", gotBody["model"])
	}
	if gotBody["max_tokens"] != float64(DefaultMaxTokens) {
		t.Fatalf("max_tokens default not applied: %v", gotBody["max_tokens"])
	}
	if resp.Text() != "hello world" {
		t.Fatalf("Text() = %q", resp.Text())
	}
}

func TestCreateMessageRequiresMessages(t *testing.T) {
	c, err := New(testLogger(t), Config{APIKey: "ak-test"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.CreateMessage(context.Background(), MessagesRequest{}); err == nil {
		t.Fatalf("expected error for empty messages")
	}
}
