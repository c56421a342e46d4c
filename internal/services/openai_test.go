package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lista/backend/internal/config"
)

func newTestOpenAIClient(server *httptest.Server) *OpenAIClient {
	return NewOpenAIClient(config.OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-3.5-turbo",
	})
}

func TestOpenAIClient_Complete(t *testing.T) {
	var captured openAIRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("failed decoding request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "  apples, oranges  "}},
			},
		})
	}))
	defer server.Close()

	client := newTestOpenAIClient(server)
	completion, err := client.Complete(context.Background(), "Recommend items")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if completion != "apples, oranges" {
		t.Fatalf("expected trimmed completion, got %q", completion)
	}

	if captured.Model != "gpt-3.5-turbo" {
		t.Fatalf("expected model in request, got %q", captured.Model)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Role != "user" {
		t.Fatalf("expected single user message, got %v", captured.Messages)
	}
}

func TestOpenAIClient_CompleteWithoutAPIKey(t *testing.T) {
	client := NewOpenAIClient(config.OpenAIConfig{})

	_, err := client.Complete(context.Background(), "anything")
	if err == nil || !strings.Contains(err.Error(), "API key not configured") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestOpenAIClient_CompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limit exceeded"},
		})
	}))
	defer server.Close()

	client := newTestOpenAIClient(server)
	_, err := client.Complete(context.Background(), "anything")
	if err == nil || !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Fatalf("expected upstream error message, got %v", err)
	}
}

func TestOpenAIClient_CompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	client := newTestOpenAIClient(server)
	_, err := client.Complete(context.Background(), "anything")
	if err == nil || !strings.Contains(err.Error(), "empty completion") {
		t.Fatalf("expected empty completion error, got %v", err)
	}
}
