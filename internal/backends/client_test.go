package backends

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/notesmith/autotitle/internal/config"
	apperrors "github.com/notesmith/autotitle/internal/errors"
	"github.com/notesmith/autotitle/internal/logger"
)

func clientConfig(baseURL string) config.GenerationConfig {
	return config.GenerationConfig{
		Backend: "ollama",
		Backends: map[string]config.BackendSettings{
			"ollama": {BaseURL: baseURL, Model: "llama3.1"},
		},
		Temperature: 0.3,
	}
}

func newTestClient() *Client {
	return NewClient(time.Second, logger.New(logger.FromConfig("error", "text")))
}

func TestClient_GenerateSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"message":{"content":"Server Setup Notes"}}`))
	}))
	defer server.Close()

	client := newTestClient()

	raw, err := client.Generate(context.Background(), "ollama", "summarize", clientConfig(server.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw != "Server Setup Notes" {
		t.Errorf("expected raw text, got '%s'", raw)
	}
}

func TestClient_GenerateNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient()

	_, err := client.Generate(context.Background(), "ollama", "summarize", clientConfig(server.URL))
	if err == nil {
		t.Fatal("expected error for 429 response")
	}

	if kind := apperrors.KindOf(err); kind != apperrors.KindAPI {
		t.Errorf("expected api error, got %s", kind)
	}
	if !apperrors.Retryable(err) {
		t.Error("429 must be classified retryable")
	}
}

func TestClient_GenerateTransportFailure(t *testing.T) {
	client := newTestClient()

	// Nothing listens here.
	cfg := clientConfig("http://127.0.0.1:1")

	_, err := client.Generate(context.Background(), "ollama", "summarize", cfg)
	if err == nil {
		t.Fatal("expected transport error")
	}

	if kind := apperrors.KindOf(err); kind != apperrors.KindNetwork {
		t.Errorf("expected network error, got %s", kind)
	}
	if !apperrors.Retryable(err) {
		t.Error("network failures must be classified retryable")
	}
}

func TestClient_GenerateClientErrorNotRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient()

	_, err := client.Generate(context.Background(), "ollama", "summarize", clientConfig(server.URL))
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if apperrors.Retryable(err) {
		t.Error("400 must not be classified retryable")
	}
}

func TestClient_ListModelsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"models":[{"name":"llama3.1"},{"name":"mistral"}]}`))
	}))
	defer server.Close()

	client := newTestClient()

	models, err := client.ListModels(context.Background(), "ollama", clientConfig(server.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 2 {
		t.Errorf("expected 2 models, got %v", models)
	}
}

func TestClient_ListModelsMissingCredential(t *testing.T) {
	client := newTestClient()

	cfg := config.GenerationConfig{
		Backend: "openai",
		Backends: map[string]config.BackendSettings{
			"openai": {BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini"},
		},
	}

	_, err := client.ListModels(context.Background(), "openai", cfg)
	if err == nil {
		t.Fatal("expected error for missing credential")
	}
	if kind := apperrors.KindOf(err); kind != apperrors.KindConfiguration {
		t.Errorf("expected configuration error, got %s", kind)
	}
}

func TestClient_ListModelsMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := newTestClient()

	_, err := client.ListModels(context.Background(), "ollama", clientConfig(server.URL))
	if err == nil {
		t.Fatal("expected error for malformed catalogue body")
	}
	if kind := apperrors.KindOf(err); kind != apperrors.KindAPI {
		t.Errorf("expected api error, got %s", kind)
	}
}

func TestClient_ListModelsTimeout(t *testing.T) {
	done := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-done
	}))
	defer server.Close()
	defer close(done)

	client := NewClient(50*time.Millisecond, logger.New(logger.FromConfig("error", "text")))

	_, err := client.ListModels(context.Background(), "ollama", clientConfig(server.URL))
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if kind := apperrors.KindOf(err); kind != apperrors.KindNetwork {
		t.Errorf("timeouts must surface as network errors, got %s", kind)
	}
}
