package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RobelK1738/Buddys-Brain/internal/domain"
)

func embeddingServer(t *testing.T, dims int, calls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++

		var req jinaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(req.Input) != 1 {
			t.Errorf("expected a single input, got %d", len(req.Input))
		}

		vec := make([]float32, dims)
		resp := jinaResponse{}
		resp.Data = append(resp.Data, struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}{Embedding: vec})
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestEmbed(t *testing.T) {
	calls := 0
	srv := embeddingServer(t, 8, &calls)
	defer srv.Close()

	svc := NewEmbeddingService(&EmbeddingConfig{
		Model:      "test-model",
		Dimensions: 8,
		BaseURL:    srv.URL,
	})

	vec, err := svc.Embed(context.Background(), "discrete math summary")
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	if len(vec) != 8 {
		t.Errorf("vector has %d dims, want 8", len(vec))
	}
	if calls != 1 {
		t.Errorf("expected 1 provider call, got %d", calls)
	}
}

func TestEmbedEmptyTextSkipsProvider(t *testing.T) {
	calls := 0
	srv := embeddingServer(t, 8, &calls)
	defer srv.Close()

	svc := NewEmbeddingService(&EmbeddingConfig{
		Model:      "test-model",
		Dimensions: 8,
		BaseURL:    srv.URL,
	})

	vec, err := svc.Embed(context.Background(), "")
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	if len(vec) != 0 {
		t.Errorf("empty text must yield an empty vector, got %d dims", len(vec))
	}
	if calls != 0 {
		t.Errorf("empty text must not call the provider")
	}
}

func TestEmbedRefusesDimensionMismatch(t *testing.T) {
	calls := 0
	srv := embeddingServer(t, 8, &calls)
	defer srv.Close()

	svc := NewEmbeddingService(&EmbeddingConfig{
		Model:      "test-model",
		Dimensions: 1024,
		BaseURL:    srv.URL,
	})

	_, err := svc.Embed(context.Background(), "some text")
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable on dimension mismatch, got %v", err)
	}
}

func TestEmbedProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "invalid api key"})
	}))
	defer srv.Close()

	svc := NewEmbeddingService(&EmbeddingConfig{
		Model:      "test-model",
		Dimensions: 8,
		BaseURL:    srv.URL,
	})

	_, err := svc.Embed(context.Background(), "some text")
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}
