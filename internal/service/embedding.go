package service

import (
	"context"
	"fmt"

	"github.com/RobelK1738/Buddys-Brain/internal/domain"
	"github.com/go-resty/resty/v2"
)

const (
	jinaEndpoint = "https://api.jina.ai/v1/embeddings"
)

// EmbeddingProvider maps text to a fixed-dimension vector. Empty text yields
// an empty vector without a provider call; such records are not searchable.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
	Dimensions() int
}

// EmbeddingService generates text embeddings via the Jina API.
type EmbeddingService struct {
	client     *resty.Client
	endpoint   string
	model      string
	dimensions int
}

// EmbeddingConfig holds configuration for the embedding service.
type EmbeddingConfig struct {
	Provider   string
	Model      string
	APIKey     string
	Dimensions int
	BaseURL    string // override for tests or self-hosted gateways
}

// NewEmbeddingService creates a new embedding service.
func NewEmbeddingService(cfg *EmbeddingConfig) *EmbeddingService {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")

	endpoint := cfg.BaseURL
	if endpoint == "" {
		endpoint = jinaEndpoint
	}

	return &EmbeddingService{
		client:     client,
		endpoint:   endpoint,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// GetModel returns the model name being used.
func (s *EmbeddingService) GetModel() string {
	return s.model
}

// Dimensions returns the fixed output dimensionality.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// Jina API request/response structures
type jinaRequest struct {
	Model         string   `json:"model"`
	Task          string   `json:"task,omitempty"`
	Dimensions    int      `json:"dimensions,omitempty"`
	Input         []string `json:"input"`
	EmbeddingType string   `json:"embedding_type,omitempty"`
}

type jinaResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Detail string `json:"detail,omitempty"`
}

// Embed generates an embedding for stored content text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.embed(ctx, text, "retrieval.passage")
}

// EmbedQuery generates an embedding optimized for search queries.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return s.embed(ctx, query, "retrieval.query")
}

func (s *EmbeddingService) embed(ctx context.Context, text, task string) ([]float32, error) {
	if text == "" {
		// Degenerate case, not an error: the record simply stays out of
		// vector search.
		return []float32{}, nil
	}

	req := jinaRequest{
		Model:         s.model,
		Task:          task,
		Dimensions:    s.dimensions,
		Input:         []string{text},
		EmbeddingType: "float",
	}

	var resp jinaResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(s.endpoint)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	if httpResp.StatusCode() != 200 {
		if resp.Detail != "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrEmbeddingUnavailable, resp.Detail)
		}
		return nil, fmt.Errorf("%w: status %d", domain.ErrEmbeddingUnavailable, httpResp.StatusCode())
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", domain.ErrEmbeddingUnavailable)
	}

	embedding := resp.Data[0].Embedding
	if s.dimensions > 0 && len(embedding) != s.dimensions {
		// A partial vector would poison the index; refuse it outright.
		return nil, fmt.Errorf("%w: got %d dimensions, expected %d",
			domain.ErrEmbeddingUnavailable, len(embedding), s.dimensions)
	}

	return embedding, nil
}
