package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// completionTemperature keeps summaries stable across retries.
	completionTemperature = 0.3

	// maxOutputTokens caps generated summaries at roughly 200 words.
	maxOutputTokens = 500
)

// Completer issues bounded-output generation requests. The user content is
// either plain text or text plus one image URL.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	CompleteWithImage(ctx context.Context, system, user, imageURL string) (string, error)
}

// LLMService calls an OpenAI-compatible chat completions endpoint.
type LLMService struct {
	client      *resty.Client
	model       string
	visionModel string
	endpoint    string
}

// LLMConfig holds configuration for the LLM service.
type LLMConfig struct {
	Model       string
	VisionModel string
	APIKey      string
	BaseURL     string
}

// NewLLMService creates a new LLM service.
func NewLLMService(cfg *LLMConfig) *LLMService {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	// Timeout to prevent hanging requests
	client.SetTimeout(60 * time.Second)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	endpoint := baseURL + "/chat/completions"

	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = cfg.Model
	}

	return &LLMService{
		client:      client,
		model:       cfg.Model,
		visionModel: visionModel,
		endpoint:    endpoint,
	}
}

// GetModel returns the model name used for text completions.
func (s *LLMService) GetModel() string {
	return s.model
}

// OpenAI-compatible Chat Completion API request/response structures
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"` // string for text, []interface{} for text+image
}

type chatTextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type chatImageContent struct {
	Type     string       `json:"type"`
	ImageURL chatImageURL `json:"image_url"`
}

type chatImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends a pure-text generation request.
func (s *LLMService) Complete(ctx context.Context, system, user string) (string, error) {
	req := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: completionTemperature,
		MaxTokens:   maxOutputTokens,
	}
	return s.send(ctx, &req)
}

// CompleteWithImage sends a mixed text+image generation request. The image
// URL may be a public URL or a base64 data URL.
func (s *LLMService) CompleteWithImage(ctx context.Context, system, user, imageURL string) (string, error) {
	req := chatRequest{
		Model: s.visionModel,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{
				Role: "user",
				Content: []interface{}{
					chatTextContent{Type: "text", Text: user},
					chatImageContent{
						Type: "image_url",
						ImageURL: chatImageURL{
							URL:    imageURL,
							Detail: "auto",
						},
					},
				},
			},
		},
		Temperature: completionTemperature,
		MaxTokens:   maxOutputTokens,
	}
	return s.send(ctx, &req)
}

func (s *LLMService) send(ctx context.Context, req *chatRequest) (string, error) {
	var resp chatResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(s.endpoint)

	if err != nil {
		return "", fmt.Errorf("failed to call completion API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		errorMsg := fmt.Sprintf("HTTP %d", httpResp.StatusCode())
		if resp.Error != nil {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		} else if len(httpResp.Body()) > 0 {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
		}
		return "", fmt.Errorf("completion API returned error: %s", errorMsg)
	}

	if resp.Error != nil {
		return "", fmt.Errorf("completion API error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from completion API (status: %d)", httpResp.StatusCode())
	}

	return resp.Choices[0].Message.Content, nil
}
