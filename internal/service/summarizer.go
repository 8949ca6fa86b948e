package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/RobelK1738/Buddys-Brain/internal/domain"
	"github.com/RobelK1738/Buddys-Brain/internal/prompts"
	"github.com/go-resty/resty/v2"
	_ "golang.org/x/image/webp"
)

// truncateLimit bounds article and transcript text sent to the model.
// Partial content is acceptable; oversized fetches are cut, not rejected.
const truncateLimit = 30_000

// MediaSummarizer produces a bounded-length summary for each media kind.
type MediaSummarizer interface {
	SummarizeText(ctx context.Context, text string) (string, error)
	SummarizeImage(ctx context.Context, data []byte) (string, error)
	SummarizeImageURL(ctx context.Context, imageURL string) (string, error)
	SummarizeArticle(ctx context.Context, articleURL string) (string, error)
	SummarizeVideo(ctx context.Context, videoURL string) (string, error)
}

// Summarizer derives short natural-language summaries from the four media
// kinds. Each kind has its own extraction path; the generation step is shared.
type Summarizer struct {
	llm         Completer
	tokens      TokenCounter
	transcripts TranscriptFetcher
	fetcher     *resty.Client
}

// NewSummarizer creates a new summarizer.
func NewSummarizer(llm Completer, tokens TokenCounter, transcripts TranscriptFetcher) *Summarizer {
	fetcher := resty.New()
	fetcher.SetTimeout(30 * time.Second)

	return &Summarizer{
		llm:         llm,
		tokens:      tokens,
		transcripts: transcripts,
		fetcher:     fetcher,
	}
}

// SummarizeText summarizes already-extracted document text. Input above the
// token ceiling fails with ErrInputTooLarge; callers chunk or reject upstream.
func (s *Summarizer) SummarizeText(ctx context.Context, text string) (string, error) {
	if err := s.guardTokens(text); err != nil {
		return "", err
	}
	summary, err := s.llm.Complete(ctx, prompts.DocumentSystemPrompt, prompts.DocumentUserPrompt+text)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}

// SummarizeImage summarizes the educational content of raw image bytes.
func (s *Summarizer) SummarizeImage(ctx context.Context, data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnsupportedImageFormat, err)
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeTypeFor(format),
		base64.StdEncoding.EncodeToString(data))

	summary, err := s.llm.CompleteWithImage(ctx, prompts.ImageSystemPrompt, prompts.ImageUserPrompt, dataURL)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}

// SummarizeImageURL summarizes an image by its public URL.
func (s *Summarizer) SummarizeImageURL(ctx context.Context, imageURL string) (string, error) {
	summary, err := s.llm.CompleteWithImage(ctx, prompts.ImageSystemPrompt, prompts.ImageUserPrompt, imageURL)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}

// SummarizeArticle fetches a web page and summarizes its educational content.
// The fetched body is truncated to the byte limit before generation.
func (s *Summarizer) SummarizeArticle(ctx context.Context, articleURL string) (string, error) {
	resp, err := s.fetcher.R().SetContext(ctx).Get(articleURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return "", fmt.Errorf("%w: status %d for %s", domain.ErrFetchFailed, resp.StatusCode(), articleURL)
	}

	content := truncate(string(resp.Body()), truncateLimit)
	if err := s.guardTokens(content); err != nil {
		return "", err
	}

	summary, err := s.llm.Complete(ctx, prompts.ArticleSystemPrompt, prompts.ArticleUserPrompt+content)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}

// SummarizeVideo extracts the video id, fetches its transcript, and
// summarizes the concatenated segment text.
func (s *Summarizer) SummarizeVideo(ctx context.Context, videoURL string) (string, error) {
	videoID, err := ParseVideoID(videoURL)
	if err != nil {
		return "", err
	}

	segments, err := s.transcripts.Fetch(ctx, videoID)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, seg.Text)
	}
	transcript := truncate(strings.Join(parts, " "), truncateLimit)
	if err := s.guardTokens(transcript); err != nil {
		return "", err
	}

	summary, err := s.llm.Complete(ctx, prompts.VideoSystemPrompt, prompts.VideoUserPrompt+transcript)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}

func (s *Summarizer) guardTokens(text string) error {
	count, err := s.tokens.Count(text)
	if err != nil {
		return fmt.Errorf("failed to count tokens: %w", err)
	}
	if count > maxInputTokens {
		return fmt.Errorf("%w: %d tokens exceeds limit of %d", domain.ErrInputTooLarge, count, maxInputTokens)
	}
	return nil
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}

func mimeTypeFor(format string) string {
	switch format {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
