package service

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/RobelK1738/Buddys-Brain/internal/domain"
	"github.com/go-resty/resty/v2"
)

const defaultTimedTextEndpoint = "https://video.google.com/timedtext"

// TranscriptSegment is one timed caption line of a video transcript.
type TranscriptSegment struct {
	Text  string
	Start float64
}

// TranscriptFetcher retrieves the ordered transcript of a video.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) ([]TranscriptSegment, error)
}

// TranscriptClient fetches video transcripts from the timedtext endpoint.
type TranscriptClient struct {
	client   *resty.Client
	endpoint string
	language string
}

// TranscriptConfig holds configuration for the transcript client.
type TranscriptConfig struct {
	Endpoint string
	Language string
}

// NewTranscriptClient creates a new transcript client.
func NewTranscriptClient(cfg *TranscriptConfig) *TranscriptClient {
	client := resty.New()
	client.SetTimeout(30 * time.Second)

	endpoint := defaultTimedTextEndpoint
	language := "en"
	if cfg != nil {
		if cfg.Endpoint != "" {
			endpoint = cfg.Endpoint
		}
		if cfg.Language != "" {
			language = cfg.Language
		}
	}

	return &TranscriptClient{
		client:   client,
		endpoint: endpoint,
		language: language,
	}
}

type timedText struct {
	XMLName xml.Name        `xml:"transcript"`
	Lines   []timedTextLine `xml:"text"`
}

type timedTextLine struct {
	Start float64 `xml:"start,attr"`
	Body  string  `xml:",chardata"`
}

// Fetch returns the transcript segments for a video in caption order.
func (c *TranscriptClient) Fetch(ctx context.Context, videoID string) ([]TranscriptSegment, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lang": c.language,
			"v":    videoID,
		}).
		Get(c.endpoint)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTranscriptUnavailable, err)
	}

	if resp.StatusCode() != 200 || len(resp.Body()) == 0 {
		// The endpoint answers an empty body when no captions exist.
		return nil, fmt.Errorf("%w: video %s", domain.ErrTranscriptUnavailable, videoID)
	}

	var doc timedText
	if err := xml.Unmarshal(resp.Body(), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTranscriptUnavailable, err)
	}
	if len(doc.Lines) == 0 {
		return nil, fmt.Errorf("%w: video %s", domain.ErrTranscriptUnavailable, videoID)
	}

	segments := make([]TranscriptSegment, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		segments = append(segments, TranscriptSegment{
			Text:  strings.TrimSpace(line.Body),
			Start: line.Start,
		})
	}
	return segments, nil
}

// ParseVideoID extracts a video identifier from the two supported URL shapes:
// the short-link form (youtu.be/<id>) and the long form with a v=<id> query
// parameter.
func ParseVideoID(videoURL string) (string, error) {
	u, err := url.Parse(videoURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidVideoURL, err)
	}

	if strings.Contains(u.Host, "youtu.be") {
		id := strings.Trim(u.Path, "/")
		if idx := strings.Index(id, "/"); idx != -1 {
			id = id[idx+1:]
		}
		if id == "" {
			return "", fmt.Errorf("%w: %s", domain.ErrInvalidVideoURL, videoURL)
		}
		return id, nil
	}

	if id := u.Query().Get("v"); id != "" {
		return id, nil
	}

	return "", fmt.Errorf("%w: %s", domain.ErrInvalidVideoURL, videoURL)
}
