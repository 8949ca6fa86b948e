package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/RobelK1738/Buddys-Brain/internal/domain"
	"github.com/RobelK1738/Buddys-Brain/internal/logger"
	"github.com/RobelK1738/Buddys-Brain/internal/repository"
)

// maxBatchSize caps bulk ingestion. Larger batches are rejected before any
// item is processed.
const maxBatchSize = 200

// defaultWorkers bounds concurrent summarize/embed work during bulk ingest.
const defaultWorkers = 5

// ResourceStore is the record-persistence surface the ingestion pipeline
// needs.
type ResourceStore interface {
	Create(ctx context.Context, resource *domain.Resource) error
	CreateMany(ctx context.Context, resources []*domain.Resource) error
	Delete(ctx context.Context, id string) error
}

// VectorIndex is the similarity-index surface shared by ingestion and
// retrieval.
type VectorIndex interface {
	Upsert(ctx context.Context, id string, vector []float32, payload *repository.ResourcePayload) error
	UpsertBatch(ctx context.Context, points []repository.VectorPoint) error
	Search(ctx context.Context, vector []float32, limit int) ([]repository.VectorSearchResult, error)
	Delete(ctx context.Context, id string) error
}

// TextExtractor converts raw document bytes into plain text.
type TextExtractor interface {
	Extract(data []byte, ext string) (string, error)
}

// IngestInput carries the caller-supplied fields of a resource to create.
// Data holds raw file bytes for uploaded documents and images; link-only
// submissions leave it nil.
type IngestInput struct {
	Title       string
	Description string
	Course      string
	MediaType   domain.MediaType
	MediaLink   string
	Data        []byte
	Filename    string
}

// IngestService orchestrates resource creation: classify the media type,
// derive a summary, embed it, persist the record, and index the vector.
type IngestService struct {
	store      ResourceStore
	index      VectorIndex
	extractor  TextExtractor
	summarizer MediaSummarizer
	embedding  EmbeddingProvider
	logger     *logger.Logger
	workers    int
}

// IngestConfig holds configuration for the ingest service.
type IngestConfig struct {
	Workers int
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	store ResourceStore,
	index VectorIndex,
	extractor TextExtractor,
	summarizer MediaSummarizer,
	embedding EmbeddingProvider,
	log *logger.Logger,
	cfg *IngestConfig,
) *IngestService {
	workers := defaultWorkers
	if cfg != nil && cfg.Workers > 0 {
		workers = cfg.Workers
	}
	return &IngestService{
		store:      store,
		index:      index,
		extractor:  extractor,
		summarizer: summarizer,
		embedding:  embedding,
		logger:     log,
		workers:    workers,
	}
}

func (s *IngestService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// Ingest creates a single resource. Summarization failures never fail the
// ingest: the description stands in as the summary. Embedding failures leave
// the record stored but non-searchable.
func (s *IngestService) Ingest(ctx context.Context, input *IngestInput) (*domain.Resource, error) {
	if !input.MediaType.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedMediaType, input.MediaType)
	}

	summary := s.deriveSummary(ctx, input)

	resource := &domain.Resource{
		Title:       input.Title,
		Description: input.Description,
		Course:      input.Course,
		MediaType:   input.MediaType,
		MediaLink:   input.MediaLink,
		Summary:     summary,
		Embedding:   s.deriveEmbedding(ctx, summary),
	}

	if err := s.store.Create(ctx, resource); err != nil {
		return nil, err
	}

	if len(resource.Embedding) > 0 {
		if err := s.index.Upsert(ctx, resource.ID, resource.Embedding, payloadFor(resource)); err != nil {
			// Keep store and index consistent: roll the record back
			// rather than leave a row the index will never serve.
			if delErr := s.store.Delete(ctx, resource.ID); delErr != nil {
				s.log(ctx).WithField(logger.FieldResourceID, resource.ID).
					WithError(delErr).Error("Failed to roll back resource after index failure")
			}
			return nil, fmt.Errorf("failed to index resource: %w", err)
		}
	}

	return resource, nil
}

// IngestBatch creates up to maxBatchSize resources. Items are summarized and
// embedded concurrently; one item's summarization failure does not abort its
// siblings. Records are persisted in a single batched write and returned in
// submission order.
func (s *IngestService) IngestBatch(ctx context.Context, inputs []*IngestInput) ([]*domain.Resource, error) {
	if len(inputs) > maxBatchSize {
		return nil, fmt.Errorf("%w: %d items exceeds limit of %d", domain.ErrBatchTooLarge, len(inputs), maxBatchSize)
	}
	if len(inputs) == 0 {
		return []*domain.Resource{}, nil
	}

	for _, input := range inputs {
		if !input.MediaType.Valid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedMediaType, input.MediaType)
		}
	}

	// Results are assigned by request index; the batch response must match
	// submission order regardless of which worker finishes first.
	resources := make([]*domain.Resource, len(inputs))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				input := inputs[i]
				summary := s.deriveSummary(ctx, input)
				resources[i] = &domain.Resource{
					Title:       input.Title,
					Description: input.Description,
					Course:      input.Course,
					MediaType:   input.MediaType,
					MediaLink:   input.MediaLink,
					Summary:     summary,
					Embedding:   s.deriveEmbedding(ctx, summary),
				}
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := s.store.CreateMany(ctx, resources); err != nil {
		return nil, err
	}

	points := make([]repository.VectorPoint, 0, len(resources))
	for _, resource := range resources {
		if len(resource.Embedding) == 0 {
			continue
		}
		points = append(points, repository.VectorPoint{
			ID:      resource.ID,
			Vector:  resource.Embedding,
			Payload: payloadFor(resource),
		})
	}
	if err := s.index.UpsertBatch(ctx, points); err != nil {
		// Records stay stored but non-searchable until reindexed.
		s.log(ctx).WithField(logger.FieldCount, len(points)).
			WithError(err).Warn("Failed to index batch")
	}

	return resources, nil
}

// Delete removes a resource record and its index point.
func (s *IngestService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.index.Delete(ctx, id); err != nil {
		s.log(ctx).WithField(logger.FieldResourceID, id).
			WithError(err).Warn("Failed to delete index point")
	}
	return nil
}

// deriveSummary dispatches to the summarization strategy for the media type.
// Any failure falls back to the caller-supplied description; summarization is
// a best-effort enhancement, never a hard dependency of resource creation.
func (s *IngestService) deriveSummary(ctx context.Context, input *IngestInput) string {
	summary, err := s.summarize(ctx, input)
	if err != nil {
		s.log(ctx).WithFields(logger.Fields{
			logger.FieldMediaType: string(input.MediaType),
		}).WithError(err).Warn("Summarization failed, falling back to description")
		return input.Description
	}
	return summary
}

func (s *IngestService) summarize(ctx context.Context, input *IngestInput) (string, error) {
	switch input.MediaType {
	case domain.MediaTypeDocument:
		if len(input.Data) > 0 {
			text, err := s.extractor.Extract(input.Data, extensionOf(input))
			if err != nil {
				return "", err
			}
			return s.summarizer.SummarizeText(ctx, text)
		}
		// Link-only documents are summarized from the page behind the link.
		return s.summarizer.SummarizeArticle(ctx, input.MediaLink)
	case domain.MediaTypeImage:
		if len(input.Data) > 0 {
			return s.summarizer.SummarizeImage(ctx, input.Data)
		}
		return s.summarizer.SummarizeImageURL(ctx, input.MediaLink)
	case domain.MediaTypeArticle:
		return s.summarizer.SummarizeArticle(ctx, input.MediaLink)
	case domain.MediaTypeVideo:
		return s.summarizer.SummarizeVideo(ctx, input.MediaLink)
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedMediaType, input.MediaType)
	}
}

// deriveEmbedding embeds the summary. An embedding failure is absorbed: the
// record is stored with an empty embedding and treated as non-searchable.
func (s *IngestService) deriveEmbedding(ctx context.Context, summary string) domain.Embedding {
	embedding, err := s.embedding.Embed(ctx, summary)
	if err != nil {
		s.log(ctx).WithError(err).Warn("Embedding failed, storing record as non-searchable")
		return domain.Embedding{}
	}
	return domain.Embedding(embedding)
}

func extensionOf(input *IngestInput) string {
	if ext := path.Ext(input.Filename); ext != "" {
		return ext
	}
	return path.Ext(strings.SplitN(input.MediaLink, "?", 2)[0])
}

func payloadFor(resource *domain.Resource) *repository.ResourcePayload {
	return &repository.ResourcePayload{
		ResourceID: resource.ID,
		Title:      resource.Title,
		Summary:    resource.Summary,
		MediaLink:  resource.MediaLink,
		MediaType:  resource.MediaType,
		Course:     resource.Course,
	}
}
