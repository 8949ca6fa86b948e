package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/RobelK1738/Buddys-Brain/internal/domain"
	"github.com/RobelK1738/Buddys-Brain/internal/repository"
)

// fakeSummarizer replies with a canned summary, or fails every call.
type fakeSummarizer struct {
	summary string
	err     error
}

func (f *fakeSummarizer) SummarizeText(ctx context.Context, text string) (string, error) {
	return f.summary, f.err
}

func (f *fakeSummarizer) SummarizeImage(ctx context.Context, data []byte) (string, error) {
	return f.summary, f.err
}

func (f *fakeSummarizer) SummarizeImageURL(ctx context.Context, imageURL string) (string, error) {
	return f.summary, f.err
}

func (f *fakeSummarizer) SummarizeArticle(ctx context.Context, articleURL string) (string, error) {
	return f.summary, f.err
}

func (f *fakeSummarizer) SummarizeVideo(ctx context.Context, videoURL string) (string, error) {
	return f.summary, f.err
}

// fakeEmbedder returns a vector derived from the text length.
type fakeEmbedder struct {
	dims int
	err  error
}

func (f *fakeEmbedder) embed(text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if text == "" {
		return []float32{}, nil
	}
	vec := make([]float32, f.dims)
	for i := range vec {
		vec[i] = float32(len(text))
	}
	return vec, nil
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.embed(text)
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return f.embed(query)
}

func (f *fakeEmbedder) Dimensions() int { return f.dims }

// memStore is an in-memory ResourceStore.
type memStore struct {
	mu      sync.Mutex
	created []*domain.Resource
	deleted []string

	createErr error
}

func (s *memStore) Create(ctx context.Context, resource *domain.Resource) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	resource.ID = fmt.Sprintf("id-%d", len(s.created))
	s.created = append(s.created, resource)
	return nil
}

func (s *memStore) CreateMany(ctx context.Context, resources []*domain.Resource) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range resources {
		r.ID = fmt.Sprintf("id-%d", len(s.created))
		s.created = append(s.created, r)
	}
	return nil
}

func (s *memStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	return nil
}

// memIndex is an in-memory VectorIndex.
type memIndex struct {
	mu       sync.Mutex
	upserts  []repository.VectorPoint
	deleted  []string
	hits     []repository.VectorSearchResult
	searched [][]float32

	upsertErr error
	searchErr error
}

func (m *memIndex) Upsert(ctx context.Context, id string, vector []float32, payload *repository.ResourcePayload) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts = append(m.upserts, repository.VectorPoint{ID: id, Vector: vector, Payload: payload})
	return nil
}

func (m *memIndex) UpsertBatch(ctx context.Context, points []repository.VectorPoint) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts = append(m.upserts, points...)
	return nil
}

func (m *memIndex) Search(ctx context.Context, vector []float32, limit int) ([]repository.VectorSearchResult, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searched = append(m.searched, vector)
	if limit < len(m.hits) {
		return m.hits[:limit], nil
	}
	return m.hits, nil
}

func (m *memIndex) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	return nil
}

func newTestIngestService(store *memStore, index *memIndex, summarizer MediaSummarizer, embedder EmbeddingProvider) *IngestService {
	return NewIngestService(store, index, nil, summarizer, embedder, nil, nil)
}

func TestIngestStoresAndIndexes(t *testing.T) {
	store := &memStore{}
	index := &memIndex{}
	svc := newTestIngestService(store, index, &fakeSummarizer{summary: "a summary"}, &fakeEmbedder{dims: 4})

	resource, err := svc.Ingest(context.Background(), &IngestInput{
		Title:     "Intro to Graphs",
		Course:    "CS 301",
		MediaType: domain.MediaTypeArticle,
		MediaLink: "https://example.com/graphs",
	})
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}

	if resource.Summary != "a summary" {
		t.Errorf("summary = %q", resource.Summary)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(store.created))
	}
	if len(index.upserts) != 1 {
		t.Fatalf("expected 1 index point, got %d", len(index.upserts))
	}
	point := index.upserts[0]
	if point.ID != resource.ID {
		t.Errorf("index point id = %q, want resource id %q", point.ID, resource.ID)
	}
	if point.Payload.Title != "Intro to Graphs" || point.Payload.Course != "CS 301" {
		t.Errorf("payload does not carry resource fields: %+v", point.Payload)
	}
}

func TestIngestFallsBackToDescription(t *testing.T) {
	store := &memStore{}
	index := &memIndex{}
	failing := &fakeSummarizer{err: errors.New("model unavailable")}
	svc := newTestIngestService(store, index, failing, &fakeEmbedder{dims: 4})

	resource, err := svc.Ingest(context.Background(), &IngestInput{
		Title:       "Week 2 Notes",
		Description: "Handwritten notes on recursion.",
		MediaType:   domain.MediaTypeArticle,
		MediaLink:   "https://example.com/notes",
	})
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if resource.Summary != "Handwritten notes on recursion." {
		t.Errorf("summary = %q, want the description fallback", resource.Summary)
	}
	if len(store.created) != 1 {
		t.Errorf("fallback record should still be stored")
	}
}

func TestIngestEmbeddingFailureIsNonSearchable(t *testing.T) {
	store := &memStore{}
	index := &memIndex{}
	svc := newTestIngestService(store, index,
		&fakeSummarizer{summary: "a summary"},
		&fakeEmbedder{err: domain.ErrEmbeddingUnavailable})

	resource, err := svc.Ingest(context.Background(), &IngestInput{
		Title:     "Notes",
		MediaType: domain.MediaTypeArticle,
		MediaLink: "https://example.com/notes",
	})
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if len(resource.Embedding) != 0 {
		t.Errorf("expected empty embedding, got %d dims", len(resource.Embedding))
	}
	if len(index.upserts) != 0 {
		t.Errorf("record without embedding must not be indexed")
	}
	if len(store.created) != 1 {
		t.Errorf("record should still be stored")
	}
}

func TestIngestRollsBackOnIndexFailure(t *testing.T) {
	store := &memStore{}
	index := &memIndex{upsertErr: errors.New("qdrant down")}
	svc := newTestIngestService(store, index, &fakeSummarizer{summary: "a summary"}, &fakeEmbedder{dims: 4})

	_, err := svc.Ingest(context.Background(), &IngestInput{
		Title:     "Notes",
		MediaType: domain.MediaTypeArticle,
		MediaLink: "https://example.com/notes",
	})
	if err == nil {
		t.Fatal("expected error when indexing fails")
	}
	if len(store.deleted) != 1 {
		t.Errorf("expected the stored record to be rolled back, deleted=%v", store.deleted)
	}
}

func TestIngestUnsupportedMediaType(t *testing.T) {
	svc := newTestIngestService(&memStore{}, &memIndex{}, &fakeSummarizer{}, &fakeEmbedder{dims: 4})

	_, err := svc.Ingest(context.Background(), &IngestInput{
		Title:     "Notes",
		MediaType: "podcast",
		MediaLink: "https://example.com/ep1",
	})
	if !errors.Is(err, domain.ErrUnsupportedMediaType) {
		t.Fatalf("expected ErrUnsupportedMediaType, got %v", err)
	}
}

func TestIngestBatchTooLarge(t *testing.T) {
	store := &memStore{}
	svc := newTestIngestService(store, &memIndex{}, &fakeSummarizer{summary: "s"}, &fakeEmbedder{dims: 4})

	inputs := make([]*IngestInput, maxBatchSize+1)
	for i := range inputs {
		inputs[i] = &IngestInput{
			Title:     fmt.Sprintf("item %d", i),
			MediaType: domain.MediaTypeArticle,
			MediaLink: "https://example.com",
		}
	}

	_, err := svc.IngestBatch(context.Background(), inputs)
	if !errors.Is(err, domain.ErrBatchTooLarge) {
		t.Fatalf("expected ErrBatchTooLarge, got %v", err)
	}
	if len(store.created) != 0 {
		t.Errorf("oversized batch must not persist anything")
	}
}

func TestIngestBatchRejectsInvalidMediaTypeUpfront(t *testing.T) {
	store := &memStore{}
	svc := newTestIngestService(store, &memIndex{}, &fakeSummarizer{summary: "s"}, &fakeEmbedder{dims: 4})

	inputs := []*IngestInput{
		{Title: "ok", MediaType: domain.MediaTypeArticle, MediaLink: "https://example.com/a"},
		{Title: "bad", MediaType: "podcast", MediaLink: "https://example.com/b"},
	}

	_, err := svc.IngestBatch(context.Background(), inputs)
	if !errors.Is(err, domain.ErrUnsupportedMediaType) {
		t.Fatalf("expected ErrUnsupportedMediaType, got %v", err)
	}
	if len(store.created) != 0 {
		t.Errorf("batch with an invalid entry must not persist anything")
	}
}

func TestIngestBatchPreservesOrder(t *testing.T) {
	store := &memStore{}
	index := &memIndex{}
	svc := newTestIngestService(store, index, &fakeSummarizer{summary: "s"}, &fakeEmbedder{dims: 4})

	const n = maxBatchSize
	inputs := make([]*IngestInput, n)
	for i := range inputs {
		inputs[i] = &IngestInput{
			Title:     fmt.Sprintf("item %d", i),
			MediaType: domain.MediaTypeArticle,
			MediaLink: fmt.Sprintf("https://example.com/%d", i),
		}
	}

	resources, err := svc.IngestBatch(context.Background(), inputs)
	if err != nil {
		t.Fatalf("IngestBatch returned error: %v", err)
	}
	if len(resources) != n {
		t.Fatalf("expected %d resources, got %d", n, len(resources))
	}
	for i, r := range resources {
		if want := fmt.Sprintf("item %d", i); r.Title != want {
			t.Fatalf("resources[%d].Title = %q, want %q", i, r.Title, want)
		}
	}
	if len(index.upserts) != n {
		t.Errorf("expected %d index points, got %d", n, len(index.upserts))
	}
}

func TestIngestBatchIndexFailureKeepsRecords(t *testing.T) {
	store := &memStore{}
	index := &memIndex{upsertErr: errors.New("qdrant down")}
	svc := newTestIngestService(store, index, &fakeSummarizer{summary: "s"}, &fakeEmbedder{dims: 4})

	inputs := []*IngestInput{
		{Title: "a", MediaType: domain.MediaTypeArticle, MediaLink: "https://example.com/a"},
		{Title: "b", MediaType: domain.MediaTypeArticle, MediaLink: "https://example.com/b"},
	}

	resources, err := svc.IngestBatch(context.Background(), inputs)
	if err != nil {
		t.Fatalf("batch index failure should not fail the request: %v", err)
	}
	if len(resources) != 2 || len(store.created) != 2 {
		t.Errorf("records should be stored despite index failure")
	}
}

func TestDeleteRemovesRecordAndIndexPoint(t *testing.T) {
	store := &memStore{}
	index := &memIndex{}
	svc := newTestIngestService(store, index, &fakeSummarizer{summary: "s"}, &fakeEmbedder{dims: 4})

	if err := svc.Delete(context.Background(), "id-0"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "id-0" {
		t.Errorf("record delete not forwarded: %v", store.deleted)
	}
	if len(index.deleted) != 1 || index.deleted[0] != "id-0" {
		t.Errorf("index delete not forwarded: %v", index.deleted)
	}
}
