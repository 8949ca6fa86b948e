package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/RobelK1738/Buddys-Brain/internal/domain"
	"github.com/RobelK1738/Buddys-Brain/internal/logger"
	"github.com/RobelK1738/Buddys-Brain/internal/prompts"
	"github.com/RobelK1738/Buddys-Brain/internal/repository"
)

const (
	// scoreThreshold drops weakly related candidates. The cutoff is
	// exclusive: a hit scoring exactly the threshold is discarded.
	scoreThreshold = 0.7

	// candidatePool is how many neighbours the index is asked for before
	// filtering.
	candidatePool = 100

	// maxResults caps the hits returned to the caller after filtering.
	maxResults = 10
)

// SearchResponse pairs the ranked hits with a synthesized natural-language
// answer to the query.
type SearchResponse struct {
	Summary string                `json:"summary"`
	Results []domain.SearchResult `json:"results"`
}

// SearchService retrieves resources by semantic similarity and synthesizes
// an answer from the surviving hits.
type SearchService struct {
	index     VectorIndex
	embedding EmbeddingProvider
	llm       Completer
	tokens    TokenCounter
	logger    *logger.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(
	index VectorIndex,
	embedding EmbeddingProvider,
	llm Completer,
	tokens TokenCounter,
	log *logger.Logger,
) *SearchService {
	return &SearchService{
		index:     index,
		embedding: embedding,
		llm:       llm,
		tokens:    tokens,
		logger:    log,
	}
}

func (s *SearchService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// Search embeds the query, retrieves the candidate pool, keeps hits scoring
// strictly above the threshold, and answers the query from their summaries.
func (s *SearchService) Search(ctx context.Context, query string) (*SearchResponse, error) {
	vector, err := s.embedding.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results := []domain.SearchResult{}
	if len(vector) > 0 {
		hits, err := s.index.Search(ctx, vector, candidatePool)
		if err != nil {
			return nil, fmt.Errorf("vector search failed: %w", err)
		}
		results = s.rank(hits)
	}

	s.log(ctx).WithFields(logger.Fields{
		logger.FieldCount: len(results),
	}).Debug("Search completed")

	answer, err := s.synthesizeAnswer(ctx, query, results)
	if err != nil {
		return nil, err
	}

	return &SearchResponse{Summary: answer, Results: results}, nil
}

// rank filters out hits at or below the score threshold, orders the rest by
// descending score, and caps the list. Ties keep the index's ordering.
func (s *SearchService) rank(hits []repository.VectorSearchResult) []domain.SearchResult {
	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		if hit.Score <= scoreThreshold || hit.Payload == nil {
			continue
		}
		results = append(results, domain.SearchResult{
			ID:        hit.Payload.ResourceID,
			Title:     hit.Payload.Title,
			Summary:   hit.Payload.Summary,
			MediaLink: hit.Payload.MediaLink,
			MediaType: hit.Payload.MediaType,
			Course:    hit.Payload.Course,
			Score:     hit.Score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

// synthesizeAnswer builds a short explanation of the query from the hit
// summaries. With no hits the model is still asked for a general answer that
// opens by saying no stored resources matched.
func (s *SearchService) synthesizeAnswer(ctx context.Context, query string, results []domain.SearchResult) (string, error) {
	var user string
	if len(results) == 0 {
		user = fmt.Sprintf(prompts.AnswerNoResultsTemplate, query)
	} else {
		summaries := make([]string, 0, len(results))
		for _, r := range results {
			if r.Summary != "" {
				summaries = append(summaries, r.Summary)
			}
		}
		material := strings.Join(summaries, " ")

		count, err := s.tokens.Count(material)
		if err != nil {
			return "", fmt.Errorf("failed to count tokens: %w", err)
		}
		if count > maxInputTokens {
			return "", fmt.Errorf("%w: answer context is %d tokens, limit is %d", domain.ErrInputTooLarge, count, maxInputTokens)
		}

		user = fmt.Sprintf(prompts.AnswerUserTemplate, material, query)
	}

	answer, err := s.llm.Complete(ctx, prompts.AnswerSystemPrompt, user)
	if err != nil {
		return "", fmt.Errorf("failed to synthesize answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}
