package service

import (
	"context"
	"strings"
	"testing"

	"github.com/RobelK1738/Buddys-Brain/internal/repository"
)

func hit(id string, score float32, summary string) repository.VectorSearchResult {
	return repository.VectorSearchResult{
		ID:    id,
		Score: score,
		Payload: &repository.ResourcePayload{
			ResourceID: id,
			Title:      "title " + id,
			Summary:    summary,
		},
	}
}

func newTestSearchService(index *memIndex, llm Completer) *SearchService {
	return NewSearchService(index, &fakeEmbedder{dims: 4}, llm, &stubCounter{}, nil)
}

func TestSearchFiltersAndOrdersByScore(t *testing.T) {
	index := &memIndex{hits: []repository.VectorSearchResult{
		hit("a", 0.75, "summary a"),
		hit("b", 0.9, "summary b"),
		hit("c", 0.6, "summary c"),
		hit("d", 0.72, "summary d"),
	}}
	svc := newTestSearchService(index, &capturingCompleter{reply: "an answer"})

	resp, err := svc.Search(context.Background(), "graph traversal")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	if len(resp.Results) != 3 {
		t.Fatalf("expected 3 results above threshold, got %d", len(resp.Results))
	}
	wantOrder := []string{"b", "a", "d"}
	for i, want := range wantOrder {
		if resp.Results[i].ID != want {
			t.Errorf("results[%d].ID = %q, want %q", i, resp.Results[i].ID, want)
		}
	}
}

func TestSearchDropsThresholdExactly(t *testing.T) {
	index := &memIndex{hits: []repository.VectorSearchResult{
		hit("edge", 0.7, "summary"),
		hit("keep", 0.71, "summary"),
	}}
	svc := newTestSearchService(index, &capturingCompleter{reply: "an answer"})

	resp, err := svc.Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "keep" {
		t.Errorf("a hit scoring exactly the threshold must be dropped: %+v", resp.Results)
	}
}

func TestSearchCapsResults(t *testing.T) {
	hits := make([]repository.VectorSearchResult, 15)
	for i := range hits {
		hits[i] = hit(string(rune('a'+i)), 0.99-float32(i)*0.01, "summary")
	}
	index := &memIndex{hits: hits}
	svc := newTestSearchService(index, &capturingCompleter{reply: "an answer"})

	resp, err := svc.Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(resp.Results) != maxResults {
		t.Errorf("expected %d results, got %d", maxResults, len(resp.Results))
	}
}

func TestSearchAnswerFromSummaries(t *testing.T) {
	index := &memIndex{hits: []repository.VectorSearchResult{
		hit("a", 0.9, "BFS explores level by level."),
		hit("b", 0.8, "DFS uses a stack."),
	}}
	llm := &capturingCompleter{reply: "BFS and DFS are graph traversals."}
	svc := newTestSearchService(index, llm)

	resp, err := svc.Search(context.Background(), "graph traversal")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if resp.Summary != "BFS and DFS are graph traversals." {
		t.Errorf("answer = %q", resp.Summary)
	}
	if !strings.Contains(llm.user, "BFS explores level by level. DFS uses a stack.") {
		t.Errorf("summaries not joined into the answer prompt: %q", llm.user)
	}
	if !strings.Contains(llm.user, "graph traversal") {
		t.Errorf("query missing from the answer prompt")
	}
}

func TestSearchNoResultsAnswer(t *testing.T) {
	index := &memIndex{}
	llm := &capturingCompleter{reply: "No stored resources cover this, but broadly it is a field theory."}
	svc := newTestSearchService(index, llm)

	resp, err := svc.Search(context.Background(), "quantum chromodynamics")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("expected no results, got %d", len(resp.Results))
	}
	if resp.Summary != llm.reply {
		t.Errorf("answer = %q", resp.Summary)
	}
	if !strings.Contains(llm.user, "quantum chromodynamics") || !strings.Contains(llm.user, "Sorry") {
		t.Errorf("disclaimer prompt should name the query: %q", llm.user)
	}
}

func TestSearchUsesCandidatePool(t *testing.T) {
	index := &memIndex{hits: []repository.VectorSearchResult{hit("a", 0.9, "s")}}
	svc := newTestSearchService(index, &capturingCompleter{reply: "an answer"})

	if _, err := svc.Search(context.Background(), "anything"); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(index.searched) != 1 {
		t.Fatalf("expected one index search, got %d", len(index.searched))
	}
}
