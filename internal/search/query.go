package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string    // User's search query
	Types []DocType // Document types to include (empty = all)

	// Fuzziness is the edit distance tolerated on word text, 0 to 2.
	Fuzziness int

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy string // "relevance", "text", "recent"
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Fuzziness: 1,
		Limit:     20,
		SortBy:    "relevance",
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID    string  `json:"id"`
	Type  DocType `json:"type"`
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchRequest := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	addSorting(searchRequest, params)
	searchRequest.Fields = []string{"type", "text"}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}
	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}
		if t, ok := hit.Fields["type"].(string); ok {
			searchHit.Type = DocType(t)
		}
		if txt, ok := hit.Fields["text"].(string); ok {
			searchHit.Text = txt
		}
		result.Hits = append(result.Hits, searchHit)
	}

	return result, nil
}

// SearchWords returns the ids of saved words matching q, best match first.
func (s *SearchIndex) SearchWords(ctx context.Context, q string, limit int) ([]string, error) {
	params := DefaultSearchParams()
	params.Query = q
	params.Types = []DocType{DocTypeWord}
	if limit > 0 {
		params.Limit = limit
	}

	result, err := s.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// SuggestHeadwords returns up to max dictionary headwords spelled like text.
// Only the headword itself is matched; meanings are ignored.
func (s *SearchIndex) SuggestHeadwords(ctx context.Context, text string, maxSuggestions int) ([]string, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" || maxSuggestions <= 0 {
		return []string{}, nil
	}

	fuzzy := bleve.NewFuzzyQuery(normalized)
	fuzzy.SetField("normalized")
	fuzzy.SetFuzziness(2)

	prefix := bleve.NewPrefixQuery(normalized)
	prefix.SetField("normalized")
	prefix.SetBoost(0.5)

	typeQuery := bleve.NewTermQuery(string(DocTypeHeadword))
	typeQuery.SetField("type")

	q := bleve.NewConjunctionQuery(bleve.NewDisjunctionQuery(fuzzy, prefix), typeQuery)

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(q, maxSuggestions, 0, false)
	req.Fields = []string{"text"}
	req.SortBy([]string{"-_score", "normalized"})

	result, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("suggest headwords: %w", err)
	}

	suggestions := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		if txt, ok := hit.Fields["text"].(string); ok && !strings.EqualFold(txt, normalized) {
			suggestions = append(suggestions, txt)
		}
	}
	return suggestions, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		lower := strings.ToLower(q)
		textQueries := []query.Query{}

		// Word text match with highest boost
		textMatch := bleve.NewMatchQuery(q)
		textMatch.SetField("text")
		textMatch.SetBoost(3.0)
		textQueries = append(textQueries, textMatch)

		synonymMatch := bleve.NewMatchQuery(q)
		synonymMatch.SetField("synonyms")
		synonymMatch.SetBoost(1.5)
		textQueries = append(textQueries, synonymMatch)

		meaningMatch := bleve.NewMatchQuery(q)
		meaningMatch.SetField("meaning")
		textQueries = append(textQueries, meaningMatch)

		// Typo tolerance on the whole word
		if params.Fuzziness > 0 {
			fuzzyQuery := bleve.NewFuzzyQuery(lower)
			fuzzyQuery.SetFuzziness(min(params.Fuzziness, 2))
			fuzzyQuery.SetField("normalized")
			fuzzyQuery.SetBoost(0.8)
			textQueries = append(textQueries, fuzzyQuery)
		}

		// Prefix query for autocomplete (minimum 2 chars)
		if len(lower) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(lower)
			prefixQuery.SetField("normalized")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if len(params.Types) > 0 {
		typeQueries := make([]query.Query, len(params.Types))
		for i, t := range params.Types {
			tq := bleve.NewTermQuery(string(t))
			tq.SetField("type")
			typeQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(typeQueries...))
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params SearchParams) {
	switch params.SortBy {
	case "text":
		req.SortBy([]string{"normalized"})
	case "recent":
		req.SortBy([]string{"-updated_at"})
	default:
		req.SortBy([]string{"-_score"})
	}
}
