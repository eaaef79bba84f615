package agent

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/dashai/internal/backend"
	dasherr "github.com/abdul-hamid-achik/dashai/internal/errors"
	"github.com/abdul-hamid-achik/dashai/internal/logging"
)

// RetrievalHeader introduces the retrieved snippets in the system prompt.
const RetrievalHeader = "Relevant information from the user's knowledge base:"

// Searcher runs a semantic search over the user's documents.
type Searcher interface {
	Search(ctx context.Context, query, userID string, limit int) ([]backend.SearchResult, error)
}

// RetrievalAugmenter fetches knowledge-base snippets for a query.
// Retrieval is best-effort: a failed search yields no context, never an error.
type RetrievalAugmenter struct {
	searcher Searcher
	log      *logging.Logger

	mu      sync.RWMutex
	limit   int
	timeout time.Duration
}

// NewRetrievalAugmenter creates an augmenter. A nil searcher disables retrieval.
func NewRetrievalAugmenter(searcher Searcher, limit int, timeout time.Duration, log *logging.Logger) *RetrievalAugmenter {
	if limit <= 0 {
		limit = 3
	}
	return &RetrievalAugmenter{
		searcher: searcher,
		limit:    limit,
		timeout:  timeout,
		log:      logging.Or(log).WithPrefix("retrieval"),
	}
}

// Configure changes the result-count ceiling and per-search timeout.
func (r *RetrievalAugmenter) Configure(limit int, timeout time.Duration) {
	if r == nil {
		return
	}
	if limit <= 0 {
		limit = 3
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limit = limit
	r.timeout = timeout
}

// Augment returns the formatted retrieval block for query, or "" when
// retrieval is disabled, fails, or finds nothing.
func (r *RetrievalAugmenter) Augment(ctx context.Context, query, userID string) string {
	if r == nil || r.searcher == nil || strings.TrimSpace(query) == "" {
		return ""
	}

	r.mu.RLock()
	limit, timeout := r.limit, r.timeout
	r.mu.RUnlock()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	results, err := r.searcher.Search(ctx, query, userID, limit)
	if err != nil {
		r.log.Warn("semantic search failed, continuing without context",
			logging.Query(query), logging.Error(dasherr.RetrievalFailed(err)), logging.DurationSince(start))
		return ""
	}
	r.log.Debug("semantic search done", logging.Query(query), logging.Count(len(results)), logging.DurationSince(start))
	return formatRetrieval(results)
}

// formatRetrieval renders one bullet per result. Multi-line content is
// flattened so each result stays on exactly one line.
func formatRetrieval(results []backend.SearchResult) string {
	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(RetrievalHeader)
	for _, res := range results {
		b.WriteString("\n- ")
		b.WriteString(strings.Join(strings.Fields(res.Content), " "))
	}
	return b.String()
}
