package tenk

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// EngineOption configures an Engine.
type EngineOption func(*engineConfig)

type engineConfig struct {
	expander       QueryExpander
	candidateLimit int
	topK           int
	expansions     int
	densityFilter  bool
	minPipes       int
	minDenseLen    int
}

// WithCandidateLimit sets how many child chunks stage one fetches per query
// variant before filtering and reranking. Default is 50.
func WithCandidateLimit(n int) EngineOption {
	return func(c *engineConfig) { c.candidateLimit = n }
}

// WithTopK sets how many results Retrieve returns after reranking.
// Default is 7.
func WithTopK(k int) EngineOption {
	return func(c *engineConfig) { c.topK = k }
}

// WithQueryExpansion sets an expander that rewrites the query into n extra
// phrasings searched alongside the original. Expansion failure is non-fatal;
// retrieval continues with the original query alone.
func WithQueryExpansion(e QueryExpander, n int) EngineOption {
	return func(c *engineConfig) {
		c.expander = e
		c.expansions = n
	}
}

// WithoutDensityFilter disables the table-density candidate filter.
func WithoutDensityFilter() EngineOption {
	return func(c *engineConfig) { c.densityFilter = false }
}

// WithDensityThresholds overrides the density filter thresholds. A candidate
// survives when its parent text has more than minPipes pipe characters or is
// longer than minDenseLen characters.
func WithDensityThresholds(minPipes, minDenseLen int) EngineOption {
	return func(c *engineConfig) {
		c.minPipes = minPipes
		c.minDenseLen = minDenseLen
	}
}

// Engine is the two-stage retriever: a high-recall vector search over child
// chunks followed by density filtering and pairwise reranking over their
// parent sections. Answer text always comes from parents; children exist
// only to be matched.
type Engine struct {
	store     Store
	embedding EmbeddingProvider
	reranker  Reranker
	cfg       engineConfig
}

var _ Retriever = (*Engine)(nil)

// NewEngine creates an Engine over the given store, embedding provider, and
// reranker. Defaults: 50 candidates, top 7 results, density filter on with
// thresholds of 5 pipes or 1500 characters.
func NewEngine(store Store, embedding EmbeddingProvider, reranker Reranker, opts ...EngineOption) *Engine {
	cfg := engineConfig{
		candidateLimit: 50,
		topK:           7,
		expansions:     2,
		densityFilter:  true,
		minPipes:       5,
		minDenseLen:    1500,
	}
	for _, o := range opts {
		o(&cfg)
	}
	return &Engine{store: store, embedding: embedding, reranker: reranker, cfg: cfg}
}

// Retrieve runs the full pipeline: expand the query, vector-search child
// chunks for each variant, resolve children to their parent sections, filter
// by table density, rerank, and return the top results sorted by score
// descending. An empty store yields an empty slice, not an error. If the
// reranker fails, Retrieve returns a *RerankError carrying the unranked
// candidates so callers can degrade instead of failing outright.
func (e *Engine) Retrieve(ctx context.Context, query string) ([]RetrievalResult, error) {
	queries := e.expandQuery(ctx, query)

	embs, err := e.embedding.Embed(ctx, queries)
	if err != nil {
		return nil, fmt.Errorf("embed queries: %w", err)
	}
	if len(embs) != len(queries) {
		return nil, fmt.Errorf("embed queries: got %d embeddings for %d queries", len(embs), len(queries))
	}

	candidates, err := e.searchCandidates(ctx, embs)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []RetrievalResult{}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parents := e.resolveParents(ctx, candidates)

	if e.cfg.densityFilter {
		parents = e.filterByDensity(parents)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return e.rerank(ctx, query, parents)
}

// expandQuery returns the original query plus up to cfg.expansions rewrites.
// Expansion failures degrade to the original query alone.
func (e *Engine) expandQuery(ctx context.Context, query string) []string {
	queries := []string{query}
	if e.cfg.expander == nil || e.cfg.expansions <= 0 {
		return queries
	}
	extra, err := e.cfg.expander.Expand(ctx, query, e.cfg.expansions)
	if err != nil {
		return queries // degrade gracefully
	}
	for _, q := range extra {
		q = strings.TrimSpace(q)
		if q != "" && q != query {
			queries = append(queries, q)
		}
	}
	return queries
}

// searchCandidates runs a child-only vector search per query embedding and
// unions the hits by ID, keeping the best score and first-seen order.
func (e *Engine) searchCandidates(ctx context.Context, embs [][]float32) ([]ScoredChunk, error) {
	seen := make(map[string]int)
	var merged []ScoredChunk

	for _, emb := range embs {
		hits, err := e.store.SearchChunks(ctx, emb, e.cfg.candidateLimit, ByKind(KindChild))
		if err != nil {
			return nil, fmt.Errorf("vector search: %w", err)
		}
		for _, h := range hits {
			if i, ok := seen[h.ID]; ok {
				if h.Score > merged[i].Score {
					merged[i].Score = h.Score
				}
				continue
			}
			seen[h.ID] = len(merged)
			merged = append(merged, h)
		}
	}
	return merged, nil
}

// resolveParents maps matched children to their parent sections, keeping the
// best child score per parent and first-match order. Children without a
// parent pass through as themselves. Store failures are non-fatal; children
// stand in for their parents.
func (e *Engine) resolveParents(ctx context.Context, candidates []ScoredChunk) []RetrievalResult {
	parentIDs := make(map[string]bool)
	var pIDs []string
	for _, c := range candidates {
		if c.ParentID != "" && !parentIDs[c.ParentID] {
			parentIDs[c.ParentID] = true
			pIDs = append(pIDs, c.ParentID)
		}
	}

	parentMap := make(map[string]Chunk, len(pIDs))
	if len(pIDs) > 0 {
		parents, err := e.store.GetChunksByIDs(ctx, pIDs)
		if err == nil {
			for _, p := range parents {
				parentMap[p.ID] = p
			}
		}
		// on error parentMap stays empty and children stand in
	}

	seen := make(map[string]int)
	var results []RetrievalResult
	for _, c := range candidates {
		parent, ok := parentMap[c.ParentID]
		if !ok {
			results = append(results, RetrievalResult{Chunk: c.Chunk, Score: c.Score})
			continue
		}
		if i, dup := seen[parent.ID]; dup {
			if c.Score > results[i].Score {
				results[i].Score = c.Score
			}
			continue
		}
		seen[parent.ID] = len(results)
		results = append(results, RetrievalResult{Chunk: parent, Score: c.Score})
	}
	return results
}

// filterByDensity keeps candidates whose text looks numerically dense: more
// pipe characters than minPipes, or longer than minDenseLen. Length is
// counted in runes, matching the character-based child windowing. If the
// filter would reject everything, the unfiltered set passes through so a
// sparse corpus still answers.
func (e *Engine) filterByDensity(results []RetrievalResult) []RetrievalResult {
	var dense []RetrievalResult
	for _, r := range results {
		if strings.Count(r.Chunk.Text, "|") > e.cfg.minPipes || utf8.RuneCountInString(r.Chunk.Text) > e.cfg.minDenseLen {
			dense = append(dense, r)
		}
	}
	if len(dense) == 0 {
		return results
	}
	return dense
}

// rerank scores every candidate against the query, sorts descending, and
// trims to topK. A scoring failure returns a *RerankError carrying the
// unranked candidates.
func (e *Engine) rerank(ctx context.Context, query string, candidates []RetrievalResult) ([]RetrievalResult, error) {
	for i := range candidates {
		score, err := e.reranker.Score(ctx, query, candidates[i].Chunk.Text)
		if err != nil {
			return nil, &RerankError{Candidates: candidates, Err: err}
		}
		candidates[i].Score = score
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > e.cfg.topK {
		candidates = candidates[:e.cfg.topK]
	}
	return candidates, nil
}

// --- LexicalReranker ---

// LexicalReranker scores by query-term overlap with the passage. It makes no
// external calls, so it never fails; useful as a baseline or offline fallback.
type LexicalReranker struct{}

var _ Reranker = (*LexicalReranker)(nil)

// NewLexicalReranker creates a term-overlap Reranker.
func NewLexicalReranker() *LexicalReranker {
	return &LexicalReranker{}
}

// Score returns the fraction of distinct query terms present in the passage.
func (r *LexicalReranker) Score(_ context.Context, query, passage string) (float32, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return 0, nil
	}
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		seen[t] = true
	}
	lower := strings.ToLower(passage)
	matched := 0
	for t := range seen {
		if strings.Contains(lower, t) {
			matched++
		}
	}
	return float32(matched) / float32(len(seen)), nil
}
