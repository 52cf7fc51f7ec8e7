package tenk

import "context"

// EmbeddingProvider turns text into fixed-dimension vectors. Inputs and
// outputs correspond by index; every vector has Dimensions() entries.
type EmbeddingProvider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Name() string
}

// Generator produces free-form text from a prompt. Providers wrap their
// native chat or completion APIs behind this single call.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// QueryExpander rewrites a query into n alternative phrasings. The original
// query is not included in the result.
type QueryExpander interface {
	Expand(ctx context.Context, query string, n int) ([]string, error)
}

// Reranker scores how well a passage answers a query. Higher is better;
// scores from one reranker are comparable to each other but not across
// implementations.
type Reranker interface {
	Score(ctx context.Context, query, passage string) (float32, error)
}

// Converter turns a raw source document into markdown with page provenance.
type Converter interface {
	Convert(ctx context.Context, raw []byte) (Markdown, error)
}

// Retriever answers a query with scored, context-expanded chunks.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]RetrievalResult, error)
}
