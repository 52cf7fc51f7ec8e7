package tenk

import "context"

// FilterOp is a comparison operator for a ChunkFilter.
type FilterOp string

const (
	OpEq FilterOp = "="
)

// ChunkFilter narrows a store search by a metadata field. Stores translate
// filters into their native query syntax; unknown fields are an error at
// search time, not at construction.
type ChunkFilter struct {
	Field string
	Op    FilterOp
	Value string
}

// ByKind filters search results to a single chunk kind.
func ByKind(kind ChunkKind) ChunkFilter {
	return ChunkFilter{Field: "kind", Op: OpEq, Value: string(kind)}
}

// BySectionType filters search results to a single section type.
func BySectionType(section SectionType) ChunkFilter {
	return ChunkFilter{Field: "section_type", Op: OpEq, Value: string(section)}
}

// ByTable filters search results to chunks labeled with a table name.
func ByTable(table TableName) ChunkFilter {
	return ChunkFilter{Field: "table_name", Op: OpEq, Value: string(table)}
}

// ByParent filters search results to the children of a parent chunk.
func ByParent(parentID string) ChunkFilter {
	return ChunkFilter{Field: "parent_id", Op: OpEq, Value: parentID}
}

// Store persists chunks and serves similarity search over their embeddings.
// Implementations must preserve chunk metadata verbatim and return search
// results ordered by descending similarity.
type Store interface {
	// Init creates schema objects. Safe to call more than once.
	Init(ctx context.Context) error

	// WriteChunk upserts a single chunk, embedding included.
	WriteChunk(ctx context.Context, chunk Chunk) error

	// SearchChunks returns up to topK chunks nearest to the query embedding,
	// restricted by the given filters. An empty result is not an error.
	SearchChunks(ctx context.Context, embedding []float32, topK int, filters ...ChunkFilter) ([]ScoredChunk, error)

	// GetChunksByIDs fetches chunks by ID. Missing IDs are skipped, not
	// reported; callers that care compare lengths.
	GetChunksByIDs(ctx context.Context, ids []string) ([]Chunk, error)

	// Reset deletes all chunks and reports how many were removed.
	Reset(ctx context.Context) (int, error)

	Close() error
}
