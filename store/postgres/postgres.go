// Package postgres implements tenk.Store using PostgreSQL with pgvector
// for native vector similarity search.
//
// Store accepts an externally-owned *pgxpool.Pool via constructor
// injection. The caller creates and closes the pool.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	tenk "github.com/nevindra/tenk"
)

// Store implements tenk.Store backed by PostgreSQL with pgvector.
// Vector search uses HNSW indexes with cosine distance.
type Store struct {
	pool *pgxpool.Pool
	cfg  pgConfig
}

// pgConfig holds store configuration set via Option functions.
type pgConfig struct {
	embeddingDimension int // 0 = untyped vector
	hnswM              int // 0 = pgvector default (16)
	hnswEFConstruction int // 0 = pgvector default (64)
	hnswEFSearch       int // 0 = pgvector default (40)
}

// Option configures a PostgreSQL Store.
type Option func(*pgConfig)

// WithEmbeddingDimension sets the vector column dimension (e.g. 768).
// When set, CREATE TABLE uses vector(N) instead of untyped vector, enabling
// better index optimization and catching dimension mismatches at insert time.
// Only affects new table creation (no ALTER on existing tables).
func WithEmbeddingDimension(dim int) Option {
	return func(c *pgConfig) { c.embeddingDimension = dim }
}

// WithHNSWM sets the HNSW m parameter (max connections per node).
// Higher values improve recall at the cost of memory. Default: pgvector's 16.
// Only affects index creation (CREATE INDEX IF NOT EXISTS).
func WithHNSWM(m int) Option {
	return func(c *pgConfig) { c.hnswM = m }
}

// WithEFConstruction sets the HNSW ef_construction parameter (build-time
// candidate list size). Higher values improve index quality at the cost of
// slower builds. Default: pgvector's 64.
// Only affects index creation (CREATE INDEX IF NOT EXISTS).
func WithEFConstruction(ef int) Option {
	return func(c *pgConfig) { c.hnswEFConstruction = ef }
}

// WithEFSearch sets the HNSW ef_search parameter (query-time candidate list
// size). Higher values improve recall at the cost of latency. Default:
// pgvector's 40. Applied via SET during Init().
func WithEFSearch(ef int) Option {
	return func(c *pgConfig) { c.hnswEFSearch = ef }
}

var _ tenk.Store = (*Store)(nil)

// New creates a Store using an existing pgxpool.Pool.
// The caller owns the pool and is responsible for closing it.
func New(pool *pgxpool.Pool, opts ...Option) *Store {
	var cfg pgConfig
	for _, o := range opts {
		o(&cfg)
	}
	return &Store{pool: pool, cfg: cfg}
}

// vectorType returns "vector" or "vector(N)" depending on config.
func (s *Store) vectorType() string {
	if s.cfg.embeddingDimension > 0 {
		return fmt.Sprintf("vector(%d)", s.cfg.embeddingDimension)
	}
	return "vector"
}

// hnswWithClause returns the WITH (...) clause for HNSW index creation,
// or an empty string if no tuning params are set.
func (s *Store) hnswWithClause() string {
	var parts []string
	if s.cfg.hnswM > 0 {
		parts = append(parts, fmt.Sprintf("m = %d", s.cfg.hnswM))
	}
	if s.cfg.hnswEFConstruction > 0 {
		parts = append(parts, fmt.Sprintf("ef_construction = %d", s.cfg.hnswEFConstruction))
	}
	if len(parts) == 0 {
		return ""
	}
	return " WITH (" + strings.Join(parts, ", ") + ")"
}

// Init creates the pgvector extension, the chunks table, and indexes.
// Safe to call multiple times (all statements are idempotent).
func (s *Store) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			parent_id TEXT,
			section_type TEXT NOT NULL,
			table_name TEXT,
			page_label TEXT NOT NULL DEFAULT 'unknown',
			text TEXT NOT NULL,
			embedding %s
		)`, s.vectorType()),
		`CREATE INDEX IF NOT EXISTS chunks_parent_idx ON chunks(parent_id)`,
		`CREATE INDEX IF NOT EXISTS chunks_kind_idx ON chunks(kind)`,
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS chunks_embedding_idx ON chunks USING hnsw (embedding vector_cosine_ops)%s`, s.hnswWithClause()),
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: init: %w", err)
		}
	}

	if s.cfg.hnswEFSearch > 0 {
		if _, err := s.pool.Exec(ctx, fmt.Sprintf("SET hnsw.ef_search = %d", s.cfg.hnswEFSearch)); err != nil {
			return fmt.Errorf("postgres: set ef_search: %w", err)
		}
	}

	return nil
}

// WriteChunk inserts or replaces a chunk.
func (s *Store) WriteChunk(ctx context.Context, chunk tenk.Chunk) error {
	var parentID *string
	if chunk.ParentID != "" {
		parentID = &chunk.ParentID
	}
	var tableName *string
	if chunk.TableName != "" {
		v := string(chunk.TableName)
		tableName = &v
	}
	pageLabel := chunk.PageLabel
	if pageLabel == "" {
		pageLabel = tenk.PageUnknown
	}

	if len(chunk.Embedding) > 0 {
		embStr := serializeEmbedding(chunk.Embedding)
		_, err := s.pool.Exec(ctx,
			`INSERT INTO chunks (id, kind, parent_id, section_type, table_name, page_label, text, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8::vector)
			 ON CONFLICT (id) DO UPDATE SET
			   kind = EXCLUDED.kind,
			   parent_id = EXCLUDED.parent_id,
			   section_type = EXCLUDED.section_type,
			   table_name = EXCLUDED.table_name,
			   page_label = EXCLUDED.page_label,
			   text = EXCLUDED.text,
			   embedding = EXCLUDED.embedding`,
			chunk.ID, string(chunk.Kind), parentID, string(chunk.SectionType), tableName, pageLabel, chunk.Text, embStr)
		if err != nil {
			return fmt.Errorf("postgres: write chunk: %w", err)
		}
		return nil
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO chunks (id, kind, parent_id, section_type, table_name, page_label, text, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULL)
		 ON CONFLICT (id) DO UPDATE SET
		   kind = EXCLUDED.kind,
		   parent_id = EXCLUDED.parent_id,
		   section_type = EXCLUDED.section_type,
		   table_name = EXCLUDED.table_name,
		   page_label = EXCLUDED.page_label,
		   text = EXCLUDED.text,
		   embedding = NULL`,
		chunk.ID, string(chunk.Kind), parentID, string(chunk.SectionType), tableName, pageLabel, chunk.Text)
	if err != nil {
		return fmt.Errorf("postgres: write chunk: %w", err)
	}
	return nil
}

// buildChunkFiltersPg translates filters into numbered WHERE clauses
// starting at placeholder $startIdx. Unknown fields are rejected.
func buildChunkFiltersPg(filters []tenk.ChunkFilter, startIdx int) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}
	var clauses []string
	var args []any
	idx := startIdx
	for _, f := range filters {
		if f.Op != tenk.OpEq {
			return "", nil, fmt.Errorf("postgres: unsupported filter op %q", f.Op)
		}
		switch f.Field {
		case "kind", "section_type", "table_name", "parent_id", "page_label":
			clauses = append(clauses, "c."+f.Field+" = $"+strconv.Itoa(idx))
			args = append(args, f.Value)
			idx++
		default:
			return "", nil, fmt.Errorf("postgres: unknown filter field %q", f.Field)
		}
	}
	return " AND " + strings.Join(clauses, " AND "), args, nil
}

// SearchChunks performs vector similarity search over chunks using
// pgvector's cosine distance operator with the HNSW index.
func (s *Store) SearchChunks(ctx context.Context, embedding []float32, topK int, filters ...tenk.ChunkFilter) ([]tenk.ScoredChunk, error) {
	embStr := serializeEmbedding(embedding)
	whereExtra, filterArgs, err := buildChunkFiltersPg(filters, 3) // $1=embedding, $2=topK
	if err != nil {
		return nil, err
	}

	q := `SELECT c.id, c.kind, c.parent_id, c.section_type, c.table_name, c.page_label, c.text,
	        1 - (c.embedding <=> $1::vector) AS score
	 FROM chunks c
	 WHERE c.embedding IS NOT NULL` + whereExtra + `
	 ORDER BY c.embedding <=> $1::vector
	 LIMIT $2`

	args := append([]any{embStr, topK}, filterArgs...)
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: search chunks: %w", err)
	}
	defer rows.Close()

	var results []tenk.ScoredChunk
	for rows.Next() {
		var c tenk.Chunk
		var kind, sectionType string
		var parentID, tableName *string
		var score float32
		if err := rows.Scan(&c.ID, &kind, &parentID, &sectionType, &tableName, &c.PageLabel, &c.Text, &score); err != nil {
			return nil, fmt.Errorf("postgres: scan chunk: %w", err)
		}
		c.Kind = tenk.ChunkKind(kind)
		c.SectionType = tenk.SectionType(sectionType)
		if parentID != nil {
			c.ParentID = *parentID
		}
		if tableName != nil {
			c.TableName = tenk.TableName(*tableName)
		}
		results = append(results, tenk.ScoredChunk{Chunk: c, Score: score})
	}
	return results, rows.Err()
}

// GetChunksByIDs returns chunks matching the given IDs. Missing IDs are
// skipped.
func (s *Store) GetChunksByIDs(ctx context.Context, ids []string) ([]tenk.Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, kind, parent_id, section_type, table_name, page_label, text
		 FROM chunks WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("postgres: get chunks by ids: %w", err)
	}
	defer rows.Close()

	var chunks []tenk.Chunk
	for rows.Next() {
		var c tenk.Chunk
		var kind, sectionType string
		var parentID, tableName *string
		if err := rows.Scan(&c.ID, &kind, &parentID, &sectionType, &tableName, &c.PageLabel, &c.Text); err != nil {
			return nil, fmt.Errorf("postgres: scan chunk: %w", err)
		}
		c.Kind = tenk.ChunkKind(kind)
		c.SectionType = tenk.SectionType(sectionType)
		if parentID != nil {
			c.ParentID = *parentID
		}
		if tableName != nil {
			c.TableName = tenk.TableName(*tableName)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// Reset deletes all chunks and reports how many were removed.
func (s *Store) Reset(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM chunks`)
	if err != nil {
		return 0, fmt.Errorf("postgres: reset: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Close is a no-op; the pool is owned by the caller.
func (s *Store) Close() error { return nil }

// serializeEmbedding formats a vector as a pgvector literal.
func serializeEmbedding(embedding []float32) string {
	data, _ := json.Marshal(embedding)
	return string(data)
}
