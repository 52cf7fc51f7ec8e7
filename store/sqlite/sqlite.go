// Package sqlite implements tenk.Store using pure-Go SQLite
// with in-process brute-force vector search. Zero CGO required.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	tenk "github.com/nevindra/tenk"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// StoreOption configures a SQLite Store.
type StoreOption func(*Store)

// WithLogger sets a structured logger for the store.
// When set, the store emits debug logs for every operation including
// timing, row counts, and key parameters. If not set, no logs are emitted.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// Store implements tenk.Store backed by a local SQLite file.
// Embeddings are stored as JSON text and vector search is done
// in-process using brute-force cosine similarity. A full filing is a few
// thousand child chunks, well within brute-force range.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ tenk.Store = (*Store)(nil)

// nopLogger is a logger that discards all output.
var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// New creates a Store using a local SQLite file at dbPath.
// It opens a single shared connection pool with SetMaxOpenConns(1) so that
// all goroutines serialize through one connection, eliminating SQLITE_BUSY
// errors caused by concurrent writers opening independent connections.
func New(dbPath string, opts ...StoreOption) *Store {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		// sql.Open only fails when the driver is not registered; with the
		// blank import above that never happens.
		panic(fmt.Sprintf("sqlite: open driver: %v", err))
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db, logger: nopLogger}
	for _, o := range opts {
		o(s)
	}
	s.logger.Debug("sqlite: store opened", "path", dbPath)
	return s
}

// Init creates the chunks table and its indexes.
func (s *Store) Init(ctx context.Context) error {
	start := time.Now()
	s.logger.Debug("sqlite: init started")

	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		parent_id TEXT,
		section_type TEXT NOT NULL,
		table_name TEXT,
		page_label TEXT NOT NULL DEFAULT 'unknown',
		text TEXT NOT NULL,
		embedding TEXT
	)`)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	_, _ = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_chunks_parent ON chunks(parent_id)`)
	_, _ = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_chunks_kind ON chunks(kind)`)

	s.logger.Info("sqlite: init completed", "duration", time.Since(start))
	return nil
}

// WriteChunk inserts or replaces a chunk.
func (s *Store) WriteChunk(ctx context.Context, chunk tenk.Chunk) error {
	start := time.Now()
	s.logger.Debug("sqlite: write chunk", "id", chunk.ID, "kind", chunk.Kind, "parent_id", chunk.ParentID, "has_embedding", len(chunk.Embedding) > 0)

	var embJSON *string
	if len(chunk.Embedding) > 0 {
		v := serializeEmbedding(chunk.Embedding)
		embJSON = &v
	}
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

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO chunks (id, kind, parent_id, section_type, table_name, page_label, text, embedding)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		chunk.ID, string(chunk.Kind), parentID, string(chunk.SectionType), tableName, pageLabel, chunk.Text, embJSON,
	)
	if err != nil {
		s.logger.Error("sqlite: write chunk failed", "id", chunk.ID, "error", err, "duration", time.Since(start))
		return fmt.Errorf("write chunk: %w", err)
	}
	s.logger.Debug("sqlite: write chunk ok", "id", chunk.ID, "duration", time.Since(start))
	return nil
}

// buildChunkFilters translates ChunkFilter values into SQL WHERE clauses.
// The returned clause includes a leading " AND ..." for each filter.
// Unknown fields are rejected rather than silently ignored.
func buildChunkFilters(filters []tenk.ChunkFilter) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}
	var clauses []string
	var args []any
	for _, f := range filters {
		if f.Op != tenk.OpEq {
			return "", nil, fmt.Errorf("unsupported filter op %q", f.Op)
		}
		switch f.Field {
		case "kind", "section_type", "table_name", "parent_id", "page_label":
			clauses = append(clauses, "c."+f.Field+" = ?")
			args = append(args, f.Value)
		default:
			return "", nil, fmt.Errorf("unknown filter field %q", f.Field)
		}
	}
	return " AND " + strings.Join(clauses, " AND "), args, nil
}

// SearchChunks performs brute-force cosine similarity search over chunks.
func (s *Store) SearchChunks(ctx context.Context, embedding []float32, topK int, filters ...tenk.ChunkFilter) ([]tenk.ScoredChunk, error) {
	start := time.Now()
	s.logger.Debug("sqlite: search chunks", "top_k", topK, "embedding_dim", len(embedding), "filters", len(filters))

	whereExtra, filterArgs, err := buildChunkFilters(filters)
	if err != nil {
		return nil, err
	}

	query := `SELECT c.id, c.kind, c.parent_id, c.section_type, c.table_name, c.page_label, c.text, c.embedding
		FROM chunks c WHERE c.embedding IS NOT NULL` + whereExtra

	rows, err := s.db.QueryContext(ctx, query, filterArgs...)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	defer rows.Close()

	var results []tenk.ScoredChunk
	scanned := 0

	for rows.Next() {
		c, embJSON, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		scanned++
		if !embJSON.Valid {
			continue
		}
		stored, err := deserializeEmbedding(embJSON.String)
		if err != nil {
			continue
		}
		results = append(results, tenk.ScoredChunk{Chunk: c, Score: cosineSimilarity(embedding, stored)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	s.logger.Debug("sqlite: search chunks ok", "scanned", scanned, "returned", len(results), "duration", time.Since(start))
	return results, nil
}

// GetChunksByIDs returns chunks matching the given IDs. Missing IDs are
// skipped.
func (s *Store) GetChunksByIDs(ctx context.Context, ids []string) ([]tenk.Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	start := time.Now()
	s.logger.Debug("sqlite: get chunks by ids", "count", len(ids))

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT c.id, c.kind, c.parent_id, c.section_type, c.table_name, c.page_label, c.text, c.embedding
		FROM chunks c WHERE c.id IN (%s)`, strings.Join(placeholders, ","))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get chunks by ids: %w", err)
	}
	defer rows.Close()

	var chunks []tenk.Chunk
	for rows.Next() {
		c, embJSON, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		if embJSON.Valid {
			c.Embedding, _ = deserializeEmbedding(embJSON.String)
		}
		chunks = append(chunks, c)
	}
	s.logger.Debug("sqlite: get chunks by ids ok", "requested", len(ids), "returned", len(chunks), "duration", time.Since(start))
	return chunks, rows.Err()
}

// GetChunksByParent returns the children of a parent chunk.
func (s *Store) GetChunksByParent(ctx context.Context, parentID string) ([]tenk.Chunk, error) {
	start := time.Now()
	s.logger.Debug("sqlite: get chunks by parent", "parent_id", parentID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.kind, c.parent_id, c.section_type, c.table_name, c.page_label, c.text, c.embedding
		 FROM chunks c WHERE c.parent_id = ?`, parentID)
	if err != nil {
		return nil, fmt.Errorf("get chunks by parent: %w", err)
	}
	defer rows.Close()

	var chunks []tenk.Chunk
	for rows.Next() {
		c, embJSON, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		if embJSON.Valid {
			c.Embedding, _ = deserializeEmbedding(embJSON.String)
		}
		chunks = append(chunks, c)
	}
	s.logger.Debug("sqlite: get chunks by parent ok", "parent_id", parentID, "count", len(chunks), "duration", time.Since(start))
	return chunks, rows.Err()
}

// Reset deletes all chunks and reports how many were removed.
func (s *Store) Reset(ctx context.Context) (int, error) {
	start := time.Now()
	s.logger.Debug("sqlite: reset")

	res, err := s.db.ExecContext(ctx, `DELETE FROM chunks`)
	if err != nil {
		s.logger.Error("sqlite: reset failed", "error", err, "duration", time.Since(start))
		return 0, fmt.Errorf("reset: %w", err)
	}
	n, _ := res.RowsAffected()
	s.logger.Info("sqlite: reset ok", "deleted", n, "duration", time.Since(start))
	return int(n), nil
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	s.logger.Debug("sqlite: closing store")
	err := s.db.Close()
	if err != nil {
		s.logger.Error("sqlite: close failed", "error", err)
	}
	return err
}

// scanChunk reads one row in column order id, kind, parent_id, section_type,
// table_name, page_label, text, embedding.
func scanChunk(rows *sql.Rows) (tenk.Chunk, sql.NullString, error) {
	var c tenk.Chunk
	var kind, sectionType string
	var parentID, tableName, embJSON sql.NullString
	if err := rows.Scan(&c.ID, &kind, &parentID, &sectionType, &tableName, &c.PageLabel, &c.Text, &embJSON); err != nil {
		return tenk.Chunk{}, sql.NullString{}, fmt.Errorf("scan chunk: %w", err)
	}
	c.Kind = tenk.ChunkKind(kind)
	c.SectionType = tenk.SectionType(sectionType)
	if parentID.Valid {
		c.ParentID = parentID.String
	}
	if tableName.Valid {
		c.TableName = tenk.TableName(tableName.String)
	}
	return c, embJSON, nil
}

// --- Vector math ---

// cosineSimilarity computes the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return float32(dot / denom)
}

// serializeEmbedding converts []float32 to a JSON array string.
func serializeEmbedding(embedding []float32) string {
	data, _ := json.Marshal(embedding)
	return string(data)
}

// deserializeEmbedding parses a JSON array string back to []float32.
func deserializeEmbedding(s string) ([]float32, error) {
	var v []float32
	err := json.Unmarshal([]byte(s), &v)
	return v, err
}
