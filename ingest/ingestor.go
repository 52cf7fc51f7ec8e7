package ingest

import (
	"context"
	"fmt"
	"io"

	tenk "github.com/nevindra/tenk"
)

// IngestResult holds the outcome of an ingest run.
type IngestResult struct {
	ParentCount int
	ChildCount  int
	ChunkCount  int
}

// Ingestor provides end-to-end ingestion: convert, split into sections,
// classify, window into children, embed, and store. Parents and children
// are both embedded; children link back via ParentID.
type Ingestor struct {
	store     tenk.Store
	embedding tenk.EmbeddingProvider
	converter tenk.Converter
	splitter  *SectionSplitter
	window    int
	batchSize int
}

// NewIngestor creates an Ingestor with sensible defaults.
func NewIngestor(store tenk.Store, emb tenk.EmbeddingProvider, conv tenk.Converter, opts ...Option) *Ingestor {
	ing := &Ingestor{
		store:     store,
		embedding: emb,
		converter: conv,
		splitter:  NewSectionSplitter(),
		window:    DefaultWindow,
		batchSize: 64,
	}
	for _, o := range opts {
		o(ing)
	}
	return ing
}

// Ingest converts a raw source document and writes its full chunk hierarchy
// to the store, parents before their children. Conversion failure surfaces
// as ErrSourceUnavailable with nothing written. Write failures do not stop
// the run; if any occur the result is still returned along with a
// *PartialIngestError describing the shortfall.
func (ing *Ingestor) Ingest(ctx context.Context, raw []byte) (IngestResult, error) {
	doc, err := ing.converter.Convert(ctx, raw)
	if err != nil {
		return IngestResult{}, fmt.Errorf("%w: %v", tenk.ErrSourceUnavailable, err)
	}

	sections := ing.splitter.Split(doc)
	if len(sections) == 0 {
		return IngestResult{}, nil
	}

	parents, children := ing.buildChunks(sections)

	all := make([]tenk.Chunk, 0, len(parents)+len(children))
	all = append(all, parents...)
	all = append(all, children...)
	if err := ing.batchEmbed(ctx, all); err != nil {
		return IngestResult{}, err
	}

	result := IngestResult{
		ParentCount: len(parents),
		ChildCount:  len(children),
		ChunkCount:  len(all),
	}

	written := 0
	var writeErr error
	for _, c := range all {
		if err := ing.store.WriteChunk(ctx, c); err != nil {
			writeErr = err
			continue
		}
		written++
	}
	if writeErr != nil {
		return result, &tenk.PartialIngestError{
			Expected: len(all),
			Written:  written,
			Err:      writeErr,
		}
	}
	return result, nil
}

// IngestReader reads all content from r and ingests it.
func (ing *Ingestor) IngestReader(ctx context.Context, r io.Reader) (IngestResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return IngestResult{}, fmt.Errorf("read: %w", err)
	}
	return ing.Ingest(ctx, data)
}

// buildChunks turns sections into parent chunks and windowed children.
// Children inherit every metadata label from their parent; classification
// runs once per section on the full parent text.
func (ing *Ingestor) buildChunks(sections []Section) (parents, children []tenk.Chunk) {
	for _, sec := range sections {
		sectionType, table := tenk.Classify(sec.Text)

		parent := tenk.Chunk{
			ID:          tenk.NewID(),
			Text:        sec.Text,
			Kind:        tenk.KindParent,
			SectionType: sectionType,
			TableName:   table,
			PageLabel:   sec.PageLabel,
		}
		parents = append(parents, parent)

		for _, w := range Window(sec.Text, ing.window) {
			children = append(children, tenk.Chunk{
				ID:          tenk.NewID(),
				Text:        w,
				Kind:        tenk.KindChild,
				ParentID:    parent.ID,
				SectionType: sectionType,
				TableName:   table,
				PageLabel:   sec.PageLabel,
			})
		}
	}
	return parents, children
}

// batchEmbed embeds chunks in batches of ing.batchSize.
func (ing *Ingestor) batchEmbed(ctx context.Context, chunks []tenk.Chunk) error {
	for i := 0; i < len(chunks); i += ing.batchSize {
		end := i + ing.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		batch := chunks[i:end]
		texts := make([]string, len(batch))
		for j, c := range batch {
			texts[j] = c.Text
		}

		embeddings, err := ing.embedding.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch %d-%d: %w", i, end, err)
		}

		for j := range batch {
			if j < len(embeddings) {
				chunks[i+j].Embedding = embeddings[j]
			}
		}
	}
	return nil
}
