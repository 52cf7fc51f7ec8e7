package ingest

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithWindow sets the child chunk width in runes. Default is DefaultWindow.
func WithWindow(w int) Option {
	return func(ing *Ingestor) {
		if w > 0 {
			ing.window = w
		}
	}
}

// WithBatchSize sets the embedding batch size. Default is 64.
func WithBatchSize(n int) Option {
	return func(ing *Ingestor) {
		if n > 0 {
			ing.batchSize = n
		}
	}
}

// WithSplitter replaces the default heading-based section splitter.
func WithSplitter(s *SectionSplitter) Option {
	return func(ing *Ingestor) {
		ing.splitter = s
	}
}
