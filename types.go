package tenk

// --- Domain types (chunk store records) ---

// ChunkKind distinguishes section-level parents from window-level children.
type ChunkKind string

const (
	KindParent ChunkKind = "parent"
	KindChild  ChunkKind = "child"
)

// SectionType is the coarse semantic tag assigned to parent chunks at
// ingestion time. It is immutable after ingestion.
type SectionType string

const (
	SectionGeneralText        SectionType = "general_text"
	SectionFinancialStatement SectionType = "financial_statement"
	SectionRiskAnalysis       SectionType = "risk_analysis"
)

// TableName identifies which financial statement a chunk belongs to.
// Set only when SectionType is SectionFinancialStatement.
type TableName string

const (
	TableBalanceSheet    TableName = "balance_sheet"
	TableIncomeStatement TableName = "income_statement"
	TableCashFlow        TableName = "cash_flow"
)

// PageUnknown is the page label used when the source document carries no
// page provenance for a chunk.
const PageUnknown = "unknown"

// Chunk is the atomic retrievable unit. A parent chunk holds one coherent
// section of the source document; a child chunk is a fixed-width window of
// its parent's text, linked back via ParentID. Children are located by
// querying on ParentID; parents hold no forward references.
type Chunk struct {
	ID          string      `json:"id"`
	Text        string      `json:"text"`
	Kind        ChunkKind   `json:"kind"`
	ParentID    string      `json:"parent_id,omitempty"`
	SectionType SectionType `json:"section_type,omitempty"`
	TableName   TableName   `json:"table_name,omitempty"`
	PageLabel   string      `json:"page_label"`
	Embedding   []float32   `json:"-"`
}

// ScoredChunk is a chunk with a similarity or relevance score attached.
type ScoredChunk struct {
	Chunk
	Score float32 `json:"score"`
}

// RetrievalResult is a reranked chunk returned to the answering agent.
// Score is the reranker's relevance score; PageLabel and SectionType carry
// ingestion-time provenance through unmodified.
type RetrievalResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float32 `json:"score"`
}

// --- Source document types ---

// PageSpan maps a byte range of a converted document to its source page.
type PageSpan struct {
	Label string `json:"label"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Markdown is one normalized markdown document produced by a Converter,
// with ordered page-provenance spans over its text.
type Markdown struct {
	Text  string     `json:"text"`
	Pages []PageSpan `json:"pages,omitempty"`
}

// PageAt returns the page label covering byte offset off, or PageUnknown.
func (m Markdown) PageAt(off int) string {
	for _, p := range m.Pages {
		if off >= p.Start && off < p.End {
			return p.Label
		}
	}
	return PageUnknown
}
