// Package search exposes filing retrieval as a model-callable tool.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	tenk "github.com/nevindra/tenk"
)

// SearchTool runs the retrieval pipeline and formats results as framed
// DATA_CHUNK blocks with page and section provenance, so a model can cite
// where each number came from.
type SearchTool struct {
	retriever tenk.Retriever
}

var _ tenk.Tool = (*SearchTool)(nil)

// New creates a SearchTool over the given retriever.
func New(r tenk.Retriever) *SearchTool {
	return &SearchTool{retriever: r}
}

func (s *SearchTool) Definitions() []tenk.ToolDefinition {
	return []tenk.ToolDefinition{{
		Name:        "search_10k",
		Kind:        tenk.ToolSearch,
		Description: "Search the ingested annual filing for sections relevant to a financial question. Returns document excerpts with page and section labels.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"query":{"type":"string","description":"The financial question to search for"}},"required":["query"]}`),
	}}
}

func (s *SearchTool) Execute(ctx context.Context, _ string, args json.RawMessage) (tenk.ToolResult, error) {
	var params struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return tenk.ToolResult{Error: "invalid args: " + err.Error()}, nil
	}
	if strings.TrimSpace(params.Query) == "" {
		return tenk.ToolResult{Error: "query must not be empty"}, nil
	}

	results, err := s.retriever.Retrieve(ctx, params.Query)
	if err != nil {
		// Rerank failure still carries usable candidates; surface them with
		// a note rather than returning nothing.
		var rerr *tenk.RerankError
		if errors.As(err, &rerr) && len(rerr.Candidates) > 0 {
			return tenk.ToolResult{
				Content: "NOTE: relevance ranking unavailable, results are unranked.\n\n" + format(rerr.Candidates),
			}, nil
		}
		return tenk.ToolResult{Error: "retrieval error: " + err.Error()}, nil
	}

	if len(results) == 0 {
		return tenk.ToolResult{Content: fmt.Sprintf("No relevant data found for %q.", params.Query)}, nil
	}
	return tenk.ToolResult{Content: format(results)}, nil
}

// format renders results as framed blocks. The frame markers let a model
// keep excerpts apart from each other and from its own reasoning.
func format(results []tenk.RetrievalResult) string {
	var out strings.Builder
	for i, r := range results {
		fmt.Fprintf(&out, "=== DATA_CHUNK %d (page %s, section %s", i+1, pageLabel(r.Chunk), r.Chunk.SectionType)
		if r.Chunk.TableName != "" {
			fmt.Fprintf(&out, ", table %s", r.Chunk.TableName)
		}
		out.WriteString(") ===\n")
		out.WriteString(r.Chunk.Text)
		out.WriteString("\n=== END DATA_CHUNK ===\n\n")
	}
	return strings.TrimRight(out.String(), "\n")
}

func pageLabel(c tenk.Chunk) string {
	if c.PageLabel == "" {
		return tenk.PageUnknown
	}
	return c.PageLabel
}
