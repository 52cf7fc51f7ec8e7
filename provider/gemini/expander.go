package gemini

import (
	"context"
	"fmt"
	"strings"

	tenk "github.com/nevindra/tenk"
)

// Expander rewrites a user query into alternative phrasings using a Gemini
// model, for multi-query retrieval.
type Expander struct {
	client *Client
}

var _ tenk.QueryExpander = (*Expander)(nil)

// NewExpander creates an Expander backed by the given client.
func NewExpander(client *Client) *Expander {
	return &Expander{client: client}
}

// Expand asks the model for n rewrites and returns them, one per line of the
// model output. Numbering and bullets are stripped; the original query is
// never included. At most n rewrites are returned even if the model over-
// delivers.
func (e *Expander) Expand(ctx context.Context, query string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	prompt := fmt.Sprintf(
		"Rewrite the following question about a company's financial filing into %d alternative phrasings that could match different wording in the document. Keep financial terms precise. Respond with one phrasing per line and nothing else.\n\nQuestion: %s",
		n, query,
	)

	out, err := e.client.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var rewrites []string
	for _, line := range strings.Split(out, "\n") {
		line = stripListMarker(strings.TrimSpace(line))
		if line == "" || line == query {
			continue
		}
		rewrites = append(rewrites, line)
		if len(rewrites) == n {
			break
		}
	}
	return rewrites, nil
}

// stripListMarker removes leading "1.", "2)", "-", "*" style markers.
func stripListMarker(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		return strings.TrimSpace(s[i+1:])
	}
	if len(s) > 1 && (s[0] == '-' || s[0] == '*') && s[1] == ' ' {
		return strings.TrimSpace(s[1:])
	}
	return s
}
