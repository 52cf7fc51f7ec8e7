package gemini

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tenk "github.com/nevindra/tenk"
)

// maxPassageBytes bounds the amount of passage text sent per scoring call.
// Section-level parents can run to tens of kilobytes of table markup; the
// head of the section is enough signal to rate relevance.
const maxPassageBytes = 6000

// Reranker scores query-passage relevance with a Gemini model. Scores are
// in [0, 1]. Failures are returned as-is; graceful degradation is the
// caller's decision.
type Reranker struct {
	client *Client
}

var _ tenk.Reranker = (*Reranker)(nil)

// NewReranker creates a Reranker backed by the given client.
func NewReranker(client *Client) *Reranker {
	return &Reranker{client: client}
}

// Score asks the model to rate the passage 0-10 against the query and
// normalizes to [0, 1].
func (r *Reranker) Score(ctx context.Context, query, passage string) (float32, error) {
	if len(passage) > maxPassageBytes {
		passage = truncateOnRune(passage, maxPassageBytes)
	}

	prompt := fmt.Sprintf(
		"Rate how relevant the following excerpt from a financial filing is to the question, on a scale of 0 to 10. Respond with a single number and nothing else.\n\nQuestion: %s\n\nExcerpt:\n%s",
		query, passage,
	)

	out, err := r.client.Generate(ctx, prompt)
	if err != nil {
		return 0, err
	}

	fields := strings.Fields(out)
	if len(fields) == 0 {
		return 0, wrapErr("empty relevance response")
	}
	score, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, wrapErr("unparseable relevance score: " + strings.TrimSpace(out))
	}
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return float32(score / 10), nil
}

// truncateOnRune cuts s to at most n bytes without splitting a codepoint.
func truncateOnRune(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}
