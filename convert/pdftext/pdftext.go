// Package pdftext converts PDFs to plain markdown locally, with no network
// dependency. Tables come out as flowed text, so retrieval quality is below
// the hosted parser; it exists for offline runs and tests.
package pdftext

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"

	tenk "github.com/nevindra/tenk"
)

// Converter implements tenk.Converter with local PDF text extraction.
type Converter struct{}

var _ tenk.Converter = (*Converter)(nil)

// New creates a local PDF converter.
func New() *Converter { return &Converter{} }

// Convert extracts text page by page and returns it with one PageSpan per
// non-empty page. Text is NFC-normalized so ligatures and composed
// characters embed consistently with the hosted parser's output.
func (c *Converter) Convert(ctx context.Context, raw []byte) (tenk.Markdown, error) {
	if len(raw) == 0 {
		return tenk.Markdown{}, &tenk.ErrService{Service: "pdftext", Message: "empty PDF content"}
	}
	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return tenk.Markdown{}, &tenk.ErrService{Service: "pdftext", Message: "open pdf: " + err.Error()}
	}

	var sb strings.Builder
	var spans []tenk.PageSpan
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return tenk.Markdown{}, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pageText = strings.TrimSpace(norm.NFC.String(pageText))
		if pageText == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		start := sb.Len()
		sb.WriteString(pageText)
		spans = append(spans, tenk.PageSpan{
			Label: strconv.Itoa(i),
			Start: start,
			End:   sb.Len(),
		})
	}

	return tenk.Markdown{Text: sb.String(), Pages: spans}, nil
}
