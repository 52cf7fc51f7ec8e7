package ingest

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	tenk "github.com/nevindra/tenk"
)

// Section is one heading-delimited region of a converted filing, carrying
// the page label of its first character.
type Section struct {
	Text      string
	PageLabel string
}

// SectionSplitter cuts markdown into sections at heading and thematic-break
// boundaries using the parsed AST, so pipes inside tables and hash marks
// inside code spans never trigger a false cut. Sections partition the
// document: concatenating them (plus trimmed whitespace) recovers every
// character of the input.
type SectionSplitter struct {
	md goldmark.Markdown
}

// NewSectionSplitter creates a SectionSplitter.
func NewSectionSplitter() *SectionSplitter {
	return &SectionSplitter{md: goldmark.New()}
}

// Split parses the markdown and returns its sections in document order.
// Text before the first boundary becomes its own section. A document with
// no boundaries is one section. Blank sections are dropped.
func (s *SectionSplitter) Split(doc tenk.Markdown) []Section {
	src := []byte(doc.Text)
	root := s.md.Parser().Parse(text.NewReader(src))

	cuts := headingOffsets(src, root)
	if len(cuts) == 0 || cuts[0] != 0 {
		cuts = append([]int{0}, cuts...)
	}

	var sections []Section
	for i, start := range cuts {
		end := len(src)
		if i+1 < len(cuts) {
			end = cuts[i+1]
		}
		body := strings.TrimSpace(string(src[start:end]))
		if body == "" {
			continue
		}
		sections = append(sections, Section{
			Text:      body,
			PageLabel: doc.PageAt(start),
		})
	}
	return sections
}

// headingOffsets returns the byte offset of each structural cut, ascending.
// Cuts land at top-level heading lines (setext and ATX both) and after
// thematic breaks. A break itself carries no source lines, so its cut is the
// start of the next block that does.
func headingOffsets(src []byte, root ast.Node) []int {
	var offsets []int
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch b := n.(type) {
		case *ast.Heading:
			if b.Lines().Len() == 0 {
				continue
			}
			offsets = append(offsets, lineStart(src, b.Lines().At(0).Start))
		case *ast.ThematicBreak:
			if next := firstLined(n.NextSibling()); next != nil {
				offsets = append(offsets, lineStart(src, next.Lines().At(0).Start))
			}
		}
	}
	return offsets
}

// firstLined returns the first sibling from n onward that has source lines.
func firstLined(n ast.Node) ast.Node {
	for ; n != nil; n = n.NextSibling() {
		if n.Lines().Len() > 0 {
			return n
		}
	}
	return nil
}

// lineStart walks back from off to the first byte after the previous
// newline. The AST reports where heading text begins; the cut has to land
// before the "#" markers.
func lineStart(src []byte, off int) int {
	if off > len(src) {
		off = len(src)
	}
	for off > 0 && src[off-1] != '\n' {
		off--
	}
	return off
}
