package tenk

import "testing"

func TestMarkdownPageAt(t *testing.T) {
	doc := Markdown{
		Text: "page one text\n\npage two text",
		Pages: []PageSpan{
			{Label: "1", Start: 0, End: 13},
			{Label: "2", Start: 15, End: 28},
		},
	}

	tests := []struct {
		name string
		off  int
		want string
	}{
		{"start of first page", 0, "1"},
		{"inside first page", 5, "1"},
		{"gap between pages", 14, PageUnknown},
		{"start of second page", 15, "2"},
		{"inside second page", 20, "2"},
		{"past the end", 100, PageUnknown},
		{"negative offset", -1, PageUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := doc.PageAt(tt.off); got != tt.want {
				t.Errorf("PageAt(%d) = %q, want %q", tt.off, got, tt.want)
			}
		})
	}
}

func TestMarkdownPageAtNoSpans(t *testing.T) {
	doc := Markdown{Text: "no page info"}
	if got := doc.PageAt(3); got != PageUnknown {
		t.Errorf("PageAt = %q, want %q", got, PageUnknown)
	}
}
