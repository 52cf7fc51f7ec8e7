package ingest

import (
	"strings"
	"testing"

	tenk "github.com/nevindra/tenk"
)

func TestSectionSplitter(t *testing.T) {
	s := NewSectionSplitter()

	tests := []struct {
		name      string
		text      string
		wantCount int
		wantFirst string
	}{
		{
			name:      "splits at headings",
			text:      "# Overview\n\nintro text\n\n# Risk Factors\n\nrisk text",
			wantCount: 2,
			wantFirst: "# Overview",
		},
		{
			name:      "preamble before first heading",
			text:      "cover page text\n\n# Item 1\n\nbody",
			wantCount: 2,
			wantFirst: "cover page text",
		},
		{
			name:      "no headings is one section",
			text:      "just a flat document with no structure",
			wantCount: 1,
			wantFirst: "just a flat document with no structure",
		},
		{
			name:      "nested heading levels all cut",
			text:      "# Item 8\n\nfinancials\n\n## Balance Sheets\n\n| a | b |",
			wantCount: 2,
			wantFirst: "# Item 8",
		},
		{
			name:      "empty document",
			text:      "",
			wantCount: 0,
		},
		{
			name:      "whitespace only",
			text:      "\n\n   \n",
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections := s.Split(tenk.Markdown{Text: tt.text})
			if len(sections) != tt.wantCount {
				t.Fatalf("sections = %d, want %d", len(sections), tt.wantCount)
			}
			if tt.wantCount > 0 && !strings.HasPrefix(sections[0].Text, tt.wantFirst) {
				t.Errorf("first section = %q, want prefix %q", sections[0].Text, tt.wantFirst)
			}
		})
	}
}

func TestSectionSplitterThematicBreak(t *testing.T) {
	// A standalone table followed by a break is its own section even without
	// a heading of its own.
	text := "# Item 8\n\n| metric | 2023 |\n\n---\n\nfootnote text about the table"
	sections := NewSectionSplitter().Split(tenk.Markdown{Text: text})
	if len(sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(sections))
	}
	if !strings.HasPrefix(sections[1].Text, "footnote text") {
		t.Errorf("second section = %q, want text after the break", sections[1].Text)
	}
}

func TestSectionSplitterPartition(t *testing.T) {
	// Concatenating sections must recover every non-whitespace character.
	text := "preamble\n\n# A\n\nalpha body\n\n# B\n\nbeta body\n\n# C\n\ngamma body"
	s := NewSectionSplitter()
	sections := s.Split(tenk.Markdown{Text: text})

	var joined strings.Builder
	for _, sec := range sections {
		joined.WriteString(sec.Text)
	}
	squash := func(v string) string {
		return strings.Join(strings.Fields(v), " ")
	}
	if squash(joined.String()) != squash(text) {
		t.Errorf("sections lost content:\ngot  %q\nwant %q", squash(joined.String()), squash(text))
	}
}

func TestSectionSplitterTablePipesDoNotCut(t *testing.T) {
	text := "# Financials\n\n| metric | 2023 |\n|---|---|\n| revenue | 5262 |\n\n# Notes\n\ntext"
	s := NewSectionSplitter()
	sections := s.Split(tenk.Markdown{Text: text})
	if len(sections) != 2 {
		t.Fatalf("sections = %d, want 2 (table rows must not cut)", len(sections))
	}
	if !strings.Contains(sections[0].Text, "| revenue | 5262 |") {
		t.Error("table row missing from its section")
	}
}

func TestSectionSplitterPageLabels(t *testing.T) {
	text := "# First\n\nbody one\n\n# Second\n\nbody two"
	secondStart := strings.Index(text, "# Second")
	doc := tenk.Markdown{
		Text: text,
		Pages: []tenk.PageSpan{
			{Label: "3", Start: 0, End: secondStart},
			{Label: "4", Start: secondStart, End: len(text)},
		},
	}

	sections := NewSectionSplitter().Split(doc)
	if len(sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(sections))
	}
	if sections[0].PageLabel != "3" {
		t.Errorf("first section page = %q, want 3", sections[0].PageLabel)
	}
	if sections[1].PageLabel != "4" {
		t.Errorf("second section page = %q, want 4", sections[1].PageLabel)
	}
}

func TestSectionSplitterNoPageInfo(t *testing.T) {
	sections := NewSectionSplitter().Split(tenk.Markdown{Text: "# A\n\nbody"})
	if len(sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(sections))
	}
	if sections[0].PageLabel != tenk.PageUnknown {
		t.Errorf("page = %q, want %q", sections[0].PageLabel, tenk.PageUnknown)
	}
}
