package ingest

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestWindow(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		w         int
		wantLens  []int
	}{
		{
			name:     "exact multiple",
			text:     strings.Repeat("a", 1000),
			w:        500,
			wantLens: []int{500, 500},
		},
		{
			name:     "remainder in last piece",
			text:     strings.Repeat("a", 1100),
			w:        500,
			wantLens: []int{500, 500, 100},
		},
		{
			name:     "shorter than window",
			text:     "tiny section",
			w:        500,
			wantLens: []int{12},
		},
		{
			name:     "width one",
			text:     "abc",
			w:        1,
			wantLens: []int{1, 1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pieces := Window(tt.text, tt.w)
			if len(pieces) != len(tt.wantLens) {
				t.Fatalf("pieces = %d, want %d", len(pieces), len(tt.wantLens))
			}
			for i, want := range tt.wantLens {
				if got := utf8.RuneCountInString(pieces[i]); got != want {
					t.Errorf("piece %d len = %d, want %d", i, got, want)
				}
			}
			if strings.Join(pieces, "") != tt.text {
				t.Error("pieces do not partition the input")
			}
		})
	}
}

func TestWindowEmpty(t *testing.T) {
	if got := Window("", 500); got != nil {
		t.Fatalf("Window(\"\") = %#v, want nil", got)
	}
}

func TestWindowMultibyte(t *testing.T) {
	// 3-byte runes; splits must land on rune boundaries.
	text := strings.Repeat("€", 7)
	pieces := Window(text, 3)
	if len(pieces) != 3 {
		t.Fatalf("pieces = %d, want 3", len(pieces))
	}
	for i, p := range pieces {
		if !utf8.ValidString(p) {
			t.Errorf("piece %d is not valid UTF-8", i)
		}
	}
	if strings.Join(pieces, "") != text {
		t.Error("pieces do not partition the input")
	}
}

func TestWindowNonPositiveWidth(t *testing.T) {
	text := strings.Repeat("a", DefaultWindow+1)
	pieces := Window(text, 0)
	if len(pieces) != 2 {
		t.Fatalf("pieces = %d, want 2 (default width applies)", len(pieces))
	}
}
