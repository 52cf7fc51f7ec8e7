package ingest

// DefaultWindow is the child chunk width in runes.
const DefaultWindow = 500

// Window splits text into consecutive non-overlapping pieces of at most w
// runes. The pieces partition the input exactly; the last piece carries the
// remainder. Splits land on rune boundaries, never mid-codepoint. Empty
// input yields nil.
func Window(text string, w int) []string {
	if text == "" {
		return nil
	}
	if w <= 0 {
		w = DefaultWindow
	}

	var pieces []string
	start := 0
	count := 0
	for i := range text {
		if count == w {
			pieces = append(pieces, text[start:i])
			start = i
			count = 0
		}
		count++
	}
	pieces = append(pieces, text[start:])
	return pieces
}
