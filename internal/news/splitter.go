package news

import "strings"

// Splitter cuts long text into overlapping chunks, preferring paragraph and
// sentence boundaries over hard cuts.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

// NewSplitter returns a splitter tuned for news article bodies.
func NewSplitter() *Splitter {
	return &Splitter{ChunkSize: 600, Overlap: 50}
}

var separators = []string{"\n\n", "\n", ". ", " "}

// Split returns chunks of at most ChunkSize characters with Overlap
// characters repeated between neighbors.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	size := s.ChunkSize
	if size <= 0 {
		size = 600
	}
	overlap := s.Overlap
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	if len(text) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			chunk := strings.TrimSpace(text[start:])
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := findBreak(text, start, end)
		chunk := strings.TrimSpace(text[start:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}

// findBreak looks backwards from end for the best separator inside the
// window, falling back to a hard cut at end.
func findBreak(text string, start, end int) int {
	window := text[start:end]
	for _, sep := range separators {
		if idx := strings.LastIndex(window, sep); idx > 0 {
			return start + idx + len(sep)
		}
	}
	return end
}
