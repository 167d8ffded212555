// Package chunker splits document text into embeddable units with
// a character budget and a tail overlap carried into the next chunk.
package chunker

import "strings"

// Defaults for web documents.
const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// Splitter accumulates sentences into chunks of at most Size characters,
// carrying Overlap trailing characters into the next chunk for continuity.
type Splitter struct {
	size    int
	overlap int
}

// New creates a Splitter. Non-positive values fall back to defaults.
func New(size, overlap int) *Splitter {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultOverlap
		if overlap >= size {
			overlap = size / 5
		}
	}
	return &Splitter{size: size, overlap: overlap}
}

// Split breaks text into chunks. Blank input yields no chunks; text within
// the budget yields a single chunk.
func (s *Splitter) Split(text string) []string {
	text = normalize(text)
	if text == "" {
		return nil
	}
	if len(text) <= s.size {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder

	for _, sentence := range splitSentences(text) {
		if current.Len() > 0 && current.Len()+len(sentence)+1 > s.size {
			chunk := strings.TrimSpace(current.String())
			chunks = append(chunks, chunk)

			current.Reset()
			if s.overlap > 0 && len(chunk) > s.overlap {
				current.WriteString(chunk[len(chunk)-s.overlap:])
				current.WriteString(" ")
			}
		}
		current.WriteString(sentence)
		current.WriteString(" ")
	}

	if tail := strings.TrimSpace(current.String()); tail != "" {
		chunks = append(chunks, tail)
	}
	return chunks
}

// normalize collapses all whitespace runs to single spaces.
func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// splitSentences breaks text at sentence-ending punctuation. A trailing
// fragment without a terminator is kept as its own sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			// Consume the terminator run (e.g. "..." or "?!").
			end := i + 1
			for end < len(text) && (text[end] == '.' || text[end] == '!' || text[end] == '?') {
				end++
			}
			if s := strings.TrimSpace(text[start:end]); s != "" {
				sentences = append(sentences, s)
			}
			start = end
			i = end - 1
		}
	}

	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
