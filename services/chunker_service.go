package services

import (
	"strings"
	"unicode/utf8"
)

// defaultSeparators is the split priority, coarsest first: paragraph break,
// line break, sentence punctuation, comma, space, and finally a character-level
// hard cut.
var defaultSeparators = []string{"\n\n", "\n", ".", "!", "?", ",", " ", ""}

// Chunker splits long text into overlapping fragments no longer than
// chunkSize. Finer separators are only used where a coarser one cannot produce
// a unit that fits, so chunks tend to end on natural boundaries.
type Chunker struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewChunker creates a chunker for the given size and overlap, both measured
// in bytes of UTF-8 text.
func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Chunker{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

// Split returns the chunks of text in document order. Every input character
// appears in at least one chunk, and each chunk after the first starts with
// the last `overlap` bytes of its predecessor. Empty input yields no chunks.
func (c *Chunker) Split(text string) []string {
	if text == "" {
		return nil
	}
	return c.merge(c.decompose(text, c.separators))
}

// decompose breaks text into units no longer than chunkSize. Separators are
// kept attached to the preceding unit so that no character is lost.
func (c *Chunker) decompose(text string, separators []string) []string {
	if len(text) <= c.chunkSize || len(separators) == 0 {
		return []string{text}
	}
	var units []string
	for _, piece := range splitKeepSeparator(text, separators[0]) {
		if len(piece) <= c.chunkSize {
			units = append(units, piece)
		} else {
			units = append(units, c.decompose(piece, separators[1:])...)
		}
	}
	return units
}

// merge greedily packs adjacent units into chunks, carrying an overlap tail
// across each chunk boundary for continuity.
func (c *Chunker) merge(units []string) []string {
	var chunks []string
	current := ""
	for _, unit := range units {
		if current != "" && len(current)+len(unit) > c.chunkSize {
			chunks = append(chunks, current)
			tail := overlapTail(current, c.overlap)
			if len(tail)+len(unit) > c.chunkSize {
				current = unit
			} else {
				current = tail + unit
			}
			continue
		}
		current += unit
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

func splitKeepSeparator(text, separator string) []string {
	if separator == "" {
		units := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			units = append(units, string(r))
		}
		return units
	}
	parts := strings.SplitAfter(text, separator)
	if n := len(parts); n > 0 && parts[n-1] == "" {
		parts = parts[:n-1]
	}
	return parts
}

// overlapTail returns the last `overlap` bytes of s, adjusted forward to a
// rune boundary. A chunk shorter than the overlap is carried whole.
func overlapTail(s string, overlap int) string {
	if overlap <= 0 {
		return ""
	}
	if len(s) <= overlap {
		return s
	}
	i := len(s) - overlap
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return s[i:]
}
