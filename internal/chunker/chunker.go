// Package chunker splits section text into overlapping, sentence-boundary-aware windows.
package chunker

import (
	"fmt"
	"strings"
)

const (
	// DefaultSize is the target window size in characters.
	DefaultSize = 500
	// DefaultOverlap is the character overlap between consecutive windows.
	DefaultOverlap = 50
	// lookahead bounds the search for a sentence boundary past the target end.
	lookahead = 100
)

// sentenceEnds are the boundary patterns searched for, rightmost wins.
var sentenceEnds = []string{". ", "! ", "? ", ".\n"}

// Splitter produces overlapping text windows, preferring to end each
// window at a sentence boundary within the lookahead range.
type Splitter struct {
	size    int
	overlap int
}

// New creates a Splitter. Non-positive size falls back to DefaultSize;
// an overlap not strictly smaller than size is reset to zero so the
// cursor always advances.
func New(size, overlap int) *Splitter {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	return &Splitter{size: size, overlap: overlap}
}

// Split chunks text into windows. Empty or whitespace-only text yields nil.
// When sectionLabel is non-empty it is prefixed to every chunk so retrieval
// context carries provenance in the text itself, not only in metadata.
func (s *Splitter) Split(text, sectionLabel string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	length := len(runes)

	var chunks []string
	start := 0

	for start < length {
		end := start + s.size

		if end < length {
			searchEnd := end + lookahead
			if searchEnd > length {
				searchEnd = length
			}
			if best := lastBoundary(runes, start, searchEnd); best > start {
				end = best + 1
			}
		} else {
			end = length
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			if sectionLabel != "" {
				chunk = fmt.Sprintf("[Section: %s]\n%s", sectionLabel, chunk)
			}
			chunks = append(chunks, chunk)
		}

		if end >= length {
			break
		}
		// A boundary close to the cursor can pull end within overlap of
		// start; the cursor must still strictly advance.
		next := end - s.overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// lastBoundary returns the rightmost sentence-terminator position in
// runes[from:to], or -1 when none exists strictly after from.
func lastBoundary(runes []rune, from, to int) int {
	window := string(runes[from:to])
	best := -1
	for _, pattern := range sentenceEnds {
		if idx := strings.LastIndex(window, pattern); idx >= 0 {
			// index back into rune space
			pos := from + len([]rune(window[:idx]))
			if pos > best {
				best = pos
			}
		}
	}
	if best <= from {
		return -1
	}
	return best
}
