// Package chunk splits normalized article text into overlapping,
// sentence-boundary-aware segments sized for embedding.
package chunk

import (
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"
)

// Sentence terminators considered chunk boundaries.
const sentenceEnds = ".!?"

// Splitter produces overlapping chunks from normalized text.
type Splitter struct {
	size    int
	overlap int
}

// New creates a Splitter. size and overlap are in bytes; overlap must be
// smaller than size and both must be positive.
func New(size, overlap int) (*Splitter, error) {
	if size <= 0 || overlap <= 0 {
		return nil, fmt.Errorf("chunk: size (%d) and overlap (%d) must be positive", size, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk: overlap (%d) must be smaller than size (%d)", overlap, size)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Split returns a lazy sequence of chunks. The sequence is finite and can be
// ranged over more than once.
//
// Each window of at most size bytes is truncated back to the last sentence
// terminator when one occurs past the window midpoint, so chunks tend to end
// on sentence boundaries. Window and overlap edges never land inside a
// multi-byte rune; every chunk is valid UTF-8. The next window starts overlap
// bytes before the realized end of the previous chunk, not the nominal window
// edge. Segments that are empty after trimming are dropped.
func (s *Splitter) Split(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := 0
		for start < len(text) {
			end := start + s.size
			if end < len(text) {
				end = snapToRuneStart(text, end)
				if end <= start {
					// Window narrower than the rune at start; take the
					// whole rune so the split always advances.
					_, w := utf8.DecodeRuneInString(text[start:])
					end = start + w
				}
				// Prefer ending on a sentence boundary, but never give up
				// more than half the window.
				if cut := strings.LastIndexAny(text[start:end], sentenceEnds); cut > s.size/2 {
					end = start + cut + 1
				}
			} else {
				end = len(text)
			}

			if segment := strings.TrimSpace(text[start:end]); segment != "" {
				if !yield(segment) {
					return
				}
			}

			next := end - s.overlap
			if next > start && next < len(text) {
				next = snapToRuneStart(text, next)
			}
			if next <= start {
				next = end
			}
			start = next
		}
	}
}

// snapToRuneStart moves i back to the first byte of the rune it falls inside.
func snapToRuneStart(text string, i int) int {
	for i > 0 && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}

// Count returns the number of chunks Split would yield for text.
func (s *Splitter) Count(text string) int {
	n := 0
	for range s.Split(text) {
		n++
	}
	return n
}
