// Package chunker splits document text into overlapping, boundary-aware
// segments for embedding and retrieval.
package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Default parameters, in characters.
const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

var blankRuns = regexp.MustCompile(`\n\s*\n`)

// Splitter produces overlapping chunks of at most Size characters, preferring
// to cut at a paragraph break, then at a sentence end, then exactly at Size.
type Splitter struct {
	Size    int
	Overlap int
}

// New returns a Splitter, substituting defaults for out-of-range parameters.
func New(size, overlap int) *Splitter {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}
	return &Splitter{Size: size, Overlap: overlap}
}

// Split chunks text. Whitespace is normalized first: runs of blank lines
// collapse to a single empty line and the ends are trimmed. Empty input
// yields no chunks.
//
// The walk is greedy: each window ends at the last paragraph break inside
// it, failing that just after the last sentence terminator, failing that at
// exactly Size characters. The next window starts Overlap characters before
// the previous cut while text remains.
func (s *Splitter) Split(text string) []string {
	text = blankRuns.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= s.Size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + s.Size
		if end > len(text) {
			end = len(text)
		} else if end < len(text) {
			end = s.cutPoint(text, start, end)
		}

		if chunk := strings.TrimSpace(text[start:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(text) {
			break
		}
		next := runeStart(text, end-s.Overlap)
		if next <= start {
			// A cut landed so close to the window start that overlap
			// would walk backwards; fall through to a plain advance.
			next = end
		}
		start = next
	}
	return chunks
}

// cutPoint picks the end of the window [start, start+Size): the last
// paragraph break wins, then the last sentence terminator, then the raw end.
func (s *Splitter) cutPoint(text string, start, end int) int {
	window := text[start:end]

	if p := strings.LastIndex(window, "\n\n"); p > 0 {
		return start + p
	}

	sentence := -1
	for _, term := range []string{". ", "! ", "? "} {
		if p := strings.LastIndex(window, term); p > sentence {
			sentence = p
		}
	}
	if sentence > 0 {
		return start + sentence + 1
	}
	// Hard cut: the offset may land inside a multi-byte rune.
	return runeStart(text, end)
}

// runeStart backs i off to the start of the rune containing it.
func runeStart(text string, i int) int {
	for i > 0 && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}
