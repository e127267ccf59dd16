package chunker

import (
	"strings"
	"unicode/utf8"
)

// Default chunking parameters used at ingestion time.
const (
	DefaultMaxSize = 1000
	DefaultOverlap = 200
)

// separators is the boundary ladder, coarsest first. A segment is only
// broken at a finer boundary when it still exceeds the size limit.
var separators = []string{"\n\n", "\n", ". ", " "}

// RecursiveChunker splits text into overlapping chunks, preferring
// paragraph breaks, then line breaks, sentence ends, spaces, and finally
// plain character boundaries.
type RecursiveChunker struct {
	maxSize int
	overlap int
}

// New creates a chunker emitting chunks of at most maxSize bytes with
// roughly overlap bytes shared between adjacent chunks.
func New(maxSize, overlap int) *RecursiveChunker {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxSize {
		overlap = maxSize / 2
	}
	return &RecursiveChunker{maxSize: maxSize, overlap: overlap}
}

// Split chunks text deterministically. Every chunk is a contiguous
// substring of the input, so concatenating the chunks with their shared
// overlaps removed reproduces the input exactly. Empty text yields nil;
// text within the size limit yields a single chunk.
func (c *RecursiveChunker) Split(text string) []string {
	if text == "" {
		return nil
	}
	if len(text) <= c.maxSize {
		return []string{text}
	}
	return c.merge(c.segment(text, separators))
}

// segment recursively cuts text into ordered pieces no longer than maxSize,
// trying the coarsest boundary first. Concatenating the pieces yields text.
func (c *RecursiveChunker) segment(text string, seps []string) []string {
	if len(text) <= c.maxSize {
		return []string{text}
	}
	if len(seps) == 0 {
		return splitRunes(text, c.maxSize)
	}
	parts := strings.SplitAfter(text, seps[0])
	if len(parts) == 1 {
		return c.segment(text, seps[1:])
	}
	var out []string
	for _, p := range parts {
		if p == "" {
			continue
		}
		if len(p) <= c.maxSize {
			out = append(out, p)
			continue
		}
		out = append(out, c.segment(p, seps[1:])...)
	}
	return out
}

// merge packs consecutive segments into chunks of at most maxSize bytes,
// carrying a suffix of whole segments totalling at most overlap bytes into
// the next chunk.
func (c *RecursiveChunker) merge(segments []string) []string {
	var chunks []string
	var window []string
	winLen := 0
	for _, seg := range segments {
		if winLen > 0 && winLen+len(seg) > c.maxSize {
			chunks = append(chunks, strings.Join(window, ""))
			// Keep the longest suffix of whole segments within the overlap.
			keep := len(window)
			kept := 0
			for keep > 0 && kept+len(window[keep-1]) <= c.overlap {
				kept += len(window[keep-1])
				keep--
			}
			window = append(window[:0:0], window[keep:]...)
			winLen = kept
			// The carried overlap must still leave room for the new segment.
			for winLen+len(seg) > c.maxSize && len(window) > 0 {
				winLen -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, seg)
		winLen += len(seg)
	}
	if winLen > 0 {
		chunks = append(chunks, strings.Join(window, ""))
	}
	return chunks
}

// splitRunes is the last-resort splitter: fixed-size pieces cut at rune
// boundaries. A single rune wider than maxSize bytes is emitted whole.
func splitRunes(text string, maxSize int) []string {
	var out []string
	start := 0
	end := 0
	for end < len(text) {
		_, width := utf8.DecodeRuneInString(text[end:])
		if end > start && end-start+width > maxSize {
			out = append(out, text[start:end])
			start = end
		}
		end += width
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}
