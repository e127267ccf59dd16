package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// coverage walks the chunks through the original text and returns, per chunk,
// its start offset. It fails the test on any gap or non-advancing chunk.
func coverage(t *testing.T, text string, chunks []string) []int {
	t.Helper()
	require.NotEmpty(t, chunks)
	starts := make([]int, len(chunks))
	require.True(t, strings.HasPrefix(text, chunks[0]), "first chunk must start the text")
	end := len(chunks[0])
	for i := 1; i < len(chunks); i++ {
		idx := strings.Index(text, chunks[i])
		require.GreaterOrEqual(t, idx, 0, "chunk %d is not a substring", i)
		require.LessOrEqual(t, idx, end, "gap before chunk %d", i)
		require.Greater(t, idx+len(chunks[i]), end, "chunk %d does not advance", i)
		starts[i] = idx
		end = idx + len(chunks[i])
	}
	require.Equal(t, len(text), end, "chunks must cover the whole text")
	return starts
}

func uniqueWords(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "word%04d ", i)
	}
	return strings.TrimRight(b.String(), " ")
}

func TestSplitEmpty(t *testing.T) {
	c := New(100, 20)
	assert.Nil(t, c.Split(""))
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	c := New(100, 20)
	got := c.Split("short text")
	require.Equal(t, []string{"short text"}, got)
}

func TestSplitRespectsMaxSize(t *testing.T) {
	text := uniqueWords(400)
	for _, maxSize := range []int{50, 100, 333, 1000} {
		c := New(maxSize, maxSize/5)
		for i, chunk := range c.Split(text) {
			assert.LessOrEqual(t, len(chunk), maxSize, "maxSize=%d chunk=%d", maxSize, i)
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	text := uniqueWords(300)
	c := New(120, 30)
	first := c.Split(text)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, c.Split(text))
	}
}

func TestSplitReconstructsText(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "Sentence number %04d carries a few distinct tokens. ", i)
		if i%7 == 6 {
			b.WriteString("\n\n")
		}
	}
	text := b.String()
	c := New(200, 50)
	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)
	coverage(t, text, chunks)
}

func TestSplitAdjacentChunksOverlap(t *testing.T) {
	text := uniqueWords(200)
	c := New(100, 30)
	chunks := c.Split(text)
	require.Greater(t, len(chunks), 2)
	starts := coverage(t, text, chunks)
	for i := 1; i < len(chunks); i++ {
		prevEnd := starts[i-1] + len(chunks[i-1])
		shared := prevEnd - starts[i]
		assert.Greater(t, shared, 0, "chunks %d and %d share no text", i-1, i)
		assert.LessOrEqual(t, shared, 30, "chunks %d and %d share too much", i-1, i)
	}
}

func TestSplitPrefersParagraphBoundaries(t *testing.T) {
	para := strings.Repeat("alpha beta gamma delta. ", 3)
	text := strings.TrimSpace(para) + "\n\n" + strings.TrimSpace(para) + "\n\n" + strings.TrimSpace(para)
	c := New(len(para)+10, 0)
	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)
	assert.True(t, strings.HasSuffix(chunks[0], "\n\n"),
		"first chunk should break at the paragraph boundary, got %q", chunks[0])
}

func TestSplitUnbrokenTokenStillBounded(t *testing.T) {
	token := strings.Repeat("x", 500)
	c := New(100, 10)
	chunks := c.Split(token)
	require.Len(t, chunks, 5)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 100)
	}
	assert.Equal(t, token, strings.Join(chunks, ""))
}

func TestSplitMultibyteRuneBoundaries(t *testing.T) {
	text := strings.Repeat("héllö", 100)
	c := New(64, 16)
	for _, chunk := range c.Split(text) {
		assert.True(t, strings.ToValidUTF8(chunk, "") == chunk, "chunk split inside a rune: %q", chunk)
		assert.LessOrEqual(t, len(chunk), 64)
	}
}

func TestNewClampsParameters(t *testing.T) {
	c := New(0, -5)
	assert.Equal(t, DefaultMaxSize, c.maxSize)
	assert.Equal(t, 0, c.overlap)

	c = New(100, 100)
	assert.Equal(t, 50, c.overlap)
}
