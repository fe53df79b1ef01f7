package chunk

import (
	"fmt"
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	_, err := New(0, 10)
	assert.Error(t, err)

	_, err = New(100, 0)
	assert.Error(t, err)

	_, err = New(100, 100)
	assert.Error(t, err)

	_, err = New(100, 150)
	assert.Error(t, err)

	s, err := New(100, 20)
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestSplit_Empty(t *testing.T) {
	s, err := New(100, 20)
	require.NoError(t, err)

	assert.Empty(t, slices.Collect(s.Split("")))
	assert.Empty(t, slices.Collect(s.Split("   ")))
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	s, err := New(100, 20)
	require.NoError(t, err)

	chunks := slices.Collect(s.Split("Widgets cost $5."))
	require.Len(t, chunks, 1)
	assert.Equal(t, "Widgets cost $5.", chunks[0])
}

func TestSplit_SentenceBoundaries(t *testing.T) {
	text := strings.Repeat("This sentence is exactly forty bytes ok. ", 10)
	s, err := New(100, 20)
	require.NoError(t, err)

	for chunk := range s.Split(text) {
		assert.LessOrEqual(t, len(chunk), 100)
		// Boundary search truncates at the last terminator past the window
		// midpoint, so interior chunks end on sentence punctuation.
		assert.True(t, strings.HasSuffix(chunk, "."), "chunk %q should end at a sentence boundary", chunk)
	}
}

func TestSplit_NoGaps(t *testing.T) {
	// Unique sentences so each chunk has exactly one position in the source.
	var b strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "Sentence number %03d carries its own payload. ", i)
	}
	text := b.String()

	s, err := New(80, 15)
	require.NoError(t, err)

	chunks := slices.Collect(s.Split(text))
	require.NotEmpty(t, chunks)

	// Every chunk occurs in the source, and each one starts no later than
	// the end of its predecessor: consecutive chunks overlap or touch.
	prevStart, prevEnd := 0, 0
	for _, chunk := range chunks {
		idx := strings.Index(text[prevStart:], chunk)
		require.GreaterOrEqual(t, idx, 0, "chunk %q not found in source", chunk)
		start := prevStart + idx
		assert.LessOrEqual(t, start, prevEnd, "gap before chunk %q", chunk)
		prevStart, prevEnd = start, start+len(chunk)
	}
	// Full coverage through the last non-whitespace byte.
	assert.Equal(t, len(strings.TrimRight(text, " ")), prevEnd)
}

func TestSplit_NoEmptyChunks(t *testing.T) {
	text := "One.    " + strings.Repeat(" ", 50) + "Two."
	s, err := New(40, 10)
	require.NoError(t, err)

	for chunk := range s.Split(text) {
		assert.NotEmpty(t, strings.TrimSpace(chunk))
	}
}

func TestSplit_Restartable(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 15)
	s, err := New(120, 30)
	require.NoError(t, err)

	seq := s.Split(text)
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)
}

func TestSplit_EarlyTermination(t *testing.T) {
	text := strings.Repeat("Sentence one here. Sentence two here. ", 30)
	s, err := New(60, 10)
	require.NoError(t, err)

	var got []string
	for chunk := range s.Split(text) {
		got = append(got, chunk)
		if len(got) == 2 {
			break
		}
	}
	assert.Len(t, got, 2)
}

func TestSplit_NeverSplitsRunes(t *testing.T) {
	// No sentence terminators, so every edge is a raw window cut landing
	// near multi-byte dashes.
	text := strings.Repeat("a—", 40)
	s, err := New(10, 3)
	require.NoError(t, err)

	chunks := slices.Collect(s.Split(text))
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk), "chunk %q contains a split rune", chunk)
		assert.Contains(t, text, chunk)
	}
}

func TestSplit_NonASCIIProse(t *testing.T) {
	text := strings.Repeat("Это проверка разбиения на предложения. ", 10)
	s, err := New(100, 20)
	require.NoError(t, err)

	chunks := slices.Collect(s.Split(text))
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk), "chunk %q contains a split rune", chunk)
		assert.Contains(t, text, chunk)
	}
}

func TestSplit_WindowSmallerThanRune(t *testing.T) {
	// A window too narrow for the rune at its start widens to cover it
	// instead of stalling or slicing it.
	s, err := New(2, 1)
	require.NoError(t, err)

	chunks := slices.Collect(s.Split("———"))
	assert.Equal(t, []string{"—", "—", "—"}, chunks)
}

func TestCount(t *testing.T) {
	text := strings.Repeat("A short sentence. ", 40)
	s, err := New(90, 20)
	require.NoError(t, err)

	assert.Equal(t, len(slices.Collect(s.Split(text))), s.Count(text))
}
