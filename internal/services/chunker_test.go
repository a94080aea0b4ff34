package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextRespectsMaxSize(t *testing.T) {
	text := strings.Repeat("golang postgres kubernetes ", 40)
	chunks := NewTextChunker().ChunkText(text, 60, 15)

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 60)
		assert.NotEmpty(t, c)
	}
}

func TestChunkTextOverlapCarriesTrailingWords(t *testing.T) {
	chunks := NewTextChunker().ChunkText("one two three four five six", 13, 5)

	require.Equal(t, []string{"one two three", "three four", "four five six"}, chunks)
}

func TestChunkTextShortInput(t *testing.T) {
	assert.Equal(t, []string{"Jane Doe Go"}, NewTextChunker().ChunkText("Jane\n\nDoe   Go", 100, 10))
	assert.Nil(t, NewTextChunker().ChunkText("   \n", 100, 10))
}

func TestChunkTextSplitsLongWords(t *testing.T) {
	chunks := NewTextChunker().ChunkText("ab "+strings.Repeat("x", 12)+" cd", 5, 0)

	assert.Equal(t, []string{"ab", "xxxxx", "xxxxx", "xx cd"}, chunks)
}
