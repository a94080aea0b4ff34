package services

import (
	"strings"
)

type TextChunker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// ChunkText implements TextChunker. Chunks are built from whole words,
// measured in runes, and each chunk repeats up to overlap runes of trailing
// words from the previous one.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	size, fresh := 0, 0

	flush := func() {
		if fresh == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, " "))
		current = tailWords(current, overlap)
		size, fresh = joinedLen(current), 0
	}

	for _, word := range words {
		runes := []rune(word)
		// Words longer than a whole chunk are split hard.
		for len(runes) > maxChunkSize {
			flush()
			chunks = append(chunks, string(runes[:maxChunkSize]))
			runes = runes[maxChunkSize:]
			current, size = nil, 0
		}
		if len(runes) == 0 {
			continue
		}

		if size > 0 && size+1+len(runes) > maxChunkSize {
			flush()
			if size > 0 && size+1+len(runes) > maxChunkSize {
				current, size = nil, 0
			}
		}
		if size > 0 {
			size++
		}
		current = append(current, string(runes))
		size += len(runes)
		fresh++
	}
	flush()

	return chunks
}

// tailWords returns the trailing words whose joined length fits in n runes.
func tailWords(words []string, n int) []string {
	if n <= 0 {
		return nil
	}
	total := 0
	start := len(words)
	for i := len(words) - 1; i >= 0; i-- {
		add := len([]rune(words[i]))
		if total > 0 {
			add++
		}
		if total+add > n {
			break
		}
		total += add
		start = i
	}
	out := make([]string, len(words)-start)
	copy(out, words[start:])
	return out
}

func joinedLen(words []string) int {
	if len(words) == 0 {
		return 0
	}
	n := len(words) - 1
	for _, w := range words {
		n += len([]rune(w))
	}
	return n
}
