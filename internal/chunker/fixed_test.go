package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixed_WindowOffsets(t *testing.T) {
	text := "this is a test of chunki" // 24 characters
	require.Len(t, text, 24)

	c := New()
	chunks, err := c.Split(text, StrategyFixed, Params{ChunkSize: 10, Overlap: 3})
	require.NoError(t, err)

	// stride 7: windows start at 0, 7, 14, 21; the last holds only the
	// overlap remainder but is still included.
	require.Len(t, chunks, 4)
	runes := []rune(text)
	for i, start := range []int{0, 7, 14, 21} {
		end := start + 10
		if end > len(runes) {
			end = len(runes)
		}
		assert.Equal(t, string(runes[start:end]), chunks[i].Text)
		assert.Equal(t, i, chunks[i].Index)
		assert.Equal(t, "fixed", chunks[i].Strategy)
	}
	assert.Len(t, chunks[3].Text, 3)
}

func TestFixed_ChunkCount(t *testing.T) {
	tests := []struct {
		name      string
		textLen   int
		chunkSize int
		overlap   int
		want      int
	}{
		{"shorter than stride", 6, 10, 3, 1},
		{"shorter than window, beyond stride", 8, 10, 3, 2},
		{"exact window", 10, 10, 3, 2},
		{"partial final window", 20, 10, 3, 3},
		{"no overlap", 25, 10, 0, 3},
		{"overlap remainder tail", 24, 10, 3, 4},
	}
	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat("x", tt.textLen)
			chunks, err := c.Split(text, StrategyFixed, Params{ChunkSize: tt.chunkSize, Overlap: tt.overlap})
			require.NoError(t, err)
			assert.Len(t, chunks, tt.want)
		})
	}
}

func TestFixed_Reconstruction(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog near the river bank."
	overlap := 4
	c := New()
	chunks, err := c.Split(text, StrategyFixed, Params{ChunkSize: 12, Overlap: overlap})
	require.NoError(t, err)

	// Dropping each subsequent chunk's leading overlap restores the source.
	var b strings.Builder
	for i, ch := range chunks {
		runes := []rune(ch.Text)
		if i == 0 {
			b.WriteString(ch.Text)
			continue
		}
		if len(runes) > overlap {
			b.WriteString(string(runes[overlap:]))
		}
	}
	assert.Equal(t, text, b.String())
}

func TestFixed_Deterministic(t *testing.T) {
	text := strings.Repeat("deterministic chunking ", 40)
	c := New()
	first, err := c.Split(text, StrategyFixed, Params{ChunkSize: 64, Overlap: 16})
	require.NoError(t, err)
	second, err := c.Split(text, StrategyFixed, Params{ChunkSize: 64, Overlap: 16})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFixed_Unicode(t *testing.T) {
	text := strings.Repeat("héllo wörld ", 5)
	c := New()
	chunks, err := c.Split(text, StrategyFixed, Params{ChunkSize: 10, Overlap: 2})
	require.NoError(t, err)
	for _, ch := range chunks {
		assert.LessOrEqual(t, len([]rune(ch.Text)), 10)
	}
}

func TestFixed_InvalidParams(t *testing.T) {
	c := New()
	tests := []struct {
		name   string
		params Params
	}{
		{"overlap equals chunk size", Params{ChunkSize: 10, Overlap: 10}},
		{"overlap exceeds chunk size", Params{ChunkSize: 10, Overlap: 15}},
		{"negative overlap", Params{ChunkSize: 10, Overlap: -1}},
		{"negative chunk size", Params{ChunkSize: -5, Overlap: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := c.Split("some text", StrategyFixed, tt.params)
			require.ErrorIs(t, err, ErrInvalidParams)
			assert.Nil(t, chunks)
		})
	}
}

func TestFixed_EmptyText(t *testing.T) {
	c := New()
	for _, text := range []string{"", "   ", "\n\n\t"} {
		chunks, err := c.Split(text, StrategyFixed, Params{ChunkSize: 10, Overlap: 3})
		require.NoError(t, err)
		assert.Empty(t, chunks)
	}
}

func TestFixed_InvalidParamsBeforeChunking(t *testing.T) {
	// Validation must fail fast even for text that would chunk fine.
	c := New()
	_, err := c.Split(strings.Repeat("a", 1000), StrategyFixed, Params{ChunkSize: 5, Overlap: 5})
	require.ErrorIs(t, err, ErrInvalidParams)
}
