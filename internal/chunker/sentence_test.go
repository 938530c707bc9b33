package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentence_GroupsUntilThreshold(t *testing.T) {
	text := "Hello. This is a test. Chunking works great."
	c := New()
	chunks, err := c.Split(text, StrategySentence, Params{MaxChunkSize: 30})
	require.NoError(t, err)

	require.Len(t, chunks, 2)
	assert.Equal(t, "Hello. This is a test.", chunks[0].Text)
	assert.Equal(t, "Chunking works great.", chunks[1].Text)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 1, chunks[1].Index)
}

func TestSentence_SingleChunkWhenEverythingFits(t *testing.T) {
	text := "Hello. This is a test. Chunking works great."
	c := New()
	chunks, err := c.Split(text, StrategySentence, Params{MaxChunkSize: 500})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Hello. This is a test. Chunking works great.", chunks[0].Text)
}

func TestSentence_OversizedSentenceKeptWhole(t *testing.T) {
	long := "This single sentence is far longer than the configured maximum chunk size and must survive intact."
	text := "Short one. " + long + " Another short one."
	c := New()
	chunks, err := c.Split(text, StrategySentence, Params{MaxChunkSize: 40})
	require.NoError(t, err)

	require.Len(t, chunks, 3)
	assert.Equal(t, "Short one.", chunks[0].Text)
	assert.Equal(t, long, chunks[1].Text)
	assert.Equal(t, "Another short one.", chunks[2].Text)
}

func TestSentence_SizeBound(t *testing.T) {
	text := strings.Repeat("A modest sentence sits here. ", 30)
	maxSize := 80
	c := New()
	chunks, err := c.Split(text, StrategySentence, Params{MaxChunkSize: maxSize})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		// Every chunk fits the threshold unless it is a lone oversized
		// sentence, which cannot happen with this input.
		assert.LessOrEqual(t, len([]rune(ch.Text)), maxSize)
	}
}

func TestSentence_WhitespaceNormalizedAtJoins(t *testing.T) {
	text := "First sentence.\n\n   Second sentence.\t\tThird sentence."
	c := New()
	chunks, err := c.Split(text, StrategySentence, Params{MaxChunkSize: 500})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "First sentence. Second sentence. Third sentence.", chunks[0].Text)
}

func TestSentence_PreservesSentenceSequence(t *testing.T) {
	text := "One fish. Two fish. Red fish. Blue fish. Old fish. New fish."
	c := New()
	chunks, err := c.Split(text, StrategySentence, Params{MaxChunkSize: 25})
	require.NoError(t, err)

	var joined []string
	for _, ch := range chunks {
		joined = append(joined, ch.Text)
	}
	assert.Equal(t, text, strings.Join(joined, " "))
}

func TestSentence_NoTerminalPunctuation(t *testing.T) {
	c := New()
	chunks, err := c.Split("just a fragment without punctuation", StrategySentence, Params{MaxChunkSize: 100})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "just a fragment without punctuation", chunks[0].Text)
}

func TestSentence_TrailingFragmentKept(t *testing.T) {
	c := New()
	chunks, err := c.Split("A full sentence. and a dangling tail", StrategySentence, Params{MaxChunkSize: 200})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "A full sentence. and a dangling tail", chunks[0].Text)
}

func TestRegexSplitter(t *testing.T) {
	s := NewRegexSplitter()
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"periods", "One. Two. Three.", []string{"One.", "Two.", "Three."}},
		{"mixed terminators", "Really? Yes! Fine.", []string{"Really?", "Yes!", "Fine."}},
		{"trailing fragment", "Done. almost", []string{"Done.", "almost"}},
		{"no terminator", "no end in sight", []string{"no end in sight"}},
		{"empty", "   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Sentences(tt.text))
		})
	}
}
