package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkByWindowRespectsBudget(t *testing.T) {
	text := strings.Repeat("word ", 200) // 1000 chars of 4-letter words
	units := ChunkByWindow(text, 100, nil, "lecture.pdf")

	require.NotEmpty(t, units)
	for _, unit := range units {
		assert.LessOrEqual(t, len(unit.Text), 100)
		assert.Equal(t, "lecture.pdf", unit.SourceLabel)
	}
}

func TestChunkByWindowNeverSplitsWords(t *testing.T) {
	text := "alpha beta gamma delta epsilon zeta eta theta"
	units := ChunkByWindow(text, 12, nil, "src")

	allWords := strings.Fields(text)
	var got []string
	for _, unit := range units {
		got = append(got, strings.Fields(unit.Text)...)
	}
	assert.Equal(t, allWords, got)
}

func TestChunkByWindowLosslessPartition(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 50)
	units := ChunkByWindow(text, 100, nil, "src")

	var parts []string
	for i, unit := range units {
		assert.Equal(t, i, unit.Index)
		assert.Equal(t, len(units), unit.Total)
		parts = append(parts, unit.Text)
	}
	assert.Equal(t, strings.Join(strings.Fields(text), " "), strings.Join(parts, " "))
}

func TestChunkByWindowIdempotent(t *testing.T) {
	text := strings.Repeat("some words here ", 30)
	assert.Equal(t,
		ChunkByWindow(text, 80, nil, "src"),
		ChunkByWindow(text, 80, nil, "src"))
}

func TestChunkByWindowOversizedWord(t *testing.T) {
	// A single word longer than the budget still becomes its own chunk.
	units := ChunkByWindow("short "+strings.Repeat("x", 50)+" tail", 20, nil, "src")
	require.Len(t, units, 3)
	assert.Equal(t, "short", units[0].Text)
	assert.Equal(t, "tail", units[2].Text)
}

func TestChunkByWindowPageRanges(t *testing.T) {
	words := []string{"w1", "w2", "w3", "w4", "w5", "w6"}
	pageOfWord := []int{1, 1, 2, 2, 3, 3}
	text := strings.Join(words, " ")

	// Budget of 6 chars fits two 2-char words per chunk.
	units := ChunkByWindow(text, 6, pageOfWord, "src")
	require.Len(t, units, 3)
	assert.Equal(t, "1", units[0].PageRange)
	assert.Equal(t, "2", units[1].PageRange)
	assert.Equal(t, "3", units[2].PageRange)

	wide := ChunkByWindow(text, 1000, pageOfWord, "src")
	require.Len(t, wide, 1)
	assert.Equal(t, "1-3", wide[0].PageRange)
}

func TestChunkByWindowEmpty(t *testing.T) {
	assert.Nil(t, ChunkByWindow("   ", 100, nil, "src"))
}
