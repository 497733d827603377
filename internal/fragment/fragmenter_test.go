package fragment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_ShortInputIsSingleFragment(t *testing.T) {
	out := Split("hello world", Options{Length: 500, Overlap: 50})
	require.Len(t, out, 1)
	assert.Equal(t, "hello world", out[0])
}

func TestSplit_EmptyInputYieldsNoFragments(t *testing.T) {
	out := Split("", Options{Length: 500, Overlap: 50})
	assert.Empty(t, out)
}

func TestSplit_LongInputBacksOffToWordBoundary(t *testing.T) {
	text := strings.Repeat("word ", 200) // 1000 chars, plenty of spaces
	out := Split(text, Options{Length: 100, Overlap: 20})
	require.Greater(t, len(out), 1)
	for _, chunk := range out {
		assert.NotEmpty(t, chunk)
		assert.False(t, strings.HasPrefix(chunk, " "))
		assert.False(t, strings.HasSuffix(chunk, " "))
	}
}

func TestSplit_DeterministicChunkCount(t *testing.T) {
	text := strings.Repeat("abcde ", 300)
	a := Split(text, Options{Length: 200, Overlap: 30})
	b := Split(text, Options{Length: 200, Overlap: 30})
	require.Equal(t, a, b)
}

func TestSplit_NoSpaceInWindowSplitsWord(t *testing.T) {
	text := strings.Repeat("x", 300)
	out := Split(text, Options{Length: 100, Overlap: 10})
	require.Greater(t, len(out), 1)
	// No spaces anywhere, so every emitted window is exactly the target
	// length except possibly the last.
	assert.Len(t, out[0], 100)
}
