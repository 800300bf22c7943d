package offsets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerf-editor/kerf/internal/types"
)

func TestRuneByteRoundTrip(t *testing.T) {
	line := []byte("héllo wörld")

	for runeIdx := 0; runeIdx <= 11; runeIdx++ {
		byteOff := RuneIndexToByteOffset(line, runeIdx)
		require.GreaterOrEqual(t, byteOff, 0, "rune index %d", runeIdx)
		assert.Equal(t, runeIdx, ByteOffsetToRuneIndex(line, byteOff), "rune index %d", runeIdx)
	}

	assert.Equal(t, -1, RuneIndexToByteOffset(line, 12))
	assert.Equal(t, 0, RuneIndexToByteOffset(line, -3))
}

func TestLineByteOffset(t *testing.T) {
	buf := []byte("a\nbb\nccc")

	assert.Equal(t, 0, LineByteOffset(buf, 0))
	assert.Equal(t, 2, LineByteOffset(buf, 1))
	assert.Equal(t, 5, LineByteOffset(buf, 2))
	assert.Equal(t, -1, LineByteOffset(buf, 3))
	assert.Equal(t, -1, LineByteOffset(buf, -1))
}

func TestLineAt(t *testing.T) {
	buf := []byte("foo\nbär\nbaz")

	assert.Equal(t, "foo", string(LineAt(buf, 0)))
	assert.Equal(t, "foo", string(LineAt(buf, 3))) // the newline itself
	assert.Equal(t, "bär", string(LineAt(buf, 4)))
	assert.Equal(t, "baz", string(LineAt(buf, len(buf))))
	assert.Nil(t, LineAt(buf, len(buf)+1))
}

func TestPositionForByteOffset(t *testing.T) {
	buf := []byte("héllo\nwörld")

	pos, ok := PositionForByteOffset(buf, 0)
	require.True(t, ok)
	assert.Equal(t, types.Position{Line: 0, Col: 0}, pos)

	// 'é' is two bytes; offset 3 is the first 'l'.
	pos, ok = PositionForByteOffset(buf, 3)
	require.True(t, ok)
	assert.Equal(t, types.Position{Line: 0, Col: 2}, pos)

	// Offset 7 is the start of the second line.
	pos, ok = PositionForByteOffset(buf, 7)
	require.True(t, ok)
	assert.Equal(t, types.Position{Line: 1, Col: 0}, pos)

	// Offset 2 splits the 'é'.
	_, ok = PositionForByteOffset(buf, 2)
	assert.False(t, ok)

	_, ok = PositionForByteOffset(buf, len(buf)+1)
	assert.False(t, ok)
}

func TestOffsetRoundTrip(t *testing.T) {
	buf := []byte("héllo\nwörld\n\n日本語 text")

	for off := 0; off <= len(buf); off++ {
		pos, ok := PositionForByteOffset(buf, off)
		if !ok {
			continue // mid-rune offsets have no native position
		}
		back := ByteOffsetForPosition(buf, pos)
		assert.Equal(t, off, back, "offset %d -> %+v", off, pos)
	}
}

func TestVisualWidth(t *testing.T) {
	assert.Equal(t, 4, VisualWidth("    ", 4))
	assert.Equal(t, 7, VisualWidth("\tfoo", 4))
	assert.Equal(t, 2, VisualWidth("日", 4)) // wide rune
	assert.Equal(t, 0, VisualWidth("", 4))
}
