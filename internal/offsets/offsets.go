// Package offsets translates between the document's native rune coordinates
// and the UTF-8 byte offsets the external reformat engine works in.
package offsets

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/kerf-editor/kerf/internal/types"
	"github.com/rivo/uniseg"
)

// RuneIndexToByteOffset converts a rune index to a byte offset in a byte slice.
// Returns -1 if runeIndex is out of bounds.
func RuneIndexToByteOffset(line []byte, runeIndex int) int {
	if runeIndex <= 0 {
		return 0
	}
	byteOffset := 0
	currentRune := 0
	for byteOffset < len(line) {
		if currentRune == runeIndex {
			return byteOffset
		}
		_, size := utf8.DecodeRune(line[byteOffset:])
		byteOffset += size
		currentRune++
	}
	if currentRune == runeIndex {
		return len(line)
	} // Allow index at the very end
	return -1 // Index out of bounds
}

// ByteOffsetToRuneIndex converts a byte offset to a rune index in a byte slice.
func ByteOffsetToRuneIndex(line []byte, byteOffset int) int {
	if byteOffset <= 0 {
		return 0
	}
	if byteOffset > len(line) {
		byteOffset = len(line)
	} // Clamp offset
	runeIndex := 0
	currentOffset := 0
	for currentOffset < byteOffset {
		_, size := utf8.DecodeRune(line[currentOffset:])
		if currentOffset+size > byteOffset {
			break
		} // Don't count rune if offset is within it
		currentOffset += size
		runeIndex++
	}
	return runeIndex
}

// LineByteOffset returns the byte offset of the start of the 0-based line
// in a UTF-8 snapshot, or -1 if the snapshot has fewer lines.
func LineByteOffset(buf []byte, line int) int {
	if line < 0 {
		return -1
	}
	offset := 0
	for l := 0; l < line; l++ {
		nl := bytes.IndexByte(buf[offset:], '\n')
		if nl < 0 {
			return -1
		}
		offset += nl + 1
	}
	return offset
}

// LineAt returns the full line (without the trailing newline) containing
// the given byte offset.
func LineAt(buf []byte, offset int) []byte {
	if offset < 0 || offset > len(buf) {
		return nil
	}
	start := 0
	if offset > 0 {
		if idx := bytes.LastIndexByte(buf[:offset], '\n'); idx >= 0 {
			start = idx + 1
		}
	}
	end := len(buf)
	if idx := bytes.IndexByte(buf[start:], '\n'); idx >= 0 {
		end = start + idx
	}
	return buf[start:end]
}

// PositionForByteOffset maps a byte offset in a UTF-8 snapshot to a native
// Position. The bool result is false when the offset does not land on a
// valid rune boundary inside the snapshot; callers drop such replacements
// rather than guessing.
func PositionForByteOffset(buf []byte, offset int) (types.Position, bool) {
	if offset < 0 || offset > len(buf) {
		return types.Position{}, false
	}
	line := bytes.Count(buf[:offset], []byte{'\n'})
	start := 0
	if offset > 0 {
		if idx := bytes.LastIndexByte(buf[:offset], '\n'); idx >= 0 {
			start = idx + 1
		}
	}
	prefix := buf[start:offset]
	if len(prefix) > 0 {
		// Reject offsets that split a multi-byte rune.
		r, _ := utf8.DecodeLastRune(buf[:offset])
		if r == utf8.RuneError {
			return types.Position{}, false
		}
	}
	return types.Position{Line: line, Col: utf8.RuneCount(prefix)}, true
}

// ByteOffsetForPosition maps a native Position back into a UTF-8 snapshot.
// Returns -1 when the position lies outside the snapshot.
func ByteOffsetForPosition(buf []byte, pos types.Position) int {
	lineStart := LineByteOffset(buf, pos.Line)
	if lineStart < 0 {
		return -1
	}
	col := RuneIndexToByteOffset(LineAt(buf, lineStart), pos.Col)
	if col < 0 {
		return -1
	}
	return lineStart + col
}

// VisualWidth returns the on-screen width of text, expanding tabs to the
// given width and measuring everything else in grapheme clusters.
func VisualWidth(text string, tabWidth int) int {
	if tabWidth <= 0 {
		tabWidth = 1
	}
	width := 0
	for _, part := range strings.Split(text, "\t") {
		width += uniseg.StringWidth(part)
	}
	tabs := strings.Count(text, "\t")
	if tabs > 0 {
		width += tabs * tabWidth
	}
	return width
}
