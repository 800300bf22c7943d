package textdoc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerf-editor/kerf/internal/types"
)

func TestFromStringAndBytes(t *testing.T) {
	doc := FromString("foo\nbar\n\nbaz")

	assert.Equal(t, 4, doc.LineCount())
	assert.Equal(t, "foo", doc.LineText(0))
	assert.Equal(t, "", doc.LineText(2))
	assert.Equal(t, "foo\nbar\n\nbaz", string(doc.Bytes()))
}

func TestLoadAndSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.c")
	require.NoError(t, os.WriteFile(path, []byte("int x;\nint y;\n"), 0644))

	doc := New()
	require.NoError(t, doc.Load(path))
	assert.Equal(t, "int x;", doc.LineText(0))
	assert.False(t, doc.IsModified())

	require.NoError(t, doc.Insert(types.Position{Line: 1, Col: 0}, []byte("\t")))
	assert.True(t, doc.IsModified())

	require.NoError(t, doc.Save(""))
	assert.False(t, doc.IsModified())
	assert.Equal(t, doc.Revision(), doc.SavedRevision())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "int x;\n\tint y;", string(data))
}

func TestLoadMissingFileYieldsEmptyDocument(t *testing.T) {
	doc := New()
	require.NoError(t, doc.Load(filepath.Join(t.TempDir(), "absent.c")))
	assert.Equal(t, 1, doc.LineCount())
	assert.Equal(t, "", doc.LineText(0))
}

func TestRuneOffsetPositionRoundTrip(t *testing.T) {
	doc := FromString("héllo\nwörld\n\nend")

	for offset := 0; offset < doc.RuneCount(); offset++ {
		pos := doc.PositionFor(offset)
		assert.Equal(t, offset, doc.RuneOffset(pos), "offset %d", offset)
	}

	// Columns past the line end clamp.
	assert.Equal(t, 5, doc.RuneOffset(types.Position{Line: 0, Col: 99}))
}

func TestCharAt(t *testing.T) {
	doc := FromString("ab\ncd")

	r, ok := doc.CharAt(0)
	require.True(t, ok)
	assert.Equal(t, 'a', r)

	// The separator between lines reads as '\n'.
	r, ok = doc.CharAt(2)
	require.True(t, ok)
	assert.Equal(t, '\n', r)

	r, ok = doc.CharAt(3)
	require.True(t, ok)
	assert.Equal(t, 'c', r)

	_, ok = doc.CharAt(5)
	assert.False(t, ok)
}

func TestInsertMultiLine(t *testing.T) {
	doc := FromString("ab")
	require.NoError(t, doc.Insert(types.Position{Line: 0, Col: 1}, []byte("1\n2")))

	assert.Equal(t, 2, doc.LineCount())
	assert.Equal(t, "a1", doc.LineText(0))
	assert.Equal(t, "2b", doc.LineText(1))
}

func TestDeleteAcrossLines(t *testing.T) {
	doc := FromString("foo\nbar\nbaz")
	require.NoError(t, doc.Delete(types.Position{Line: 0, Col: 2}, types.Position{Line: 2, Col: 1}))

	assert.Equal(t, 1, doc.LineCount())
	assert.Equal(t, "foaz", doc.LineText(0))
}

func TestLineRevisionTracksEdits(t *testing.T) {
	doc := FromString("a\nb\nc")
	doc.MarkSaved()
	saved := doc.SavedRevision()

	require.NoError(t, doc.Insert(types.Position{Line: 1, Col: 1}, []byte("!")))

	assert.LessOrEqual(t, doc.LineRevision(0), saved)
	assert.Greater(t, doc.LineRevision(1), saved)
	assert.LessOrEqual(t, doc.LineRevision(2), saved)

	doc.MarkSaved()
	assert.LessOrEqual(t, doc.LineRevision(1), doc.SavedRevision())
}

func TestTrimTrailingWhitespace(t *testing.T) {
	doc := FromString("int x;   \nnext")

	assert.Equal(t, 3, doc.TrimTrailingWhitespace(0))
	assert.Equal(t, "int x;", doc.LineText(0))
	assert.Equal(t, 0, doc.TrimTrailingWhitespace(0))
	assert.Equal(t, 0, doc.TrimTrailingWhitespace(99))
}

func TestApplySortsAndAppliesBackToFront(t *testing.T) {
	doc := FromString("aa\nbb")

	// Deliberately unsorted.
	edits := []types.Edit{
		{Start: 4, End: 5, Text: "B"},
		{Start: 0, End: 1, Text: "A"},
	}
	require.NoError(t, doc.Apply(edits))
	assert.Equal(t, "Aa\nbB", string(doc.Bytes()))
}

func TestApplyInsertOnly(t *testing.T) {
	doc := FromString("if (x)\n")
	require.NoError(t, doc.Apply([]types.Edit{{Start: 7, End: 7, Text: "    "}}))
	assert.Equal(t, "if (x)\n    ", string(doc.Bytes()))
}

func TestApplyRejectsOverlapAtomically(t *testing.T) {
	doc := FromString("abcdef")
	before := string(doc.Bytes())

	err := doc.Apply([]types.Edit{
		{Start: 0, End: 3, Text: "x"},
		{Start: 2, End: 4, Text: "y"},
	})
	require.Error(t, err)
	assert.Equal(t, before, string(doc.Bytes()))
	assert.False(t, doc.IsModified())
}

func TestApplyRejectsOutOfBounds(t *testing.T) {
	doc := FromString("ab")
	err := doc.Apply([]types.Edit{{Start: 1, End: 10, Text: ""}})
	require.Error(t, err)
	assert.Equal(t, "ab", string(doc.Bytes()))
}

func TestFirstNonSpaceAndIsBlank(t *testing.T) {
	doc := FromString("  x\n\t\n")

	assert.Equal(t, 2, doc.FirstNonSpace(0))
	assert.Equal(t, -1, doc.FirstNonSpace(1))
	assert.False(t, doc.IsBlank(0))
	assert.True(t, doc.IsBlank(1))
	assert.True(t, doc.IsBlank(2))
	assert.False(t, doc.IsBlank(3))
}
