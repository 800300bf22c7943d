package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReplacementsXML(t *testing.T) {
	data := []byte(`<?xml version='1.0'?>
<replacements xml:space='preserve' incomplete_format='false'>
<replacement offset='25' length='1'>&#10;    </replacement>
<replacement offset='7' length='0'> </replacement>
</replacements>`)

	reps, status, err := parseReplacementsXML(data)
	require.NoError(t, err)

	assert.True(t, status.Complete)
	// Output is offset-sorted regardless of document order.
	require.Len(t, reps, 2)
	assert.Equal(t, Replacement{Offset: 7, Length: 0, Text: " "}, reps[0])
	assert.Equal(t, Replacement{Offset: 25, Length: 1, Text: "\n    "}, reps[1])
}

func TestParseReplacementsXMLIncomplete(t *testing.T) {
	data := []byte(`<?xml version='1.0'?>
<replacements xml:space='preserve' incomplete_format='true' line='3'>
</replacements>`)

	reps, status, err := parseReplacementsXML(data)
	require.NoError(t, err)

	assert.False(t, status.Complete)
	assert.Equal(t, 3, status.Line)
	assert.Empty(t, reps)
}

func TestParseReplacementsXMLPreservesWhitespaceText(t *testing.T) {
	data := []byte(`<?xml version='1.0'?>
<replacements xml:space='preserve' incomplete_format='false'>
<replacement offset='0' length='2'>	</replacement>
</replacements>`)

	reps, _, err := parseReplacementsXML(data)
	require.NoError(t, err)
	require.Len(t, reps, 1)
	assert.Equal(t, "\t", reps[0].Text)
}

func TestParseReplacementsXMLMalformed(t *testing.T) {
	_, _, err := parseReplacementsXML([]byte("<replacements"))
	assert.Error(t, err)
}

func TestSortReplacements(t *testing.T) {
	reps := []Replacement{{Offset: 9}, {Offset: 1}, {Offset: 4}}
	SortReplacements(reps)
	assert.Equal(t, []Replacement{{Offset: 1}, {Offset: 4}, {Offset: 9}}, reps)
}

func TestNewClangFormatDefaultsBinary(t *testing.T) {
	assert.Equal(t, DefaultBinary, NewClangFormat("").Binary)
	assert.Equal(t, "/opt/bin/clang-format", NewClangFormat("/opt/bin/clang-format").Binary)
}
