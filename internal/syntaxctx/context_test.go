package syntaxctx

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kerf-editor/kerf/internal/textdoc"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		line int
		want Context
	}{
		{
			name: "no predecessor",
			text: "x",
			line: 0,
			want: NewStatementOrContinuation,
		},
		{
			name: "blank predecessors only",
			text: "\n\nfoo",
			line: 2,
			want: NewStatementOrContinuation,
		},
		{
			name: "after comma, more arguments coming",
			text: "foo(a,\nb",
			line: 1,
			want: AfterComma,
		},
		{
			name: "after comma, closing paren next",
			text: "foo(a,\n)",
			line: 1,
			want: LastAfterComma,
		},
		{
			name: "after comma, closing paren, call opened on its own line",
			text: "foo(\na, b,\n)",
			line: 2,
			want: NewStatementOrContinuation,
		},
		{
			name: "after comma, closing brace of initializer",
			text: "x = {1,\n}",
			line: 1,
			want: LastAfterComma,
		},
		{
			name: "after comma, closing brace, brace opened on its own line",
			text: "x = {\na,\n}",
			line: 2,
			want: NewStatementOrContinuation,
		},
		{
			name: "if without braces",
			text: "if (x)\n",
			line: 1,
			want: ControlWithoutBraces,
		},
		{
			name: "if with nested call parens",
			text: "if (foo(a, b))\n",
			line: 1,
			want: ControlWithoutBraces,
		},
		{
			name: "else without braces",
			text: "} else\n",
			line: 1,
			want: ControlWithoutBraces,
		},
		{
			name: "ifdef is not the if keyword",
			text: "call([] {\nifdef(x)",
			line: 1,
			want: CallArgumentBlock,
		},
		{
			name: "if statement inside a lambda block is not a call argument",
			text: "call([] {\nif (x)",
			line: 1,
			want: NewStatementOrContinuation,
		},
		{
			name: "closing line of a lambda argument",
			text: "connect(obj, [] {\n})",
			line: 1,
			want: CallArgumentBlock,
		},
		{
			name: "blank line after open brace of call argument",
			text: "connect(obj, [] {\n\nx",
			line: 1,
			want: CallArgumentBlock,
		},
		{
			name: "unbalanced closing paren",
			text: "x)\n",
			line: 1,
			want: NewStatementOrContinuation,
		},
		{
			name: "plain statement continuation",
			text: "int x = 1;\ny",
			line: 1,
			want: NewStatementOrContinuation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := textdoc.FromString(tt.text)
			assert.Equal(t, tt.want, Classify(doc, tt.line))
		})
	}
}

func TestClassifyIgnoresUnrelatedEarlierLines(t *testing.T) {
	plain := textdoc.FromString("foo(a,\n)")
	padded := textdoc.FromString("int unrelated;\n\nfoo(a,\n)")

	assert.Equal(t, Classify(plain, 1), Classify(padded, 3))
}

func TestClassifyBlankLineFindsNonBlankPredecessor(t *testing.T) {
	doc := textdoc.FromString("if (x)\n\n\n")
	assert.Equal(t, ControlWithoutBraces, Classify(doc, 2))
}

func TestPrevNonBlankLine(t *testing.T) {
	doc := textdoc.FromString("a\n\n\nb")

	assert.Equal(t, 0, PrevNonBlankLine(doc, 2))
	assert.Equal(t, 0, PrevNonBlankLine(doc, 3))
	assert.Equal(t, -1, PrevNonBlankLine(doc, 0))
}

func TestFirstLineOfBlankRun(t *testing.T) {
	doc := textdoc.FromString("a\n\n\n\nb")

	assert.Equal(t, 1, FirstLineOfBlankRun(doc, 3))
	assert.Equal(t, 1, FirstLineOfBlankRun(doc, 1))
	assert.Equal(t, 4, FirstLineOfBlankRun(doc, 4))
	assert.Equal(t, 0, FirstLineOfBlankRun(doc, 0))
}

func TestStartsWithKeyword(t *testing.T) {
	assert.True(t, startsWithKeyword("if", "if (x)"))
	assert.True(t, startsWithKeyword("if", "if("))
	assert.False(t, startsWithKeyword("if", "ifdef X"))
	assert.False(t, startsWithKeyword("if", "if"))
	assert.False(t, startsWithKeyword("if", "i"))
	assert.False(t, startsWithKeyword("while", "while_true()"))
}
