package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerf-editor/kerf/internal/syntaxctx"
	"github.com/kerf-editor/kerf/internal/textdoc"
	"github.com/kerf-editor/kerf/internal/types"
)

func TestInjectControlWithoutBraces(t *testing.T) {
	doc := textdoc.FromString("if (x)\n")
	syn := NewSynthesizer(doc)
	ctx := syntaxctx.Unknown

	buf, extra := syn.Inject(doc.Bytes(), 1, &ctx, false)

	assert.Equal(t, syntaxctx.ControlWithoutBraces, ctx)
	assert.Equal(t, "if (x)\n;", string(buf))
	assert.Equal(t, 1, extra)
	assert.Equal(t, []types.Span{{Start: 7, End: 8}}, syn.Spans())
}

func TestInjectBlankLineFollowedByBlankUsesLineComment(t *testing.T) {
	doc := textdoc.FromString("if (x)\n\n")
	syn := NewSynthesizer(doc)
	ctx := syntaxctx.Unknown

	buf, extra := syn.Inject(doc.Bytes(), 1, &ctx, false)

	assert.Equal(t, "if (x)\n//\n", string(buf))
	assert.Equal(t, 2, extra)
}

func TestInjectNewStatementGuardsPreviousLine(t *testing.T) {
	doc := textdoc.FromString("x = 1;\n")
	syn := NewSynthesizer(doc)
	ctx := syntaxctx.Unknown

	buf, extra := syn.Inject(doc.Bytes(), 1, &ctx, false)

	assert.Equal(t, syntaxctx.NewStatementOrContinuation, ctx)
	// Guard comment on the previous line, block comment on the target line.
	assert.Equal(t, "x = 1; //\n/*//*/", string(buf))
	assert.Equal(t, 9, extra)
	assert.Equal(t, []types.Span{{Start: 6, End: 9}, {Start: 10, End: 16}}, syn.Spans())
}

func TestInjectLastAfterCommaBeforeClosingParen(t *testing.T) {
	doc := textdoc.FromString("foo(a,\n)")
	syn := NewSynthesizer(doc)
	ctx := syntaxctx.Unknown

	buf, extra := syn.Inject(doc.Bytes(), 1, &ctx, false)

	assert.Equal(t, syntaxctx.LastAfterComma, ctx)
	assert.Equal(t, "foo(a,\na)", string(buf))
	assert.Equal(t, 1, extra)
}

func TestInjectCarriesLastAfterCommaDownToAfterComma(t *testing.T) {
	doc := textdoc.FromString("foo(a,\n\n)")
	syn := NewSynthesizer(doc)
	ctx := syntaxctx.Unknown

	// Bottom-up sweep, the way the request driver walks the range.
	buf := doc.Bytes()
	var extra int
	buf, extra = syn.Inject(buf, 2, &ctx, false)
	require.Equal(t, syntaxctx.LastAfterComma, ctx)
	require.Equal(t, "foo(a,\n\na)", string(buf))
	require.Equal(t, 1, extra)

	buf, extra = syn.Inject(buf, 1, &ctx, false)
	assert.Equal(t, syntaxctx.AfterComma, ctx)
	assert.Equal(t, "foo(a,\na,\na)", string(buf))
	assert.Equal(t, 2, extra)

	// The earlier span shifted right past the new insertion.
	assert.Equal(t, []types.Span{{Start: 10, End: 11}, {Start: 7, End: 9}}, syn.Spans())
}

func TestInjectCallArgumentBlockAppendsAtEndOfLine(t *testing.T) {
	doc := textdoc.FromString("connect(obj, [] {\n})")
	syn := NewSynthesizer(doc)
	ctx := syntaxctx.Unknown

	buf, extra := syn.Inject(doc.Bytes(), 1, &ctx, false)

	assert.Equal(t, syntaxctx.CallArgumentBlock, ctx)
	assert.Equal(t, "connect(obj, [] {\n});", string(buf))
	assert.Equal(t, 1, extra)
}

func TestInjectSecondTryAppendsClosingParen(t *testing.T) {
	doc := textdoc.FromString("foo(a,\nb\n")
	syn := NewSynthesizer(doc)
	ctx := syntaxctx.Unknown

	buf, extra := syn.Inject(doc.Bytes(), 1, &ctx, true)

	assert.Equal(t, syntaxctx.AfterComma, ctx)
	assert.Equal(t, "foo(a, //)\nb\n", string(buf))
	assert.Equal(t, 4, extra)
	assert.Equal(t, []types.Span{{Start: 6, End: 9}, {Start: 9, End: 10}}, syn.Spans())
}

func TestInjectOutOfRangeLineIsNoop(t *testing.T) {
	doc := textdoc.FromString("x")
	syn := NewSynthesizer(doc)
	ctx := syntaxctx.Unknown

	buf, extra := syn.Inject(doc.Bytes(), 5, &ctx, false)

	assert.Equal(t, "x", string(buf))
	assert.Equal(t, 0, extra)
	assert.Empty(t, syn.Spans())
}

func TestSpanShift(t *testing.T) {
	s := types.Span{Start: 5, End: 8}

	assert.Equal(t, types.Span{Start: 8, End: 11}, s.Shift(5, 3))
	assert.Equal(t, types.Span{Start: 8, End: 11}, s.Shift(0, 3))
	assert.Equal(t, s, s.Shift(9, 3))
	assert.True(t, s.Contains(5))
	assert.True(t, s.Contains(7))
	assert.False(t, s.Contains(8))
}
