// Package placeholder injects minimal synthetic text into a scratch copy of
// the document so the external reformat engine can parse a region that is
// syntactically incomplete. Every injected byte is recorded as an excluded
// span; the replacement filter rejects engine output overlapping one.
package placeholder

import (
	"bytes"
	"unicode/utf8"

	"github.com/kerf-editor/kerf/internal/logger"
	"github.com/kerf-editor/kerf/internal/offsets"
	"github.com/kerf-editor/kerf/internal/syntaxctx"
	"github.com/kerf-editor/kerf/internal/textdoc"
	"github.com/kerf-editor/kerf/internal/types"
)

const (
	// blockComment is inert for clang-style formatters: it opens and closes
	// a comment in one token, so it parses as a complete statement-free line.
	blockComment = "/*//*/"
	lineComment  = "//"
	// trailingGuard appended to the previous line keeps the engine from
	// collapsing a line break it judges to be removable whitespace.
	trailingGuard = " //"
)

// Synthesizer prepares a scratch buffer for one request and accumulates the
// spans of everything it injected. One Synthesizer serves one request.
type Synthesizer struct {
	doc   *textdoc.Document
	spans []types.Span
}

func NewSynthesizer(doc *textdoc.Document) *Synthesizer {
	return &Synthesizer{doc: doc}
}

// Spans returns the byte spans of all text injected so far, in the
// coordinates of the buffer as returned by the last Inject call.
func (s *Synthesizer) Spans() []types.Span {
	return s.spans
}

// insert splices text into the buffer at the byte offset, records its span
// and shifts previously recorded spans that sit at or after the offset.
func (s *Synthesizer) insert(buf []byte, offset int, text string) []byte {
	if text == "" {
		return buf
	}
	for i := range s.spans {
		s.spans[i] = s.spans[i].Shift(offset, len(text))
	}
	s.spans = append(s.spans, types.Span{Start: offset, End: offset + len(text)})
	out := make([]byte, 0, len(buf)+len(text))
	out = append(out, buf[:offset]...)
	out = append(out, text...)
	out = append(out, buf[offset:]...)
	return out
}

func dummyTextFor(ctx syntaxctx.Context, closingBraceBlock bool) string {
	if closingBraceBlock && ctx == syntaxctx.NewStatementOrContinuation {
		return ""
	}
	switch ctx {
	case syntaxctx.AfterComma:
		return "a,"
	case syntaxctx.LastAfterComma:
		return "a"
	case syntaxctx.ControlWithoutBraces:
		return ";"
	case syntaxctx.CallArgumentBlock:
		return ";"
	case syntaxctx.NewStatementOrContinuation:
		return blockComment
	default:
		// Synthesis after classification must never see Unknown.
		logger.Errorf("placeholder: synthesize called with Unknown context")
		return ""
	}
}

func nextLineExistsAndBlank(doc *textdoc.Document, line int) bool {
	return line+1 < doc.LineCount() && doc.IsBlank(line+1)
}

// Inject prepares one line of the scratch buffer and returns the buffer and
// the number of bytes added. The context pointer carries state across a
// bottom-up sweep over the requested lines: a second consecutive
// LastAfterComma line downgrades to AfterComma so every empty line of an
// argument list reuses the same kind of dummy text.
func (s *Synthesizer) Inject(buf []byte, line int, ctx *syntaxctx.Context, secondTry bool) ([]byte, int) {
	if line < 0 || line >= s.doc.LineCount() {
		return buf, 0
	}

	fresh := syntaxctx.Classify(s.doc, line)
	if *ctx == syntaxctx.LastAfterComma && fresh == syntaxctx.LastAfterComma {
		*ctx = syntaxctx.AfterComma
	} else {
		*ctx = fresh
	}

	blockText := s.doc.LineText(line)
	firstNonSpace := s.doc.FirstNonSpace(line)
	lineStart := offsets.LineByteOffset(buf, line)
	if lineStart < 0 {
		return buf, 0
	}
	utf8EndOfLine := lineStart + len(blockText)

	utf8Offset := lineStart
	if firstNonSpace >= 0 {
		utf8Offset += offsets.RuneIndexToByteOffset([]byte(blockText), firstNonSpace)
	} else {
		utf8Offset += len(blockText)
	}

	closingParen := false
	closingBrace := false
	if firstNonSpace >= 0 {
		r, _ := utf8.DecodeRuneInString(blockText[offsets.RuneIndexToByteOffset([]byte(blockText), firstNonSpace):])
		closingParen = r == ')'
		closingBrace = r == '}'
	}

	extra := 0
	var dummy string
	if firstNonSpace < 0 && *ctx != syntaxctx.Unknown && nextLineExistsAndBlank(s.doc, line) {
		// With another blank line below, a line comment cannot merge with
		// following content the way a block comment token could.
		dummy = lineComment
	} else if firstNonSpace < 0 || closingParen || closingBrace || *ctx == syntaxctx.CallArgumentBlock {
		dummy = dummyTextFor(*ctx, closingBrace)
	}

	if dummy == blockComment || dummy == "" {
		if line > 0 {
			prevEnd := lineStart - 1 // the '\n' separating the lines
			if prevEnd >= 0 {
				buf = s.insert(buf, prevEnd, trailingGuard)
				extra += len(trailingGuard)
			}
		}
	}

	if *ctx == syntaxctx.CallArgumentBlock {
		// The synthetic statement has to close the call, so it goes after
		// the line's content rather than at the first non-blank column.
		buf = s.insert(buf, utf8EndOfLine+extra, dummy)
		extra += len(dummy)
		return buf, extra
	}

	buf = s.insert(buf, utf8Offset+extra, dummy)
	extra += len(dummy)

	if secondTry {
		// A closing parenthesis at the end of the line helps the engine
		// recover from an unmatched '('. This is a narrow heuristic for one
		// failure mode; unmatched braces are not recovered.
		nextLinePos := bytes.IndexByte(buf[utf8Offset:], '\n')
		if nextLinePos < 0 {
			nextLinePos = len(buf) - 1
		} else {
			nextLinePos += utf8Offset
		}
		if nextLinePos > 0 {
			buf = s.insert(buf, nextLinePos, ")")
			extra++
		}
	}

	return buf, extra
}
