// Package indenter is the incremental-indentation decision engine. It
// prepares a placeholder-augmented scratch snapshot of the document, asks
// the external reformat engine for replacements over a minimal byte range,
// and converts the surviving replacements into native-coordinate edits that
// are safe to apply to the live document.
package indenter

import (
	"errors"
	"strings"

	"github.com/kerf-editor/kerf/internal/engine"
	"github.com/kerf-editor/kerf/internal/logger"
	"github.com/kerf-editor/kerf/internal/offsets"
	"github.com/kerf-editor/kerf/internal/placeholder"
	"github.com/kerf-editor/kerf/internal/style"
	"github.com/kerf-editor/kerf/internal/syntaxctx"
	"github.com/kerf-editor/kerf/internal/textdoc"
	"github.com/kerf-editor/kerf/internal/types"
)

// KeepReplacements selects how much of the engine's output survives
// filtering.
type KeepReplacements int

const (
	// KeepOnlyIndent keeps whitespace-only replacements anchored at line
	// starts: the indent-only request.
	KeepOnlyIndent KeepReplacements = iota
	// KeepIndentAndBefore widens the range back to the start of unsaved
	// edits so a completed statement can be re-flowed.
	KeepIndentAndBefore
	// KeepAll keeps everything: the full-format request.
	KeepAll
)

// Indenter computes indentation and formatting edits for one document.
// It is synchronous and single-threaded: one editing event runs one
// classify-synthesize-request-filter-apply pipeline to completion.
type Indenter struct {
	doc    *textdoc.Document
	eng    engine.Engine
	styles *style.Resolver

	// FormatWhileTyping lets a typed ';' or '}' re-flow the whole preceding
	// statement instead of only re-indenting.
	FormatWhileTyping bool
	// FormatInsteadOfIndent makes AutoIndent run a full format.
	FormatInsteadOfIndent bool
}

// New creates an indenter for the document. The engine and the style
// resolver are shared collaborators owned by the caller.
func New(doc *textdoc.Document, eng engine.Engine, styles *style.Resolver) *Indenter {
	return &Indenter{doc: doc, eng: eng, styles: styles}
}

// adjustStyleForLineBreak disables the style passes that are unsafe over a
// partial range: include sorting, using-declaration sorting, namespace
// comments and trailing-comment alignment are whole-file passes, and a
// raised blank-line ceiling keeps the engine from eating the empty line the
// cursor sits on. Indent-only requests additionally drop the column limit
// so indentation can never trigger a line wrap.
func adjustStyleForLineBreak(st *style.Style, keep KeepReplacements) {
	st.MaxEmptyLinesToKeep = 100
	st.SortIncludes = "Never"
	st.SortUsingDeclarations = "Never"
	st.FixNamespaceComments = false
	st.AlignTrailingComments = "Never"

	if keep == KeepIndentAndBefore {
		return
	}
	st.ColumnLimit = 0
}

// IsElectricCharacter reports whether typing ch should trigger
// re-indentation of the current line.
func (in *Indenter) IsElectricCharacter(ch rune) bool {
	switch ch {
	case '{', '}', ':', '#', '<', '>', ';', '(', ')':
		return true
	}
	return false
}

// Margin returns the effective column limit for the document's file.
func (in *Indenter) Margin() int {
	return in.styles.StyleFor(in.doc.FilePath()).ColumnLimit
}

// Style returns the resolved, unadjusted style for the document's file.
func (in *Indenter) Style() *style.Style {
	return in.styles.StyleFor(in.doc.FilePath())
}

// doNotIndentInContext suppresses indentation for a typed ':' that is not a
// label or access-specifier colon, so typing the first ':' of '::' does not
// yank the line around.
func doNotIndentInContext(doc *textdoc.Document, pos int) bool {
	ch, ok := doc.CharAt(pos)
	if !ok {
		return false
	}
	switch ch {
	case ':':
		p := doc.PositionFor(pos)
		runes := []rune(doc.LineText(p.Line))
		col := p.Col
		if col > len(runes) {
			col = len(runes)
		}
		text := string(runes[:col])
		for _, kw := range []string{"case", "default", "public", "private", "protected", "signals", "Q_SIGNALS"} {
			if strings.Contains(text, kw) {
				return false
			}
		}
		if pos > 0 {
			if prev, ok := doc.CharAt(pos - 1); ok && prev != ':' {
				return true
			}
		}
	}
	return false
}

// IndentAt re-indents the line at pos in response to a typed character
// (0 when none was typed, e.g. on paste or explicit reindent). Lines whose
// text neither starts nor ends with the typed character are left alone.
func (in *Indenter) IndentAt(pos types.Position, typedChar rune, cursorPos int) error {
	text := strings.TrimSpace(in.doc.LineText(pos.Line))
	if typedChar == 0 || text == "" ||
		strings.HasPrefix(text, string(typedChar)) || strings.HasSuffix(text, string(typedChar)) {
		return in.indentLines(pos.Line, pos.Line, typedChar, cursorPos)
	}
	return nil
}

// IndentRange re-indents every line of a selection.
func (in *Indenter) IndentRange(start, end types.Position, typedChar rune, cursorPos int) error {
	return in.indentLines(start.Line, end.Line, typedChar, cursorPos)
}

// Reindent re-indents without a typed character.
func (in *Indenter) Reindent(pos types.Position, cursorPos int) error {
	return in.IndentAt(pos, 0, cursorPos)
}

// AutoIndent honors the format-instead-of-indent preference.
func (in *Indenter) AutoIndent(start, end types.Position, cursorPos int) error {
	if in.FormatInsteadOfIndent {
		_, err := in.Format(start.Line, end.Line)
		return err
	}
	return in.indentLines(start.Line, end.Line, 0, cursorPos)
}

func (in *Indenter) indentLines(startLine, endLine int, typedChar rune, cursorPos int) error {
	edits, err := in.indentsFor(startLine, endLine, typedChar, cursorPos, true)
	if err != nil {
		return err
	}
	return in.doc.Apply(edits)
}

// ComputeEdits computes the indentation edit set for a line range without
// applying it and without mutating the document.
func (in *Indenter) ComputeEdits(startLine, endLine int, typedChar rune, cursorPos int) ([]types.Edit, error) {
	return in.indentsFor(startLine, endLine, typedChar, cursorPos, false)
}

// IndentColumnFor computes the indentation that would apply to the line
// without applying it, in runes. Returns -1 when no indentation replacement
// targets the line.
func (in *Indenter) IndentColumnFor(line int, cursorPos int) int {
	edits, err := in.indentsFor(line, line, 0, cursorPos, false)
	if err != nil || len(edits) == 0 {
		return -1
	}
	return indentationForLine(in.doc, edits, line)
}

// IndentColumnsFor answers the indent-column query for every line of a
// range from a single engine request.
func (in *Indenter) IndentColumnsFor(startLine, endLine int, cursorPos int) map[int]int {
	ret := make(map[int]int)
	if endLine < startLine {
		return ret
	}
	edits, err := in.indentsFor(startLine, endLine, 0, cursorPos, true)
	if err != nil {
		return ret
	}
	for line := startLine; line <= endLine; line++ {
		ret[line] = indentationForLine(in.doc, edits, line)
	}
	return ret
}

// indentationForLine extracts the indentation a computed edit set would
// give a line. The converter trims the prefix an edit shares with the
// document, so the edit touching the line's leading whitespace may start
// anywhere between the preceding line break and the first non-space rune;
// the runes it leaves untouched before its start still count as indentation.
func indentationForLine(doc *textdoc.Document, edits []types.Edit, line int) int {
	lineStart := doc.RuneOffset(types.Position{Line: line})
	first := doc.FirstNonSpace(line)
	if first < 0 {
		first = len([]rune(doc.LineText(line)))
	}
	for _, e := range edits {
		if e.Start < lineStart-1 || e.Start > lineStart+first {
			continue
		}
		afterBreak := strings.LastIndexByte(e.Text, '\n') + 1
		kept := e.Start - lineStart
		if kept < 0 {
			kept = 0
		}
		return kept + len([]rune(e.Text[afterBreak:]))
	}
	return -1
}

// indentsFor is the shared front half of every indent request: it widens
// the start over the preceding blank run, optionally trims trailing
// whitespace off the line above, and decides between an indent-only and an
// indent-and-before request.
func (in *Indenter) indentsFor(startLine, endLine int, typedChar rune, cursorPos int, trimTrailing bool) ([]types.Edit, error) {
	if typedChar != 0 && cursorPos > 0 {
		if ch, ok := in.doc.CharAt(cursorPos - 1); ok && ch == typedChar &&
			doNotIndentInContext(in.doc, cursorPos-1) {
			return nil, nil
		}
	}

	startLine = syntaxctx.FirstLineOfBlankRun(in.doc, startLine)
	if trimTrailing && startLine > 0 {
		removed := in.doc.TrimTrailingWhitespace(startLine - 1)
		if cursorPos >= 0 {
			cursorPos -= removed
		}
	}

	buf := in.doc.Bytes()

	keep := KeepOnlyIndent
	startOffset := in.doc.RuneOffset(types.Position{Line: startLine})
	if in.FormatWhileTyping &&
		(cursorPos == -1 || cursorPos >= startOffset) &&
		(typedChar == ';' || typedChar == '}') {
		// Only a complete statement is safe to re-flow, and only when the
		// cursor is inside the indented block; a cursor before the block
		// means the current line precedes it.
		keep = KeepIndentAndBefore
	}

	return in.replacements(buf, startLine, endLine, keep, typedChar, false)
}

// formattingRangeStart widens the byte range backward to the first line of
// the contiguous run of lines modified since the last save, so the engine
// sees the whole unsaved statement.
func (in *Indenter) formattingRangeStart(buf []byte, startLine int) int {
	saved := in.doc.SavedRevision()
	prev := startLine - 1
	for prev >= 0 && in.doc.LineRevision(prev) > saved {
		prev--
	}
	first := prev + 1
	off := offsets.LineByteOffset(buf, first)
	if off < 0 {
		off = 0
	}
	return off
}

// selectedBytes is the byte length of the inclusive line range in buf.
func selectedBytes(buf []byte, startOffset, endLine int) int {
	endStart := offsets.LineByteOffset(buf, endLine)
	if endStart < 0 {
		return len(buf) - startOffset
	}
	length := endStart - startOffset
	line := offsets.LineAt(buf, endStart)
	return length + len(line)
}

// replacements runs one engine request and filters and converts its output.
// On an indent-only request that produced nothing usable it retries once
// with a stronger placeholder, then gives up with an empty edit set.
func (in *Indenter) replacements(buf []byte, startLine, endLine int, keep KeepReplacements, typedChar rune, secondTry bool) ([]types.Edit, error) {
	if keep == KeepAll {
		// Full-format requests go through Format; reaching this point with
		// KeepAll is a programming error, degraded to a no-op.
		logger.Errorf("indenter: replacements called with KeepAll")
		return nil, nil
	}
	filePath := in.doc.FilePath()
	if filePath == "" {
		return nil, errors.New("document has no file path")
	}

	original := buf
	utf8Offset := offsets.LineByteOffset(buf, startLine)
	if utf8Offset < 0 {
		logger.Errorf("indenter: start line %d outside document", startLine)
		return nil, nil
	}
	utf8Length := selectedBytes(buf, utf8Offset, endLine)

	rangeStart := 0
	if keep == KeepIndentAndBefore {
		rangeStart = in.formattingRangeStart(buf, startLine)
	}

	st := in.styles.StyleFor(filePath).Clone()
	adjustStyleForLineBreak(st, keep)

	var spans []types.Span
	if keep == KeepOnlyIndent {
		synth := placeholder.NewSynthesizer(in.doc)
		ctx := syntaxctx.Unknown
		// Iterate backwards so every line's placeholder lands at offsets
		// that earlier (lower) lines have not shifted yet, and so empty
		// argument-list lines can reuse the same kind of dummy text.
		for line := endLine; line >= startLine; line-- {
			var added int
			buf, added = synth.Inject(buf, line, &ctx, secondTry)
			utf8Length += added
		}
		spans = synth.Spans()
	}

	if keep != KeepIndentAndBefore || utf8Offset < rangeStart {
		rangeStart = utf8Offset
	}
	rangeLength := utf8Offset + utf8Length - rangeStart

	reps, status, err := in.eng.Reformat(st, buf,
		[]engine.Range{{Offset: rangeStart, Length: rangeLength}}, filePath)
	if err != nil {
		return nil, err
	}

	var filtered []engine.Replacement
	if status.Complete {
		filtered = filterReplacements(buf, reps, utf8Offset, utf8Length, keep, spans)
	} else {
		logger.Debugf("indenter: engine reported incomplete attempt (line %d)", status.Line)
	}

	canTryAgain := keep == KeepOnlyIndent && typedChar == 0 && !secondTry
	if canTryAgain && len(filtered) == 0 {
		return in.replacements(original, startLine, endLine, keep, typedChar, true)
	}

	return convertReplacements(in.doc, buf, filtered), nil
}

// Format formats an inclusive line range with all replacements kept, no
// placeholders and no style neutering, and applies the result.
func (in *Indenter) Format(startLine, endLine int) ([]types.Edit, error) {
	filePath := in.doc.FilePath()
	if filePath == "" {
		return nil, errors.New("document has no file path")
	}

	buf := in.doc.Bytes()
	utf8Offset := offsets.LineByteOffset(buf, startLine)
	if utf8Offset < 0 {
		return nil, errors.New("format range outside document")
	}
	utf8Length := selectedBytes(buf, utf8Offset, endLine)

	st := in.styles.StyleFor(filePath).Clone()
	reps, status, err := in.eng.Reformat(st, buf,
		[]engine.Range{{Offset: utf8Offset, Length: utf8Length}}, filePath)
	if err != nil {
		return nil, err
	}
	if !status.Complete {
		logger.Warnf("indenter: full format incomplete (line %d), no edits applied", status.Line)
		return nil, nil
	}

	filtered := filterReplacements(buf, reps, utf8Offset, utf8Length, KeepAll, nil)
	edits := convertReplacements(in.doc, buf, filtered)
	if err := in.doc.Apply(edits); err != nil {
		return nil, err
	}
	return edits, nil
}
