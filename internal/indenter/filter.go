package indenter

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/kerf-editor/kerf/internal/engine"
	"github.com/kerf-editor/kerf/internal/logger"
	"github.com/kerf-editor/kerf/internal/offsets"
	"github.com/kerf-editor/kerf/internal/textdoc"
	"github.com/kerf-editor/kerf/internal/types"
)

// clearExtraNewline strips the blank-line padding the engine sometimes
// introduces in front of an indent replacement.
func clearExtraNewline(text string) string {
	for strings.HasPrefix(text, "\n\n") {
		text = text[1:]
	}
	return text
}

func insideSpan(spans []types.Span, offset int) bool {
	for _, s := range spans {
		if s.Contains(offset) {
			return true
		}
	}
	return false
}

// filterReplacements drops engine output that must not reach the document:
// replacements past the requested range, replacements starting inside
// synthesized placeholder text, and - for indent-only requests -
// replacements that are not anchored at a line break or that change the
// newline count of the text they replace (a structural reformat, not
// indentation).
func filterReplacements(buf []byte, reps []engine.Replacement, utf8Offset, utf8Length int, keep KeepReplacements, spans []types.Span) []engine.Replacement {
	var filtered []engine.Replacement
	for _, rep := range reps {
		// Replacements are offset-sorted; everything from here on is after
		// the requested range.
		if rep.Offset >= utf8Offset+utf8Length {
			return filtered
		}
		if rep.Offset < 0 || rep.Offset+rep.Length > len(buf) {
			continue
		}

		if keep != KeepAll && insideSpan(spans, rep.Offset) {
			continue
		}

		if keep == KeepOnlyIndent {
			isNotIndentOrInRange := rep.Offset < utf8Offset-1 ||
				rep.Offset >= len(buf) || buf[rep.Offset] != '\n'
			if isNotIndentOrInRange {
				continue
			}
		}

		text := rep.Text
		if keep == KeepOnlyIndent {
			text = clearExtraNewline(text)
			replaced := buf[rep.Offset : rep.Offset+rep.Length]
			if strings.Count(text, "\n") != bytes.Count(replaced, []byte{'\n'}) {
				continue
			}
		}

		filtered = append(filtered, engine.Replacement{Offset: rep.Offset, Length: rep.Length, Text: text})
	}
	return filtered
}

// isInsideDummyText detects, at the line level, replacements landing in
// text that exists only in the scratch buffer. A second line of defense
// behind the span filter, for placeholder bytes that locally lengthened
// the line.
func isInsideDummyText(originalLine, modifiedLine string, column int) bool {
	origLen := utf8.RuneCountInString(originalLine)
	modLen := utf8.RuneCountInString(modifiedLine)
	return origLen < modLen && column != modLen+1 &&
		(column > origLen || strings.TrimSpace(originalLine) == "" ||
			!strings.HasPrefix(modifiedLine, originalLine))
}

// convertReplacements translates surviving byte-offset replacements against
// the scratch buffer into native rune-offset edits against the live
// document, trimming any prefix and suffix already identical to the current
// content and dropping edits that become true no-ops.
func convertReplacements(doc *textdoc.Document, buf []byte, reps []engine.Replacement) []types.Edit {
	var edits []types.Edit

	for _, rep := range reps {
		pos, ok := offsets.PositionForByteOffset(buf, rep.Offset)
		if !ok {
			// An untranslatable offset invalidates this replacement only,
			// not the batch.
			logger.Warnf("indenter: dropping replacement at untranslatable byte offset %d", rep.Offset)
			continue
		}
		if rep.Offset+rep.Length > len(buf) {
			logger.Warnf("indenter: dropping replacement spanning past buffer end (offset %d length %d)", rep.Offset, rep.Length)
			continue
		}

		lineText := doc.LineText(pos.Line)
		bufferLine := string(offsets.LineAt(buf, rep.Offset))
		if isInsideDummyText(lineText, bufferLine, pos.Col+1) {
			continue
		}

		// A placeholder may have locally lengthened the line; clamp back to
		// the live document.
		col := pos.Col
		if lineLen := utf8.RuneCountInString(lineText); col > lineLen {
			col = lineLen
		}
		start := doc.RuneOffset(types.Position{Line: pos.Line, Col: col})
		length := utf8.RuneCount(buf[rep.Offset : rep.Offset+rep.Length])

		text := strings.ReplaceAll(rep.Text, "\r", "")
		runes := []rune(text)

		sameCharAt := func(i int) bool {
			if length == 0 || i < 0 || i >= len(runes) {
				return false
			}
			docChar, ok := doc.CharAt(start + i)
			if !ok {
				return false
			}
			r := runes[i]
			// Paragraph and line separators count as line feeds.
			return docChar == r || ((docChar == '\u2029' || docChar == '\u2028') && r == '\n')
		}

		// Trim the identical prefix.
		for sameCharAt(0) {
			start++
			length--
			runes = runes[1:]
		}
		// Trim the identical suffix.
		for sameCharAt(length - 1) {
			length--
			runes = runes[:len(runes)-1]
		}

		if len(runes) > 0 || length > 0 {
			edits = append(edits, types.Edit{Start: start, End: start + length, Text: string(runes)})
		}
	}

	return edits
}
