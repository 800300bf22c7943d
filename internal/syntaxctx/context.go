// Package syntaxctx classifies the local syntactic situation around a line
// that is about to be indented. The buffer is assumed to be mid-keystroke
// and very likely unparseable, so classification is purely lexical: it looks
// at the target line and the trailing content of its nearest non-blank
// predecessor, never at a syntax tree.
package syntaxctx

import (
	"strings"
	"unicode"

	"github.com/kerf-editor/kerf/internal/textdoc"
	"github.com/kerf-editor/kerf/internal/types"
)

// Context is the classification of the line being indented, derived fresh
// per request.
type Context int

const (
	Unknown Context = iota
	AfterComma
	LastAfterComma
	NewStatementOrContinuation
	ControlWithoutBraces
	CallArgumentBlock
)

func (c Context) String() string {
	switch c {
	case AfterComma:
		return "AfterComma"
	case LastAfterComma:
		return "LastAfterComma"
	case NewStatementOrContinuation:
		return "NewStatementOrContinuation"
	case ControlWithoutBraces:
		return "ControlWithoutBraces"
	case CallArgumentBlock:
		return "CallArgumentBlock"
	default:
		return "Unknown"
	}
}

// PrevNonBlankLine returns the index of the nearest non-blank line strictly
// above the given line, or -1 if there is none.
func PrevNonBlankLine(doc *textdoc.Document, line int) int {
	for i := line - 1; i >= 0; i-- {
		if !doc.IsBlank(i) {
			return i
		}
	}
	return -1
}

// FirstLineOfBlankRun walks upward over blank lines and returns the first
// line of the blank run containing (or ending at) the given line. A line
// preceded by a non-blank line is returned unchanged.
func FirstLineOfBlankRun(doc *textdoc.Document, line int) int {
	for line > 0 && doc.IsBlank(line-1) {
		line--
	}
	return line
}

// startsWithKeyword matches a leading keyword only when it is a complete
// token: the character after it must not be an identifier character, so
// "ifdef" never matches "if".
func startsWithKeyword(keyword, text string) bool {
	if len(text) <= len(keyword) || !strings.HasPrefix(text, keyword) {
		return false
	}
	after := []rune(text[len(keyword):])[0]
	return !unicode.IsLetter(after) && !unicode.IsDigit(after) && after != '_'
}

func startsWithControlKeyword(text string) bool {
	return startsWithKeyword("if", text) || startsWithKeyword("while", text) ||
		startsWithKeyword("for", text)
}

// firstNonSpaceCharFrom scans forward from the start of the given line,
// across line boundaries, and returns the first non-space rune, or 0 when
// only whitespace remains to the end of the document.
func firstNonSpaceCharFrom(doc *textdoc.Document, line int) rune {
	for i := line; i < doc.LineCount(); i++ {
		for _, r := range doc.LineText(i) {
			if !unicode.IsSpace(r) {
				return r
			}
		}
	}
	return 0
}

// lastLineContaining walks upward from the line above the given one to the
// nearest line containing the rune. Returns 0 when the scan bottoms out, to
// mirror stopping at the first block of the document.
func lastLineContaining(doc *textdoc.Document, line int, ch rune) int {
	i := line - 1
	for i > 0 && !strings.ContainsRune(doc.LineText(i), ch) {
		i--
	}
	if i < 0 {
		i = 0
	}
	return i
}

// matchingOpenParen finds the rune offset of the '(' balancing the last ')'
// of the given line, scanning backward across lines. Returns -1 when the
// parentheses never balance.
func matchingOpenParen(doc *textdoc.Document, line int) int {
	text := doc.LineText(line)
	lastParen := strings.LastIndexByte(text, ')')
	if lastParen < 0 {
		return -1
	}
	pos := doc.RuneOffset(types.Position{Line: line, Col: len([]rune(text[:lastParen]))})
	balance := 1
	for pos > 0 && balance > 0 {
		pos--
		r, ok := doc.CharAt(pos)
		if !ok {
			continue
		}
		switch r {
		case ')':
			balance++
		case '(':
			balance--
		}
	}
	if balance == 0 {
		return pos
	}
	return -1
}

// comesDirectlyAfterIf reports whether the rune offset is immediately
// preceded (ignoring whitespace) by the complete keyword "if".
func comesDirectlyAfterIf(doc *textdoc.Document, pos int) bool {
	pos--
	for pos > 0 {
		r, ok := doc.CharAt(pos)
		if !ok || !unicode.IsSpace(r) {
			break
		}
		pos--
	}
	if pos < 1 {
		return false
	}
	f, okF := doc.CharAt(pos)
	i, okI := doc.CharAt(pos - 1)
	if !okF || !okI || f != 'f' || i != 'i' {
		return false
	}
	if pos-2 < 0 {
		return true
	}
	before, ok := doc.CharAt(pos - 2)
	if !ok {
		return true
	}
	return !unicode.IsLetter(before) && !unicode.IsDigit(before) && before != '_'
}

// Classify derives the Context for the target line. The decision depends
// only on the target line and the trailing content of its nearest non-blank
// predecessor; unrelated earlier lines never change the result.
func Classify(doc *textdoc.Document, targetLine int) Context {
	prevLine := PrevNonBlankLine(doc, targetLine)
	if prevLine < 0 {
		return NewStatementOrContinuation
	}
	prevText := strings.TrimSpace(doc.LineText(prevLine))
	if prevText == "" {
		return NewStatementOrContinuation
	}

	targetText := strings.TrimSpace(doc.LineText(targetLine))
	if (targetText == "" || strings.HasSuffix(targetText, ")")) &&
		strings.HasSuffix(prevText, "{") && !startsWithControlKeyword(targetText) {
		return CallArgumentBlock
	}

	firstChar := firstNonSpaceCharFrom(doc, targetLine)
	if strings.HasSuffix(prevText, ",") {
		if firstChar == '}' {
			enclosing := strings.TrimSpace(doc.LineText(lastLineContaining(doc, targetLine, '{')))
			if strings.HasSuffix(enclosing, "{") {
				return NewStatementOrContinuation
			}
			return LastAfterComma
		}
		if firstChar == ')' {
			enclosing := strings.TrimSpace(doc.LineText(lastLineContaining(doc, targetLine, '(')))
			if strings.HasSuffix(enclosing, "(") {
				return NewStatementOrContinuation
			}
			return LastAfterComma
		}
		return AfterComma
	}

	if strings.HasSuffix(prevText, "else") {
		return ControlWithoutBraces
	}
	if strings.HasSuffix(prevText, ")") {
		if pos := matchingOpenParen(doc, prevLine); pos >= 0 && comesDirectlyAfterIf(doc, pos) {
			return ControlWithoutBraces
		}
	}

	return NewStatementOrContinuation
}
