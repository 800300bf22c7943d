// internal/textdoc/document.go
package textdoc

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/kerf-editor/kerf/internal/offsets"
	"github.com/kerf-editor/kerf/internal/types"
)

// line is a single document line plus the document revision at which it was
// last modified. Lines untouched since the last save keep a revision at or
// below SavedRevision, which is what lets the indenter widen a formatting
// range back to the start of unsaved edits.
type line struct {
	text     []byte
	revision int
}

// Document is a line-oriented text buffer addressed by rune columns.
// It owns the snapshot handed to the reformat engine and is the only thing
// the computed edit set is ever applied to.
type Document struct {
	lines         []line
	filePath      string
	revision      int
	savedRevision int
	modified      bool
}

// New creates an empty document containing a single empty line.
func New() *Document {
	return &Document{lines: []line{{}}}
}

// FromString creates a document from in-memory text.
func FromString(text string) *Document {
	parts := bytes.Split([]byte(text), []byte("\n"))
	doc := &Document{lines: make([]line, len(parts))}
	for i, p := range parts {
		cp := make([]byte, len(p))
		copy(cp, p)
		doc.lines[i] = line{text: cp}
	}
	return doc
}

// Load reads a file into the document. Replaces existing content.
func (d *Document) Load(filePath string) error {
	d.modified = false
	d.revision = 0
	d.savedRevision = 0

	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			d.lines = []line{{}}
			d.filePath = filePath
			return nil
		}
		return fmt.Errorf("failed to open file '%s': %w", filePath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	newLines := []line{}
	for scanner.Scan() {
		text := scanner.Bytes()
		cp := make([]byte, len(text))
		copy(cp, text)
		newLines = append(newLines, line{text: cp})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading file '%s': %w", filePath, err)
	}
	if len(newLines) == 0 {
		newLines = append(newLines, line{})
	}
	d.lines = newLines
	d.filePath = filePath
	return nil
}

// Save writes the document to the stored path (or an override) and records
// the revision so later requests can tell saved lines from edited ones.
func (d *Document) Save(filePath string) error {
	path := d.filePath
	if filePath != "" {
		path = filePath
	}
	if path == "" {
		return errors.New("no file path specified for saving")
	}
	if err := os.WriteFile(path, d.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write file '%s': %w", path, err)
	}
	d.filePath = path
	d.savedRevision = d.revision
	d.modified = false
	return nil
}

// MarkSaved records the current revision as saved without touching disk.
func (d *Document) MarkSaved() {
	d.savedRevision = d.revision
	d.modified = false
}

func (d *Document) FilePath() string { return d.filePath }

// SetFilePath associates the document with a path without loading it.
func (d *Document) SetFilePath(path string) { d.filePath = path }

func (d *Document) LineCount() int { return len(d.lines) }

func (d *Document) IsModified() bool { return d.modified }

func (d *Document) Revision() int { return d.revision }

func (d *Document) SavedRevision() int { return d.savedRevision }

// Line returns the raw bytes of a line (no trailing newline).
func (d *Document) Line(index int) ([]byte, error) {
	if index < 0 || index >= len(d.lines) {
		return nil, fmt.Errorf("line index %d out of bounds (0-%d)", index, len(d.lines)-1)
	}
	return d.lines[index].text, nil
}

// LineText returns a line as a string; out-of-range indexes yield "".
func (d *Document) LineText(index int) string {
	if index < 0 || index >= len(d.lines) {
		return ""
	}
	return string(d.lines[index].text)
}

// LineRevision returns the document revision at which the line last changed.
func (d *Document) LineRevision(index int) int {
	if index < 0 || index >= len(d.lines) {
		return 0
	}
	return d.lines[index].revision
}

// Bytes renders the document as a UTF-8 snapshot with LF line endings.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	for i := range d.lines {
		buf.Write(d.lines[i].text)
		if i < len(d.lines)-1 {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}

// lineRuneLen is the rune length of a line, excluding the newline.
func (d *Document) lineRuneLen(index int) int {
	if index < 0 || index >= len(d.lines) {
		return 0
	}
	return utf8.RuneCount(d.lines[index].text)
}

// RuneCount is the total rune length of the document, counting each line
// separator as one rune.
func (d *Document) RuneCount() int {
	total := 0
	for i := range d.lines {
		total += utf8.RuneCount(d.lines[i].text)
	}
	return total + len(d.lines) - 1
}

// RuneOffset flattens a Position into a document-wide rune offset.
// The column is clamped to the line length.
func (d *Document) RuneOffset(pos types.Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(d.lines) {
		return d.RuneCount()
	}
	offset := 0
	for i := 0; i < pos.Line; i++ {
		offset += d.lineRuneLen(i) + 1
	}
	col := pos.Col
	if max := d.lineRuneLen(pos.Line); col > max {
		col = max
	}
	if col < 0 {
		col = 0
	}
	return offset + col
}

// PositionFor maps a document-wide rune offset back to a Position.
// Offsets pointing at a line separator map to the end of that line.
func (d *Document) PositionFor(offset int) types.Position {
	if offset < 0 {
		return types.Position{}
	}
	for i := range d.lines {
		l := d.lineRuneLen(i)
		if offset <= l {
			return types.Position{Line: i, Col: offset}
		}
		offset -= l + 1
	}
	last := len(d.lines) - 1
	return types.Position{Line: last, Col: d.lineRuneLen(last)}
}

// CharAt returns the rune at a document-wide rune offset. Line separators
// read as '\n'. The bool result is false past the end of the document.
func (d *Document) CharAt(offset int) (rune, bool) {
	if offset < 0 {
		return 0, false
	}
	for i := range d.lines {
		l := d.lineRuneLen(i)
		if offset < l {
			text := d.lines[i].text
			byteOff := offsets.RuneIndexToByteOffset(text, offset)
			r, _ := utf8.DecodeRune(text[byteOff:])
			return r, true
		}
		if offset == l {
			if i == len(d.lines)-1 {
				return 0, false
			}
			return '\n', true
		}
		offset -= l + 1
	}
	return 0, false
}

// FirstNonSpace returns the rune index of the first non-space character on
// the line, or -1 if the line is blank.
func (d *Document) FirstNonSpace(index int) int {
	if index < 0 || index >= len(d.lines) {
		return -1
	}
	col := 0
	for _, r := range string(d.lines[index].text) {
		if !unicode.IsSpace(r) {
			return col
		}
		col++
	}
	return -1
}

// IsBlank reports whether the line is empty or whitespace-only.
func (d *Document) IsBlank(index int) bool {
	return index >= 0 && index < len(d.lines) && d.FirstNonSpace(index) < 0
}

func (d *Document) touch(index int) {
	if index >= 0 && index < len(d.lines) {
		d.lines[index].revision = d.revision
	}
}

// Insert inserts text at a position, splitting lines on '\n'.
func (d *Document) Insert(pos types.Position, text []byte) error {
	if len(text) == 0 {
		return nil
	}
	if pos.Line < 0 || pos.Line >= len(d.lines) {
		return fmt.Errorf("invalid insert position: line %d out of bounds", pos.Line)
	}
	d.revision++
	d.modified = true

	current := d.lines[pos.Line].text
	byteOffset := offsets.RuneIndexToByteOffset(current, pos.Col)
	if byteOffset < 0 {
		byteOffset = len(current)
	}
	insertLines := bytes.Split(text, []byte("\n"))

	tail := make([]byte, len(current[byteOffset:]))
	copy(tail, current[byteOffset:])

	head := append([]byte{}, current[:byteOffset]...)
	d.lines[pos.Line].text = append(head, insertLines[0]...)
	d.touch(pos.Line)

	if len(insertLines) > 1 {
		newLines := make([]line, len(insertLines)-1)
		for i := 1; i < len(insertLines); i++ {
			cp := make([]byte, len(insertLines[i]))
			copy(cp, insertLines[i])
			newLines[i-1] = line{text: cp, revision: d.revision}
		}
		last := &newLines[len(newLines)-1]
		last.text = append(last.text, tail...)
		rest := append([]line{}, d.lines[pos.Line+1:]...)
		d.lines = append(d.lines[:pos.Line+1], append(newLines, rest...)...)
	} else {
		d.lines[pos.Line].text = append(d.lines[pos.Line].text, tail...)
	}
	return nil
}

// Delete removes text within a range (start inclusive, end exclusive).
func (d *Document) Delete(start, end types.Position) error {
	if end.Before(start) {
		start, end = end, start
	}
	if start == end {
		return nil
	}
	if start.Line < 0 || end.Line >= len(d.lines) {
		return fmt.Errorf("invalid delete range: lines %d-%d out of bounds", start.Line, end.Line)
	}
	d.revision++
	d.modified = true

	startText := d.lines[start.Line].text
	startOffset := offsets.RuneIndexToByteOffset(startText, start.Col)
	if startOffset < 0 {
		startOffset = len(startText)
	}

	if start.Line == end.Line {
		endOffset := offsets.RuneIndexToByteOffset(startText, end.Col)
		if endOffset < 0 || endOffset > len(startText) {
			endOffset = len(startText)
		}
		head := append([]byte{}, startText[:startOffset]...)
		d.lines[start.Line].text = append(head, startText[endOffset:]...)
		d.touch(start.Line)
		return nil
	}

	endText := d.lines[end.Line].text
	endOffset := offsets.RuneIndexToByteOffset(endText, end.Col)
	if endOffset < 0 || endOffset > len(endText) {
		endOffset = len(endText)
	}
	head := append([]byte{}, startText[:startOffset]...)
	d.lines[start.Line].text = append(head, endText[endOffset:]...)
	d.touch(start.Line)
	d.lines = append(d.lines[:start.Line+1], d.lines[end.Line+1:]...)

	if len(d.lines) == 0 {
		d.lines = []line{{revision: d.revision}}
	}
	return nil
}

// TrimTrailingWhitespace removes trailing whitespace from a line and returns
// the number of runes removed.
func (d *Document) TrimTrailingWhitespace(index int) int {
	if index < 0 || index >= len(d.lines) {
		return 0
	}
	text := d.lines[index].text
	trimmed := bytes.TrimRightFunc(text, unicode.IsSpace)
	removed := utf8.RuneCount(text) - utf8.RuneCount(trimmed)
	if removed == 0 {
		return 0
	}
	d.revision++
	d.modified = true
	cp := make([]byte, len(trimmed))
	copy(cp, trimmed)
	d.lines[index].text = cp
	d.touch(index)
	return removed
}

// Apply applies an edit set atomically: the whole set is validated first,
// then applied back to front so earlier offsets stay stable. Overlapping
// edits are an error and nothing is applied.
func (d *Document) Apply(edits []types.Edit) error {
	if len(edits) == 0 {
		return nil
	}
	sorted := make([]types.Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	total := d.RuneCount()
	for i, e := range sorted {
		if e.Start < 0 || e.End < e.Start || e.End > total {
			return fmt.Errorf("edit %d out of bounds: [%d,%d) in document of %d runes", i, e.Start, e.End, total)
		}
		if i > 0 && e.Start < sorted[i-1].End {
			return fmt.Errorf("overlapping edits: [%d,%d) and [%d,%d)",
				sorted[i-1].Start, sorted[i-1].End, e.Start, e.End)
		}
	}

	for i := len(sorted) - 1; i >= 0; i-- {
		e := sorted[i]
		start := d.PositionFor(e.Start)
		end := d.PositionFor(e.End)
		if err := d.Delete(start, end); err != nil {
			return err
		}
		if err := d.Insert(start, []byte(e.Text)); err != nil {
			return err
		}
	}
	return nil
}
