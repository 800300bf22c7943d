// internal/types/position.go
package types

// Position represents a text position within the document.
// Line is the 0-based line index.
// Col is the 0-based column (rune) index within the line.
// Rune columns are the document's native code units; byte offsets exist
// only at the reformat-engine boundary.
type Position struct {
	Line int
	Col  int // Rune index
}

// Before reports whether p is strictly before other in document order.
func (p Position) Before(other Position) bool {
	return p.Line < other.Line || (p.Line == other.Line && p.Col < other.Col)
}
