package types

// Edit is a single replacement against the live document, expressed in
// native rune offsets. Start is inclusive, End exclusive. An empty Text
// with Start == End is a no-op and is never emitted by the converter.
type Edit struct {
	Start int
	End   int
	Text  string
}

// IsNoop reports whether applying the edit would change nothing.
func (e Edit) IsNoop() bool {
	return e.Start == e.End && e.Text == ""
}

// Span is a half-open byte range [Start, End) inside a scratch UTF-8
// snapshot. Placeholder synthesis records every injected byte as a Span so
// the replacement filter can reject engine output that touches it.
type Span struct {
	Start int
	End   int
}

// Contains reports whether the byte offset lies inside the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// Shift moves the span right by n bytes if it starts at or after offset.
// Used when a later insertion lands before an already-recorded span.
func (s Span) Shift(offset, n int) Span {
	if s.Start >= offset {
		s.Start += n
	} else if s.End <= offset {
		return s
	}
	s.End += n
	return s
}
