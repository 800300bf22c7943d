// Package engine defines the boundary to the external reformat engine: a
// pure function from style + UTF-8 bytes + byte ranges to byte-offset
// replacements. The concrete binding (subprocess, FFI, in-process) is an
// implementation detail behind the Engine interface.
package engine

import "sort"

// Range is a byte range of the input buffer to reformat.
type Range struct {
	Offset int
	Length int
}

// Replacement is one engine edit against the input buffer: replace Length
// bytes at Offset with Text. Offsets refer to the buffer as submitted,
// which may contain placeholder text the caller injected.
type Replacement struct {
	Offset int
	Length int
	Text   string
}

// Status reports whether the engine considered the formatting attempt
// structurally complete. An incomplete attempt means the buffer did not
// parse even with placeholders; its replacements must not be applied.
type Status struct {
	Complete bool
	Line     int // best-effort location of the parse problem, 0 when unknown
}

// Engine is the external reformat collaborator. Implementations must be
// stateless with respect to calls: same inputs, same outputs.
type Engine interface {
	Reformat(style StyleSource, buf []byte, ranges []Range, assumedPath string) ([]Replacement, Status, error)
}

// StyleSource is anything that can render itself as an engine style
// configuration document. Defined here so the engine package does not
// depend on the style resolver.
type StyleSource interface {
	MarshalEngineConfig() ([]byte, error)
}

// SortReplacements orders replacements by offset, the order every consumer
// in the pipeline assumes.
func SortReplacements(reps []Replacement) {
	sort.Slice(reps, func(i, j int) bool { return reps[i].Offset < reps[j].Offset })
}
