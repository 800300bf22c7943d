package engine

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/kerf-editor/kerf/internal/logger"
)

// DefaultBinary is the reformat executable looked up on PATH when no
// explicit path is configured.
const DefaultBinary = "clang-format"

// ClangFormat runs a clang-format executable as the reformat engine,
// feeding it the buffer on stdin and parsing its XML replacement output.
type ClangFormat struct {
	Binary string
}

// NewClangFormat creates a binding to the given executable, or to
// DefaultBinary when path is empty.
func NewClangFormat(path string) *ClangFormat {
	if path == "" {
		path = DefaultBinary
	}
	return &ClangFormat{Binary: path}
}

// xmlReplacements mirrors clang-format's --output-replacements-xml schema.
type xmlReplacements struct {
	XMLName          xml.Name         `xml:"replacements"`
	IncompleteFormat string           `xml:"incomplete_format,attr"`
	Line             string           `xml:"line,attr"`
	Replacements     []xmlReplacement `xml:"replacement"`
}

type xmlReplacement struct {
	Offset int    `xml:"offset,attr"`
	Length int    `xml:"length,attr"`
	Text   string `xml:",chardata"`
}

// Reformat implements Engine.
func (c *ClangFormat) Reformat(style StyleSource, buf []byte, ranges []Range, assumedPath string) ([]Replacement, Status, error) {
	styleDoc, err := style.MarshalEngineConfig()
	if err != nil {
		return nil, Status{}, fmt.Errorf("failed to serialize style: %w", err)
	}
	styleDir, err := os.MkdirTemp("", "kerf-style-")
	if err != nil {
		return nil, Status{}, fmt.Errorf("failed to create style dir: %w", err)
	}
	defer os.RemoveAll(styleDir)
	stylePath := filepath.Join(styleDir, ".clang-format")
	if err := os.WriteFile(stylePath, styleDoc, 0600); err != nil {
		return nil, Status{}, fmt.Errorf("failed to write style file: %w", err)
	}

	args := []string{
		"--output-replacements-xml",
		"--style=file:" + stylePath,
	}
	if assumedPath != "" {
		args = append(args, "--assume-filename="+assumedPath)
	}
	for _, r := range ranges {
		args = append(args,
			"--offset="+strconv.Itoa(r.Offset),
			"--length="+strconv.Itoa(r.Length))
	}

	cmd := exec.Command(c.Binary, args...)
	cmd.Stdin = bytes.NewReader(buf)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debugf("engine: %s %v (%d bytes)", c.Binary, args, len(buf))
	if err := cmd.Run(); err != nil {
		return nil, Status{}, fmt.Errorf("%s failed: %w: %s", c.Binary, err, bytes.TrimSpace(stderr.Bytes()))
	}

	return parseReplacementsXML(stdout.Bytes())
}

func parseReplacementsXML(data []byte) ([]Replacement, Status, error) {
	var parsed xmlReplacements
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return nil, Status{}, fmt.Errorf("failed to parse engine output: %w", err)
	}
	status := Status{Complete: parsed.IncompleteFormat != "true"}
	if parsed.Line != "" {
		if line, err := strconv.Atoi(parsed.Line); err == nil {
			status.Line = line
		}
	}
	reps := make([]Replacement, 0, len(parsed.Replacements))
	for _, r := range parsed.Replacements {
		reps = append(reps, Replacement{Offset: r.Offset, Length: r.Length, Text: r.Text})
	}
	SortReplacements(reps)
	return reps, status, nil
}

var _ Engine = (*ClangFormat)(nil)
