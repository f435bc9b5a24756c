package source

import (
	"bytes"
	"fmt"
	"os"

	"fortio.org/safecast"
)

// File is a single loaded source file with a prebuilt line index.
type File struct {
	Name    string
	Content []byte

	// lineIdx[i] is the byte offset of the '\n' ending line i+1.
	lineIdx []uint32
}

// NewFile stores normalized content and builds the line index. CRLF line
// endings and a UTF-8 BOM are stripped so byte offsets are stable across
// platforms.
func NewFile(name string, content []byte) *File {
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	return &File{
		Name:    name,
		Content: content,
		lineIdx: buildLineIndex(content),
	}
}

// Load reads a file from disk and normalizes it.
func Load(path string) (*File, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewFile(path, content), nil
}

func buildLineIndex(content []byte) []uint32 {
	var idx []uint32
	for i, b := range content {
		if b == '\n' {
			off, err := safecast.Conv[uint32](i)
			if err != nil {
				panic(fmt.Errorf("file offset overflow: %w", err))
			}
			idx = append(idx, off)
		}
	}
	return idx
}

// LineCol is a 1-based position in a file.
type LineCol struct {
	Line   uint32
	Column uint32
}

// Resolve converts a byte offset into a 1-based line/column pair.
func (f *File) Resolve(offset uint32) LineCol {
	line := uint32(1)
	lineStart := uint32(0)
	for _, nl := range f.lineIdx {
		if offset <= nl {
			break
		}
		line++
		lineStart = nl + 1
	}
	return LineCol{Line: line, Column: offset - lineStart + 1}
}

// Line returns the text of the given 1-based line without its newline.
// Out-of-range lines yield an empty string.
func (f *File) Line(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}
	lenIdx, err := safecast.Conv[uint32](len(f.lineIdx))
	if err != nil {
		panic(fmt.Errorf("line index overflow: %w", err))
	}
	var start uint32
	switch {
	case lineNum == 1:
		start = 0
	case lineNum-2 < lenIdx:
		start = f.lineIdx[lineNum-2] + 1
	default:
		return ""
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	end := lenContent
	if lineNum-1 < lenIdx {
		end = f.lineIdx[lineNum-1]
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}
