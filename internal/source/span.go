package source

import "fmt"

// Span is a half-open byte range into a source file, plus the 1-based line
// and column of its first byte. Every token and AST node carries one; it is
// used purely for diagnostics.
type Span struct {
	Start  uint32 // inclusive byte offset
	End    uint32 // exclusive byte offset
	Line   uint32
	Column uint32
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d@%d-%d", s.Line, s.Column, s.Start, s.End)
}

// Cover widens the span to include other. Line/column stay at whichever
// span starts first.
func (s Span) Cover(other Span) Span {
	if other.Start < s.Start {
		s.Start = other.Start
		s.Line = other.Line
		s.Column = other.Column
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}
