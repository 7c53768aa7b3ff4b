package jsonparser

import (
	"fmt"
	"strings"
)

// A Span describes a contiguous span of a source input.
type Span struct {
	Pos int // the start offset, 0-based
	End int // the end offset, 0-based (noninclusive)
}

func (s Span) String() string { return fmt.Sprintf("%d-%d", s.Pos, s.End) }

// A LineCol describes the line number and column offset of a location in
// source text.
type LineCol struct {
	Line   int // line number, 1-based
	Column int // byte offset of column in line, 0-based
}

func (lc LineCol) String() string { return fmt.Sprintf("%d:%d", lc.Line, lc.Column) }

// A Location describes the complete location of a range of source text,
// including line and column offsets.
type Location struct {
	Span
	First, Last LineCol
}

func (loc Location) String() string {
	if loc.First.Line == loc.Last.Line {
		return fmt.Sprintf("%d:%d-%d", loc.First.Line, loc.First.Column, loc.Last.Column)
	}
	return fmt.Sprintf("%s-%s", loc.First, loc.Last)
}

// Locate reports the line and column of the given byte offset in input.
// Offsets past the end of input are clamped to the end.
func Locate(input string, offset int) LineCol {
	offset = max(0, min(offset, len(input)))
	head := input[:offset]
	line := strings.Count(head, "\n")
	col := offset
	if i := strings.LastIndexByte(head, '\n'); i >= 0 {
		col = offset - i - 1
	}
	return LineCol{Line: line + 1, Column: col}
}

// LocateSpan reports the complete location of span in input.
func LocateSpan(input string, span Span) Location {
	return Location{
		Span:  span,
		First: Locate(input, span.Pos),
		Last:  Locate(input, span.End),
	}
}
