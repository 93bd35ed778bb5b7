package notation

import "fmt"

// Position locates a byte in the input text.
type Position struct {
	Line   int // 1-based
	Column int // 1-based
	Offset int // 0-based byte offset
}

// ParseError represents a structural parsing error with position information.
// Semantically odd but well-formed input (unknown tags, unexpected keys)
// never produces a ParseError.
type ParseError struct {
	Pos     Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// positionAt computes the line/column position of a byte offset.
func positionAt(src string, offset int) Position {
	if offset > len(src) {
		offset = len(src)
	}
	line, col := 1, 1
	for i := 0; i < offset; i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return Position{Line: line, Column: col, Offset: offset}
}

func parseErrorAt(src string, offset int, format string, args ...any) *ParseError {
	return &ParseError{
		Pos:     positionAt(src, offset),
		Message: fmt.Sprintf(format, args...),
	}
}
