package cpp

import "fmt"

// SourceLoc identifies a position for diagnostics: a file name and a
// 1-based line number.
type SourceLoc struct {
	File string
	Line int
}

// String renders the location the way every diagnostic in this package
// suffixes its message: " - <file>:<line>".
func (l SourceLoc) String() string {
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}
