package cpp

import (
	"bufio"
	"io"
	"strings"
)

// LineSource yields the physical lines of a named input, one at a time,
// alongside their 1-based line numbers. It is the filesystem/stdin
// collaborator: the splicer reads input only through this interface,
// so a Preprocessor can be driven from a file, a string, or any other
// io.Reader.
type LineSource interface {
	// NextLine returns the next physical line (without its terminating
	// newline) and its 1-based line number. ok is false at end of input.
	NextLine() (line string, lineNum int, ok bool)
}

// readerLineSource is the default LineSource, built over a bufio.Scanner.
type readerLineSource struct {
	scanner *bufio.Scanner
	lineNum int
	echo    io.Writer // non-nil when -echo is enabled
}

// NewLineSource wraps r as a LineSource. When echo is non-nil, every
// physical line is written to it as it is read, before any trigraph,
// splice, or conditional-compilation processing — matching the
// original preprocessor's placement of line echoing at the point of
// input rather than at the point of output.
func NewLineSource(r io.Reader, echo io.Writer) LineSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &readerLineSource{scanner: sc, echo: echo}
}

func (s *readerLineSource) NextLine() (string, int, bool) {
	if !s.scanner.Scan() {
		return "", 0, false
	}
	s.lineNum++
	line := s.scanner.Text()
	if s.echo != nil {
		io.WriteString(s.echo, line+"\n")
	}
	return line, s.lineNum, true
}

// LogicalLine is one backslash-spliced, trigraph-translated line ready
// for comment stripping, directive detection, or expansion. Text is
// the joined text; Line carries the line number of the LAST physical
// line consumed, per spec.
type LogicalLine struct {
	Text string
	Line int
}

// LineSplicer joins physical lines ending in a backslash into single
// logical lines, after trigraph translation of each
// physical line.
type LineSplicer struct {
	src LineSource
}

// NewLineSplicer creates a splicer reading physical lines from src.
func NewLineSplicer(src LineSource) *LineSplicer {
	return &LineSplicer{src: src}
}

// Next returns the next logical line, or ok=false at end of input.
func (s *LineSplicer) Next() (LogicalLine, bool) {
	phys, num, ok := s.src.NextLine()
	if !ok {
		return LogicalLine{}, false
	}
	phys = TranslateTrigraphs(phys)

	var sb strings.Builder
	for {
		if strings.HasSuffix(phys, "\\") {
			sb.WriteString(phys[:len(phys)-1])
			next, n, more := s.src.NextLine()
			if !more {
				// Dangling backslash at end of input: keep what we have.
				break
			}
			num = n
			phys = TranslateTrigraphs(next)
			continue
		}
		sb.WriteString(phys)
		break
	}

	return LogicalLine{Text: sb.String(), Line: num}, true
}
