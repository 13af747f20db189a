package cpp

import (
	"fmt"
	"io"
)

// Severity classifies a diagnostic for the purposes of HasErrors and
// -quiet handling; it does not otherwise change how a message is
// formatted.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// Diagnostic is one reportable condition: a location, a severity, and
// a message. Diagnostics never abort processing by themselves (per
// spec.md §7 the preprocessor degrades gracefully); the driver decides
// whether accumulated errors should affect the process exit code.
type Diagnostic struct {
	Loc      SourceLoc
	Severity Severity
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s - %s", d.Message, d.Loc.String())
}

// DiagnosticSink collects diagnostics as they are raised and can
// replay them to an io.Writer (ordinarily os.Stderr). Quiet mode
// suppresses warnings from the replay but they are still counted.
type DiagnosticSink struct {
	Quiet  bool
	diags  []Diagnostic
	errors int
}

// NewDiagnosticSink creates an empty sink.
func NewDiagnosticSink(quiet bool) *DiagnosticSink {
	return &DiagnosticSink{Quiet: quiet}
}

// Warn records a non-fatal warning at loc.
func (s *DiagnosticSink) Warn(loc SourceLoc, format string, args ...any) {
	s.diags = append(s.diags, Diagnostic{Loc: loc, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)})
}

// Error records a non-fatal error at loc; processing continues, but
// HasErrors will report true afterward.
func (s *DiagnosticSink) Error(loc SourceLoc, format string, args ...any) {
	s.errors++
	s.diags = append(s.diags, Diagnostic{Loc: loc, Severity: SeverityError, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any SeverityError diagnostic was recorded.
func (s *DiagnosticSink) HasErrors() bool {
	return s.errors > 0
}

// Flush writes every recorded diagnostic to w, one per line, skipping
// warnings if Quiet is set.
func (s *DiagnosticSink) Flush(w io.Writer) {
	for _, d := range s.diags {
		if s.Quiet && d.Severity == SeverityWarning {
			continue
		}
		fmt.Fprintln(w, d.String())
	}
}
