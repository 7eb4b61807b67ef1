package css

import (
	"strconv"
	"sync"

	"go.uber.org/multierr"
)

// SourceKind tells what was being parsed when error was found.
type SourceKind int

const (
	SourceString SourceKind = iota
	SourceStylesheet
	SourceInlineStyle
)

// ParseError is a recovered error. Parsing continues after it is reported.
type ParseError struct {
	Source SourceKind
	// Location is stylesheet url or inline style owner
	Location string
	// Text is parsed text for inline styles and strings
	Text    string
	Message string
	// Line and Offset of the offending token, -1 when unknown
	Line   int
	Offset int
}

func (e *ParseError) Error() string {
	switch e.Source {
	case SourceStylesheet:
		return "CSS Error parsing " + e.Location + ": " + e.Message
	case SourceInlineStyle:
		return "CSS Error parsing in-line style '" + e.Text + "' from " + e.Location + ": " + e.Message
	default:
		return "CSS Error parsing '" + e.Text + ": " + e.Message
	}
}

// Reporter receives parse errors.
type Reporter interface {
	Report(err *ParseError)
}

// ReporterFunc adapts function to Reporter.
type ReporterFunc func(err *ParseError)

func (f ReporterFunc) Report(err *ParseError) { f(err) }

// ErrorList collects reported errors. It is safe for concurrent use, so
// parsers working in parallel may share it.
type ErrorList struct {
	mu   sync.Mutex
	errs []*ParseError
}

func (l *ErrorList) Report(err *ParseError) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, err)
}

func (l *ErrorList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errs)
}

// Errors returns copy of collected errors in the order they were reported.
func (l *ErrorList) Errors() []*ParseError {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*ParseError(nil), l.errs...)
}

// Reset forgets collected errors.
func (l *ErrorList) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = nil
}

// Err combines collected errors into one, nil when there are none.
func (l *ErrorList) Err() error {
	var err error
	for _, e := range l.Errors() {
		err = multierr.Append(err, e)
	}
	return err
}

func position(line, offset int) string {
	return "[" + strconv.Itoa(line) + "," + strconv.Itoa(offset) + "]"
}
