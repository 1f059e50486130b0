package pawbasic

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// SourcePosition locates a message in program text
type SourcePosition struct {
	Line     int
	Column   int
	Length   int
	Filename string
}

// LogLevel orders message severity. Levels below LevelNotice are debug
// output: written only when the logger is enabled and the category is on.
type LogLevel int

const (
	LevelTrace LogLevel = iota
	LevelInfo
	LevelDebug
	LevelNotice
	LevelWarn
	LevelError
	LevelFatal
)

func (lv LogLevel) debug() bool { return lv < LevelNotice }

// tag renders the bracketed prefix, e.g. "[DEBUG:flow]" or "[PawBASIC:parse ERROR]".
func (lv LogLevel) tag(cat LogCategory) string {
	suffix := ""
	if cat != CatNone {
		suffix = ":" + string(cat)
	}
	switch lv {
	case LevelTrace:
		return "[TRACE" + suffix + "]"
	case LevelInfo:
		return "[INFO" + suffix + "]"
	case LevelDebug:
		return "[DEBUG" + suffix + "]"
	case LevelNotice:
		return "[PawBASIC" + suffix + " NOTICE]"
	case LevelWarn:
		return "[PawBASIC" + suffix + " WARN]"
	}
	return "[PawBASIC" + suffix + " ERROR]"
}

// LogCategory names the interpreter subsystem a message comes from. The
// names are the values accepted by the log_categories config key.
type LogCategory string

const (
	CatNone     LogCategory = ""
	CatParse    LogCategory = "parse"    // program text and scanning
	CatCommand  LogCategory = "command"  // statement dispatch
	CatVariable LogCategory = "variable" // assignments
	CatArgument LogCategory = "argument"
	CatMath     LogCategory = "math"
	CatString   LogCategory = "string"
	CatFlow     LogCategory = "flow"  // blocks, BREAK, EXIT, RETURN
	CatScope    LogCategory = "scope" // child creation and collection
	CatSystem   LogCategory = "system"
	CatUser     LogCategory = "user"
)

// AllCategories lists every named category
var AllCategories = []LogCategory{
	CatParse, CatCommand, CatVariable, CatArgument, CatMath, CatString, CatFlow, CatScope, CatSystem, CatUser,
}

const (
	colorYellow = "\x1b[93m"
	colorReset  = "\x1b[0m"
)

// SupportsColor reports whether f is a terminal that should get ANSI color.
// NO_COLOR and TERM=dumb turn it off.
func SupportsColor(f *os.File) bool {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return false
	}
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// Logger writes interpreter diagnostics. Debug levels go to the regular
// output; notices, warnings and errors go to the error output.
type Logger struct {
	enabled      bool
	categories   map[LogCategory]bool
	out          io.Writer
	errOut       io.Writer
	color        bool
	contextLines int
}

// NewLogger creates a logger writing to stdout and stderr. enabled turns
// on debug output for the enabled categories.
func NewLogger(enabled bool) *Logger {
	return &Logger{
		enabled:      enabled,
		categories:   make(map[LogCategory]bool),
		out:          os.Stdout,
		errOut:       os.Stderr,
		color:        SupportsColor(os.Stderr),
		contextLines: 2,
	}
}

// SetOutput redirects debug output to out and warnings/errors to errOut.
// A nil writer leaves that side unchanged. Color stays on only for the
// process stderr.
func (l *Logger) SetOutput(out, errOut io.Writer) {
	if out != nil {
		l.out = out
	}
	if errOut != nil {
		l.errOut = errOut
		f, isFile := errOut.(*os.File)
		l.color = isFile && f == os.Stderr && SupportsColor(f)
	}
}

// SetContextLines sets how many lines around an error line are shown
func (l *Logger) SetContextLines(n int) {
	if n >= 0 {
		l.contextLines = n
	}
}

func (l *Logger) SetEnabled(enabled bool) { l.enabled = enabled }

func (l *Logger) Enabled() bool { return l.enabled }

func (l *Logger) EnableCategory(cat LogCategory) { l.categories[cat] = true }

func (l *Logger) DisableCategory(cat LogCategory) { delete(l.categories, cat) }

func (l *Logger) EnableAllCategories() {
	for _, cat := range AllCategories {
		l.categories[cat] = true
	}
}

func (l *Logger) IsCategoryEnabled(cat LogCategory) bool { return l.categories[cat] }

func (l *Logger) wants(level LogLevel, cat LogCategory) bool {
	if !level.debug() {
		return true
	}
	return l.enabled && (cat == CatNone || l.categories[cat])
}

// Log writes one message. With a position it adds the location, and with
// source lines it adds a numbered excerpt with a caret under the column.
func (l *Logger) Log(level LogLevel, cat LogCategory, message string, position *SourcePosition, source []string) {
	if !l.wants(level, cat) {
		return
	}

	var b strings.Builder
	b.WriteString(level.tag(cat))
	b.WriteByte(' ')
	b.WriteString(message)
	if position != nil {
		name := position.Filename
		if name == "" {
			name = "<unknown>"
		}
		fmt.Fprintf(&b, "\n  at line %d, column %d in %s", position.Line, position.Column, name)
		if len(source) > 0 {
			b.WriteByte('\n')
			l.writeExcerpt(&b, position, source)
		}
	}

	if level.debug() {
		fmt.Fprintln(l.out, b.String())
		return
	}
	if l.color {
		fmt.Fprintln(l.errOut, colorYellow+b.String()+colorReset)
		return
	}
	fmt.Fprintln(l.errOut, b.String())
}

func (l *Logger) DebugCat(cat LogCategory, format string, args ...interface{}) {
	l.Log(LevelDebug, cat, fmt.Sprintf(format, args...), nil, nil)
}

func (l *Logger) TraceCat(cat LogCategory, format string, args ...interface{}) {
	l.Log(LevelTrace, cat, fmt.Sprintf(format, args...), nil, nil)
}

func (l *Logger) WarnCat(cat LogCategory, format string, args ...interface{}) {
	l.Log(LevelWarn, cat, fmt.Sprintf(format, args...), nil, nil)
}

func (l *Logger) ErrorCat(cat LogCategory, format string, args ...interface{}) {
	l.Log(LevelError, cat, fmt.Sprintf(format, args...), nil, nil)
}

// ParseError reports program text that could not be split into lines or blocks
func (l *Logger) ParseError(message string, position *SourcePosition, source []string) {
	l.Log(LevelFatal, CatParse, "Parse error: "+message, position, source)
}

// CommandError reports a failed statement, prefixed with its name when known
func (l *Logger) CommandError(cat LogCategory, name, message string, position *SourcePosition, source []string) {
	if name != "" {
		message = foldName(name) + ": " + message
	}
	l.Log(LevelError, cat, message, position, source)
}

// writeExcerpt renders the lines around position.Line as
//
//	    1 | A = 1
//	>   2 | B = A +
//	      |     ^
func (l *Logger) writeExcerpt(b *strings.Builder, position *SourcePosition, source []string) {
	first := max(1, position.Line-l.contextLines)
	last := min(len(source), position.Line+l.contextLines)
	for n := first; n <= last; n++ {
		marker := ' '
		if n == position.Line {
			marker = '>'
		}
		fmt.Fprintf(b, "\n  %c %3d | %s", marker, n, source[n-1])
		if n == position.Line && position.Column > 0 {
			fmt.Fprintf(b, "\n        | %s%s", strings.Repeat(" ", position.Column-1), strings.Repeat("^", max(1, position.Length)))
		}
	}
}
