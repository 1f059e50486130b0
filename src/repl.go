package pawbasic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// REPL color codes
const (
	replColorRed      = "\x1b[91m"
	replColorDarkCyan = "\x1b[36m"
	replColorGreen    = "\x1b[92m"
	replColorReset    = "\x1b[0m"
)

// REPLConfig configures the REPL behavior
type REPLConfig struct {
	ShowBanner     bool   // print the version banner on start
	HistoryFile    string // empty disables persistent history
	Prompt         string
	ContinuePrompt string // shown while a block is still open
}

// DefaultREPLConfig returns the settings used by the pawbasic command
func DefaultREPLConfig() REPLConfig {
	history := ""
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, ".pawbasic_history")
	}
	return REPLConfig{
		ShowBanner:     true,
		HistoryFile:    history,
		Prompt:         "] ",
		ContinuePrompt: "... ",
	}
}

// REPL reads statements interactively and runs them in one interpreter, so
// variables and functions persist between inputs. A statement that opens a
// block keeps reading until the block is closed.
type REPL struct {
	interp *Interpreter
	config REPLConfig
	out    io.Writer
	errOut io.Writer
	color  bool
}

// NewREPL creates a REPL around interp writing results to out
func NewREPL(interp *Interpreter, config REPLConfig, out, errOut io.Writer) *REPL {
	color := false
	if f, ok := out.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd())) && os.Getenv("NO_COLOR") == ""
	}
	return &REPL{interp: interp, config: config, out: out, errOut: errOut, color: color}
}

func (r *REPL) paint(color, text string) string {
	if !r.color {
		return text
	}
	return color + text + replColorReset
}

// Run reads and executes input until EOF, :quit or an EXIT statement.
func (r *REPL) Run(ctx context.Context) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if r.config.HistoryFile != "" {
		if f, err := os.Open(r.config.HistoryFile); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(r.config.HistoryFile); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	if r.config.ShowBanner {
		fmt.Fprintf(r.out, "PawBASIC %s (%s numbers). Type :help for help.\n", Version, r.interp.Mode())
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		src, ok := r.readStatement(ln)
		if !ok {
			fmt.Fprintln(r.out)
			return nil
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if quit := r.Eval(ctx, src); quit {
			return nil
		}
	}
}

// readStatement collects lines until the interpreter reports the input
// complete.
func (r *REPL) readStatement(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := r.config.Prompt
		if b.Len() > 0 {
			prompt = r.config.ContinuePrompt
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !r.interp.Incomplete(src) {
			return src, true
		}
	}
}

// Eval runs one complete input and prints its result or error. It reports
// whether the session should end.
func (r *REPL) Eval(ctx context.Context, src string) bool {
	if cmd := strings.TrimSpace(src); strings.HasPrefix(cmd, ":") {
		return r.meta(cmd)
	}

	r.interp.root.SetVariable(resultVariable, Value{})
	rt := r.interp.runtime(ctx, src, "")
	lines, err := ParseProgram(src)
	if err == nil {
		err = r.interp.runLines(rt, lines)
	}
	if err != nil {
		fmt.Fprintln(r.errOut, r.paint(replColorRed, err.Error()))
		return rt.exitRequested
	}

	if status := r.interp.Status(); status != StatusOK {
		msg, _ := r.interp.Variable(messageVariable)
		fmt.Fprintln(r.errOut, r.paint(replColorRed, fmt.Sprintf("?%s (%d)", msg, int(status))))
	} else if v, ok := r.interp.Variable(resultVariable); ok && !v.IsNone() {
		fmt.Fprintln(r.out, r.paint(replColorGreen, displayValue(v)))
	}
	return rt.exitRequested
}

func displayValue(v Value) string {
	if s, ok := v.AsString(); ok {
		return quoteString(s)
	}
	return v.String()
}

func (r *REPL) meta(cmd string) bool {
	switch strings.ToLower(cmd) {
	case ":quit", ":q", ":exit":
		return true
	case ":vars":
		names, err := r.interp.root.VariableNames()
		if err != nil {
			fmt.Fprintln(r.errOut, r.paint(replColorRed, err.Error()))
			return false
		}
		sort.Strings(names)
		for _, name := range names {
			v, _ := r.interp.Variable(name)
			fmt.Fprintf(r.out, "%s = %s\n", r.paint(replColorDarkCyan, name), displayValue(v))
		}
	case ":help":
		fmt.Fprintln(r.out, "Enter statements or expressions. Blocks continue until closed.")
		fmt.Fprintln(r.out, "  :vars  list root variables")
		fmt.Fprintln(r.out, "  :quit  leave")
	default:
		fmt.Fprintf(r.errOut, "unknown command %s. Type :help.\n", cmd)
	}
	return false
}
