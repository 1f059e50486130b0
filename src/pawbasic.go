package pawbasic

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Interpreter is an embeddable PawBASIC interpreter. Its root scope
// persists across Execute calls, so a host (or the REPL) can run programs
// piecemeal. An Interpreter is not safe for concurrent use; separate
// interpreters are independent.
type Interpreter struct {
	config *Config
	logger *Logger
	conv   Conversion
	ops    *OperatorTable
	root   Scope
	in     *bufio.Reader
}

// New creates an interpreter with the standard libraries loaded. A nil config means DefaultConfig.
func New(config *Config) *Interpreter {
	if config == nil {
		config = DefaultConfig()
	}

	logger := NewLogger(config.Debug)
	logger.SetContextLines(config.ContextLines)
	if len(config.LogCategories) > 0 {
		for _, cat := range config.LogCategories {
			logger.EnableCategory(cat)
		}
	} else {
		logger.EnableAllCategories()
	}

	mode, err := config.NumberMode()
	if err != nil {
		logger.WarnCat(CatSystem, "%v, using %s numbers", err, mode)
	}

	ops := StandardOperators()
	in := &Interpreter{
		config: config,
		logger: logger,
		conv:   Conversion{Mode: mode, Strict: config.StrictTypes},
		ops:    ops,
		root:   NewRootScope(ops),
	}
	in.SetInput(config.Input)

	zero := NumberValue(mode.Int(0))
	pseudo := map[string]Value{messageVariable: StringValue(""), resultVariable: zero}
	for _, name := range statusVariables {
		pseudo[name] = zero
	}
	for name, v := range pseudo {
		if err := in.root.DeclareVariable(name, v); err != nil {
			logger.ErrorCat(CatSystem, "declare %s: %v", name, err)
		}
	}

	for _, lib := range []*Library{
		CoreLibrary(), MathLibrary(mode), StringLibrary(), ArrayLibrary(),
		SortLibrary(), BitwiseLibrary(), SystemLibrary(config.Args),
	} {
		if err := in.Load(lib); err != nil {
			logger.ErrorCat(CatSystem, "%v", err)
		}
	}
	return in
}

// Load installs lib into the root scope
func (in *Interpreter) Load(lib *Library) error {
	if err := lib.Install(in.root); err != nil {
		return err
	}
	in.logger.DebugCat(CatSystem, "loaded library %s (%d functions, %d commands)",
		lib.Name, len(lib.FunctionNames()), len(lib.CommandNames()))
	return nil
}

// RegisterFunction adds a host function usable in expressions
func (in *Interpreter) RegisterFunction(name string, sig Signature, fn NativeFunc) error {
	c, err := NewCallable(name, sig, fn)
	if err != nil {
		return err
	}
	return in.root.SetFunction(c)
}

// RegisterCallable adds a prepared callable, such as one built by Func2
func (in *Interpreter) RegisterCallable(c *Callable) error {
	if _, err := NewCallable(c.Name, c.Sig, c.Fn); err != nil {
		return err
	}
	return in.root.SetFunction(c)
}

// RegisterCommand adds a host statement
func (in *Interpreter) RegisterCommand(name string, sig Signature, fn NativeFunc) error {
	c, err := NewCallable(name, sig, fn)
	if err != nil {
		return err
	}
	return in.root.SetCommand(c)
}

// RegisterBlock adds a block opener keyword
func (in *Interpreter) RegisterBlock(name string, ctor BlockConstructor) error {
	if end := identifierAt(name, 0); name == "" || end != len(name) || ctor == nil {
		return fmt.Errorf("invalid block opener %q", name)
	}
	return in.root.SetBlock(name, ctor)
}

// RegisterOperator adds a binary operator. Longer symbols win over their
// prefixes when scanning.
func (in *Interpreter) RegisterOperator(symbol string, precedence int, assoc Associativity, fn BinaryFunc) (*Operator, error) {
	if symbol == "" || fn == nil {
		return nil, fmt.Errorf("invalid operator %q", symbol)
	}
	return in.ops.RegisterBinary(symbol, precedence, assoc, fn), nil
}

// SetConstant defines an immutable name in the root scope
func (in *Interpreter) SetConstant(name string, v Value) error {
	return in.root.SetConstant(name, v)
}

// SetVariable assigns a root-scope variable
func (in *Interpreter) SetVariable(name string, v Value) error {
	return in.root.SetVariable(name, v)
}

// Variable reads a variable or constant visible from the root scope
func (in *Interpreter) Variable(name string) (Value, bool) {
	v, ok, err := in.root.Lookup(name)
	if err != nil {
		return Value{}, false
	}
	return v, ok
}

// Status returns the status left by the last dispatched line
func (in *Interpreter) Status() Status {
	v, ok := in.Variable(statusVariables[0])
	if !ok {
		return StatusOK
	}
	n, isNum := v.AsNumber()
	if !isNum {
		return StatusOK
	}
	i, _ := n.Int64()
	return Status(i)
}

// Root returns the root scope
func (in *Interpreter) Root() Scope { return in.root }

// Config returns the configuration the interpreter was built with
func (in *Interpreter) Config() *Config { return in.config }

// Logger returns the interpreter logger
func (in *Interpreter) Logger() *Logger { return in.logger }

// Mode returns the number mode fixed at construction
func (in *Interpreter) Mode() NumberMode { return in.conv.Mode }

// SetOutput redirects PRINT
func (in *Interpreter) SetOutput(w io.Writer) { in.config.Output = w }

// SetInput redirects INPUT
func (in *Interpreter) SetInput(r io.Reader) {
	in.config.Input = r
	if r == nil {
		in.in = nil
		return
	}
	if br, ok := r.(*bufio.Reader); ok {
		in.in = br
		return
	}
	in.in = bufio.NewReader(r)
}

func (in *Interpreter) runtime(ctx context.Context, source, filename string) *Runtime {
	rt := newRuntime(ctx, in.config, in.logger, in.conv, in.in)
	rt.source = SourceLines(source)
	rt.filename = filename
	return rt
}

// Execute runs source in the root scope
func (in *Interpreter) Execute(source string) error {
	return in.run(context.Background(), source, "")
}

// ExecuteContext runs source, stopping at the next line boundary once ctx
// is done.
func (in *Interpreter) ExecuteContext(ctx context.Context, source string) error {
	return in.run(ctx, source, "")
}

// ExecuteFile runs source read from filename, which is used in messages
func (in *Interpreter) ExecuteFile(ctx context.Context, source, filename string) error {
	return in.run(ctx, source, filename)
}

// LoadFile reads and runs a program file
func (in *Interpreter) LoadFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read program: %w", err)
	}
	return in.run(ctx, string(data), path)
}

func (in *Interpreter) run(ctx context.Context, source, filename string) error {
	rt := in.runtime(ctx, source, filename)
	lines, err := ParseProgram(source)
	if err != nil {
		last := Line{Number: len(rt.source)}
		if in.config.ThrowOnError {
			return &LineError{Line: last.Number, Err: err}
		}
		in.logger.ParseError(err.Error(), &SourcePosition{Line: last.Number, Filename: filename}, in.context(rt))
		if de, ok := AsError(err); ok {
			return rt.publish(in.root, de.Status, de.Error(), Value{})
		}
		return err
	}
	return in.runLines(rt, lines)
}

// Run dispatches already parsed lines in the root scope
func (in *Interpreter) Run(ctx context.Context, lines []Line) error {
	return in.runLines(in.runtime(ctx, "", ""), lines)
}

func (in *Interpreter) runLines(rt *Runtime, lines []Line) error {
	in.logger.DebugCat(CatSystem, "running %d line(s)", len(lines))
	err := rt.ExecuteLines(in.root, lines)
	if rt.exitRequested {
		in.logger.DebugCat(CatFlow, "exit requested at line %d", rt.line.Number)
	}
	return err
}

// Evaluate evaluates one expression in the root scope
func (in *Interpreter) Evaluate(expr string) (Value, error) {
	rt := in.runtime(context.Background(), expr, "")
	return rt.Evaluate(in.root, expr)
}

// Incomplete reports whether source ends inside an unclosed block or a
// line continuation, so a caller reading line by line should read more.
func (in *Interpreter) Incomplete(source string) bool {
	lines, err := ParseProgram(source)
	if errors.Is(err, ErrIncompleteBlock) {
		return true
	}
	rt := in.runtime(context.Background(), source, "")
	for i := 0; i < len(lines); {
		sc := NewScanner(strings.TrimSpace(lines[i].Text), in.ops, in.conv.Mode)
		name, ok := sc.NextIdentifier()
		if !ok {
			i++
			continue
		}
		ctor, found, _ := in.root.Block(name)
		if !found {
			i++
			continue
		}
		_, n, err := ctor(rt, lines[i:])
		if errors.Is(err, ErrIncompleteBlock) {
			return true
		}
		i += max(n, 1)
	}
	return false
}

func (in *Interpreter) context(rt *Runtime) []string {
	if !in.config.ShowErrorContext {
		return nil
	}
	return rt.source
}

// ReportError logs err returned by an Execute call, with the failing line
// in context when it is known.
func (in *Interpreter) ReportError(err error, source, filename string) {
	if err == nil {
		return
	}
	var le *LineError
	if !errors.As(err, &le) {
		in.logger.ErrorCat(CatSystem, "%v", err)
		return
	}
	rt := in.runtime(context.Background(), source, filename)
	pos := &SourcePosition{
		Line:     le.Line,
		Column:   len(le.Text) - len(strings.TrimLeft(le.Text, " \t")) + 1,
		Length:   len(strings.TrimSpace(le.Text)),
		Filename: filename,
	}
	name := le.Name
	if de, ok := AsError(le.Err); ok && de.Name != "" {
		name = ""
	}
	in.logger.CommandError(CatCommand, name, le.Err.Error(), pos, in.context(rt))
}
