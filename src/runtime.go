package pawbasic

import (
	"bufio"
	"context"
	"io"
	"os"
)

// Runtime is the handle for one run of the interpreter. It carries the
// cooperative control flags, so concurrent runs of different interpreters
// never see each other's BREAK or EXIT.
type Runtime struct {
	ctx    context.Context
	conv   Conversion
	config *Config
	logger *Logger
	out    io.Writer
	in     *bufio.Reader

	breakRequested    bool
	continueRequested bool
	exitRequested     bool
	returning         bool
	returnValue       Value

	depth    int
	loops    int // loop bodies open in the current function
	line     Line
	source   []string
	filename string
}

func newRuntime(ctx context.Context, cfg *Config, logger *Logger, conv Conversion, in *bufio.Reader) *Runtime {
	if ctx == nil {
		ctx = context.Background()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	return &Runtime{ctx: ctx, conv: conv, config: cfg, logger: logger, out: out, in: in}
}

// Context returns the run's context
func (rt *Runtime) Context() context.Context { return rt.ctx }

// Conversion returns the run's coercion rules
func (rt *Runtime) Conversion() Conversion { return rt.conv }

// Mode returns the run's number mode
func (rt *Runtime) Mode() NumberMode { return rt.conv.Mode }

// Logger returns the interpreter logger
func (rt *Runtime) Logger() *Logger { return rt.logger }

// Output returns the writer PRINT uses
func (rt *Runtime) Output() io.Writer { return rt.out }

// Input returns the reader INPUT uses
func (rt *Runtime) Input() *bufio.Reader { return rt.in }

// Line returns the line being dispatched
func (rt *Runtime) Line() Line { return rt.line }

// RequestBreak asks the innermost loop to stop
func (rt *Runtime) RequestBreak() { rt.breakRequested = true }

// RequestContinue asks the innermost loop to start its next iteration
func (rt *Runtime) RequestContinue() { rt.continueRequested = true }

// RequestExit stops the whole run
func (rt *Runtime) RequestExit() { rt.exitRequested = true }

// RequestReturn unwinds to the enclosing user function with v
func (rt *Runtime) RequestReturn(v Value) {
	rt.returning = true
	rt.returnValue = v
}

// BreakRequested reports the break flag
func (rt *Runtime) BreakRequested() bool { return rt.breakRequested }

// ContinueRequested reports the continue flag
func (rt *Runtime) ContinueRequested() bool { return rt.continueRequested }

// InLoop reports whether a loop body is running in the current function
func (rt *Runtime) InLoop() bool { return rt.loops > 0 }

// ExitRequested reports the exit flag
func (rt *Runtime) ExitRequested() bool { return rt.exitRequested }

// Returning reports whether a RETURN is unwinding
func (rt *Runtime) Returning() bool { return rt.returning }

func (rt *Runtime) stopRequested() bool {
	return rt.breakRequested || rt.continueRequested || rt.exitRequested || rt.returning
}

// loopControl consumes the flags after one loop iteration and reports
// whether the loop must stop.
func (rt *Runtime) loopControl() bool {
	rt.continueRequested = false
	if rt.breakRequested {
		rt.breakRequested = false
		return true
	}
	return rt.exitRequested || rt.returning
}

// invoke checks the argument count, coerces arguments to the declared kinds
// and calls c.
func (rt *Runtime) invoke(c *Callable, frame *StackFrame) (Value, error) {
	if !c.Sig.Accepts(frame.Count()) {
		switch {
		case c.Sig.MaxArgs == Variadic:
			return Value{}, frame.AssertAtLeast(c.Sig.MinArgs)
		case c.Sig.MinArgs == c.Sig.MaxArgs:
			return Value{}, frame.AssertCount(c.Sig.MinArgs)
		}
		return Value{}, frame.AssertRange(c.Sig.MinArgs, c.Sig.MaxArgs)
	}
	if !c.Sig.Raw {
		for i := 1; i < len(frame.Args); i++ {
			v, err := rt.conv.Coerce(frame.Args[i], c.Sig.ParamKind(i))
			if err != nil {
				return Value{}, frame.argError(i, err)
			}
			frame.Args[i] = v
		}
	}
	v, err := c.Fn(rt, frame)
	if err != nil {
		return Value{}, withName(err, c.Name)
	}
	if !v.IsNone() {
		frame.ReturnValue = v
	}
	return frame.ReturnValue, nil
}

// Evaluate evaluates text as an expression in scope
func (rt *Runtime) Evaluate(scope Scope, text string) (Value, error) {
	ev := &evaluator{rt: rt, scope: scope}
	return ev.Evaluate(text)
}

// EvaluateBool evaluates text as a condition
func (rt *Runtime) EvaluateBool(scope Scope, text string) (bool, error) {
	v, err := rt.Evaluate(scope, text)
	if err != nil {
		return false, err
	}
	return rt.conv.ToBool(v)
}

func (rt *Runtime) maxDepth() int {
	if rt.config != nil && rt.config.MaxCallDepth > 0 {
		return rt.config.MaxCallDepth
	}
	return 256
}
