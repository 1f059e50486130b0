package pawbasic

import (
	"errors"
	"strings"
)

// Pseudo-variables updated after every dispatched line.
var statusVariables = []string{"@ERROR", "@ERR", "@LASTERROR", "@LASTERR"}

const (
	messageVariable = "@ERRMSG"
	resultVariable  = "@RESULT"
)

// ExecuteLines dispatches lines in order until they run out or a control
// flag (BREAK, CONTINUE, EXIT, RETURN) is raised. Host cancellation through
// the run's context is checked once per line.
func (rt *Runtime) ExecuteLines(scope Scope, lines []Line) error {
	for i := 0; i < len(lines); {
		if rt.stopRequested() {
			return nil
		}
		if err := rt.ctx.Err(); err != nil {
			rt.exitRequested = true
			return err
		}
		n, err := rt.dispatch(scope, lines[i:])
		if err != nil {
			return err
		}
		i += n
	}
	return nil
}

// dispatch runs the statement at lines[0] and returns how many lines it
// consumed.
func (rt *Runtime) dispatch(scope Scope, lines []Line) (int, error) {
	line := lines[0]
	rt.line = line
	frame := newFrame(line.Name, scope, rt.conv)
	frame.Line = line.Number
	if v, ok, err := scope.GetVariable(statusVariables[0]); err == nil && ok {
		if n, isNum := v.AsNumber(); isNum {
			if i, fits := n.Int64(); fits {
				frame.PriorStatus = Status(i)
			}
		}
	}

	n, err := rt.execLine(scope, lines, frame)
	if n < 1 {
		n = 1
	}
	if n > len(lines) {
		n = len(lines)
	}
	return n, rt.finish(scope, line, frame, err)
}

func (rt *Runtime) execLine(scope Scope, lines []Line, frame *StackFrame) (int, error) {
	text := strings.TrimSpace(lines[0].Text)
	sc := NewScanner(text, scope.Operators(), rt.conv.Mode)
	if name, ok := sc.NextIdentifier(); ok {
		ctor, found, err := scope.Block(name)
		if err != nil {
			return 1, err
		}
		if found {
			block, n, err := ctor(rt, lines)
			if err != nil {
				if n < 1 {
					n = len(lines)
				}
				return n, err
			}
			rt.logger.TraceCat(CatFlow, "line %d: %s block spans %d line(s)", lines[0].Number, foldName(name), n)
			return n, block.Execute(rt, scope)
		}

		rest := text[sc.Pos():]
		cmd, found, err := scope.Command(name)
		if err != nil {
			return 1, err
		}
		if found && !startsWithAssign(rest) {
			return 1, rt.runCommand(cmd, frame, rest)
		}
		if isAssignment(rest) {
			return 1, assign(rt, scope, text, false)
		}
	}

	v, err := rt.Evaluate(scope, text)
	if err != nil {
		return 1, err
	}
	frame.ReturnValue = v
	return 1, nil
}

// startsWithAssign reports whether text begins with a lone "=".
func startsWithAssign(text string) bool {
	t := strings.TrimLeft(text, " \t")
	return strings.HasPrefix(t, "=") && !strings.HasPrefix(t, "==")
}

// isAssignment reports whether text, following a name, is an optional run
// of index groups and then "=".
func isAssignment(text string) bool {
	i := 0
	for {
		for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
			i++
		}
		if i < len(text) && (text[i] == '[' || text[i] == '(') {
			end, err := IndexGroup(text, i)
			if err != nil {
				return false
			}
			i = end + 1
			continue
		}
		return startsWithAssign(text[i:])
	}
}

// runCommand hands the raw argument text to cmd, evaluating each top-level
// segment first unless the signature is raw.
func (rt *Runtime) runCommand(cmd *Callable, frame *StackFrame, rest string) error {
	frame.Args[0] = StringValue(cmd.Name)
	frame.Text = strings.TrimSpace(rest)
	segments, err := splitArguments(frame.Text)
	if cmd.Sig.Raw {
		frame.raw = true
		if err != nil {
			segments = []string{frame.Text}
		}
		for _, seg := range segments {
			if seg != "" {
				frame.Raw = append(frame.Raw, seg)
			}
		}
	} else {
		if err != nil {
			return err
		}
		ev := &evaluator{rt: rt, scope: frame.Scope}
		args, err := ev.evaluateAll(segments)
		if err != nil {
			return err
		}
		frame.Args = append(frame.Args, args...)
	}
	rt.logger.TraceCat(CatCommand, "line %d: %s %s", frame.Line, cmd.Name, frame.Text)
	_, err = rt.invoke(cmd, frame)
	return err
}

// finish folds the outcome of one line into the status pseudo-variables.
// Domain errors become a status unless ThrowOnError is set; anything else
// goes back to the host untouched.
func (rt *Runtime) finish(scope Scope, line Line, frame *StackFrame, err error) error {
	status, message := frame.Status, frame.Message
	if err != nil {
		var le *LineError
		if errors.As(err, &le) {
			return err
		}
		de, ok := AsError(err)
		if !ok {
			return err
		}
		if rt.config.ThrowOnError {
			return &LineError{Line: line.Number, Name: line.Name, Text: line.Text, Err: err}
		}
		status, message = de.Status, de.Error()
		rt.report(line, de)
	}
	if status != StatusOK && message == "" {
		message = status.String()
	}
	return rt.publish(scope, status, message, frame.ReturnValue)
}

func (rt *Runtime) publish(scope Scope, status Status, message string, result Value) error {
	code := NumberValue(rt.conv.Mode.Int(int64(status)))
	for _, name := range statusVariables {
		if err := scope.SetVariable(name, code); err != nil {
			if errors.Is(err, ErrContextCleared) {
				return nil
			}
			return err
		}
	}
	if err := scope.SetVariable(messageVariable, StringValue(message)); err != nil {
		return err
	}
	if !result.IsNone() {
		return scope.SetVariable(resultVariable, result)
	}
	return nil
}

// report logs a recovered line error when debugging is on.
func (rt *Runtime) report(line Line, de *Error) {
	pos := &SourcePosition{
		Line:     line.Number,
		Column:   len(line.Text) - len(strings.TrimLeft(line.Text, " \t")) + 1,
		Length:   len(strings.TrimSpace(line.Text)),
		Filename: rt.filename,
	}
	var context []string
	if rt.config.ShowErrorContext {
		context = rt.source
	}
	rt.logger.Log(LevelDebug, CatCommand, de.Error()+" (status "+de.Status.String()+")", pos, context)
}
