package pawbasic

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Version is reported by the @VERSION constant
const Version = "0.9.0"

// CoreLibrary provides the block constructs, the statements and the
// runtime constants.
func CoreLibrary() *Library {
	lib := NewLibrary("core")

	lib.Block("IF", newIfBlock)
	lib.Block("WHILE", newWhileBlock)
	lib.Block("DO", newDoBlock)
	lib.Block("FOR", newForBlock)
	lib.Block("SELECT", newSelectBlock)
	lib.Block("FUNCTION", newFuncBlock)

	lib.Command("LET", RawSignature(1, 1, KindNone), cmdLet)
	lib.Command("CONST", RawSignature(1, 1, KindNone), cmdConst)
	lib.Command("DIM", RawSignature(1, Variadic, KindNone), cmdDim)
	lib.Command("PRINT", RawSignature(0, Variadic, KindNone), cmdPrint)
	lib.Command("INPUT", RawSignature(1, Variadic, KindNone), cmdInput)
	lib.Command("RETURN", RawSignature(0, 1, KindNone), cmdReturn)
	lib.Command("REM", RawSignature(0, Variadic, KindNone), func(rt *Runtime, f *StackFrame) (Value, error) {
		return Value{}, nil
	})
	lib.Command("BREAK", Fixed(KindNone), func(rt *Runtime, f *StackFrame) (Value, error) {
		if !rt.InLoop() {
			return Value{}, NewError(StatusSyntax, "BREAK outside loop")
		}
		rt.RequestBreak()
		return Value{}, nil
	})
	lib.Command("CONTINUE", Fixed(KindNone), func(rt *Runtime, f *StackFrame) (Value, error) {
		if !rt.InLoop() {
			return Value{}, NewError(StatusSyntax, "CONTINUE outside loop")
		}
		rt.RequestContinue()
		return Value{}, nil
	})
	lib.Command("EXIT", Fixed(KindNone), func(rt *Runtime, f *StackFrame) (Value, error) {
		rt.RequestExit()
		return Value{}, nil
	})
	lib.Command("END", Fixed(KindNone), func(rt *Runtime, f *StackFrame) (Value, error) {
		rt.RequestExit()
		return Value{}, nil
	})
	lib.Command("ERROR", Signature{Params: []Kind{KindNumber, KindString}, MinArgs: 1, MaxArgs: 2, Returns: KindNone}, cmdError)
	lib.Command("SLEEP", Fixed(KindNone, KindNumber), cmdSleep)

	lib.Constant("@VERSION", StringValue(Version))
	lib.Constant("@TRUE", BoolValue(true))
	lib.Constant("@FALSE", BoolValue(false))
	lib.Constant("@NL", StringValue("\n"))

	return lib
}

// assign handles NAME = expr and NAME[i]... = expr (or NAME(i) = expr).
// With declare set, a plain name is bound in scope itself.
func assign(rt *Runtime, scope Scope, text string, declare bool) error {
	text = strings.TrimSpace(text)
	nameEnd := identifierAt(text, 0)
	if nameEnd == 0 {
		return syntaxError(0, "expected variable name in %q", text)
	}
	name := text[:nameEnd]
	var indices []string
	i := nameEnd
	for {
		for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
			i++
		}
		if i >= len(text) || (text[i] != '[' && text[i] != '(') {
			break
		}
		closePos, parts, err := SplitGroup(text, i, ',')
		if err != nil {
			return err
		}
		if len(parts) == 0 {
			return syntaxError(i, "empty index")
		}
		indices = append(indices, parts...)
		i = closePos + 1
	}
	if !startsWithAssign(text[i:]) {
		return syntaxError(i, "expected = after %s", name)
	}
	expr := strings.TrimSpace(text[i+1:])
	if expr == "" {
		return syntaxError(i+1, "missing value for %s", name)
	}
	v, err := rt.Evaluate(scope, expr)
	if err != nil {
		return err
	}

	if len(indices) == 0 {
		rt.logger.TraceCat(CatVariable, "%s = %s", foldName(name), v)
		if declare {
			return scope.DeclareVariable(name, v)
		}
		return scope.SetVariable(name, v)
	}

	cur, ok, err := scope.Lookup(name)
	if err != nil {
		return err
	}
	if !ok {
		return undefinedError(foldName(name))
	}
	ev := &evaluator{rt: rt, scope: scope}
	if len(indices) > 1 {
		if cur, err = ev.index(foldName(name), cur, indices[:len(indices)-1]); err != nil {
			return err
		}
	}
	arr, isArray := cur.AsArray()
	if !isArray {
		return &Error{Status: StatusIndexUnavailable, Message: "index unavailable on " + cur.Kind().String(), Name: foldName(name), Pos: -1}
	}
	iv, err := ev.Evaluate(indices[len(indices)-1])
	if err != nil {
		return err
	}
	idx, err := rt.conv.ToInt(iv)
	if err != nil {
		return withName(err, foldName(name))
	}
	return withName(arr.Set(idx, v), foldName(name))
}

func cmdLet(rt *Runtime, f *StackFrame) (Value, error) {
	return Value{}, assign(rt, f.Scope, f.Text, false)
}

func cmdConst(rt *Runtime, f *StackFrame) (Value, error) {
	text := f.Text
	nameEnd := identifierAt(text, 0)
	if nameEnd == 0 {
		return Value{}, syntaxError(0, "expected constant name")
	}
	rest := strings.TrimSpace(text[nameEnd:])
	if !startsWithAssign(rest) {
		return Value{}, syntaxError(nameEnd, "expected = after %s", text[:nameEnd])
	}
	v, err := rt.Evaluate(f.Scope, rest[1:])
	if err != nil {
		return Value{}, err
	}
	return Value{}, f.Scope.SetConstant(text[:nameEnd], v)
}

// defaultFor gives string names (NAME$) an empty string and others zero.
func defaultFor(rt *Runtime, name string) Value {
	if strings.HasSuffix(name, "$") {
		return StringValue("")
	}
	return NumberValue(rt.conv.Mode.Int(0))
}

// maxDimension bounds DIM extents and the length of repeated strings.
const maxDimension = 1 << 24

func makeArray(dims []int, fill Value) *Array {
	items := make([]Value, dims[0]+1)
	for i := range items {
		if len(dims) > 1 {
			items[i] = ArrayValue(makeArray(dims[1:], fill))
		} else {
			items[i] = fill
		}
	}
	return NewArray(items...)
}

// cmdDim declares locals: DIM A(10), B$, C = 5. A(n) has elements 0 to n.
func cmdDim(rt *Runtime, f *StackFrame) (Value, error) {
	for _, item := range f.Raw {
		nameEnd := identifierAt(item, 0)
		if nameEnd == 0 {
			return Value{}, syntaxError(0, "expected variable name in DIM %s", item)
		}
		name := item[:nameEnd]
		rest := strings.TrimSpace(item[nameEnd:])
		switch {
		case rest == "":
			if err := f.Scope.DeclareVariable(name, defaultFor(rt, name)); err != nil {
				return Value{}, err
			}
		case startsWithAssign(rest):
			if err := assign(rt, f.Scope, item, true); err != nil {
				return Value{}, err
			}
		case rest[0] == '(' || rest[0] == '[':
			closePos, parts, err := SplitGroup(rest, 0, ',')
			if err != nil {
				return Value{}, err
			}
			if strings.TrimSpace(rest[closePos+1:]) != "" || len(parts) == 0 {
				return Value{}, syntaxError(closePos, "malformed DIM %s", item)
			}
			dims := make([]int, len(parts))
			for i, part := range parts {
				v, err := rt.Evaluate(f.Scope, part)
				if err != nil {
					return Value{}, err
				}
				n, err := rt.conv.ToInt(v)
				if err != nil {
					return Value{}, withName(err, foldName(name))
				}
				if n < 0 {
					return Value{}, &Error{Status: StatusIndexOutOfRange, Message: fmt.Sprintf("negative dimension %d", n), Name: foldName(name), Pos: -1}
				}
				if n >= maxDimension {
					return Value{}, &Error{Status: StatusOverflow, Message: fmt.Sprintf("dimension %d too large", n), Name: foldName(name), Pos: -1}
				}
				dims[i] = n
			}
			if err := f.Scope.DeclareVariable(name, ArrayValue(makeArray(dims, defaultFor(rt, name)))); err != nil {
				return Value{}, err
			}
		default:
			return Value{}, syntaxError(nameEnd, "malformed DIM %s", item)
		}
	}
	return Value{}, nil
}

// cmdPrint writes its items: ";" joins directly, "," inserts a tab, and a
// trailing separator suppresses the newline.
func cmdPrint(rt *Runtime, f *StackFrame) (Value, error) {
	parts, seps, err := splitTopLevel(f.Text, ";,")
	if err != nil {
		return Value{}, err
	}
	var out strings.Builder
	newline := true
	for i, part := range parts {
		if part != "" {
			v, err := rt.Evaluate(f.Scope, part)
			if err != nil {
				return Value{}, err
			}
			out.WriteString(v.String())
		}
		switch seps[i] {
		case ',':
			out.WriteByte('\t')
		case ';':
		case 0:
			newline = !(i > 0 && part == "")
		}
	}
	if newline {
		out.WriteByte('\n')
	}
	_, err = io.WriteString(rt.Output(), out.String())
	return Value{}, err
}

// cmdInput reads one line per variable: INPUT ["prompt";] A, B$
func cmdInput(rt *Runtime, f *StackFrame) (Value, error) {
	parts, seps, err := splitTopLevel(f.Text, ";,")
	if err != nil {
		return Value{}, err
	}
	prompt := "? "
	if len(parts) > 1 && parts[0] != "" && isQuote(parts[0][0]) {
		_, text, err := ReadString(parts[0], 0)
		if err != nil {
			return Value{}, err
		}
		prompt = text
		if seps[0] == ',' {
			prompt += "? "
		}
		parts = parts[1:]
	}
	if rt.Input() == nil {
		f.Fail(StatusNotFound, "no input available")
		return Value{}, nil
	}
	for _, name := range parts {
		if end := identifierAt(name, 0); name == "" || end != len(name) {
			return Value{}, syntaxError(0, "INPUT expects variable names, got %q", name)
		}
		if _, err := io.WriteString(rt.Output(), prompt); err != nil {
			return Value{}, err
		}
		line, err := rt.Input().ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			f.Fail(StatusNotFound, "end of input")
			return Value{}, nil
		}
		line = strings.TrimRight(line, "\r\n")
		v := StringValue(line)
		if !strings.HasSuffix(name, "$") {
			if n, ok := parseNumeric(rt.conv.Mode, line); ok {
				v = NumberValue(n)
			} else if rt.conv.Strict {
				return Value{}, &Error{Status: StatusTypeMismatch, Message: fmt.Sprintf("%q is not a number", line), Name: foldName(name), Pos: -1}
			}
		}
		if err := f.Scope.SetVariable(name, v); err != nil {
			return Value{}, err
		}
	}
	return Value{}, nil
}

func cmdReturn(rt *Runtime, f *StackFrame) (Value, error) {
	var v Value
	if f.Text != "" {
		var err error
		if v, err = rt.Evaluate(f.Scope, f.Text); err != nil {
			return Value{}, err
		}
	}
	rt.RequestReturn(v)
	return Value{}, nil
}

// cmdError sets a status deliberately: ERROR n[, message]
func cmdError(rt *Runtime, f *StackFrame) (Value, error) {
	code, err := f.Int(1)
	if err != nil {
		return Value{}, err
	}
	message := Status(code).String()
	if f.Has(2) {
		if message, err = f.String(2); err != nil {
			return Value{}, err
		}
	}
	f.Fail(Status(code), "%s", message)
	return Value{}, nil
}

func cmdSleep(rt *Runtime, f *StackFrame) (Value, error) {
	ms, err := f.Float(1)
	if err != nil {
		return Value{}, err
	}
	d := time.Duration(ms * float64(time.Millisecond))
	if d <= 0 {
		return Value{}, nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-rt.Context().Done():
		rt.RequestExit()
		return Value{}, rt.Context().Err()
	case <-timer.C:
	}
	return Value{}, nil
}
