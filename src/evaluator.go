package pawbasic

import (
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"
)

// evaluator turns expression text into a value against one scope.
type evaluator struct {
	rt    *Runtime
	scope Scope
}

// Evaluate runs the operator-precedence loop over text. Operands and
// pending operators live on two stacks; an incoming binary operator first
// reduces every stacked operator that binds at least as tightly.
func (ev *evaluator) Evaluate(text string) (Value, error) {
	sc := NewScanner(text, ev.scope.Operators(), ev.rt.conv.Mode)
	operands := arraystack.New()
	operators := arraystack.New()
	expectOperand := true

	for !sc.AtEnd() {
		if expectOperand {
			tok, ok, err := sc.NextUnaryOp()
			if err != nil {
				return Value{}, err
			}
			if ok {
				operators.Push(tok.Op)
				continue
			}
			v, err := ev.operand(sc)
			if err != nil {
				return Value{}, err
			}
			operands.Push(v)
			expectOperand = false
			continue
		}

		tok, ok, err := sc.NextBinaryOp()
		if err != nil {
			return Value{}, err
		}
		if !ok {
			return Value{}, ev.unexpected(sc)
		}
		for !operators.Empty() {
			top, _ := operators.Peek()
			if !binds(top.(*Operator), tok.Op) {
				break
			}
			if err := ev.reduce(operands, operators); err != nil {
				return Value{}, err
			}
		}
		operators.Push(tok.Op)
		expectOperand = true
	}

	if expectOperand {
		if operands.Empty() && operators.Empty() {
			return Value{}, syntaxError(0, "empty expression")
		}
		return Value{}, syntaxError(len(text), "missing operand in %q", strings.TrimSpace(text))
	}
	for !operators.Empty() {
		if err := ev.reduce(operands, operators); err != nil {
			return Value{}, err
		}
	}
	if operands.Size() != 1 {
		return Value{}, syntaxError(0, "malformed expression %q", strings.TrimSpace(text))
	}
	v, _ := operands.Pop()
	return v.(Value), nil
}

// binds reports whether the stacked operator top must be applied before
// next is pushed.
func binds(top, next *Operator) bool {
	if top.IsUnary() {
		return top.Precedence >= next.Precedence
	}
	if next.Assoc == RightAssoc {
		return top.Precedence > next.Precedence
	}
	return top.Precedence >= next.Precedence
}

func (ev *evaluator) reduce(operands, operators *arraystack.Stack) error {
	raw, _ := operators.Pop()
	op := raw.(*Operator)
	if op.IsUnary() {
		a, ok := operands.Pop()
		if !ok {
			return syntaxError(-1, "missing operand for %s", op.Symbol)
		}
		v, err := op.ApplyUnary(ev.rt.conv, a.(Value))
		if err != nil {
			return err
		}
		operands.Push(v)
		return nil
	}
	b, okB := operands.Pop()
	a, okA := operands.Pop()
	if !okA || !okB {
		return syntaxError(-1, "missing operand for %s", op.Symbol)
	}
	v, err := op.Apply(ev.rt.conv, a.(Value), b.(Value))
	if err != nil {
		return err
	}
	operands.Push(v)
	return nil
}

// unexpected explains why no binary operator matched at the cursor.
func (ev *evaluator) unexpected(sc *Scanner) error {
	rest := sc.Rest()
	c := rest[0]
	if !isNameChar(c) && !isDigit(c) && !isQuote(c) && c != '(' && c != '[' {
		end := 1
		for end < len(rest) && strings.IndexByte("<>=!&|*/\\%^+-~?:", rest[end]) >= 0 {
			end++
		}
		return &Error{Status: StatusOperatorUndefined, Message: "operator undefined", Name: rest[:end], Pos: sc.Pos()}
	}
	return syntaxError(sc.Pos(), "unexpected %q", truncate(rest, 20))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// operand reads one literal, variable, call or group.
func (ev *evaluator) operand(sc *Scanner) (Value, error) {
	try := []func() (Token, bool, error){
		sc.NextHexadecimal,
		sc.NextNumber,
		sc.NextString,
		sc.NextBoolean,
		sc.NextFunction,
		sc.NextVariable,
		sc.NextGroup,
	}
	for _, next := range try {
		tok, ok, err := next()
		if err != nil {
			return Value{}, err
		}
		if !ok {
			continue
		}
		switch tok.Kind {
		case TokNumber, TokString, TokBoolean:
			return tok.Value, nil
		case TokFunction:
			return ev.call(tok)
		case TokVariable:
			return ev.variable(tok)
		case TokGroup:
			return ev.group(tok)
		case TokNone, TokBinaryOp, TokUnaryOp, TokEnd:
		}
	}
	return Value{}, ev.unexpected(sc)
}

func (ev *evaluator) evaluateAll(segments []string) ([]Value, error) {
	values := make([]Value, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		v, err := ev.Evaluate(seg)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// group evaluates (a) to a, (a, b) and [a, b] to arrays.
func (ev *evaluator) group(tok Token) (Value, error) {
	values, err := ev.evaluateAll(tok.Args)
	if err != nil {
		return Value{}, err
	}
	if tok.Bracket == '[' {
		return ArrayValue(NewArray(values...)), nil
	}
	switch len(values) {
	case 0:
		return Value{}, syntaxError(tok.Start, "empty group")
	case 1:
		return values[0], nil
	}
	return ArrayValue(NewArray(values...)), nil
}

func (ev *evaluator) variable(tok Token) (Value, error) {
	v, ok, err := ev.scope.Lookup(tok.Name)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Value{}, undefinedError(tok.Name)
	}
	if len(tok.Indices) == 0 {
		return v, nil
	}
	return ev.index(tok.Name, v, tok.Indices)
}

// index walks nested arrays. Indexing a non-array is "index unavailable";
// a bad position is "index out of range".
func (ev *evaluator) index(name string, v Value, indices []string) (Value, error) {
	for _, expr := range indices {
		arr, ok := v.AsArray()
		if !ok {
			return Value{}, &Error{Status: StatusIndexUnavailable, Message: "index unavailable on " + v.Kind().String(), Name: name, Pos: -1}
		}
		iv, err := ev.Evaluate(expr)
		if err != nil {
			return Value{}, err
		}
		i, err := ev.rt.conv.ToInt(iv)
		if err != nil {
			return Value{}, withName(err, name)
		}
		v, err = arr.Get(i)
		if err != nil {
			return Value{}, withName(err, name)
		}
	}
	return v, nil
}

// call invokes a function. Arguments are evaluated left to right before
// the call unless the signature asks for raw text. A name bound to an
// array instead of a function is indexed, so A(1) works like A[1].
func (ev *evaluator) call(tok Token) (Value, error) {
	fn, ok, err := ev.scope.Function(tok.Name)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		if v, found, err := ev.scope.Lookup(tok.Name); err == nil && found && v.Kind() == KindArray {
			return ev.index(tok.Name, v, tok.Args)
		}
		return Value{}, undefinedError(tok.Name)
	}

	frame := newFrame(fn.Name, ev.scope, ev.rt.conv)
	frame.Line = ev.rt.line.Number
	frame.Text = tok.Text[strings.IndexByte(tok.Text, '(')+1 : len(tok.Text)-1]
	if fn.Sig.Raw {
		frame.raw = true
		for _, seg := range tok.Args {
			if seg != "" {
				frame.Raw = append(frame.Raw, seg)
			}
		}
	} else {
		args, err := ev.evaluateAll(tok.Args)
		if err != nil {
			return Value{}, err
		}
		frame.Args = append(frame.Args, args...)
	}

	if ev.rt.depth >= ev.rt.maxDepth() {
		return Value{}, &Error{Status: StatusOverflow, Message: "call stack overflow", Name: fn.Name, Pos: -1}
	}
	ev.rt.depth++
	v, err := ev.rt.invoke(fn, frame)
	ev.rt.depth--
	if err != nil {
		return Value{}, err
	}
	if frame.Status != StatusOK {
		msg := frame.Message
		if msg == "" {
			msg = frame.Status.String()
		}
		return Value{}, &Error{Status: frame.Status, Message: msg, Name: fn.Name, Pos: -1}
	}
	if v.IsNone() && fn.Sig.Returns != KindNone {
		return NumberValue(ev.rt.conv.Mode.Int(0)), nil
	}
	if v.IsNone() {
		return Value{}, &Error{Status: StatusTypeMismatch, Message: "function returns no value", Name: fn.Name, Pos: -1}
	}
	return v, nil
}
