package pawbasic

import (
	"strings"
)

type whileBlock struct {
	cond string
	body []Line
}

func newWhileBlock(rt *Runtime, lines []Line) (Block, int, error) {
	_, cond := splitKeyword(lines[0].Text)
	if cond == "" {
		return nil, 1, syntaxError(-1, "WHILE without condition")
	}
	end, err := findClose(lines, "WHILE", keywordIs("WHILE"), func(l Line) bool {
		return keywordIs("WEND")(l) || isEndOf(l, "WHILE")
	})
	if err != nil {
		return nil, end, err
	}
	return &whileBlock{cond: cond, body: lines[1:end]}, end + 1, nil
}

func (b *whileBlock) Execute(rt *Runtime, scope Scope) error {
	for {
		if err := rt.ctx.Err(); err != nil {
			return err
		}
		ok, err := rt.EvaluateBool(scope, b.cond)
		if err != nil || !ok {
			return err
		}
		if err := runLoopBody(rt, scope, b.body); err != nil {
			return err
		}
		if rt.loopControl() {
			return nil
		}
	}
}

// loopTest is an optional WHILE/UNTIL clause of DO or LOOP.
type loopTest struct {
	cond  string
	until bool
}

func parseLoopTest(kw, rest string) (*loopTest, error) {
	if rest == "" {
		return nil, nil
	}
	word, cond := splitKeyword(rest)
	if (word != "WHILE" && word != "UNTIL") || cond == "" {
		return nil, syntaxError(-1, "%s expects WHILE or UNTIL, got %q", kw, rest)
	}
	return &loopTest{cond: cond, until: word == "UNTIL"}, nil
}

// pass reports whether the loop may go on
func (t *loopTest) pass(rt *Runtime, scope Scope) (bool, error) {
	if t == nil {
		return true, nil
	}
	ok, err := rt.EvaluateBool(scope, t.cond)
	if err != nil {
		return false, err
	}
	return ok != t.until, nil
}

type doBlock struct {
	pre, post *loopTest
	body      []Line
}

func newDoBlock(rt *Runtime, lines []Line) (Block, int, error) {
	_, rest := splitKeyword(lines[0].Text)
	pre, err := parseLoopTest("DO", rest)
	if err != nil {
		return nil, 1, err
	}
	end, err := findClose(lines, "DO", keywordIs("DO"), keywordIs("LOOP"))
	if err != nil {
		return nil, end, err
	}
	_, tail := splitKeyword(lines[end].Text)
	post, err := parseLoopTest("LOOP", tail)
	if err != nil {
		return nil, end + 1, err
	}
	if pre != nil && post != nil {
		return nil, end + 1, syntaxError(-1, "DO loop tested at both ends")
	}
	return &doBlock{pre: pre, post: post, body: lines[1:end]}, end + 1, nil
}

func (b *doBlock) Execute(rt *Runtime, scope Scope) error {
	for {
		if err := rt.ctx.Err(); err != nil {
			return err
		}
		ok, err := b.pre.pass(rt, scope)
		if err != nil || !ok {
			return err
		}
		if err := runLoopBody(rt, scope, b.body); err != nil {
			return err
		}
		if rt.loopControl() {
			return nil
		}
		ok, err = b.post.pass(rt, scope)
		if err != nil || !ok {
			return err
		}
	}
}

type forBlock struct {
	name  string
	start string
	limit string
	step  string
	body  []Line
}

func newForBlock(rt *Runtime, lines []Line) (Block, int, error) {
	_, rest := splitKeyword(lines[0].Text)
	nameEnd := identifierAt(rest, 0)
	if nameEnd == 0 {
		return nil, 1, syntaxError(-1, "FOR without loop variable")
	}
	name := rest[:nameEnd]
	spec := strings.TrimSpace(rest[nameEnd:])
	if !startsWithAssign(spec) {
		return nil, 1, syntaxError(-1, "FOR %s without =", name)
	}
	spec = spec[1:]
	toAt := indexWord(spec, "TO", 0)
	if toAt < 0 {
		return nil, 1, syntaxError(-1, "FOR without TO")
	}
	b := &forBlock{name: name, start: strings.TrimSpace(spec[:toAt])}
	limit := spec[toAt+2:]
	if stepAt := indexWord(limit, "STEP", 0); stepAt >= 0 {
		b.step = strings.TrimSpace(limit[stepAt+4:])
		limit = limit[:stepAt]
	}
	b.limit = strings.TrimSpace(limit)
	if b.start == "" || b.limit == "" {
		return nil, 1, syntaxError(-1, "FOR %s needs a start and a limit", name)
	}

	end, err := findClose(lines, "FOR", keywordIs("FOR"), keywordIs("NEXT"))
	if err != nil {
		return nil, end, err
	}
	if _, v := splitKeyword(lines[end].Text); v != "" && foldName(v) != foldName(name) {
		return nil, end + 1, syntaxError(-1, "NEXT %s does not match FOR %s", v, name)
	}
	b.body = lines[1:end]
	return b, end + 1, nil
}

func (b *forBlock) number(rt *Runtime, scope Scope, text string) (Number, error) {
	v, err := rt.Evaluate(scope, text)
	if err != nil {
		return Number{}, err
	}
	return rt.conv.ToNumber(v)
}

func (b *forBlock) Execute(rt *Runtime, scope Scope) error {
	start, err := b.number(rt, scope, b.start)
	if err != nil {
		return err
	}
	limit, err := b.number(rt, scope, b.limit)
	if err != nil {
		return err
	}
	step := rt.conv.Mode.Int(1)
	if b.step != "" {
		if step, err = b.number(rt, scope, b.step); err != nil {
			return err
		}
	}
	if step.IsZero() {
		return NewError(StatusFailed, "FOR %s has a zero STEP", b.name)
	}
	if err := scope.SetVariable(b.name, NumberValue(start)); err != nil {
		return err
	}
	for {
		if err := rt.ctx.Err(); err != nil {
			return err
		}
		v, _, err := scope.GetVariable(b.name)
		if err != nil {
			return err
		}
		cur, err := rt.conv.ToNumber(v)
		if err != nil {
			return withName(err, b.name)
		}
		if (step.Sign() > 0 && cur.Cmp(limit) > 0) || (step.Sign() < 0 && cur.Cmp(limit) < 0) {
			return nil
		}
		if err := runLoopBody(rt, scope, b.body); err != nil {
			return err
		}
		if rt.loopControl() {
			return nil
		}
		if v, _, err = scope.GetVariable(b.name); err != nil {
			return err
		}
		if cur, err = rt.conv.ToNumber(v); err != nil {
			return withName(err, b.name)
		}
		if err := scope.SetVariable(b.name, NumberValue(cur.Add(step))); err != nil {
			return err
		}
	}
}

type selectCase struct {
	tests []string // empty for CASE ELSE
	body  []Line
}

type selectBlock struct {
	selector string
	cases    []selectCase
}

func newSelectBlock(rt *Runtime, lines []Line) (Block, int, error) {
	_, rest := splitKeyword(lines[0].Text)
	word, selector := splitKeyword(rest)
	if word != "CASE" || selector == "" {
		return nil, 1, syntaxError(-1, "expected SELECT CASE expression")
	}
	b := &selectBlock{selector: selector}
	var current *selectCase
	hasElse := false
	depth := 0
	for i := 1; i < len(lines); i++ {
		l := lines[i]
		kw, tail := splitKeyword(l.Text)
		switch {
		case kw == "SELECT":
			depth++
		case isEndOf(l, "SELECT"):
			if depth == 0 {
				if current != nil {
					b.cases = append(b.cases, *current)
				}
				return b, i + 1, nil
			}
			depth--
		case depth == 0 && kw == "CASE":
			if hasElse {
				return nil, i + 1, syntaxError(-1, "CASE after CASE ELSE")
			}
			if current != nil {
				b.cases = append(b.cases, *current)
			}
			current = &selectCase{}
			if foldName(tail) == "ELSE" {
				hasElse = true
				continue
			}
			tests, err := splitArguments(tail)
			if err != nil {
				return nil, i + 1, err
			}
			if len(tests) == 0 {
				return nil, i + 1, syntaxError(-1, "CASE without values")
			}
			current.tests = tests
			continue
		}
		if current == nil {
			return nil, i + 1, syntaxError(-1, "statement before first CASE")
		}
		current.body = append(current.body, l)
	}
	return nil, len(lines), incompleteBlock("SELECT")
}

func (b *selectBlock) Execute(rt *Runtime, scope Scope) error {
	v, err := rt.Evaluate(scope, b.selector)
	if err != nil {
		return err
	}
	for _, c := range b.cases {
		if c.tests == nil {
			return runBody(rt, scope, c.body)
		}
		for _, test := range c.tests {
			ok, err := b.matches(rt, scope, v, test)
			if err != nil {
				return err
			}
			if ok {
				return runBody(rt, scope, c.body)
			}
		}
	}
	return nil
}

// matches evaluates one CASE test: "IS op expr", "lo TO hi" or a value.
func (b *selectBlock) matches(rt *Runtime, scope Scope, v Value, test string) (bool, error) {
	if kw, rest := splitKeyword(test); kw == "IS" {
		op := scope.Operators().MatchBinary(rest, 0)
		if op == nil {
			return false, &Error{Status: StatusOperatorUndefined, Message: "operator undefined", Name: rest, Pos: -1}
		}
		rhs, err := rt.Evaluate(scope, rest[len(op.Symbol):])
		if err != nil {
			return false, err
		}
		res, err := op.Apply(rt.conv, v, rhs)
		if err != nil {
			return false, err
		}
		return rt.conv.ToBool(res)
	}
	if at := indexWord(test, "TO", 0); at >= 0 {
		lo, err := rt.Evaluate(scope, test[:at])
		if err != nil {
			return false, err
		}
		hi, err := rt.Evaluate(scope, test[at+2:])
		if err != nil {
			return false, err
		}
		c1, err := rt.conv.Compare(v, lo)
		if err != nil {
			return false, err
		}
		c2, err := rt.conv.Compare(v, hi)
		if err != nil {
			return false, err
		}
		return c1 >= 0 && c2 <= 0, nil
	}
	want, err := rt.Evaluate(scope, test)
	if err != nil {
		return false, err
	}
	return rt.conv.Equal(v, want)
}
