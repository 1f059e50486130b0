package pawbasic

import (
	"strings"
)

// funcBlock defines a user function when executed. Calls run in a fresh
// child of the scope the definition ran in.
type funcBlock struct {
	name   string
	params []string
	body   []Line
}

func newFuncBlock(rt *Runtime, lines []Line) (Block, int, error) {
	_, rest := splitKeyword(lines[0].Text)
	nameEnd := identifierAt(rest, 0)
	if nameEnd == 0 || rest[0] == '@' {
		return nil, 1, syntaxError(-1, "FUNCTION without a name")
	}
	b := &funcBlock{name: foldName(rest[:nameEnd])}
	tail := strings.TrimSpace(rest[nameEnd:])
	if tail != "" {
		if tail[0] != '(' {
			return nil, 1, syntaxError(-1, "unexpected %q after FUNCTION %s", tail, b.name)
		}
		closePos, params, err := SplitGroup(tail, 0, ',')
		if err != nil {
			return nil, 1, err
		}
		if strings.TrimSpace(tail[closePos+1:]) != "" {
			return nil, 1, syntaxError(-1, "unexpected %q after parameter list", tail[closePos+1:])
		}
		seen := make(map[string]bool)
		for _, p := range params {
			if end := identifierAt(p, 0); p == "" || end != len(p) {
				return nil, 1, syntaxError(-1, "invalid parameter %q", p)
			}
			if seen[foldName(p)] {
				return nil, 1, syntaxError(-1, "duplicate parameter %s", p)
			}
			seen[foldName(p)] = true
			b.params = append(b.params, p)
		}
	}

	end, err := findClose(lines, "FUNCTION", keywordIs("FUNCTION"), func(l Line) bool {
		return isEndOf(l, "FUNCTION")
	})
	if err != nil {
		return nil, end, err
	}
	b.body = lines[1:end]
	return b, end + 1, nil
}

func (b *funcBlock) Execute(rt *Runtime, scope Scope) error {
	params := make([]Kind, len(b.params))
	for i := range params {
		params[i] = KindAny
	}
	sig := Signature{Params: params, MinArgs: len(params), MaxArgs: len(params), Returns: KindAny}
	defining := scope
	c, err := NewCallable(b.name, sig, func(rt *Runtime, f *StackFrame) (Value, error) {
		return b.call(rt, defining, f)
	})
	if err != nil {
		return err
	}
	rt.logger.DebugCat(CatFlow, "defined function %s(%s)", b.name, strings.Join(b.params, ", "))
	return scope.SetFunction(c)
}

func (b *funcBlock) call(rt *Runtime, defining Scope, f *StackFrame) (result Value, err error) {
	local, err := defining.Child()
	if err != nil {
		return Value{}, err
	}
	defer func() {
		if _, cerr := local.Collect(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	for i, p := range b.params {
		if err := local.DeclareVariable(p, f.Args[i+1]); err != nil {
			return Value{}, err
		}
	}

	saved, loops := rt.line, rt.loops
	rt.loops = 0
	err = rt.ExecuteLines(local, b.body)
	rt.line, rt.loops = saved, loops
	returned, value := rt.returning, rt.returnValue
	rt.returning, rt.returnValue = false, Value{}
	rt.breakRequested, rt.continueRequested = false, false
	if err != nil {
		return Value{}, err
	}
	if !returned {
		return Value{}, nil
	}
	return value, nil
}
