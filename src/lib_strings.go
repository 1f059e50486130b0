package pawbasic

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Character positions are counted in runes and are 1-based, as in BASIC.

var (
	upperCaser = cases.Upper(language.Und)
	lowerCaser = cases.Lower(language.Und)
)

// StringLibrary provides the string functions.
func StringLibrary() *Library {
	lib := NewLibrary("strings")

	lib.AddFunction(Func2("LEFT$", func(s string, n int) (string, error) {
		rs := []rune(s)
		return string(rs[:clamp(n, 0, len(rs))]), nil
	}))
	lib.AddFunction(Func2("RIGHT$", func(s string, n int) (string, error) {
		rs := []rune(s)
		return string(rs[len(rs)-clamp(n, 0, len(rs)):]), nil
	}))
	lib.Function("MID$", Signature{Params: []Kind{KindString, KindNumber, KindNumber}, MinArgs: 2, MaxArgs: 3, Returns: KindString}, func(rt *Runtime, f *StackFrame) (Value, error) {
		s, err := f.String(1)
		if err != nil {
			return Value{}, err
		}
		start, err := f.Int(2)
		if err != nil {
			return Value{}, err
		}
		if start < 1 {
			return Value{}, NewError(StatusIndexOutOfRange, "start %d must be at least 1", start)
		}
		rs := []rune(s)
		from := clamp(start-1, 0, len(rs))
		to := len(rs)
		if f.Has(3) {
			n, err := f.Int(3)
			if err != nil {
				return Value{}, err
			}
			to = from + clamp(n, 0, len(rs)-from)
		}
		return StringValue(string(rs[from:to])), nil
	})

	lib.AddFunction(Func1("UCASE$", func(s string) (string, error) { return upperCaser.String(s), nil }))
	lib.AddFunction(Func1("LCASE$", func(s string) (string, error) { return lowerCaser.String(s), nil }))
	lib.AddFunction(Func1("TRIM$", func(s string) (string, error) { return strings.TrimSpace(s), nil }))
	lib.AddFunction(Func1("LTRIM$", func(s string) (string, error) { return strings.TrimLeftFunc(s, unicode.IsSpace), nil }))
	lib.AddFunction(Func1("RTRIM$", func(s string) (string, error) { return strings.TrimRightFunc(s, unicode.IsSpace), nil }))

	lib.Function("STR$", Fixed(KindString, KindAny), func(rt *Runtime, f *StackFrame) (Value, error) {
		v, err := f.Value(1)
		if err != nil {
			return Value{}, err
		}
		return StringValue(v.String()), nil
	})
	lib.Function("VAL", Fixed(KindNumber, KindString), func(rt *Runtime, f *StackFrame) (Value, error) {
		s, err := f.String(1)
		if err != nil {
			return Value{}, err
		}
		n, ok := parseNumeric(rt.Mode(), s)
		if !ok {
			n = rt.Mode().Int(0)
		}
		return NumberValue(n), nil
	})

	lib.AddFunction(Func1("CHR$", func(code int) (string, error) {
		if code < 0 || code > unicode.MaxRune {
			return "", NewError(StatusIndexOutOfRange, "character code %d out of range", code)
		}
		return string(rune(code)), nil
	}))
	lib.AddFunction(Func1("ASC", func(s string) (int, error) {
		for _, r := range s {
			return int(r), nil
		}
		return 0, NewError(StatusIndexOutOfRange, "ASC of empty string")
	}))

	// INSTR(s, sub[, start]) and INSTRREV(s, sub[, start]) return a 1-based
	// position or 0.
	lib.Function("INSTR", Signature{Params: []Kind{KindString, KindString, KindNumber}, MinArgs: 2, MaxArgs: 3, Returns: KindNumber}, func(rt *Runtime, f *StackFrame) (Value, error) {
		return search(rt, f, false)
	})
	lib.Function("INSTRREV", Signature{Params: []Kind{KindString, KindString, KindNumber}, MinArgs: 2, MaxArgs: 3, Returns: KindNumber}, func(rt *Runtime, f *StackFrame) (Value, error) {
		return search(rt, f, true)
	})

	lib.AddFunction(Func3("REPLACE$", func(s, old, repl string) (string, error) {
		if old == "" {
			return s, nil
		}
		return strings.ReplaceAll(s, old, repl), nil
	}))
	lib.AddFunction(Func2("SPLIT", func(s, sep string) (*Array, error) {
		parts := strings.Split(s, sep)
		out := make([]Value, len(parts))
		for i, p := range parts {
			out[i] = StringValue(p)
		}
		return NewArray(out...), nil
	}))
	lib.AddFunction(Func2("JOIN$", func(a *Array, sep string) (string, error) {
		parts := make([]string, a.Len())
		for i, v := range a.Items() {
			parts[i] = v.String()
		}
		return strings.Join(parts, sep), nil
	}))
	lib.AddFunction(Func1("SPACE$", func(n int) (string, error) {
		if n < 0 {
			return "", NewError(StatusIndexOutOfRange, "negative count %d", n)
		}
		if n > maxDimension {
			return "", NewError(StatusOverflow, "count %d exceeds %d", n, maxDimension)
		}
		return strings.Repeat(" ", n), nil
	}))
	lib.AddFunction(Func2("STRING$", func(n int, s string) (string, error) {
		if n < 0 {
			return "", NewError(StatusIndexOutOfRange, "negative count %d", n)
		}
		if s == "" {
			return "", nil
		}
		first := string([]rune(s)[:1])
		if n > maxDimension/len(first) {
			return "", NewError(StatusOverflow, "count %d exceeds %d bytes", n, maxDimension)
		}
		return strings.Repeat(first, n), nil
	}))

	return lib
}

func clamp(n, lo, hi int) int {
	return min(max(n, lo), hi)
}

func search(rt *Runtime, f *StackFrame, backward bool) (Value, error) {
	s, err := f.String(1)
	if err != nil {
		return Value{}, err
	}
	sub, err := f.String(2)
	if err != nil {
		return Value{}, err
	}
	hs, ns := []rune(s), []rune(sub)
	start := -1
	if f.Has(3) {
		n, err := f.Int(3)
		if err != nil {
			return Value{}, err
		}
		if n < 1 {
			return Value{}, NewError(StatusIndexOutOfRange, "start %d must be at least 1", n)
		}
		start = n - 1
	}
	var at int
	if backward {
		if start < 0 {
			start = len(hs)
		}
		at = lastIndexOf(hs, ns, start)
	} else {
		at = indexOf(hs, ns, max(start, 0))
	}
	return NumberValue(rt.Mode().Int(int64(at + 1))), nil
}

func matchAt(hs, ns []rune, i int) bool {
	for j := range ns {
		if hs[i+j] != ns[j] {
			return false
		}
	}
	return true
}

// indexOf returns the first rune index at or after from where ns occurs, or -1.
func indexOf(hs, ns []rune, from int) int {
	for i := from; i >= 0 && i+len(ns) <= len(hs); i++ {
		if matchAt(hs, ns, i) {
			return i
		}
	}
	return -1
}

// lastIndexOf returns the last rune index at or before from where ns
// occurs, or -1. The scan walks backward from min(from, len(hs)-len(ns))
// down to 0.
func lastIndexOf(hs, ns []rune, from int) int {
	for i := min(from, len(hs)-len(ns)); i >= 0; i-- {
		if matchAt(hs, ns, i) {
			return i
		}
	}
	return -1
}
