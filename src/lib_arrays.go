package pawbasic

import (
	"unicode/utf8"
)

// ArrayLibrary provides array construction and inspection plus the type
// helpers.
func ArrayLibrary() *Library {
	lib := NewLibrary("arrays")

	lib.Function("ARRAY", Signature{MinArgs: 0, MaxArgs: Variadic, Returns: KindArray}, func(rt *Runtime, f *StackFrame) (Value, error) {
		items := make([]Value, 0, f.Count())
		items = append(items, f.Args[1:]...)
		return ArrayValue(NewArray(items...)), nil
	})
	lib.AddFunction(Func1("UBOUND", func(a *Array) (int, error) {
		return a.Len() - 1, nil
	}))
	lib.Function("LEN", Fixed(KindNumber, KindAny), func(rt *Runtime, f *StackFrame) (Value, error) {
		v, err := f.Value(1)
		if err != nil {
			return Value{}, err
		}
		if a, ok := v.AsArray(); ok {
			return NumberValue(rt.Mode().Int(int64(a.Len()))), nil
		}
		s, err := rt.Conversion().ToString(v)
		if err != nil {
			return Value{}, err
		}
		return NumberValue(rt.Mode().Int(int64(utf8.RuneCountInString(s)))), nil
	})

	// PUSH appends in place, so every variable sharing the array sees the
	// new elements. It returns the new length.
	lib.Function("PUSH", Signature{Params: []Kind{KindArray, KindAny}, MinArgs: 2, MaxArgs: Variadic, Returns: KindNumber}, func(rt *Runtime, f *StackFrame) (Value, error) {
		a, err := f.Array(1)
		if err != nil {
			return Value{}, err
		}
		a.Append(f.Args[2:]...)
		return NumberValue(rt.Mode().Int(int64(a.Len()))), nil
	})
	lib.Function("POP", Fixed(KindAny, KindArray), func(rt *Runtime, f *StackFrame) (Value, error) {
		a, err := f.Array(1)
		if err != nil {
			return Value{}, err
		}
		v, ok := a.Pop()
		if !ok {
			return Value{}, NewError(StatusIndexOutOfRange, "POP from empty array")
		}
		return v, nil
	})

	lib.AddFunction(Func1("TYPENAME", func(v Value) (string, error) {
		return v.Kind().String(), nil
	}))
	lib.Function("ISNUMERIC", Fixed(KindBoolean, KindAny), func(rt *Runtime, f *StackFrame) (Value, error) {
		v, err := f.Value(1)
		if err != nil {
			return Value{}, err
		}
		switch v.Kind() {
		case KindNumber:
			return BoolValue(true), nil
		case KindString:
			s, _ := v.AsString()
			_, ok := parseNumeric(rt.Mode(), s)
			return BoolValue(ok), nil
		}
		return BoolValue(false), nil
	})

	// IIF(cond, a, b) evaluates only the branch it returns.
	lib.Function("IIF", RawSignature(3, 3, KindAny), func(rt *Runtime, f *StackFrame) (Value, error) {
		ok, err := rt.EvaluateBool(f.Scope, f.Raw[0])
		if err != nil {
			return Value{}, err
		}
		if ok {
			return rt.Evaluate(f.Scope, f.Raw[1])
		}
		return rt.Evaluate(f.Scope, f.Raw[2])
	})

	return lib
}
