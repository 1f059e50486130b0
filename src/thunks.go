package pawbasic

// Arg lists the Go types a thunk can take or return. Each maps to one
// value kind, so the signature is derived without reflection.
type Arg interface {
	float64 | int | int64 | string | bool | *Array | Value
}

func kindOf[T Arg]() Kind {
	var zero T
	switch any(zero).(type) {
	case float64, int, int64:
		return KindNumber
	case string:
		return KindString
	case bool:
		return KindBoolean
	case *Array:
		return KindArray
	}
	return KindAny
}

// argAs fetches argument i of f as T using the frame's conversion rules.
func argAs[T Arg](f *StackFrame, i int) (T, error) {
	var out T
	var err error
	switch p := any(&out).(type) {
	case *float64:
		*p, err = f.Float(i)
	case *int:
		*p, err = f.Int(i)
	case *int64:
		var n int
		n, err = f.Int(i)
		*p = int64(n)
	case *string:
		*p, err = f.String(i)
	case *bool:
		*p, err = f.Bool(i)
	case **Array:
		*p, err = f.Array(i)
	case *Value:
		*p, err = f.Value(i)
	}
	return out, err
}

// valueOf wraps a thunk result in the interpreter's number mode. A float
// result precise mode cannot hold (NaN, infinity) is an error.
func valueOf[T Arg](mode NumberMode, r T) (Value, error) {
	switch v := any(r).(type) {
	case float64:
		n, err := mode.FloatChecked(v)
		if err != nil {
			return Value{}, err
		}
		return NumberValue(n), nil
	case int:
		return NumberValue(mode.Int(int64(v))), nil
	case int64:
		return NumberValue(mode.Int(v)), nil
	case string:
		return StringValue(v), nil
	case bool:
		return BoolValue(v), nil
	case *Array:
		return ArrayValue(v), nil
	case Value:
		return v, nil
	}
	return Value{}, nil
}

// Func0 adapts a Go function with no parameters
func Func0[R Arg](name string, fn func() (R, error)) *Callable {
	return &Callable{
		Name: foldName(name),
		Sig:  Fixed(kindOf[R]()),
		Fn: func(rt *Runtime, f *StackFrame) (Value, error) {
			r, err := fn()
			if err != nil {
				return Value{}, err
			}
			return valueOf(rt.Mode(), r)
		},
	}
}

// Func1 adapts a Go function with one parameter
func Func1[A, R Arg](name string, fn func(A) (R, error)) *Callable {
	return &Callable{
		Name: foldName(name),
		Sig:  Fixed(kindOf[R](), kindOf[A]()),
		Fn: func(rt *Runtime, f *StackFrame) (Value, error) {
			a, err := argAs[A](f, 1)
			if err != nil {
				return Value{}, err
			}
			r, err := fn(a)
			if err != nil {
				return Value{}, err
			}
			return valueOf(rt.Mode(), r)
		},
	}
}

// Func2 adapts a Go function with two parameters
func Func2[A, B, R Arg](name string, fn func(A, B) (R, error)) *Callable {
	return &Callable{
		Name: foldName(name),
		Sig:  Fixed(kindOf[R](), kindOf[A](), kindOf[B]()),
		Fn: func(rt *Runtime, f *StackFrame) (Value, error) {
			a, err := argAs[A](f, 1)
			if err != nil {
				return Value{}, err
			}
			b, err := argAs[B](f, 2)
			if err != nil {
				return Value{}, err
			}
			r, err := fn(a, b)
			if err != nil {
				return Value{}, err
			}
			return valueOf(rt.Mode(), r)
		},
	}
}

// Func3 adapts a Go function with three parameters
func Func3[A, B, C, R Arg](name string, fn func(A, B, C) (R, error)) *Callable {
	return &Callable{
		Name: foldName(name),
		Sig:  Fixed(kindOf[R](), kindOf[A](), kindOf[B](), kindOf[C]()),
		Fn: func(rt *Runtime, f *StackFrame) (Value, error) {
			a, err := argAs[A](f, 1)
			if err != nil {
				return Value{}, err
			}
			b, err := argAs[B](f, 2)
			if err != nil {
				return Value{}, err
			}
			c, err := argAs[C](f, 3)
			if err != nil {
				return Value{}, err
			}
			r, err := fn(a, b, c)
			if err != nil {
				return Value{}, err
			}
			return valueOf(rt.Mode(), r)
		},
	}
}
