package pawbasic

import (
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Digits of the math constants, parsed in the interpreter's number mode so
// precise runs keep more than float64 precision.
const (
	piDigits = "3.1415926535897932384626433832795028842"
	eDigits  = "2.7182818284590452353602874713526624978"
)

// MathLibrary provides the numeric functions and @PI/@E in mode.
func MathLibrary(mode NumberMode) *Library {
	lib := NewLibrary("math")

	pi, _ := mode.Parse(piDigits)
	e, _ := mode.Parse(eDigits)
	lib.Constant("@PI", NumberValue(pi))
	lib.Constant("@E", NumberValue(e))

	lib.Function("ABS", Fixed(KindNumber, KindNumber), func(rt *Runtime, f *StackFrame) (Value, error) {
		n, err := f.Number(1)
		if err != nil {
			return Value{}, err
		}
		return NumberValue(n.Abs()), nil
	})
	lib.Function("INT", Fixed(KindNumber, KindNumber), func(rt *Runtime, f *StackFrame) (Value, error) {
		n, err := f.Number(1)
		if err != nil {
			return Value{}, err
		}
		return NumberValue(n.Floor()), nil
	})
	lib.Function("FIX", Fixed(KindNumber, KindNumber), func(rt *Runtime, f *StackFrame) (Value, error) {
		n, err := f.Number(1)
		if err != nil {
			return Value{}, err
		}
		return NumberValue(n.Truncate()), nil
	})
	lib.Function("SGN", Fixed(KindNumber, KindNumber), func(rt *Runtime, f *StackFrame) (Value, error) {
		n, err := f.Number(1)
		if err != nil {
			return Value{}, err
		}
		return NumberValue(rt.Mode().Int(int64(n.Sign()))), nil
	})

	lib.AddFunction(Func1("SQR", func(x float64) (float64, error) {
		if x < 0 {
			return 0, NewError(StatusFailed, "square root of negative number %v", x)
		}
		return math.Sqrt(x), nil
	}))
	lib.AddFunction(Func1("LOG", func(x float64) (float64, error) {
		if x <= 0 {
			return 0, NewError(StatusFailed, "logarithm of non-positive number %v", x)
		}
		return math.Log(x), nil
	}))
	lib.AddFunction(Func1("SIN", pure(math.Sin)))
	lib.AddFunction(Func1("COS", pure(math.Cos)))
	lib.AddFunction(Func1("TAN", pure(math.Tan)))
	lib.AddFunction(Func1("ATN", pure(math.Atan)))
	lib.AddFunction(Func1("EXP", func(x float64) (float64, error) {
		r := math.Exp(x)
		if math.IsInf(r, 0) {
			return 0, NewError(StatusOverflow, "EXP(%v) overflows", x)
		}
		return r, nil
	}))

	// RND() is uniform in [0, 1); RND(n) is an integer in [1, n].
	lib.Function("RND", Signature{Params: []Kind{KindNumber}, MinArgs: 0, MaxArgs: 1, Returns: KindNumber}, func(rt *Runtime, f *StackFrame) (Value, error) {
		if !f.Has(1) {
			return NumberValue(rt.Mode().Float(rand.Float64())), nil
		}
		n, err := f.Int(1)
		if err != nil {
			return Value{}, err
		}
		if n < 1 {
			return Value{}, NewError(StatusIndexOutOfRange, "RND range %d must be positive", n)
		}
		return NumberValue(rt.Mode().Int(int64(rand.IntN(n) + 1))), nil
	})

	lib.Function("ROUND", Signature{Params: []Kind{KindNumber, KindNumber}, MinArgs: 1, MaxArgs: 2, Returns: KindNumber}, func(rt *Runtime, f *StackFrame) (Value, error) {
		n, err := f.Number(1)
		if err != nil {
			return Value{}, err
		}
		places := 0
		if f.Has(2) {
			if places, err = f.Int(2); err != nil {
				return Value{}, err
			}
		}
		return NumberValue(n.Round(int32(places))), nil
	})

	lib.Function("MIN", Signature{Params: []Kind{KindNumber}, MinArgs: 1, MaxArgs: Variadic, Returns: KindNumber}, extremum(-1))
	lib.Function("MAX", Signature{Params: []Kind{KindNumber}, MinArgs: 1, MaxArgs: Variadic, Returns: KindNumber}, extremum(1))

	lib.AddFunction(Func1("HEX$", func(n int64) (string, error) {
		if n < 0 {
			return "-" + strings.ToUpper(strconv.FormatUint(uint64(-n), 16)), nil
		}
		return strings.ToUpper(strconv.FormatUint(uint64(n), 16)), nil
	}))

	return lib
}

func pure(fn func(float64) float64) func(float64) (float64, error) {
	return func(x float64) (float64, error) { return fn(x), nil }
}

// extremum picks the smallest (want -1) or largest (want 1) argument.
func extremum(want int) NativeFunc {
	return func(rt *Runtime, f *StackFrame) (Value, error) {
		best, err := f.Number(1)
		if err != nil {
			return Value{}, err
		}
		for i := 2; f.Has(i); i++ {
			n, err := f.Number(i)
			if err != nil {
				return Value{}, err
			}
			if n.Cmp(best) == want {
				best = n
			}
		}
		return NumberValue(best), nil
	}
}
