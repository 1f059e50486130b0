package pawbasic

import (
	"os"
	"time"
)

// SystemLibrary exposes the host environment: the script arguments given to
// the interpreter, environment variables and the clock.
func SystemLibrary(args []string) *Library {
	lib := NewLibrary("system")
	scriptArgs := append([]string(nil), args...)

	lib.AddFunction(Func0("ARGC", func() (int, error) {
		return len(scriptArgs), nil
	}))

	// ARGV() returns a fresh array of every argument; ARGV(i) returns one.
	lib.Function("ARGV", Signature{Params: []Kind{KindNumber}, MinArgs: 0, MaxArgs: 1, Returns: KindAny}, func(rt *Runtime, f *StackFrame) (Value, error) {
		if !f.Has(1) {
			items := make([]Value, len(scriptArgs))
			for i, a := range scriptArgs {
				items[i] = StringValue(a)
			}
			return ArrayValue(NewArray(items...)), nil
		}
		i, err := f.Int(1)
		if err != nil {
			return Value{}, err
		}
		if i < 0 || i >= len(scriptArgs) {
			return Value{}, NewError(StatusIndexOutOfRange, "argument %d out of range (%d given)", i, len(scriptArgs))
		}
		return StringValue(scriptArgs[i]), nil
	})

	lib.AddFunction(Func1("ENVIRON$", func(name string) (string, error) {
		return os.Getenv(name), nil
	}))

	// TIMER returns the seconds elapsed since local midnight.
	lib.AddFunction(Func0("TIMER", func() (float64, error) {
		now := time.Now()
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return now.Sub(midnight).Seconds(), nil
	}))

	return lib
}
