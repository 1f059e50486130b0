package pawbasic

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(rt *Runtime, f *StackFrame) (Value, error) { return Value{}, nil }

func TestSignatureValidate(t *testing.T) {
	good := []Signature{
		Fixed(KindNumber, KindNumber, KindString),
		RawSignature(0, Variadic, KindNone),
		{Params: []Kind{KindString}, MinArgs: 1, MaxArgs: Variadic, Returns: KindString},
	}
	for _, sig := range good {
		assert.NoError(t, sig.Validate())
	}

	bad := []Signature{
		{MinArgs: -1},
		{MinArgs: 2, MaxArgs: 1},
		{Params: []Kind{KindNumber}, MinArgs: 1, MaxArgs: 1, Raw: true},
		{Params: []Kind{KindNumber, KindNumber}, MinArgs: 1, MaxArgs: 1},
		{Params: []Kind{KindNone}, MinArgs: 1, MaxArgs: 1},
		{Returns: Kind(99)},
	}
	for i, sig := range bad {
		err := sig.Validate()
		assert.True(t, errors.Is(err, ErrBadSignature), "case %d: %v", i, err)
	}
}

func TestSignatureParamKind(t *testing.T) {
	sig := Signature{Params: []Kind{KindString, KindNumber}, MinArgs: 1, MaxArgs: Variadic}
	assert.Equal(t, KindString, sig.ParamKind(1))
	assert.Equal(t, KindNumber, sig.ParamKind(2))
	assert.Equal(t, KindNumber, sig.ParamKind(5), "the last kind repeats")
	assert.Equal(t, KindAny, RawSignature(0, 1, KindNone).ParamKind(1))

	assert.True(t, sig.Accepts(9))
	assert.False(t, sig.Accepts(0))
}

func TestNewCallableRejectsBadNames(t *testing.T) {
	for _, name := range []string{"", "1ABC", "A B", "A-B"} {
		_, err := NewCallable(name, Fixed(KindNone), noop)
		assert.True(t, errors.Is(err, ErrBadSignature), name)
	}
	_, err := NewCallable("OK", Fixed(KindNone), nil)
	assert.True(t, errors.Is(err, ErrBadSignature))

	c, err := NewCallable("mid$", Fixed(KindString, KindString), noop)
	require.NoError(t, err)
	assert.Equal(t, "MID$", c.Name)
}

func TestLibraryNamesAreSorted(t *testing.T) {
	lib := NewLibrary("test")
	lib.Function("zeta", Fixed(KindNumber), noop)
	lib.Function("alpha", Fixed(KindNumber), noop)
	lib.Function("Mid", Fixed(KindNumber), noop)
	lib.Command("beep", Fixed(KindNone), noop)
	lib.Constant("@ANSWER", num(42))
	require.NoError(t, lib.Err())

	assert.Equal(t, []string{"ALPHA", "MID", "ZETA"}, lib.FunctionNames())
	assert.Equal(t, []string{"BEEP"}, lib.CommandNames())
	assert.Equal(t, []string{"@ANSWER"}, lib.ConstantNames())

	root := NewRootScope(nil)
	require.NoError(t, lib.Install(root))
	v, ok, err := root.GetConstant("@answer")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "42", v.String())

	// Installing twice collides on the constant.
	assert.Error(t, lib.Install(root))
}

func TestLibraryKeepsFirstError(t *testing.T) {
	lib := NewLibrary("broken")
	lib.Function("bad name", Fixed(KindNone), noop)
	lib.Function("other", Signature{MinArgs: 3, MaxArgs: 1}, noop)
	require.Error(t, lib.Err())
	assert.True(t, strings.Contains(lib.Err().Error(), "bad name"))
	assert.Error(t, lib.Install(NewRootScope(nil)))
}

func TestThunkSignatures(t *testing.T) {
	c := Func2("HYPOT", func(a, b float64) (float64, error) { return a + b, nil })
	assert.Equal(t, []Kind{KindNumber, KindNumber}, c.Sig.Params)
	assert.Equal(t, KindNumber, c.Sig.Returns)
	assert.Equal(t, 2, c.Sig.MinArgs)
	assert.Equal(t, 2, c.Sig.MaxArgs)

	s := Func1("SHOUT", func(s string) (string, error) { return strings.ToUpper(s), nil })
	assert.Equal(t, []Kind{KindString}, s.Sig.Params)

	a := Func1("FIRST", func(a *Array) (Value, error) { return a.Get(0) })
	assert.Equal(t, []Kind{KindArray}, a.Sig.Params)
	assert.Equal(t, KindAny, a.Sig.Returns)

	z := Func0("ZERO", func() (bool, error) { return false, nil })
	assert.Empty(t, z.Sig.Params)
	assert.Equal(t, KindBoolean, z.Sig.Returns)
}

func TestThunkCallsThroughInterpreter(t *testing.T) {
	interp := New(testConfig(nil))
	require.NoError(t, interp.RegisterCallable(Func3("CLAMP", func(x, lo, hi int) (int, error) {
		return max(lo, min(x, hi)), nil
	})))
	require.NoError(t, interp.RegisterCallable(Func1("SHOUT", func(s string) (string, error) {
		return strings.ToUpper(s) + "!", nil
	})))

	v, err := interp.Evaluate("CLAMP(15, 0, 10)")
	require.NoError(t, err)
	assert.Equal(t, "10", v.String())

	// Numbers are converted to the declared string parameter.
	v, err = interp.Evaluate(`shout(12)`)
	require.NoError(t, err)
	assert.Equal(t, "12!", v.String())

	_, err = interp.Evaluate("CLAMP(1, 2)")
	de, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, StatusArgumentCount, de.Status)

	_, err = interp.Evaluate(`CLAMP("x", 0, 1)`)
	de, ok = AsError(err)
	require.True(t, ok)
	assert.Equal(t, StatusTypeMismatch, de.Status)
}
