package pawbasic

import "fmt"

// StackFrame is the call record handed to every command and function.
// Args[0] is the invoked name; evaluated arguments follow.
type StackFrame struct {
	Args        []Value
	Raw         []string // unevaluated argument segments (Raw signatures)
	Text        string   // raw argument text as written
	Status      Status
	Message     string
	ReturnValue Value
	Line        int
	PriorStatus Status
	Scope       Scope

	raw  bool
	conv Conversion
}

func newFrame(name string, scope Scope, conv Conversion) *StackFrame {
	return &StackFrame{Args: []Value{StringValue(name)}, Scope: scope, conv: conv}
}

// Name returns the invoked name
func (f *StackFrame) Name() string {
	if len(f.Args) == 0 {
		return ""
	}
	return f.Args[0].str
}

// Count returns the number of arguments, not counting the name.
func (f *StackFrame) Count() int {
	if f.raw {
		return len(f.Raw)
	}
	return len(f.Args) - 1
}

func (f *StackFrame) countError(want string) error {
	return &Error{
		Status:  StatusArgumentCount,
		Message: fmt.Sprintf("expected %s argument(s), got %d", want, f.Count()),
		Name:    f.Name(),
		Pos:     -1,
	}
}

// AssertCount fails unless exactly n arguments were passed
func (f *StackFrame) AssertCount(n int) error {
	if f.Count() != n {
		return f.countError(fmt.Sprint(n))
	}
	return nil
}

// AssertRange fails unless between min and max arguments were passed
func (f *StackFrame) AssertRange(min, max int) error {
	if c := f.Count(); c < min || c > max {
		return f.countError(fmt.Sprintf("%d to %d", min, max))
	}
	return nil
}

// AssertAtLeast fails unless n or more arguments were passed
func (f *StackFrame) AssertAtLeast(n int) error {
	if f.Count() < n {
		return f.countError(fmt.Sprintf("at least %d", n))
	}
	return nil
}

// Has reports whether argument i (1-based) was passed
func (f *StackFrame) Has(i int) bool { return i >= 1 && i < len(f.Args) }

// Value returns argument i (1-based) unconverted.
func (f *StackFrame) Value(i int) (Value, error) {
	if !f.Has(i) {
		return Value{}, &Error{Status: StatusArgumentCount, Message: fmt.Sprintf("missing argument %d", i), Name: f.Name(), Pos: -1}
	}
	return f.Args[i], nil
}

func (f *StackFrame) argError(i int, err error) error {
	return withName(err, fmt.Sprintf("%s argument %d", f.Name(), i))
}

// Number returns argument i converted to a number
func (f *StackFrame) Number(i int) (Number, error) {
	v, err := f.Value(i)
	if err != nil {
		return Number{}, err
	}
	n, err := f.conv.ToNumber(v)
	if err != nil {
		return Number{}, f.argError(i, err)
	}
	return n, nil
}

// Float returns argument i as a float64
func (f *StackFrame) Float(i int) (float64, error) {
	n, err := f.Number(i)
	if err != nil {
		return 0, err
	}
	return n.Float64(), nil
}

// Int returns argument i as an int; fractional values are rejected.
func (f *StackFrame) Int(i int) (int, error) {
	v, err := f.Value(i)
	if err != nil {
		return 0, err
	}
	n, err := f.conv.ToInt(v)
	if err != nil {
		return 0, f.argError(i, err)
	}
	return n, nil
}

// String returns argument i converted to a string
func (f *StackFrame) String(i int) (string, error) {
	v, err := f.Value(i)
	if err != nil {
		return "", err
	}
	s, err := f.conv.ToString(v)
	if err != nil {
		return "", f.argError(i, err)
	}
	return s, nil
}

// Bool returns argument i converted to a boolean
func (f *StackFrame) Bool(i int) (bool, error) {
	v, err := f.Value(i)
	if err != nil {
		return false, err
	}
	b, err := f.conv.ToBool(v)
	if err != nil {
		return false, f.argError(i, err)
	}
	return b, nil
}

// Array returns argument i, which must be an array
func (f *StackFrame) Array(i int) (*Array, error) {
	v, err := f.Value(i)
	if err != nil {
		return nil, err
	}
	a, ok := v.AsArray()
	if !ok {
		return nil, f.argError(i, mismatch(v, KindArray))
	}
	return a, nil
}

// Fail records a user-signalled status without raising an error.
func (f *StackFrame) Fail(status Status, format string, args ...interface{}) {
	f.Status = status
	f.Message = fmt.Sprintf(format, args...)
}

// Return sets the frame's result
func (f *StackFrame) Return(v Value) { f.ReturnValue = v }
