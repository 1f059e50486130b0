package pawbasic

import (
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
)

// Variadic marks a signature without an upper argument bound.
const Variadic = -1

// NativeFunc is the shape of every host routine.
type NativeFunc func(rt *Runtime, frame *StackFrame) (Value, error)

// Signature describes what a callable accepts and returns. Params gives the
// kind of each positional argument; arguments past the end of Params take
// the kind of the last entry (KindAny when Params is empty).
type Signature struct {
	Params  []Kind
	MinArgs int
	MaxArgs int
	Raw     bool // arguments arrive unevaluated in frame.Raw
	Returns Kind
}

// Fixed is a signature taking exactly the given parameter kinds.
func Fixed(returns Kind, params ...Kind) Signature {
	return Signature{Params: params, MinArgs: len(params), MaxArgs: len(params), Returns: returns}
}

// RawSignature is a signature for callables that parse their own argument text.
func RawSignature(min, max int, returns Kind) Signature {
	return Signature{MinArgs: min, MaxArgs: max, Raw: true, Returns: returns}
}

// Validate checks the descriptor for internal consistency.
func (s Signature) Validate() error {
	switch {
	case s.MinArgs < 0:
		return fmt.Errorf("%w: negative minimum", ErrBadSignature)
	case s.MaxArgs != Variadic && s.MaxArgs < s.MinArgs:
		return fmt.Errorf("%w: maximum %d below minimum %d", ErrBadSignature, s.MaxArgs, s.MinArgs)
	case s.Raw && len(s.Params) > 0:
		return fmt.Errorf("%w: raw signatures take no parameter kinds", ErrBadSignature)
	case s.MaxArgs != Variadic && len(s.Params) > s.MaxArgs:
		return fmt.Errorf("%w: %d parameter kinds for at most %d arguments", ErrBadSignature, len(s.Params), s.MaxArgs)
	case s.Returns < KindNone || s.Returns > KindAny:
		return fmt.Errorf("%w: unknown return kind %d", ErrBadSignature, int(s.Returns))
	}
	for i, k := range s.Params {
		if k <= KindNone || k > KindAny {
			return fmt.Errorf("%w: parameter %d has kind %s", ErrBadSignature, i+1, k)
		}
	}
	return nil
}

// Accepts reports whether n arguments satisfy the bounds
func (s Signature) Accepts(n int) bool {
	return n >= s.MinArgs && (s.MaxArgs == Variadic || n <= s.MaxArgs)
}

// ParamKind returns the expected kind of argument i (1-based)
func (s Signature) ParamKind(i int) Kind {
	switch {
	case len(s.Params) == 0:
		return KindAny
	case i-1 < len(s.Params):
		return s.Params[i-1]
	}
	return s.Params[len(s.Params)-1]
}

// Callable is a named routine in a function or command table.
type Callable struct {
	Name string
	Sig  Signature
	Fn   NativeFunc
}

// NewCallable validates the name and signature
func NewCallable(name string, sig Signature, fn NativeFunc) (*Callable, error) {
	if end := identifierAt(name, 0); name == "" || end != len(name) {
		return nil, fmt.Errorf("%w: invalid name %q", ErrBadSignature, name)
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: %s has no implementation", ErrBadSignature, name)
	}
	if err := sig.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &Callable{Name: foldName(name), Sig: sig, Fn: fn}, nil
}

// Library is a named bundle of functions, commands, constants and block
// openers that installs into a scope. Registration errors are collected and
// reported by Err and Install.
type Library struct {
	Name      string
	functions *treemap.Map
	commands  *treemap.Map
	constants *treemap.Map
	blocks    *treemap.Map
	err       error
}

// NewLibrary creates an empty library
func NewLibrary(name string) *Library {
	return &Library{
		Name:      name,
		functions: treemap.NewWithStringComparator(),
		commands:  treemap.NewWithStringComparator(),
		constants: treemap.NewWithStringComparator(),
		blocks:    treemap.NewWithStringComparator(),
	}
}

func (l *Library) fail(err error) {
	if l.err == nil {
		l.err = fmt.Errorf("library %s: %w", l.Name, err)
	}
}

// Err returns the first registration error
func (l *Library) Err() error { return l.err }

// Function registers an expression-position routine
func (l *Library) Function(name string, sig Signature, fn NativeFunc) {
	c, err := NewCallable(name, sig, fn)
	if err != nil {
		l.fail(err)
		return
	}
	l.functions.Put(c.Name, c)
}

// AddFunction registers a prepared callable, typically built with a thunk
func (l *Library) AddFunction(c *Callable) {
	if _, err := NewCallable(c.Name, c.Sig, c.Fn); err != nil {
		l.fail(err)
		return
	}
	l.functions.Put(foldName(c.Name), c)
}

// Command registers a statement routine
func (l *Library) Command(name string, sig Signature, fn NativeFunc) {
	c, err := NewCallable(name, sig, fn)
	if err != nil {
		l.fail(err)
		return
	}
	l.commands.Put(c.Name, c)
}

// Constant registers a named constant
func (l *Library) Constant(name string, v Value) {
	if end := identifierAt(name, 0); name == "" || end != len(name) {
		l.fail(fmt.Errorf("invalid constant name %q", name))
		return
	}
	l.constants.Put(foldName(name), v)
}

// Block registers a block opener keyword
func (l *Library) Block(name string, ctor BlockConstructor) {
	if end := identifierAt(name, 0); name == "" || end != len(name) || ctor == nil {
		l.fail(fmt.Errorf("invalid block opener %q", name))
		return
	}
	l.blocks.Put(foldName(name), ctor)
}

func stringKeys(m *treemap.Map) []string {
	keys := make([]string, 0, m.Size())
	for _, k := range m.Keys() {
		keys = append(keys, k.(string))
	}
	return keys
}

// FunctionNames lists the functions in name order
func (l *Library) FunctionNames() []string { return stringKeys(l.functions) }

// CommandNames lists the commands in name order
func (l *Library) CommandNames() []string { return stringKeys(l.commands) }

// ConstantNames lists the constants in name order
func (l *Library) ConstantNames() []string { return stringKeys(l.constants) }

// BlockNames lists the block openers in name order
func (l *Library) BlockNames() []string { return stringKeys(l.blocks) }

// Install adds every entry to scope. Constants that already exist in the
// chain make Install fail.
func (l *Library) Install(scope Scope) error {
	if l.err != nil {
		return l.err
	}
	it := l.functions.Iterator()
	for it.Next() {
		if err := scope.SetFunction(it.Value().(*Callable)); err != nil {
			return err
		}
	}
	it = l.commands.Iterator()
	for it.Next() {
		if err := scope.SetCommand(it.Value().(*Callable)); err != nil {
			return err
		}
	}
	it = l.blocks.Iterator()
	for it.Next() {
		if err := scope.SetBlock(it.Key().(string), it.Value().(BlockConstructor)); err != nil {
			return err
		}
	}
	it = l.constants.Iterator()
	for it.Next() {
		if err := scope.SetConstant(it.Key().(string), it.Value().(Value)); err != nil {
			return fmt.Errorf("library %s: %w", l.Name, err)
		}
	}
	return nil
}
