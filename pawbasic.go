// Package pawbasic provides a small BASIC dialect interpreter that can be
// embedded in Go applications.
//
// This package re-exports the public API from the implementation in src/.
// For full documentation, see the implementation package.
//
// Basic usage:
//
//	interp := pawbasic.New(nil)
//	interp.RegisterCallable(pawbasic.Func2("HYPOT", func(a, b float64) (float64, error) {
//		return math.Hypot(a, b), nil
//	}))
//	err := interp.Execute("PRINT HYPOT(3, 4)")
package pawbasic

import (
	impl "github.com/phroun/pawbasic/src"
)

// =============================================================================
// CORE TYPES
// =============================================================================

// Interpreter is the main interpreter instance.
type Interpreter = impl.Interpreter

// Config holds configuration options for the interpreter.
type Config = impl.Config

// Runtime is the per-run handle passed to native functions.
type Runtime = impl.Runtime

// StackFrame carries the arguments and status of one call.
type StackFrame = impl.StackFrame

// Scope is a handle to a node of the scope tree.
type Scope = impl.Scope

// Line is one logical program line.
type Line = impl.Line

// =============================================================================
// VALUES
// =============================================================================

// Value is a runtime value.
type Value = impl.Value

// Kind names the variant a Value holds.
type Kind = impl.Kind

// Number is a fast (float64) or precise (decimal) number.
type Number = impl.Number

// NumberMode selects the number representation.
type NumberMode = impl.NumberMode

// Array is a shared, mutable sequence of values.
type Array = impl.Array

// Value kinds.
const (
	KindNone    = impl.KindNone
	KindNumber  = impl.KindNumber
	KindString  = impl.KindString
	KindBoolean = impl.KindBoolean
	KindArray   = impl.KindArray
	KindNative  = impl.KindNative
	KindAny     = impl.KindAny
)

// Number modes.
const (
	FastNumbers    = impl.FastNumbers
	PreciseNumbers = impl.PreciseNumbers
)

// Value constructors.
var (
	NumberValue = impl.NumberValue
	StringValue = impl.StringValue
	BoolValue   = impl.BoolValue
	ArrayValue  = impl.ArrayValue
	NativeValue = impl.NativeValue
	NewArray    = impl.NewArray
)

// =============================================================================
// REGISTRY
// =============================================================================

// Signature describes the parameters and result of a callable.
type Signature = impl.Signature

// Callable is a named native routine.
type Callable = impl.Callable

// NativeFunc is the Go implementation behind a Callable.
type NativeFunc = impl.NativeFunc

// Library bundles functions, commands, constants and blocks.
type Library = impl.Library

// Block is a parsed block construct.
type Block = impl.Block

// BlockConstructor parses a block opened by its first line.
type BlockConstructor = impl.BlockConstructor

// Operator is an entry of the operator table.
type Operator = impl.Operator

// BinaryFunc implements a binary operator.
type BinaryFunc = impl.BinaryFunc

// Associativity of a binary operator.
type Associativity = impl.Associativity

// Variadic marks an unbounded MaxArgs.
const Variadic = impl.Variadic

// Operator associativity.
const (
	LeftAssoc  = impl.LeftAssoc
	RightAssoc = impl.RightAssoc
)

// Registry helpers.
var (
	NewLibrary   = impl.NewLibrary
	NewCallable  = impl.NewCallable
	Fixed        = impl.Fixed
	RawSignature = impl.RawSignature
)

// Func0 adapts a Go function with no parameters.
func Func0[R impl.Arg](name string, fn func() (R, error)) *Callable {
	return impl.Func0(name, fn)
}

// Func1 adapts a Go function with one parameter.
func Func1[A, R impl.Arg](name string, fn func(A) (R, error)) *Callable {
	return impl.Func1(name, fn)
}

// Func2 adapts a Go function with two parameters.
func Func2[A, B, R impl.Arg](name string, fn func(A, B) (R, error)) *Callable {
	return impl.Func2(name, fn)
}

// Func3 adapts a Go function with three parameters.
func Func3[A, B, C, R impl.Arg](name string, fn func(A, B, C) (R, error)) *Callable {
	return impl.Func3(name, fn)
}

// =============================================================================
// ERRORS
// =============================================================================

// Status is the code a statement leaves in @error.
type Status = impl.Status

// Error is an interpreter-domain failure.
type Error = impl.Error

// LineError is returned when ThrowOnError is set.
type LineError = impl.LineError

// Sentinel errors.
var (
	ErrContextCleared  = impl.ErrContextCleared
	ErrIncompleteBlock = impl.ErrIncompleteBlock
	ErrBadSignature    = impl.ErrBadSignature
)

// AsError reports whether err is (or wraps) a domain error.
func AsError(err error) (*Error, bool) { return impl.AsError(err) }

// =============================================================================
// LOGGING
// =============================================================================

// Logger handles logging for the interpreter.
type Logger = impl.Logger

// LogCategory names the subsystem of a log message.
type LogCategory = impl.LogCategory

// SourcePosition locates a message in program text.
type SourcePosition = impl.SourcePosition

// SupportsColor reports whether a file is a color-capable terminal.
var SupportsColor = impl.SupportsColor

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// Version of the interpreter.
const Version = impl.Version

// New creates a new interpreter.
func New(config *Config) *Interpreter { return impl.New(config) }

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config { return impl.DefaultConfig() }

// LoadConfigFile reads a YAML or TOML configuration file.
func LoadConfigFile(path string) (*Config, error) { return impl.LoadConfigFile(path) }

// ParseProgram splits source into logical lines.
func ParseProgram(source string) ([]Line, error) { return impl.ParseProgram(source) }

// REPL is an interactive session.
type REPL = impl.REPL

// REPLConfig configures a REPL.
type REPLConfig = impl.REPLConfig

// NewREPL creates a REPL around interp.
var NewREPL = impl.NewREPL

// DefaultREPLConfig returns the default REPL settings.
var DefaultREPLConfig = impl.DefaultREPLConfig

// SortArray sorts an array in place the way SORT does.
var SortArray = impl.SortArray
