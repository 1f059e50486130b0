package pawbasic

import (
	"strings"
	"sync"
)

// Associativity of a binary operator
type Associativity int

const (
	LeftAssoc Associativity = iota
	RightAssoc
)

// Precedence tiers of the standard operators; higher binds tighter.
const (
	PrecOr             = 10
	PrecXor            = 11
	PrecAnd            = 12
	PrecEquality       = 20
	PrecRelational     = 30
	PrecAdditive       = 40
	PrecMultiplicative = 50
	PrecUnary          = 70
	PrecPower          = 80
)

// BinaryFunc evaluates a binary operator
type BinaryFunc func(c Conversion, a, b Value) (Value, error)

// UnaryFunc evaluates a prefix operator
type UnaryFunc func(c Conversion, a Value) (Value, error)

// Operator is an immutable operator record.
type Operator struct {
	Symbol     string
	Precedence int
	Assoc      Associativity
	Binary     BinaryFunc // set for binary operators
	Unary      UnaryFunc  // set for prefix operators
	word       bool       // alphabetic symbol, matched on word boundaries
}

// IsUnary reports whether op is a prefix operator
func (op *Operator) IsUnary() bool { return op.Unary != nil }

// Apply evaluates a binary operator
func (op *Operator) Apply(c Conversion, a, b Value) (Value, error) {
	v, err := op.Binary(c, a, b)
	if err != nil {
		return Value{}, withName(err, op.Symbol)
	}
	return v, nil
}

// ApplyUnary evaluates a prefix operator
func (op *Operator) ApplyUnary(c Conversion, a Value) (Value, error) {
	v, err := op.Unary(c, a)
	if err != nil {
		return Value{}, withName(err, op.Symbol)
	}
	return v, nil
}

// OperatorTable holds the binary and unary operators of one interpreter, in
// registration order.
type OperatorTable struct {
	mu     sync.RWMutex
	binary []*Operator
	unary  []*Operator
}

// NewOperatorTable creates an empty table
func NewOperatorTable() *OperatorTable {
	return &OperatorTable{}
}

func isWordSymbol(symbol string) bool {
	for i := 0; i < len(symbol); i++ {
		if !isIdentChar(symbol[i]) {
			return false
		}
	}
	return symbol != ""
}

// RegisterBinary adds (or replaces) a binary operator
func (t *OperatorTable) RegisterBinary(symbol string, precedence int, assoc Associativity, fn BinaryFunc) *Operator {
	op := &Operator{Symbol: foldName(symbol), Precedence: precedence, Assoc: assoc, Binary: fn, word: isWordSymbol(symbol)}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.binary = replaceOrAppend(t.binary, op)
	return op
}

// RegisterUnary adds (or replaces) a prefix operator
func (t *OperatorTable) RegisterUnary(symbol string, fn UnaryFunc) *Operator {
	op := &Operator{Symbol: foldName(symbol), Precedence: PrecUnary, Assoc: RightAssoc, Unary: fn, word: isWordSymbol(symbol)}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.unary = replaceOrAppend(t.unary, op)
	return op
}

func replaceOrAppend(ops []*Operator, op *Operator) []*Operator {
	for i, existing := range ops {
		if existing.Symbol == op.Symbol {
			ops[i] = op
			return ops
		}
	}
	return append(ops, op)
}

// Binary returns the registered binary operators
func (t *OperatorTable) Binary() []*Operator {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]*Operator(nil), t.binary...)
}

// Unary returns the registered prefix operators
func (t *OperatorTable) Unary() []*Operator {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]*Operator(nil), t.unary...)
}

// MatchBinary returns the longest binary operator whose symbol starts at pos.
func (t *OperatorTable) MatchBinary(src string, pos int) *Operator {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return longestMatch(t.binary, src, pos)
}

// MatchUnary returns the longest prefix operator whose symbol starts at pos.
func (t *OperatorTable) MatchUnary(src string, pos int) *Operator {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return longestMatch(t.unary, src, pos)
}

// longestMatch implements maximal munch. Word operators (AND, MOD, ...) match
// case-insensitively and only when not followed by an identifier character.
func longestMatch(ops []*Operator, src string, pos int) *Operator {
	var best *Operator
	for _, op := range ops {
		end := pos + len(op.Symbol)
		if end > len(src) {
			continue
		}
		if op.word {
			if !strings.EqualFold(src[pos:end], op.Symbol) {
				continue
			}
			if end < len(src) && isIdentChar(src[end]) {
				continue
			}
			if pos > 0 && isIdentChar(src[pos-1]) {
				continue
			}
		} else if src[pos:end] != op.Symbol {
			continue
		}
		if best == nil || len(op.Symbol) > len(best.Symbol) {
			best = op
		}
	}
	return best
}

// StandardOperators returns a table populated with the arithmetic,
// comparison, string and logical operators.
func StandardOperators() *OperatorTable {
	t := NewOperatorTable()

	t.RegisterBinary("^", PrecPower, RightAssoc, arith(Number.Pow))
	t.RegisterBinary("*", PrecMultiplicative, LeftAssoc, arith(func(a, b Number) (Number, error) { return a.Mul(b), nil }))
	t.RegisterBinary("/", PrecMultiplicative, LeftAssoc, arith(Number.Div))
	t.RegisterBinary("\\", PrecMultiplicative, LeftAssoc, arith(Number.IntDiv))
	t.RegisterBinary("MOD", PrecMultiplicative, LeftAssoc, arith(Number.Mod))
	t.RegisterBinary("%", PrecMultiplicative, LeftAssoc, arith(Number.Mod))
	t.RegisterBinary("+", PrecAdditive, LeftAssoc, addValues)
	t.RegisterBinary("-", PrecAdditive, LeftAssoc, arith(func(a, b Number) (Number, error) { return a.Sub(b), nil }))
	t.RegisterBinary("&", PrecAdditive, LeftAssoc, concatValues)

	t.RegisterBinary("<", PrecRelational, LeftAssoc, compareWith(func(c int) bool { return c < 0 }))
	t.RegisterBinary("<=", PrecRelational, LeftAssoc, compareWith(func(c int) bool { return c <= 0 }))
	t.RegisterBinary(">", PrecRelational, LeftAssoc, compareWith(func(c int) bool { return c > 0 }))
	t.RegisterBinary(">=", PrecRelational, LeftAssoc, compareWith(func(c int) bool { return c >= 0 }))

	t.RegisterBinary("=", PrecEquality, LeftAssoc, equalValues(false))
	t.RegisterBinary("==", PrecEquality, LeftAssoc, equalValues(false))
	t.RegisterBinary("<>", PrecEquality, LeftAssoc, equalValues(true))
	t.RegisterBinary("!=", PrecEquality, LeftAssoc, equalValues(true))

	t.RegisterBinary("AND", PrecAnd, LeftAssoc, logical(func(a, b bool) bool { return a && b }))
	t.RegisterBinary("&&", PrecAnd, LeftAssoc, logical(func(a, b bool) bool { return a && b }))
	t.RegisterBinary("XOR", PrecXor, LeftAssoc, logical(func(a, b bool) bool { return a != b }))
	t.RegisterBinary("OR", PrecOr, LeftAssoc, logical(func(a, b bool) bool { return a || b }))
	t.RegisterBinary("||", PrecOr, LeftAssoc, logical(func(a, b bool) bool { return a || b }))

	t.RegisterUnary("-", func(c Conversion, a Value) (Value, error) {
		n, err := c.ToNumber(a)
		if err != nil {
			return Value{}, err
		}
		return NumberValue(n.Neg()), nil
	})
	t.RegisterUnary("+", func(c Conversion, a Value) (Value, error) {
		n, err := c.ToNumber(a)
		if err != nil {
			return Value{}, err
		}
		return NumberValue(n), nil
	})
	not := func(c Conversion, a Value) (Value, error) {
		b, err := c.ToBool(a)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(!b), nil
	}
	t.RegisterUnary("NOT", not)
	t.RegisterUnary("!", not)

	return t
}

func arith(fn func(a, b Number) (Number, error)) BinaryFunc {
	return func(c Conversion, a, b Value) (Value, error) {
		x, err := c.ToNumber(a)
		if err != nil {
			return Value{}, err
		}
		y, err := c.ToNumber(b)
		if err != nil {
			return Value{}, err
		}
		n, err := fn(x, y)
		if err != nil {
			return Value{}, err
		}
		return NumberValue(n), nil
	}
}

// addValues concatenates two strings and otherwise adds numerically.
func addValues(c Conversion, a, b Value) (Value, error) {
	if a.kind == KindString && b.kind == KindString {
		return StringValue(a.str + b.str), nil
	}
	if a.kind == KindArray && b.kind == KindArray {
		items := make([]Value, 0, a.arr.Len()+b.arr.Len())
		items = append(items, a.arr.items...)
		items = append(items, b.arr.items...)
		return ArrayValue(NewArray(items...)), nil
	}
	return arith(func(x, y Number) (Number, error) { return x.Add(y), nil })(c, a, b)
}

func concatValues(c Conversion, a, b Value) (Value, error) {
	return StringValue(a.String() + b.String()), nil
}

func compareWith(test func(int) bool) BinaryFunc {
	return func(c Conversion, a, b Value) (Value, error) {
		cmp, err := c.Compare(a, b)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(test(cmp)), nil
	}
}

func equalValues(negate bool) BinaryFunc {
	return func(c Conversion, a, b Value) (Value, error) {
		eq, err := c.Equal(a, b)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(eq != negate), nil
	}
}

func logical(fn func(a, b bool) bool) BinaryFunc {
	return func(c Conversion, a, b Value) (Value, error) {
		x, err := c.ToBool(a)
		if err != nil {
			return Value{}, err
		}
		y, err := c.ToBool(b)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(fn(x, y)), nil
	}
}
