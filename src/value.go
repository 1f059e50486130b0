package pawbasic

import (
	"fmt"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNone Kind = iota // no value; used by signatures for "returns nothing"
	KindNumber
	KindString
	KindBoolean
	KindArray
	KindNative
	KindAny // signatures only: accept any kind
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBoolean:
		return "boolean"
	case KindArray:
		return "array"
	case KindNative:
		return "native"
	case KindAny:
		return "any"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Array is an ordered, shared sequence of values. Variables holding the
// same *Array observe each other's element writes.
type Array struct {
	items []Value
}

// NewArray creates an array holding items (not copied)
func NewArray(items ...Value) *Array {
	return &Array{items: items}
}

// Len returns the element count
func (a *Array) Len() int { return len(a.items) }

// Items returns the backing slice
func (a *Array) Items() []Value { return a.items }

// Get returns the element at i
func (a *Array) Get(i int) (Value, error) {
	if i < 0 || i >= len(a.items) {
		return Value{}, NewError(StatusIndexOutOfRange, "index %d out of range (length %d)", i, len(a.items))
	}
	return a.items[i], nil
}

// Set replaces the element at i
func (a *Array) Set(i int, v Value) error {
	if i < 0 || i >= len(a.items) {
		return NewError(StatusIndexOutOfRange, "index %d out of range (length %d)", i, len(a.items))
	}
	a.items[i] = v
	return nil
}

// Append adds values at the end
func (a *Array) Append(vs ...Value) { a.items = append(a.items, vs...) }

// Pop removes and returns the last element
func (a *Array) Pop() (Value, bool) {
	if len(a.items) == 0 {
		return Value{}, false
	}
	v := a.items[len(a.items)-1]
	a.items[len(a.items)-1] = Value{}
	a.items = a.items[:len(a.items)-1]
	return v, true
}

// Value is a runtime value: a closed sum over number, string, boolean,
// array and native host values. The zero Value has KindNone.
type Value struct {
	kind   Kind
	num    Number
	str    string
	b      bool
	arr    *Array
	native interface{}
}

// NumberValue wraps a Number
func NumberValue(n Number) Value { return Value{kind: KindNumber, num: n} }

// StringValue wraps a string
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// BoolValue wraps a boolean
func BoolValue(b bool) Value { return Value{kind: KindBoolean, b: b} }

// ArrayValue wraps a shared array
func ArrayValue(a *Array) Value {
	if a == nil {
		a = NewArray()
	}
	return Value{kind: KindArray, arr: a}
}

// NativeValue wraps an opaque host value
func NativeValue(v interface{}) Value { return Value{kind: KindNative, native: v} }

// Kind returns the variant tag
func (v Value) Kind() Kind { return v.kind }

// IsNone reports whether v holds no value
func (v Value) IsNone() bool { return v.kind == KindNone }

// AsNumber returns the number when v is a number
func (v Value) AsNumber() (Number, bool) { return v.num, v.kind == KindNumber }

// AsString returns the string when v is a string
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsBool returns the boolean when v is a boolean
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBoolean }

// AsArray returns the array when v is an array
func (v Value) AsArray() (*Array, bool) { return v.arr, v.kind == KindArray }

// AsNative returns the host value when v is native
func (v Value) AsNative() (interface{}, bool) { return v.native, v.kind == KindNative }

// String renders v the way PRINT shows it
func (v Value) String() string {
	switch v.kind {
	case KindNone:
		return ""
	case KindNumber:
		return v.num.String()
	case KindString:
		return v.str
	case KindBoolean:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	case KindArray:
		var b strings.Builder
		writeArray(&b, v.arr, map[*Array]bool{})
		return b.String()
	case KindNative:
		if s, ok := v.native.(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprintf("<native %T>", v.native)
	case KindAny:
	}
	return ""
}

// writeArray renders a with its elements. An array that contains itself
// shows the repeated visit as [...].
func writeArray(b *strings.Builder, a *Array, open map[*Array]bool) {
	if open[a] {
		b.WriteString("[...]")
		return
	}
	open[a] = true
	defer delete(open, a)

	b.WriteByte('[')
	for i, item := range a.items {
		if i > 0 {
			b.WriteString(", ")
		}
		switch item.kind {
		case KindString:
			b.WriteString(quoteString(item.str))
		case KindArray:
			writeArray(b, item.arr, open)
		default:
			b.WriteString(item.String())
		}
	}
	b.WriteByte(']')
}

// Truthy implements conditional truth: nonzero numbers, non-empty strings
// other than "FALSE"/"0", TRUE, non-empty arrays and non-nil natives.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNone:
		return false
	case KindNumber:
		return !v.num.IsZero()
	case KindString:
		s := strings.TrimSpace(v.str)
		return s != "" && s != "0" && !strings.EqualFold(s, "false")
	case KindBoolean:
		return v.b
	case KindArray:
		return v.arr.Len() > 0
	case KindNative:
		return v.native != nil
	case KindAny:
	}
	return false
}

// Conversion carries the interpreter-wide numeric mode and strictness
// applied when values cross kinds.
type Conversion struct {
	Mode   NumberMode
	Strict bool
}

func mismatch(v Value, want Kind) *Error {
	return NewError(StatusTypeMismatch, "expected %s, got %s", want, v.kind)
}

// ToNumber converts v to a number. Strings are parsed and booleans map to
// 1/0 only when not strict.
func (c Conversion) ToNumber(v Value) (Number, error) {
	switch v.kind {
	case KindNumber:
		return v.num, nil
	case KindString:
		if c.Strict {
			return Number{}, mismatch(v, KindNumber)
		}
		if n, ok := parseNumeric(c.Mode, v.str); ok {
			return n, nil
		}
		return Number{}, NewError(StatusTypeMismatch, "%q is not a number", v.str)
	case KindBoolean:
		if c.Strict {
			return Number{}, mismatch(v, KindNumber)
		}
		if v.b {
			return c.Mode.Int(1), nil
		}
		return c.Mode.Int(0), nil
	case KindNone, KindArray, KindNative, KindAny:
	}
	return Number{}, mismatch(v, KindNumber)
}

// ToString converts v to a string; non-strict mode formats numbers and booleans.
func (c Conversion) ToString(v Value) (string, error) {
	switch v.kind {
	case KindString:
		return v.str, nil
	case KindNumber, KindBoolean:
		if c.Strict {
			return "", mismatch(v, KindString)
		}
		return v.String(), nil
	case KindNone, KindArray, KindNative, KindAny:
	}
	return "", mismatch(v, KindString)
}

// ToBool converts v to a boolean; non-strict mode uses Truthy.
func (c Conversion) ToBool(v Value) (bool, error) {
	switch v.kind {
	case KindBoolean:
		return v.b, nil
	case KindNumber, KindString, KindArray, KindNative, KindNone:
		if c.Strict {
			return false, mismatch(v, KindBoolean)
		}
		return v.Truthy(), nil
	case KindAny:
	}
	return false, mismatch(v, KindBoolean)
}

// ToInt converts v to an int, requiring an integral value.
func (c Conversion) ToInt(v Value) (int, error) {
	n, err := c.ToNumber(v)
	if err != nil {
		return 0, err
	}
	i, ok := n.Int64()
	if !ok {
		return 0, NewError(StatusOverflow, "%s does not fit an integer", n)
	}
	if !n.IsInteger() {
		return 0, NewError(StatusTypeMismatch, "%s is not an integer", n)
	}
	return int(i), nil
}

// Coerce converts v to kind want (KindAny returns v unchanged).
func (c Conversion) Coerce(v Value, want Kind) (Value, error) {
	switch want {
	case KindAny:
		return v, nil
	case KindNumber:
		n, err := c.ToNumber(v)
		if err != nil {
			return Value{}, err
		}
		return NumberValue(n), nil
	case KindString:
		s, err := c.ToString(v)
		if err != nil {
			return Value{}, err
		}
		return StringValue(s), nil
	case KindBoolean:
		b, err := c.ToBool(v)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(b), nil
	case KindArray, KindNative:
		if v.kind != want {
			return Value{}, mismatch(v, want)
		}
		return v, nil
	case KindNone:
	}
	return Value{}, mismatch(v, want)
}

// parseNumeric accepts decimal and 0x hexadecimal text with an optional sign.
func parseNumeric(mode NumberMode, s string) (Number, bool) {
	s = strings.TrimSpace(s)
	neg := false
	body := s
	if strings.HasPrefix(body, "-") || strings.HasPrefix(body, "+") {
		neg = body[0] == '-'
		body = body[1:]
	}
	if len(body) > 2 && body[0] == '0' && (body[1] == 'x' || body[1] == 'X') {
		n, ok := parseHex(mode, body[2:])
		if ok && neg {
			n = n.Neg()
		}
		return n, ok
	}
	if body == "" || !(isDigit(body[0]) || body[0] == '.') {
		return Number{}, false
	}
	return mode.Parse(s)
}

// Equal reports structural equality under c's coercion rules.
func (c Conversion) Equal(a, b Value) (bool, error) {
	cmp, err := c.Compare(a, b)
	if err == nil {
		return cmp == 0, nil
	}
	if de, ok := AsError(err); ok && de.Status == StatusTypeMismatch {
		if c.Strict {
			return false, err
		}
		return false, nil
	}
	return false, err
}

// Compare orders two values. Numbers compare numerically, strings ordinally,
// booleans false < true; arrays compare element-wise; natives only by identity.
func (c Conversion) Compare(a, b Value) (int, error) {
	switch a.kind {
	case KindNumber:
		switch b.kind {
		case KindNumber:
			return a.num.Cmp(b.num), nil
		case KindString:
			n, err := c.ToNumber(b)
			if err != nil {
				return 0, err
			}
			return a.num.Cmp(n), nil
		case KindNone, KindBoolean, KindArray, KindNative, KindAny:
		}
	case KindString:
		switch b.kind {
		case KindString:
			return strings.Compare(a.str, b.str), nil
		case KindNumber:
			n, err := c.ToNumber(a)
			if err != nil {
				return 0, err
			}
			return n.Cmp(b.num), nil
		case KindNone, KindBoolean, KindArray, KindNative, KindAny:
		}
	case KindBoolean:
		if b.kind == KindBoolean {
			switch {
			case a.b == b.b:
				return 0, nil
			case !a.b:
				return -1, nil
			}
			return 1, nil
		}
	case KindArray:
		if b.kind == KindArray {
			return c.compareArrays(a.arr, b.arr, nil)
		}
	case KindNative:
		if b.kind == KindNative && a.native == b.native {
			return 0, nil
		}
		if b.kind == KindNative {
			return 0, NewError(StatusTypeMismatch, "native values are not ordered")
		}
	case KindNone:
		if b.kind == KindNone {
			return 0, nil
		}
	case KindAny:
	}
	return 0, NewError(StatusTypeMismatch, "cannot compare %s with %s", a.kind, b.kind)
}

// arrayPair is one pair of arrays being compared, kept on a chain so a
// comparison that comes back to a pair already open is caught as a cycle.
type arrayPair struct {
	a, b *Array
	next *arrayPair
}

func (c Conversion) compareArrays(a, b *Array, open *arrayPair) (int, error) {
	if a == b {
		return 0, nil
	}
	for p := open; p != nil; p = p.next {
		if p.a == a && p.b == b {
			return 0, NewError(StatusTypeMismatch, "cannot compare arrays that contain themselves")
		}
	}
	open = &arrayPair{a: a, b: b, next: open}
	for i := 0; i < a.Len() && i < b.Len(); i++ {
		x, y := a.items[i], b.items[i]
		var cmp int
		var err error
		if x.kind == KindArray && y.kind == KindArray {
			cmp, err = c.compareArrays(x.arr, y.arr, open)
		} else {
			cmp, err = c.Compare(x, y)
		}
		if err != nil || cmp != 0 {
			return cmp, err
		}
	}
	switch {
	case a.Len() < b.Len():
		return -1, nil
	case a.Len() > b.Len():
		return 1, nil
	}
	return 0, nil
}

// quoteString renders s as a double-quoted literal the scanner can read back.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
