package pawbasic

import (
	"slices"
	"strings"
)

// sortRank orders kinds for SORT: booleans (FALSE before TRUE), then
// numbers, then strings. Everything else keeps its original order at the end.
func sortRank(v Value) int {
	switch v.Kind() {
	case KindNone:
		return 0
	case KindBoolean:
		if b, _ := v.AsBool(); b {
			return 2
		}
		return 1
	case KindNumber:
		return 3
	case KindString:
		return 4
	}
	return 5
}

// compareSortValues compares two values for SORT. Strings compare without
// regard to ASCII case when fold is set.
func compareSortValues(a, b Value, fold bool) int {
	ra, rb := sortRank(a), sortRank(b)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case 3:
		x, _ := a.AsNumber()
		y, _ := b.AsNumber()
		return x.Cmp(y)
	case 4:
		x, _ := a.AsString()
		y, _ := b.AsString()
		if fold {
			return strings.Compare(foldName(x), foldName(y))
		}
		return strings.Compare(x, y)
	}
	return 0
}

// SortArray sorts a in place. The sort is stable.
func SortArray(a *Array, descending, fold bool) {
	slices.SortStableFunc(a.items, func(x, y Value) int {
		c := compareSortValues(x, y, fold)
		if descending {
			return -c
		}
		return c
	})
}

// SortLibrary provides SORT and SORTI.
func SortLibrary() *Library {
	lib := NewLibrary("sort")

	sortFn := func(fold bool) NativeFunc {
		return func(rt *Runtime, f *StackFrame) (Value, error) {
			a, err := f.Array(1)
			if err != nil {
				return Value{}, err
			}
			desc := false
			if f.Has(2) {
				if desc, err = f.Bool(2); err != nil {
					return Value{}, err
				}
			}
			SortArray(a, desc, fold)
			return ArrayValue(a), nil
		}
	}
	sig := Signature{Params: []Kind{KindArray, KindBoolean}, MinArgs: 1, MaxArgs: 2, Returns: KindArray}
	lib.Function("SORT", sig, sortFn(false))
	lib.Function("SORTI", sig, sortFn(true))

	return lib
}
