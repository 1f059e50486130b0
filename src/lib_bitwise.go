package pawbasic

// BitwiseLibrary provides integer bit operations. Operands must be whole
// numbers; shift counts outside 0..63 fail.
func BitwiseLibrary() *Library {
	lib := NewLibrary("bitwise")

	lib.AddFunction(Func2("BAND", func(a, b int64) (int64, error) { return a & b, nil }))
	lib.AddFunction(Func2("BOR", func(a, b int64) (int64, error) { return a | b, nil }))
	lib.AddFunction(Func2("BXOR", func(a, b int64) (int64, error) { return a ^ b, nil }))
	lib.AddFunction(Func1("BNOT", func(a int64) (int64, error) { return ^a, nil }))

	lib.AddFunction(Func2("SHL", func(a int64, n int) (int64, error) {
		if n < 0 || n > 63 {
			return 0, NewError(StatusIndexOutOfRange, "shift count %d out of range", n)
		}
		return a << n, nil
	}))
	// SHR is arithmetic, so negative values keep their sign.
	lib.AddFunction(Func2("SHR", func(a int64, n int) (int64, error) {
		if n < 0 || n > 63 {
			return 0, NewError(StatusIndexOutOfRange, "shift count %d out of range", n)
		}
		return a >> n, nil
	}))

	return lib
}
