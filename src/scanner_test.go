package pawbasic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScannerNumbers(t *testing.T) {
	sc := NewScanner("3.5e2 + 7", nil, FastNumbers)
	tok, ok, err := sc.NextNumber()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "3.5e2", tok.Text)
	n, _ := tok.Value.AsNumber()
	assert.Equal(t, "350", n.String())
	assert.Equal(t, 5, sc.Pos())

	// A dangling exponent marker belongs to whatever follows.
	sc = NewScanner("12e", nil, FastNumbers)
	tok, ok, err = sc.NextNumber()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "12", tok.Text)

	sc = NewScanner("abc", nil, FastNumbers)
	_, ok, err = sc.NextNumber()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, sc.Pos(), "a miss must not move the cursor")
}

func TestScannerHexadecimal(t *testing.T) {
	sc := NewScanner("0xFF", nil, FastNumbers)
	tok, ok, err := sc.NextHexadecimal()
	require.NoError(t, err)
	require.True(t, ok)
	n, _ := tok.Value.AsNumber()
	assert.Equal(t, "255", n.String())

	sc = NewScanner("0x", nil, FastNumbers)
	_, ok, err = sc.NextHexadecimal()
	require.NoError(t, err)
	assert.False(t, ok)

	sc = NewScanner("0x1ffffffffffffffff", nil, FastNumbers)
	_, _, err = sc.NextHexadecimal()
	require.Error(t, err)
}

func TestScannerMaximalMunch(t *testing.T) {
	ops := StandardOperators()
	for _, tc := range []struct {
		src  string
		want string
	}{
		{"== 1", "=="},
		{"= 1", "="},
		{"<= 1", "<="},
		{"<> 1", "<>"},
		{"< 1", "<"},
		{"&& x", "&&"},
		{"& x", "&"},
	} {
		sc := NewScanner(tc.src, ops, FastNumbers)
		tok, ok, err := sc.NextBinaryOp()
		require.NoError(t, err, tc.src)
		require.True(t, ok, tc.src)
		assert.Equal(t, tc.want, tok.Op.Symbol, tc.src)
	}
}

func TestScannerWordOperators(t *testing.T) {
	ops := StandardOperators()

	sc := NewScanner("mod 3", ops, FastNumbers)
	tok, ok, err := sc.NextBinaryOp()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "MOD", tok.Op.Symbol)

	// A word operator only matches on a word boundary.
	sc = NewScanner("ORANGE", ops, FastNumbers)
	_, ok, err = sc.NextBinaryOp()
	require.NoError(t, err)
	assert.False(t, ok)

	sc = NewScanner("AND", ops, FastNumbers)
	_, ok, err = sc.NextVariable()
	require.NoError(t, err)
	assert.False(t, ok, "word operators are never variables")
}

func TestScannerUnaryOnlyInOperandPosition(t *testing.T) {
	ops := StandardOperators()
	sc := NewScanner("-x", ops, FastNumbers)
	tok, ok, err := sc.NextUnaryOp()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, tok.Op.IsUnary())

	sc = NewScanner("x -1", ops, FastNumbers)
	_, ok, err = sc.NextVariable()
	require.NoError(t, err)
	require.True(t, ok)
	sc.SkipWhitespace()
	_, ok, err = sc.NextUnaryOp()
	require.NoError(t, err)
	assert.False(t, ok, "after an operand '-' is binary")
}

func TestScannerFunctionAndVariable(t *testing.T) {
	ops := StandardOperators()

	sc := NewScanner("left$(a$, (1 + 2))", ops, FastNumbers)
	tok, ok, err := sc.NextFunction()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "LEFT$", tok.Name)
	assert.Equal(t, []string{"a$", "(1 + 2)"}, tok.Args)

	sc = NewScanner("grid[1, 2][3]", ops, FastNumbers)
	tok, ok, err = sc.NextVariable()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "GRID", tok.Name)
	assert.Equal(t, []string{"1", "2", "3"}, tok.Indices)

	sc = NewScanner("@error", ops, FastNumbers)
	tok, ok, err = sc.NextVariable()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "@ERROR", tok.Name)

	sc = NewScanner("x[]", ops, FastNumbers)
	_, _, err = sc.NextVariable()
	require.Error(t, err)
}

func TestScannerBoolean(t *testing.T) {
	sc := NewScanner("true", nil, FastNumbers)
	tok, ok, err := sc.NextBoolean()
	require.NoError(t, err)
	require.True(t, ok)
	b, _ := tok.Value.AsBool()
	assert.True(t, b)

	sc = NewScanner("TRUEISH", nil, FastNumbers)
	_, ok, err = sc.NextBoolean()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFoldName(t *testing.T) {
	assert.Equal(t, "NAME$", foldName("name$"))
	assert.Equal(t, "ABC", foldName("ABC"))
	// Only ASCII letters fold.
	assert.Equal(t, "ÄBC", foldName("Äbc"))
}
