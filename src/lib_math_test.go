package pawbasic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMathFunctions(t *testing.T) {
	interp := New(testConfig(nil))
	for expr, want := range map[string]string{
		"ABS(-3)":            "3",
		"INT(-2.5)":          "-3",
		"FIX(-2.5)":          "-2",
		"SGN(-7) + SGN(0)":   "-1",
		"SQR(16)":            "4",
		"ROUND(2.567, 2)":    "2.57",
		"ROUND(2.5)":         "3",
		"MIN(4, 2, 8)":       "2",
		"MAX(4, 2, 8)":       "8",
		"HEX$(-255)":         "-FF",
		"COS(0) + SIN(0)":    "1",
		"INT(LOG(@E) + 0.5)": "1",
		"EXP(0)":             "1",
	} {
		v, err := interp.Evaluate(expr)
		if !assert.NoError(t, err, expr) {
			continue
		}
		assert.Equal(t, want, v.String(), expr)
	}
}

func TestMathFailures(t *testing.T) {
	interp := New(testConfig(nil))
	for expr, want := range map[string]Status{
		"SQR(-1)":   StatusFailed,
		"LOG(0)":    StatusFailed,
		"EXP(1000)": StatusOverflow,
		"RND(0)":    StatusIndexOutOfRange,
		"ABS()":     StatusArgumentCount,
		`ABS("x")`:  StatusTypeMismatch,
	} {
		_, err := interp.Evaluate(expr)
		de, ok := AsError(err)
		require.True(t, ok, expr)
		assert.Equal(t, want, de.Status, expr)
	}
}

func TestRandomRanges(t *testing.T) {
	interp := New(testConfig(nil))
	for i := 0; i < 50; i++ {
		v, err := interp.Evaluate("RND()")
		require.NoError(t, err)
		n, _ := v.AsNumber()
		assert.True(t, n.Float64() >= 0 && n.Float64() < 1)

		v, err = interp.Evaluate("RND(6)")
		require.NoError(t, err)
		n, _ = v.AsNumber()
		k, _ := n.Int64()
		assert.True(t, k >= 1 && k <= 6, "RND(6) gave %d", k)
	}
}

func TestPreciseConstants(t *testing.T) {
	cfg := testConfig(nil)
	cfg.Precision = "precise"
	interp := New(cfg)
	v, err := interp.Evaluate("@PI")
	require.NoError(t, err)
	assert.Equal(t, "3.1415926535897932384626433832795028842", v.String())
}
