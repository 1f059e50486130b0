package pawbasic

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerCategories(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLogger(true)
	l.SetOutput(&out, &errOut)

	l.DebugCat(CatFlow, "hidden")
	assert.Empty(t, out.String(), "debug output needs its category enabled")

	l.EnableCategory(CatFlow)
	l.DebugCat(CatFlow, "loop %d", 3)
	assert.Equal(t, "[DEBUG:flow] loop 3\n", out.String())

	l.SetEnabled(false)
	out.Reset()
	l.DebugCat(CatFlow, "off")
	assert.Empty(t, out.String())

	l.WarnCat(CatSystem, "always")
	assert.Equal(t, "[PawBASIC:system WARN] always\n", errOut.String())
}

func TestLoggerSourceContext(t *testing.T) {
	var errOut bytes.Buffer
	l := NewLogger(false)
	l.SetOutput(nil, &errOut)
	l.SetContextLines(1)

	source := []string{"A = 1", "B = A +", "C = 3", "D = 4"}
	l.ParseError("missing operand", &SourcePosition{Line: 2, Column: 5, Length: 3, Filename: "t.bas"}, source)

	got := errOut.String()
	assert.Contains(t, got, "Parse error: missing operand")
	assert.Contains(t, got, "at line 2, column 5 in t.bas")
	assert.Contains(t, got, ">   2 | B = A +")
	assert.Contains(t, got, "^^^")
	assert.NotContains(t, got, "D = 4")
	assert.True(t, strings.HasPrefix(got, "[PawBASIC:parse ERROR]"))
}

func TestReportErrorIncludesLine(t *testing.T) {
	var errOut bytes.Buffer
	cfg := testConfig(nil)
	cfg.ThrowOnError = true
	cfg.ShowErrorContext = true
	interp := New(cfg)
	interp.Logger().SetOutput(nil, &errOut)

	source := "X = 1\nY = NOPE"
	err := interp.ExecuteFile(context.Background(), source, "prog.bas")
	assert.Error(t, err)
	interp.ReportError(err, source, "prog.bas")
	assert.Contains(t, errOut.String(), "NOPE: undefined object")
	assert.Contains(t, errOut.String(), "at line 2, column 1 in prog.bas")
}
