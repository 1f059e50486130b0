package pawbasic

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestREPL(t *testing.T) (*REPL, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	interp := New(testConfig(&out))
	interp.Logger().SetOutput(&errOut, &errOut)
	cfg := DefaultREPLConfig()
	cfg.HistoryFile = ""
	return NewREPL(interp, cfg, &out, &errOut), &out, &errOut
}

func TestREPLEvalShowsResults(t *testing.T) {
	repl, out, errOut := newTestREPL(t)
	ctx := context.Background()

	assert.False(t, repl.Eval(ctx, "X = 2 + 3"))
	assert.Empty(t, out.String(), "assignments print nothing")

	assert.False(t, repl.Eval(ctx, "X * 2"))
	assert.Equal(t, "10\n", out.String())

	out.Reset()
	repl.Eval(ctx, `"hi" & "!"`)
	assert.Equal(t, "\"hi!\"\n", out.String())

	out.Reset()
	repl.Eval(ctx, "PRINT X")
	assert.Equal(t, "5\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestREPLEvalReportsStatus(t *testing.T) {
	repl, out, errOut := newTestREPL(t)
	repl.Eval(context.Background(), "1 / 0")
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "division by zero (9)")
}

func TestREPLStatePersists(t *testing.T) {
	repl, out, _ := newTestREPL(t)
	ctx := context.Background()
	repl.Eval(ctx, "FUNCTION TWICE(N)\nRETURN N * 2\nEND FUNCTION")
	repl.Eval(ctx, "TWICE(21)")
	assert.Equal(t, "42\n", out.String())
}

func TestREPLMetaCommands(t *testing.T) {
	repl, out, errOut := newTestREPL(t)
	ctx := context.Background()

	repl.Eval(ctx, "ANSWER = 42")
	assert.False(t, repl.Eval(ctx, ":vars"))
	assert.Contains(t, out.String(), "ANSWER = 42")

	assert.False(t, repl.Eval(ctx, ":nope"))
	assert.Contains(t, errOut.String(), "unknown command")

	assert.True(t, repl.Eval(ctx, ":quit"))
	assert.True(t, repl.Eval(ctx, "EXIT"))
}

func TestREPLCancelledRunEndsSession(t *testing.T) {
	repl, out, errOut := newTestREPL(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.True(t, repl.Eval(ctx, "PRINT 1"))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "context canceled")
}
