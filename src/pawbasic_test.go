package pawbasic

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func testConfig(out io.Writer) *Config {
	cfg := DefaultConfig()
	if out == nil {
		out = io.Discard
	}
	cfg.Output = out
	cfg.Input = nil
	cfg.ShowErrorContext = false
	return cfg
}

func runProgram(t *testing.T, source string) (*Interpreter, string) {
	t.Helper()
	var out bytes.Buffer
	interp := New(testConfig(&out))
	if err := interp.Execute(source); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	return interp, out.String()
}

func expectVariable(t *testing.T, interp *Interpreter, name, want string) {
	t.Helper()
	v, ok := interp.Variable(name)
	if !ok {
		t.Fatalf("%s is not defined", name)
	}
	if v.String() != want {
		t.Errorf("Expected %s = %s, got %s", name, want, v.String())
	}
}

func expectStatus(t *testing.T, interp *Interpreter, want Status) {
	t.Helper()
	if got := interp.Status(); got != want {
		msg, _ := interp.Variable("@ERRMSG")
		t.Errorf("Expected status %s, got %s (%s)", want, got, msg)
	}
}

func TestPrecedence(t *testing.T) {
	interp := New(testConfig(nil))

	cases := map[string]string{
		"2 + 3 * 4":           "14",
		"(2 + 3) * 4":         "20",
		"10 - 4 - 3":          "3",
		"2 ^ 3 ^ 2":           "512",
		"-2 ^ 2":              "-4",
		"7 MOD 3":             "1",
		"7 \\ 2":              "3",
		"1 < 2 AND 3 > 4":     "FALSE",
		"1 < 2 OR 3 > 4":      "TRUE",
		"NOT (1 > 2)":         "TRUE",
		`"a" & 1 * 2`:         "a2",
		"TRUE XOR TRUE":       "FALSE",
		"1 = 1 == TRUE":       "TRUE",
		"0x10 + 1":            "17",
		"2 * -3":              "-6",
		`"abc" < "abd"`:       "TRUE",
		"[1, 2] = [1, 2]":     "TRUE",
		"3.5e2 / 10":          "35",
		"(1, 2)":              "[1, 2]",
		"((1 + 2) * (3 + 4))": "21",
	}
	for expr, want := range cases {
		v, err := interp.Evaluate(expr)
		if err != nil {
			t.Errorf("%s: %v", expr, err)
			continue
		}
		if v.String() != want {
			t.Errorf("%s: expected %s, got %s", expr, want, v.String())
		}
	}
}

func TestEvaluateErrors(t *testing.T) {
	interp := New(testConfig(nil))

	cases := map[string]Status{
		"":          StatusSyntax,
		"1 +":       StatusSyntax,
		"()":        StatusSyntax,
		"1 # 2":     StatusOperatorUndefined,
		"NOPE + 1":  StatusUndefined,
		"NOPE(1)":   StatusUndefined,
		"1 / 0":     StatusDivisionByZero,
		`"x" * 2`:   StatusTypeMismatch,
		"(1, 2)[5]": StatusSyntax,
		`"abc`:      StatusSyntax,
	}
	for expr, want := range cases {
		_, err := interp.Evaluate(expr)
		de, ok := AsError(err)
		if !ok {
			t.Errorf("%q: expected a domain error, got %v", expr, err)
			continue
		}
		if de.Status != want {
			t.Errorf("%q: expected %s, got %s (%v)", expr, want, de.Status, de)
		}
	}
}

func TestLetAndIf(t *testing.T) {
	interp, _ := runProgram(t, `
LET X = 5
IF X > 3 THEN
  Y = 1
ELSE
  Y = 2
END IF
`)
	expectVariable(t, interp, "X", "5")
	expectVariable(t, interp, "Y", "1")
	expectStatus(t, interp, StatusOK)
}

func TestElseIfChain(t *testing.T) {
	interp, out := runProgram(t, `
FOR N = 1 TO 4
  IF N = 1 THEN
    PRINT "one";
  ELSEIF N = 2 THEN
    PRINT "two";
  ELSE IF N = 3 THEN
    PRINT "three";
  ELSE
    PRINT "many";
  END IF
NEXT N
IF N > 4 THEN PRINT "" ELSE PRINT "?"
`)
	if out != "onetwothreemany\n" {
		t.Errorf("Unexpected output %q", out)
	}
	expectVariable(t, interp, "N", "5")
}

func TestDivisionByZeroSetsStatus(t *testing.T) {
	interp, _ := runProgram(t, "LET X = 10 / 0")
	expectStatus(t, interp, StatusDivisionByZero)
	msg, _ := interp.Variable("@errmsg")
	if !strings.Contains(msg.String(), "division by zero") {
		t.Errorf("Unexpected message %q", msg.String())
	}
	for _, name := range []string{"@ERR", "@LASTERROR", "@LASTERR"} {
		expectVariable(t, interp, name, "9")
	}
	if _, ok := interp.Variable("X"); ok {
		t.Error("X should not be assigned")
	}

	// The next line runs and clears the status.
	if err := interp.Execute("Z = 1"); err != nil {
		t.Fatal(err)
	}
	expectStatus(t, interp, StatusOK)
}

func TestStatusVisibleToNextLine(t *testing.T) {
	interp, out := runProgram(t, `
X = UNKNOWN
PRINT @ERROR
IF @ERR = 0 THEN PRINT "ok"
`)
	if out != "3\nok\n" {
		t.Errorf("Unexpected output %q", out)
	}
	expectStatus(t, interp, StatusOK)
}

func TestPriorStatus(t *testing.T) {
	interp := New(testConfig(nil))
	var seen Status
	interp.RegisterCommand("LASTSTATUS", Fixed(KindNone), func(rt *Runtime, f *StackFrame) (Value, error) {
		seen = f.PriorStatus
		return Value{}, nil
	})
	if err := interp.Execute("X = 1 / 0\nLASTSTATUS"); err != nil {
		t.Fatal(err)
	}
	if seen != StatusDivisionByZero {
		t.Errorf("Expected prior status 9, got %d", seen)
	}
}

func TestThrowOnError(t *testing.T) {
	cfg := testConfig(nil)
	cfg.ThrowOnError = true
	interp := New(cfg)

	err := interp.Execute("A = 1\nB = MISSING + 1\nC = 3")
	var le *LineError
	if !errors.As(err, &le) {
		t.Fatalf("Expected a LineError, got %v", err)
	}
	if le.Line != 2 || le.Name != "B" {
		t.Errorf("Expected line 2 (B), got line %d (%s)", le.Line, le.Name)
	}
	if de, ok := AsError(err); !ok || de.Status != StatusUndefined {
		t.Errorf("Expected an undefined error, got %v", le.Err)
	}
	if _, ok := interp.Variable("C"); ok {
		t.Error("Execution should stop at the failing line")
	}
}

func TestHostErrorsPropagate(t *testing.T) {
	interp := New(testConfig(nil))
	boom := errors.New("host failure")
	interp.RegisterFunction("BOOM", Fixed(KindNumber), func(rt *Runtime, f *StackFrame) (Value, error) {
		return Value{}, boom
	})
	err := interp.Execute("X = BOOM()\nY = 1")
	if !errors.Is(err, boom) {
		t.Fatalf("Expected the host error, got %v", err)
	}
	if _, ok := interp.Variable("Y"); ok {
		t.Error("Execution should stop after a host error")
	}
}

func TestFunctionStatusBecomesError(t *testing.T) {
	interp := New(testConfig(nil))
	interp.RegisterFunction("FIND", Fixed(KindNumber, KindString), func(rt *Runtime, f *StackFrame) (Value, error) {
		f.Fail(StatusNotFound, "no such key")
		return Value{}, nil
	})
	if err := interp.Execute(`X = FIND("k")`); err != nil {
		t.Fatal(err)
	}
	expectStatus(t, interp, StatusNotFound)
	expectVariable(t, interp, "@ERRMSG", "FIND: no such key")
}

func TestErrorStatement(t *testing.T) {
	interp, _ := runProgram(t, `ERROR 12, "missing record"`)
	expectStatus(t, interp, StatusNotFound)
	expectVariable(t, interp, "@ERRMSG", "missing record")
}

func TestLoops(t *testing.T) {
	interp, out := runProgram(t, `
I = 0
WHILE I < 10
  I = I + 1
  IF I = 5 THEN BREAK
WEND

N = 0
DO
  N = N + 2
LOOP UNTIL N >= 6

M = 0
DO WHILE M < 3
  M = M + 1
LOOP

S = 0
FOR J = 1 TO 5
  IF J MOD 2 = 0 THEN CONTINUE
  S = S + J
NEXT J

FOR K = 3 TO 1 STEP -1
  PRINT K;
NEXT
`)
	expectVariable(t, interp, "I", "5")
	expectVariable(t, interp, "N", "6")
	expectVariable(t, interp, "M", "3")
	expectVariable(t, interp, "S", "9")
	expectVariable(t, interp, "K", "0")
	if out != "321" {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestNestedLoopsBreakInnermost(t *testing.T) {
	_, out := runProgram(t, `
FOR I = 1 TO 3
  FOR J = 1 TO 3
    IF J = 2 THEN BREAK
    PRINT I; J; " ";
  NEXT
NEXT
`)
	if out != "11 21 31 " {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestForZeroStep(t *testing.T) {
	interp, _ := runProgram(t, "FOR I = 1 TO 2 STEP 0\nNEXT")
	expectStatus(t, interp, StatusFailed)
}

func TestSelectCase(t *testing.T) {
	interp := New(testConfig(nil))
	program := `
SELECT CASE X
CASE 1, 2
  R$ = "low"
CASE 3 TO 6
  R$ = "mid"
CASE IS > 6
  R$ = "high"
CASE ELSE
  R$ = "none"
END SELECT
`
	for x, want := range map[int64]string{1: "low", 4: "mid", 9: "high", 0: "none"} {
		interp.SetVariable("X", NumberValue(interp.Mode().Int(x)))
		if err := interp.Execute(program); err != nil {
			t.Fatal(err)
		}
		expectVariable(t, interp, "R$", want)
	}
}

func TestUserFunctions(t *testing.T) {
	interp, out := runProgram(t, `
FUNCTION SQUARE(N)
  RETURN N * N
END FUNCTION

FUNCTION FACT(N)
  IF N <= 1 THEN RETURN 1
  RETURN N * FACT(N - 1)
END FUNCTION

FUNCTION NOTHING()
  T = 1
END FUNCTION

PRINT SQUARE(4), FACT(5)
Z = NOTHING()
`)
	if out != "16\t120\n" {
		t.Errorf("Unexpected output %q", out)
	}
	expectVariable(t, interp, "Z", "0")
	if _, ok := interp.Variable("T"); ok {
		t.Error("Function locals must not leak")
	}
	if _, ok := interp.Variable("N"); ok {
		t.Error("Parameters must not leak")
	}
}

func TestFunctionArgumentCount(t *testing.T) {
	interp, _ := runProgram(t, "FUNCTION F(A, B)\nRETURN A + B\nEND FUNCTION\nX = F(1)")
	expectStatus(t, interp, StatusArgumentCount)
}

func TestRecursionLimit(t *testing.T) {
	cfg := testConfig(nil)
	cfg.ThrowOnError = true
	cfg.MaxCallDepth = 32
	interp := New(cfg)
	err := interp.Execute("FUNCTION F(N)\nRETURN F(N + 1)\nEND FUNCTION\nX = F(1)")
	de, ok := AsError(err)
	if !ok || de.Status != StatusOverflow {
		t.Fatalf("Expected an overflow, got %v", err)
	}
}

func TestArrays(t *testing.T) {
	interp, out := runProgram(t, `
DIM A(3)
A(0) = 10
A[1] = 20
PRINT A(0) + A[1], UBOUND(A)
B = A
B[2] = 5
DIM G(1, 2)
G(1, 2) = "x"
L = [1, "two", [3]]
PUSH(L, 4)
`)
	if out != "30\t3\n" {
		t.Errorf("Unexpected output %q", out)
	}
	expectVariable(t, interp, "A", "[10, 20, 5, 0]")
	expectVariable(t, interp, "G", `[[0, 0, 0], [0, 0, "x"]]`)
	expectVariable(t, interp, "L", `[1, "two", [3], 4]`)

	if err := interp.Execute("X = A[9]"); err != nil {
		t.Fatal(err)
	}
	expectStatus(t, interp, StatusIndexOutOfRange)

	if err := interp.Execute("Y = 5\nX = Y[0]"); err != nil {
		t.Fatal(err)
	}
	expectStatus(t, interp, StatusIndexUnavailable)
}

func TestBlockScopes(t *testing.T) {
	interp, _ := runProgram(t, `
IF TRUE THEN
  DIM T = 5
  U = T
END IF
`)
	expectVariable(t, interp, "U", "5")
	if _, ok := interp.Variable("T"); ok {
		t.Error("DIM inside a block must stay local")
	}
}

func TestConstants(t *testing.T) {
	interp, _ := runProgram(t, "CONST LIMIT = 5\nLIMIT = 6")
	expectStatus(t, interp, StatusConstant)
	expectVariable(t, interp, "limit", "5")

	if err := interp.Execute("X = @PI > 3.14 AND @PI < 3.15"); err != nil {
		t.Fatal(err)
	}
	expectVariable(t, interp, "X", "TRUE")
}

func TestCaseInsensitiveNames(t *testing.T) {
	_, out := runProgram(t, "let abc = 1\nPrint AbC + Len(\"xy\")")
	if out != "3\n" {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestPrintSeparators(t *testing.T) {
	_, out := runProgram(t, `
PRINT "a"; "b", "c"
PRINT "no newline";
PRINT
PRINT 1.5, TRUE, [1, "x"]
`)
	want := "ab\tc\nno newline\n1.5\tTRUE\t[1, \"x\"]\n"
	if out != want {
		t.Errorf("Expected %q, got %q", want, out)
	}
}

func TestInput(t *testing.T) {
	var out bytes.Buffer
	cfg := testConfig(&out)
	interp := New(cfg)
	interp.SetInput(strings.NewReader("42\nBob\n"))

	if err := interp.Execute("INPUT \"Age\"; A\nINPUT N$\nINPUT Q"); err != nil {
		t.Fatal(err)
	}
	expectVariable(t, interp, "A", "42")
	expectVariable(t, interp, "N$", "Bob")
	expectStatus(t, interp, StatusNotFound)
	if out.String() != "Age? ? " {
		t.Errorf("Unexpected prompts %q", out.String())
	}
}

func TestStringFunctions(t *testing.T) {
	interp := New(testConfig(nil))
	cases := map[string]string{
		`INSTRREV("abcabc", "bc")`:    "5",
		`INSTRREV("abcabc", "bc", 4)`: "2",
		`INSTRREV("abc", "x")`:        "0",
		`INSTR("abcabc", "bc")`:       "2",
		`INSTR("abcabc", "bc", 3)`:    "5",
		`LEFT$("hello", 2)`:           "he",
		`RIGHT$("hello", 3)`:          "llo",
		`MID$("hello", 2, 3)`:         "ell",
		`MID$("hello", 4)`:            "lo",
		`UCASE$("straße")`:            "STRASSE",
		`LCASE$("ÀB")`:                "àb",
		`TRIM$("  x  ")`:              "x",
		`STR$(12) & "!"`:              "12!",
		`VAL("3.5") * 2`:              "7",
		`VAL("abc")`:                  "0",
		`CHR$(65) & ASC("a")`:         "A97",
		`REPLACE$("a-b-c", "-", "+")`: "a+b+c",
		`JOIN$(SPLIT("a,b",","),";")`: "a;b",
		`LEN("héllo")`:                "5",
		`STRING$(3, "ab")`:            "aaa",
		`"[" & SPACE$(2) & "]"`:       "[  ]",
		`HEX$(255)`:                   "FF",
	}
	for expr, want := range cases {
		v, err := interp.Evaluate(expr)
		if err != nil {
			t.Errorf("%s: %v", expr, err)
			continue
		}
		if v.String() != want {
			t.Errorf("%s: expected %s, got %s", expr, want, v.String())
		}
	}
}

func TestIIFIsLazy(t *testing.T) {
	interp, _ := runProgram(t, "X = IIF(1 > 0, 10, 1 / 0)")
	expectStatus(t, interp, StatusOK)
	expectVariable(t, interp, "X", "10")
}

func TestPreciseNumbers(t *testing.T) {
	cfg := testConfig(nil)
	cfg.Precision = "precise"
	interp := New(cfg)
	v, err := interp.Evaluate("0.1 + 0.2 = 0.3")
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "TRUE" {
		t.Errorf("Expected exact decimal arithmetic, got %s", v.String())
	}
	if interp.Mode() != PreciseNumbers {
		t.Errorf("Expected precise mode, got %s", interp.Mode())
	}
}

func TestStrictTypes(t *testing.T) {
	cfg := testConfig(nil)
	cfg.StrictTypes = true
	interp := New(cfg)
	_, err := interp.Evaluate(`"1" + 1`)
	if de, ok := AsError(err); !ok || de.Status != StatusTypeMismatch {
		t.Errorf("Expected a type mismatch, got %v", err)
	}
}

func TestExitStopsRun(t *testing.T) {
	_, out := runProgram(t, "PRINT 1\nFOR I = 1 TO 3\nIF I = 2 THEN EXIT\nNEXT\nPRINT 2")
	if out != "1\n" {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestCommentsAndContinuation(t *testing.T) {
	_, out := runProgram(t, "' comment\nREM another\nPRINT 1 + _\n  2\n\nrem lower case")
	if out != "3\n" {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestRegisterOperator(t *testing.T) {
	interp := New(testConfig(nil))
	_, err := interp.RegisterOperator("<=>", PrecRelational, LeftAssoc, func(c Conversion, a, b Value) (Value, error) {
		cmp, err := c.Compare(a, b)
		if err != nil {
			return Value{}, err
		}
		return NumberValue(c.Mode.Int(int64(cmp))), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	for expr, want := range map[string]string{"1 <=> 2": "-1", "1 <= 2": "TRUE", `"b" <=> "a"`: "1"} {
		v, err := interp.Evaluate(expr)
		if err != nil {
			t.Fatalf("%s: %v", expr, err)
		}
		if v.String() != want {
			t.Errorf("%s: expected %s, got %s", expr, want, v.String())
		}
	}
}

func TestCancellation(t *testing.T) {
	interp := New(testConfig(nil))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := interp.ExecuteContext(ctx, "WHILE TRUE\nWEND")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected the deadline error, got %v", err)
	}

	ctx, cancel = context.WithCancel(context.Background())
	cancel()
	if err := interp.ExecuteContext(ctx, "SLEEP 1000"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected cancellation, got %v", err)
	}
}

func TestIncomplete(t *testing.T) {
	interp := New(testConfig(nil))
	cases := map[string]bool{
		"PRINT 1":                     false,
		"FOR I = 1 TO 3":              true,
		"FOR I = 1 TO 3\nNEXT":        false,
		"IF X THEN":                   true,
		"IF X THEN PRINT 1":           false,
		"PRINT 1 + _":                 true,
		"FUNCTION F()\nWHILE 1\nWEND": true,
	}
	for src, want := range cases {
		if got := interp.Incomplete(src); got != want {
			t.Errorf("%q: expected %v, got %v", src, want, got)
		}
	}
}

func TestUnterminatedBlockIsSyntaxError(t *testing.T) {
	interp, _ := runProgram(t, "WHILE 1\nPRINT 1")
	expectStatus(t, interp, StatusSyntax)
}

func TestSeparateInterpreters(t *testing.T) {
	a := New(testConfig(nil))
	b := New(testConfig(nil))
	if err := a.Execute("X = 1"); err != nil {
		t.Fatal(err)
	}
	if _, ok := b.Variable("X"); ok {
		t.Error("Interpreters must not share state")
	}
}

func TestPreciseNonFiniteResults(t *testing.T) {
	cfg := testConfig(nil)
	cfg.Precision = "precise"
	interp := New(cfg)

	cases := map[string]Status{
		"X = 0 ^ -1":      StatusDivisionByZero,
		"X = (-8) ^ 0.5":  StatusFailed,
		"X = 10 ^ 100000": StatusOverflow,
		"X = SIN(1e400)":  StatusFailed,
		"X = 2 ^ -2":      StatusOK,
	}
	for src, want := range cases {
		if err := interp.Execute(src); err != nil {
			t.Fatalf("%s: %v", src, err)
		}
		if got := interp.Status(); got != want {
			t.Errorf("%s: expected status %s, got %s", src, want, got)
		}
	}
	expectVariable(t, interp, "X", "0.25")
}

func TestZeroToNegativePowerInFastMode(t *testing.T) {
	interp, _ := runProgram(t, "X = 0 ^ -2")
	expectStatus(t, interp, StatusDivisionByZero)
}

func TestIndexBeyondIntegerRange(t *testing.T) {
	interp, _ := runProgram(t, "A = [1]\nX = A[9.25e18]")
	expectStatus(t, interp, StatusOverflow)
}

func TestStringRepeatLimit(t *testing.T) {
	for _, src := range []string{`X$ = SPACE$(1e15)`, `X$ = STRING$(1e15, "ab")`, `X$ = STRING$(9000000, "é")`} {
		interp, _ := runProgram(t, src)
		expectStatus(t, interp, StatusOverflow)
	}
	interp, _ := runProgram(t, `X$ = STRING$(3, "é")`)
	expectVariable(t, interp, "X$", "ééé")
}

func TestCyclicArrays(t *testing.T) {
	interp, out := runProgram(t, `A = [1]
N = PUSH(A, A)
PRINT A
B = [1]
M = PUSH(B, B)
SAME = (A = A)
OTHER = (A = B)
`)
	if out != "[1, [...]]\n" {
		t.Errorf("Unexpected output %q", out)
	}
	expectVariable(t, interp, "SAME", "TRUE")
	expectVariable(t, interp, "OTHER", "FALSE")
}

func TestBreakOutsideLoop(t *testing.T) {
	var out bytes.Buffer
	interp := New(testConfig(&out))
	for _, src := range []string{"BREAK", "CONTINUE"} {
		if err := interp.Execute(src); err != nil {
			t.Fatalf("%s: %v", src, err)
		}
		expectStatus(t, interp, StatusSyntax)
	}

	// The rest of the program still runs.
	if err := interp.Execute("BREAK\nPRINT 1"); err != nil {
		t.Fatal(err)
	}
	if out.String() != "1\n" {
		t.Errorf("Unexpected output %q", out.String())
	}
}

func TestBreakInFunctionKeepsCallerLoop(t *testing.T) {
	interp, _ := runProgram(t, `FUNCTION F()
  BREAK
  RETURN 1
END FUNCTION
C = 0
FOR I = 1 TO 3
  C = C + F()
NEXT
`)
	expectVariable(t, interp, "C", "3")
}

func TestPseudoVariablesDeclared(t *testing.T) {
	interp := New(testConfig(nil))
	for _, name := range []string{"@ERROR", "@ERR", "@LASTERROR", "@LASTERR", "@RESULT"} {
		expectVariable(t, interp, name, "0")
	}
	expectVariable(t, interp, "@ERRMSG", "")
}
