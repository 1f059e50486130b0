package pawbasic

import (
	"strconv"
	"strings"
)

// TokenKind classifies a lexical unit.
type TokenKind int

const (
	TokNone TokenKind = iota // start of input
	TokNumber
	TokString
	TokBoolean
	TokVariable
	TokFunction
	TokBinaryOp
	TokUnaryOp
	TokGroup
	TokEnd
)

func (k TokenKind) String() string {
	switch k {
	case TokNone:
		return "start"
	case TokNumber:
		return "number"
	case TokString:
		return "string"
	case TokBoolean:
		return "boolean"
	case TokVariable:
		return "variable"
	case TokFunction:
		return "function"
	case TokBinaryOp:
		return "binary operator"
	case TokUnaryOp:
		return "unary operator"
	case TokGroup:
		return "group"
	case TokEnd:
		return "end"
	}
	return "token"
}

// Token is one lexical unit together with its source span.
type Token struct {
	Kind    TokenKind
	Start   int
	Len     int
	Text    string    // source span
	Value   Value     // literals
	Op      *Operator // operators
	Name    string    // folded identifier for variables and functions
	Args    []string  // raw argument segments for functions and groups
	Indices []string  // raw index expressions for variables
	Bracket byte      // '(' or '[' for groups
}

// Scanner hands out tokens from a source buffer on demand. Every NextX
// method is a try-parse: on a miss the cursor does not move.
type Scanner struct {
	src  string
	pos  int
	ops  *OperatorTable
	mode NumberMode
	prev TokenKind
}

// NewScanner creates a scanner over src
func NewScanner(src string, ops *OperatorTable, mode NumberMode) *Scanner {
	if ops == nil {
		ops = StandardOperators()
	}
	return &Scanner{src: src, ops: ops, mode: mode}
}

// Pos returns the cursor
func (s *Scanner) Pos() int { return s.pos }

// Reset moves the cursor back to pos and forgets the previous token.
func (s *Scanner) Reset(pos int) {
	s.pos = pos
	s.prev = TokNone
}

// AtEnd reports whether only whitespace remains
func (s *Scanner) AtEnd() bool {
	s.SkipWhitespace()
	return s.pos >= len(s.src)
}

// Rest returns the unread input
func (s *Scanner) Rest() string { return s.src[s.pos:] }

// Peek returns the byte under the cursor, or 0 at the end
func (s *Scanner) Peek() byte {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

// SkipWhitespace skips spaces and tabs; newlines are significant.
func (s *Scanner) SkipWhitespace() {
	for s.pos < len(s.src) && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
		s.pos++
	}
}

func (s *Scanner) emit(tok Token) Token {
	tok.Text = s.src[tok.Start : tok.Start+tok.Len]
	s.prev = tok.Kind
	return tok
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentChar(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isNameChar(c byte) bool { return isIdentChar(c) || c == '$' || c == '@' }

// parseHex parses hex digits as a 64-bit integer
func parseHex(mode NumberMode, digits string) (Number, bool) {
	if digits == "" || len(digits) > 16 {
		return Number{}, false
	}
	u, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return Number{}, false
	}
	return mode.Int(int64(u)), true
}

// NextNumber matches digits with an optional fraction and exponent.
func (s *Scanner) NextNumber() (Token, bool, error) {
	start := s.pos
	i := start
	for i < len(s.src) && isDigit(s.src[i]) {
		i++
	}
	if i == start {
		return Token{}, false, nil
	}
	if i+1 < len(s.src) && s.src[i] == '.' && isDigit(s.src[i+1]) {
		i++
		for i < len(s.src) && isDigit(s.src[i]) {
			i++
		}
	}
	if i < len(s.src) && (s.src[i] == 'e' || s.src[i] == 'E') {
		j := i + 1
		if j < len(s.src) && (s.src[j] == '+' || s.src[j] == '-') {
			j++
		}
		if j < len(s.src) && isDigit(s.src[j]) {
			for j < len(s.src) && isDigit(s.src[j]) {
				j++
			}
			i = j
		}
	}
	n, ok := s.mode.Parse(s.src[start:i])
	if !ok {
		return Token{}, false, syntaxError(start, "malformed number %q", s.src[start:i])
	}
	s.pos = i
	return s.emit(Token{Kind: TokNumber, Start: start, Len: i - start, Value: NumberValue(n)}), true, nil
}

// NextHexadecimal matches 0x followed by hex digits.
func (s *Scanner) NextHexadecimal() (Token, bool, error) {
	start := s.pos
	if start+1 >= len(s.src) || s.src[start] != '0' || (s.src[start+1] != 'x' && s.src[start+1] != 'X') {
		return Token{}, false, nil
	}
	i := start + 2
	for i < len(s.src) && isHexDigit(s.src[i]) {
		i++
	}
	if i == start+2 {
		return Token{}, false, nil
	}
	n, ok := parseHex(s.mode, s.src[start+2:i])
	if !ok {
		return Token{}, false, syntaxError(start, "hexadecimal literal %q out of range", s.src[start:i])
	}
	s.pos = i
	return s.emit(Token{Kind: TokNumber, Start: start, Len: i - start, Value: NumberValue(n)}), true, nil
}

// NextString matches a quoted literal. Once a quote is seen, malformed
// content is a hard error.
func (s *Scanner) NextString() (Token, bool, error) {
	start := s.pos
	if start >= len(s.src) || !isQuote(s.src[start]) {
		return Token{}, false, nil
	}
	end, text, err := ReadString(s.src, start)
	if err != nil {
		return Token{}, false, err
	}
	s.pos = end + 1
	return s.emit(Token{Kind: TokString, Start: start, Len: end + 1 - start, Value: StringValue(text)}), true, nil
}

// NextBoolean matches TRUE or FALSE as whole words.
func (s *Scanner) NextBoolean() (Token, bool, error) {
	start := s.pos
	for _, word := range []string{"TRUE", "FALSE"} {
		end := start + len(word)
		if end > len(s.src) || !strings.EqualFold(s.src[start:end], word) {
			continue
		}
		if end < len(s.src) && isNameChar(s.src[end]) {
			continue
		}
		s.pos = end
		return s.emit(Token{Kind: TokBoolean, Start: start, Len: end - start, Value: BoolValue(word == "TRUE")}), true, nil
	}
	return Token{}, false, nil
}

// identifierAt returns the end of the name starting at pos: an optional @,
// an identifier, and an optional trailing $.
func identifierAt(src string, pos int) int {
	i := pos
	if i < len(src) && src[i] == '@' {
		i++
	}
	if i >= len(src) || !isIdentStart(src[i]) {
		return pos
	}
	for i < len(src) && isIdentChar(src[i]) {
		i++
	}
	if i < len(src) && src[i] == '$' {
		i++
	}
	return i
}

// NextIdentifier matches a name and returns it as written.
func (s *Scanner) NextIdentifier() (string, bool) {
	end := identifierAt(s.src, s.pos)
	if end == s.pos {
		return "", false
	}
	name := s.src[s.pos:end]
	s.pos = end
	return name, true
}

func (s *Scanner) isWordOperator(name string) bool {
	if op := s.ops.MatchBinary(name, 0); op != nil && len(op.Symbol) == len(name) {
		return true
	}
	if op := s.ops.MatchUnary(name, 0); op != nil && len(op.Symbol) == len(name) {
		return true
	}
	return false
}

// NextFunction matches name(args). Arguments are returned unevaluated.
func (s *Scanner) NextFunction() (Token, bool, error) {
	start := s.pos
	end := identifierAt(s.src, start)
	if end == start || s.src[start] == '@' || s.isWordOperator(s.src[start:end]) {
		return Token{}, false, nil
	}
	i := end
	for i < len(s.src) && (s.src[i] == ' ' || s.src[i] == '\t') {
		i++
	}
	if i >= len(s.src) || s.src[i] != '(' {
		return Token{}, false, nil
	}
	closePos, args, err := SplitGroup(s.src, i, ',')
	if err != nil {
		return Token{}, false, err
	}
	s.pos = closePos + 1
	return s.emit(Token{
		Kind:  TokFunction,
		Start: start,
		Len:   s.pos - start,
		Name:  foldName(s.src[start:end]),
		Args:  args,
	}), true, nil
}

// NextVariable matches NAME, NAME$ or @NAME with optional [index] suffixes.
// Word operators are never variables.
func (s *Scanner) NextVariable() (Token, bool, error) {
	start := s.pos
	end := identifierAt(s.src, start)
	if end == start || s.isWordOperator(s.src[start:end]) {
		return Token{}, false, nil
	}
	var indices []string
	i := end
	for i < len(s.src) && s.src[i] == '[' {
		closePos, parts, err := SplitGroup(s.src, i, ',')
		if err != nil {
			return Token{}, false, err
		}
		if len(parts) == 0 {
			return Token{}, false, syntaxError(i, "empty index")
		}
		indices = append(indices, parts...)
		i = closePos + 1
	}
	s.pos = i
	return s.emit(Token{
		Kind:    TokVariable,
		Start:   start,
		Len:     i - start,
		Name:    foldName(s.src[start:end]),
		Indices: indices,
	}), true, nil
}

// NextBinaryOp matches the longest registered binary operator.
func (s *Scanner) NextBinaryOp() (Token, bool, error) {
	op := s.ops.MatchBinary(s.src, s.pos)
	if op == nil {
		return Token{}, false, nil
	}
	start := s.pos
	s.pos += len(op.Symbol)
	return s.emit(Token{Kind: TokBinaryOp, Start: start, Len: len(op.Symbol), Op: op}), true, nil
}

// NextUnaryOp matches the longest prefix operator, but only at the start of
// an expression or right after another operator.
func (s *Scanner) NextUnaryOp() (Token, bool, error) {
	if s.prev != TokNone && s.prev != TokBinaryOp && s.prev != TokUnaryOp {
		return Token{}, false, nil
	}
	op := s.ops.MatchUnary(s.src, s.pos)
	if op == nil {
		return Token{}, false, nil
	}
	start := s.pos
	s.pos += len(op.Symbol)
	return s.emit(Token{Kind: TokUnaryOp, Start: start, Len: len(op.Symbol), Op: op}), true, nil
}

// NextGroup matches a parenthesized or bracketed group and returns its raw
// top-level segments.
func (s *Scanner) NextGroup() (Token, bool, error) {
	start := s.pos
	if start >= len(s.src) || (s.src[start] != '(' && s.src[start] != '[') {
		return Token{}, false, nil
	}
	closePos, args, err := SplitGroup(s.src, start, ',')
	if err != nil {
		return Token{}, false, err
	}
	s.pos = closePos + 1
	return s.emit(Token{Kind: TokGroup, Start: start, Len: s.pos - start, Args: args, Bracket: s.src[start]}), true, nil
}

// SkipGroup moves past the group at the cursor.
func (s *Scanner) SkipGroup() error {
	closePos, err := IndexGroup(s.src, s.pos)
	if err != nil {
		return err
	}
	s.pos = closePos + 1
	return nil
}

// foldName normalizes a name for table lookup with ASCII upper-casing.
func foldName(name string) string {
	for i := 0; i < len(name); i++ {
		if c := name[i]; c >= 'a' && c <= 'z' {
			b := []byte(name)
			for j := i; j < len(b); j++ {
				if b[j] >= 'a' && b[j] <= 'z' {
					b[j] -= 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return name
}
