package pawbasic

import (
	"strconv"
	"strings"
)

// ExpressionEvaluator evaluates one argument segment of a group.
type ExpressionEvaluator interface {
	Evaluate(text string) (Value, error)
}

func isQuote(c byte) bool { return c == '"' || c == '\'' }

func closerFor(open byte) byte {
	if open == '[' {
		return ']'
	}
	return ')'
}

// IndexString returns the position of the quote closing the string literal
// that opens at pos.
func IndexString(buf string, pos int) (int, error) {
	end, _, err := scanString(buf, pos, false)
	return end, err
}

// ReadString returns the closing quote position and the decoded contents of
// the string literal that opens at pos.
func ReadString(buf string, pos int) (int, string, error) {
	return scanString(buf, pos, true)
}

func scanString(buf string, pos int, decode bool) (int, string, error) {
	if pos >= len(buf) || !isQuote(buf[pos]) {
		return pos, "", syntaxError(pos, "expected string literal")
	}
	quote := buf[pos]
	var out strings.Builder
	for i := pos + 1; i < len(buf); i++ {
		c := buf[i]
		switch {
		case c == quote:
			return i, out.String(), nil
		case c == '\n' || c == '\r':
			return i, "", syntaxError(i, "newline in string literal")
		case c == '\\':
			if i+1 >= len(buf) {
				return i, "", syntaxError(i, "unterminated escape sequence")
			}
			i++
			var r rune
			switch buf[i] {
			case 'b':
				r = '\b'
			case 't':
				r = '\t'
			case 'n':
				r = '\n'
			case 'f':
				r = '\f'
			case 'r':
				r = '\r'
			case '"':
				r = '"'
			case '\'':
				r = '\''
			case '\\':
				r = '\\'
			case 'u':
				if i+4 >= len(buf) {
					return i, "", syntaxError(i, "unterminated \\u escape")
				}
				code, err := strconv.ParseUint(buf[i+1:i+5], 16, 32)
				if err != nil {
					return i, "", syntaxError(i, "invalid \\u escape %q", buf[i+1:i+5])
				}
				r = rune(code)
				i += 4
			default:
				return i, "", syntaxError(i, "unknown escape \\%c", buf[i])
			}
			if decode {
				out.WriteRune(r)
			}
		default:
			if decode {
				out.WriteByte(c)
			}
		}
	}
	return len(buf), "", syntaxError(pos, "unterminated string literal")
}

// IndexGroup returns the position of the closer matching the ( or [ at pos.
// Strings and groups of the other kind are skipped whole.
func IndexGroup(buf string, pos int) (int, error) {
	if pos >= len(buf) || (buf[pos] != '(' && buf[pos] != '[') {
		return pos, syntaxError(pos, "expected group")
	}
	open := buf[pos]
	closer := closerFor(open)
	depth := 1
	for i := pos + 1; i < len(buf); i++ {
		c := buf[i]
		switch {
		case isQuote(c):
			end, err := IndexString(buf, i)
			if err != nil {
				return end, err
			}
			i = end
		case c == open:
			depth++
		case c == closer:
			depth--
			if depth == 0 {
				return i, nil
			}
		case c == '(' || c == '[':
			end, err := IndexGroup(buf, i)
			if err != nil {
				return end, err
			}
			i = end
		case c == ')' || c == ']':
			return i, syntaxError(i, "mismatched %q", c)
		}
	}
	return len(buf), syntaxError(pos, "unterminated group %q", open)
}

// SplitGroup returns the close position of the group at pos and its raw
// top-level segments, trimmed. An empty group has no segments.
func SplitGroup(buf string, pos int, sep byte) (int, []string, error) {
	end, err := IndexGroup(buf, pos)
	if err != nil {
		return end, nil, err
	}
	inner := buf[pos+1 : end]
	if strings.TrimSpace(inner) == "" {
		return end, nil, nil
	}
	parts, _, err := splitTopLevel(inner, string(sep))
	if err != nil {
		return end, nil, err
	}
	return end, parts, nil
}

// ReadGroup is SplitGroup followed by evaluation of every non-empty segment
// in order.
func ReadGroup(buf string, pos int, sep byte, ev ExpressionEvaluator) (int, []Value, error) {
	end, parts, err := SplitGroup(buf, pos, sep)
	if err != nil {
		return end, nil, err
	}
	values := make([]Value, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		v, err := ev.Evaluate(part)
		if err != nil {
			return end, nil, err
		}
		values = append(values, v)
	}
	return end, values, nil
}

// splitTopLevel splits text at any of seps found outside strings and groups.
// It returns the trimmed segments and the separator that ended each one
// (0 for the last).
func splitTopLevel(text string, seps string) ([]string, []byte, error) {
	var parts []string
	var ends []byte
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case isQuote(c):
			end, err := IndexString(text, i)
			if err != nil {
				return nil, nil, err
			}
			i = end
		case c == '(' || c == '[':
			end, err := IndexGroup(text, i)
			if err != nil {
				return nil, nil, err
			}
			i = end
		case c == ')' || c == ']':
			return nil, nil, syntaxError(i, "mismatched %q", c)
		case strings.IndexByte(seps, c) >= 0:
			parts = append(parts, strings.TrimSpace(text[start:i]))
			ends = append(ends, c)
			start = i + 1
		}
	}
	parts = append(parts, strings.TrimSpace(text[start:]))
	ends = append(ends, 0)
	return parts, ends, nil
}

// splitArguments splits a command tail at top-level commas. A blank tail
// has no arguments.
func splitArguments(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	parts, _, err := splitTopLevel(text, ",")
	return parts, err
}

// indexWord finds keyword as a whole word outside strings and groups,
// case-insensitively, starting the search at from. It returns -1 if absent.
func indexWord(text, keyword string, from int) int {
	for i := from; i < len(text); i++ {
		c := text[i]
		switch {
		case isQuote(c):
			end, err := IndexString(text, i)
			if err != nil {
				return -1
			}
			i = end
		case c == '(' || c == '[':
			end, err := IndexGroup(text, i)
			if err != nil {
				return -1
			}
			i = end
		default:
			end := i + len(keyword)
			if end > len(text) || !strings.EqualFold(text[i:end], keyword) {
				continue
			}
			if i > 0 && isNameChar(text[i-1]) {
				continue
			}
			if end < len(text) && isNameChar(text[end]) {
				continue
			}
			return i
		}
	}
	return -1
}
