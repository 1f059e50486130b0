package pawbasic

import (
	"strings"
)

// Line is one logical program line.
type Line struct {
	Number int    // 1-based number of the first physical line
	Text   string // statement text, continuations joined
	Name   string // leading keyword or variable, folded
}

// NewLine builds a Line, deriving its visible name from text
func NewLine(number int, text string) Line {
	return Line{Number: number, Text: text, Name: visibleName(text)}
}

func visibleName(text string) string {
	t := strings.TrimSpace(text)
	end := identifierAt(t, 0)
	return foldName(t[:end])
}

func isComment(text string) bool {
	if strings.HasPrefix(text, "'") {
		return true
	}
	if len(text) >= 3 && strings.EqualFold(text[:3], "REM") {
		return len(text) == 3 || text[3] == ' ' || text[3] == '\t'
	}
	return false
}

// ParseProgram splits source into lines. Blank and comment lines are
// dropped and a line ending in " _" continues on the next one.
func ParseProgram(source string) ([]Line, error) {
	physical := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")
	var lines []Line
	var pending strings.Builder
	start := 0
	for i, raw := range physical {
		text := strings.TrimRight(raw, " \t\r")
		if pending.Len() == 0 {
			start = i + 1
		}
		if strings.HasSuffix(text, " _") || text == "_" {
			pending.WriteString(strings.TrimSuffix(text, "_"))
			continue
		}
		pending.WriteString(text)
		joined := pending.String()
		pending.Reset()
		trimmed := strings.TrimSpace(joined)
		if trimmed == "" || isComment(trimmed) {
			continue
		}
		lines = append(lines, NewLine(start, joined))
	}
	if pending.Len() > 0 {
		return lines, &Error{
			Status:  StatusSyntax,
			Message: "continuation at end of program",
			Pos:     -1,
			wrapped: ErrIncompleteBlock,
		}
	}
	return lines, nil
}

// SourceLines splits source into physical lines for error context
func SourceLines(source string) []string {
	return strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")
}
