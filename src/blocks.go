package pawbasic

import (
	"strings"
)

// Block is a parsed block construct ready to run.
type Block interface {
	Execute(rt *Runtime, scope Scope) error
}

// BlockConstructor parses the block opened by lines[0]. It returns the
// block and the number of lines it spans, closing line included.
type BlockConstructor func(rt *Runtime, lines []Line) (Block, int, error)

// splitKeyword returns the leading keyword of text (folded) and the rest.
func splitKeyword(text string) (string, string) {
	t := strings.TrimSpace(text)
	end := identifierAt(t, 0)
	return foldName(t[:end]), strings.TrimSpace(t[end:])
}

// isEndOf matches "END kw" and "ENDkw".
func isEndOf(l Line, kw string) bool {
	first, rest := splitKeyword(l.Text)
	if first == "END"+kw {
		return rest == ""
	}
	if first != "END" {
		return false
	}
	second, tail := splitKeyword(rest)
	return second == kw && tail == ""
}

func incompleteBlock(kw string) error {
	return &Error{
		Status:  StatusSyntax,
		Message: "block has no matching end",
		Name:    kw,
		Pos:     -1,
		wrapped: ErrIncompleteBlock,
	}
}

// findClose returns the index of the line closing the block opened by
// lines[0], skipping nested blocks of the same kind.
func findClose(lines []Line, kw string, opens, closes func(Line) bool) (int, error) {
	depth := 0
	for i := 1; i < len(lines); i++ {
		switch {
		case opens(lines[i]):
			depth++
		case closes(lines[i]):
			if depth == 0 {
				return i, nil
			}
			depth--
		}
	}
	return len(lines), incompleteBlock(kw)
}

func keywordIs(kw string) func(Line) bool {
	return func(l Line) bool {
		first, _ := splitKeyword(l.Text)
		return first == kw
	}
}

// runBody executes body in a fresh child of scope. Plain assignments made
// inside the body are merged back into scope when the child is collected.
func runBody(rt *Runtime, scope Scope, body []Line) (err error) {
	child, err := scope.Child()
	if err != nil {
		return err
	}
	defer func() {
		if _, cerr := child.CollectMerged(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return rt.ExecuteLines(child, body)
}

// runLoopBody is runBody for one loop iteration; BREAK and CONTINUE are
// only accepted inside it.
func runLoopBody(rt *Runtime, scope Scope, body []Line) error {
	rt.loops++
	defer func() { rt.loops-- }()
	return runBody(rt, scope, body)
}

// inlineBody wraps a statement written on the opener's own line.
func inlineBody(number int, text string) []Line {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return []Line{NewLine(number, strings.TrimSpace(text))}
}

type ifBranch struct {
	cond string
	body []Line
}

type ifBlock struct {
	branches []ifBranch
	elseBody []Line
	hasElse  bool
}

// isIfOpener matches a multi-line IF, i.e. one whose THEN ends the line.
func isIfOpener(l Line) bool {
	kw, rest := splitKeyword(l.Text)
	if kw != "IF" {
		return false
	}
	at := indexWord(rest, "THEN", 0)
	return at >= 0 && strings.TrimSpace(rest[at+4:]) == ""
}

func parseCondition(kw, rest string) (string, string, error) {
	at := indexWord(rest, "THEN", 0)
	if at < 0 {
		return "", "", syntaxError(-1, "%s without THEN", kw)
	}
	cond := strings.TrimSpace(rest[:at])
	if cond == "" {
		return "", "", syntaxError(-1, "%s without condition", kw)
	}
	return cond, strings.TrimSpace(rest[at+4:]), nil
}

func newIfBlock(rt *Runtime, lines []Line) (Block, int, error) {
	_, rest := splitKeyword(lines[0].Text)
	cond, tail, err := parseCondition("IF", rest)
	if err != nil {
		return nil, 1, err
	}
	b := &ifBlock{}

	if tail != "" {
		thenPart := tail
		if at := indexWord(tail, "ELSE", 0); at >= 0 {
			thenPart = strings.TrimSpace(tail[:at])
			b.hasElse = true
			b.elseBody = inlineBody(lines[0].Number, tail[at+4:])
		}
		b.branches = []ifBranch{{cond: cond, body: inlineBody(lines[0].Number, thenPart)}}
		return b, 1, nil
	}

	current := &ifBranch{cond: cond}
	body := &current.body
	depth := 0
	for i := 1; i < len(lines); i++ {
		l := lines[i]
		kw, rest := splitKeyword(l.Text)
		switch {
		case isIfOpener(l):
			depth++
		case isEndOf(l, "IF"):
			if depth == 0 {
				if !b.hasElse {
					b.branches = append(b.branches, *current)
				}
				return b, i + 1, nil
			}
			depth--
		case depth == 0 && (kw == "ELSEIF" || (kw == "ELSE" && strings.HasPrefix(foldName(rest), "IF "))):
			if b.hasElse {
				return nil, i + 1, syntaxError(-1, "ELSEIF after ELSE")
			}
			if kw == "ELSE" {
				_, rest = splitKeyword(rest)
			}
			c, tail, err := parseCondition(kw, rest)
			if err != nil {
				return nil, i + 1, err
			}
			if tail != "" {
				return nil, i + 1, syntaxError(-1, "unexpected %q after THEN", tail)
			}
			b.branches = append(b.branches, *current)
			current = &ifBranch{cond: c}
			body = &current.body
			continue
		case depth == 0 && kw == "ELSE":
			if b.hasElse {
				return nil, i + 1, syntaxError(-1, "duplicate ELSE")
			}
			b.branches = append(b.branches, *current)
			b.hasElse = true
			body = &b.elseBody
			continue
		}
		*body = append(*body, l)
	}
	return nil, len(lines), incompleteBlock("IF")
}

func (b *ifBlock) Execute(rt *Runtime, scope Scope) error {
	for _, br := range b.branches {
		ok, err := rt.EvaluateBool(scope, br.cond)
		if err != nil {
			return err
		}
		if ok {
			return runBody(rt, scope, br.body)
		}
	}
	if b.hasElse {
		return runBody(rt, scope, b.elseBody)
	}
	return nil
}
