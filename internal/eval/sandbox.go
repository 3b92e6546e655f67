package eval

import "strings"

const maxExpressionLength = 1000

var reservedTokens = []string{
	"eval", "exec", "import", "require", "process", "global", "window", "document", "Function", "constructor",
}

// checkSandbox rejects expressions that are too long or that mention
// any reserved token, keeping the evaluator from ever touching
// process/runtime escape hatches.
func checkSandbox(expression string) error {
	if len(expression) > maxExpressionLength {
		return errUnsafe(expression, "expression exceeds 1000 characters")
	}
	for _, tok := range reservedTokens {
		if containsWord(expression, tok) {
			return errUnsafe(expression, "expression contains reserved token "+tok)
		}
	}
	return nil
}

// containsWord reports whether tok appears in s as a standalone
// identifier-ish substring (not just a naive Contains, so "processed"
// doesn't trip on "process").
func containsWord(s, tok string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], tok)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(tok)
		leftOK := start == 0 || !isIdentRune(rune(s[start-1]))
		rightOK := end >= len(s) || !isIdentRune(rune(s[end]))
		if leftOK && rightOK {
			return true
		}
		idx = start + 1
	}
}

func isIdentRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
