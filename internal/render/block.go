package render

import "regexp"

// Kind identifies which block construct a Block represents.
type Kind string

const (
	KindIf     Kind = "if"
	KindUnless Kind = "unless"
	KindEach   Kind = "each"
	KindWith   Kind = "with"
)

// Block is a single `{{#kind cond}}...{{/kind}}` region extracted from
// a template.
type Block struct {
	Kind      Kind
	Condition string
	Body      string
	Else      string
	Start     int
	End       int
}

// blockPatterns holds one compiled, dot-all, multiline regular
// expression per kind, matching the literal marker grammar:
// `{{#KIND cond}} … {{/KIND}}`. Same-kind nesting is a known
// limitation of this approach: the inner closing marker terminates
// the match before the outer one is reached.
var blockPatterns = map[Kind]*regexp.Regexp{
	KindIf:     regexp.MustCompile(`(?s)\{\{#if\s+(.*?)\}\}(.*?)\{\{/if\}\}`),
	KindUnless: regexp.MustCompile(`(?s)\{\{#unless\s+(.*?)\}\}(.*?)\{\{/unless\}\}`),
	KindEach:   regexp.MustCompile(`(?s)\{\{#each\s+(.*?)\}\}(.*?)\{\{/each\}\}`),
	KindWith:   regexp.MustCompile(`(?s)\{\{#with\s+(.*?)\}\}(.*?)\{\{/with\}\}`),
}

var elsePattern = regexp.MustCompile(`(?s)\{\{else\}\}`)

// ExtractBlocks finds every block-marker match across all four kinds
// in one pass per kind, and returns them ordered by starting position.
func ExtractBlocks(text string) []Block {
	var blocks []Block
	for kind, re := range blockPatterns {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			start, end := m[0], m[1]
			condStart, condEnd := m[2], m[3]
			bodyStart, bodyEnd := m[4], m[5]
			condition := trimSpace(text[condStart:condEnd])
			body := text[bodyStart:bodyEnd]

			blk := Block{Kind: kind, Condition: condition, Start: start, End: end}
			if loc := elsePattern.FindStringIndex(body); loc != nil {
				blk.Body = body[:loc[0]]
				blk.Else = body[loc[1]:]
			} else {
				blk.Body = body
			}
			blocks = append(blocks, blk)
		}
	}
	sortBlocksByStart(blocks)
	return outermost(blocks)
}

// outermost drops any block wholly contained within an earlier
// (necessarily lower-Start, since blocks is sorted) block, since each
// kind's regex scans the flat text independently of the other kinds'
// nesting. Inner blocks are picked up on the recursive call over the
// outer block's own Body text.
func outermost(blocks []Block) []Block {
	var kept []Block
	lastEnd := -1
	for _, b := range blocks {
		if b.Start < lastEnd {
			continue
		}
		kept = append(kept, b)
		lastEnd = b.End
	}
	return kept
}

func sortBlocksByStart(blocks []Block) {
	for i := 1; i < len(blocks); i++ {
		for j := i; j > 0 && blocks[j-1].Start > blocks[j].Start; j-- {
			blocks[j-1], blocks[j] = blocks[j], blocks[j-1]
		}
	}
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// variablePattern matches `{{ path }}` markers that are not block
// open/close markers (i.e. don't start with # or /).
var variablePattern = regexp.MustCompile(`\{\{\s*([^#/{}][^{}]*?)\s*\}\}`)
