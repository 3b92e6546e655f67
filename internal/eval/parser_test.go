package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLex_DottedIdentifierEmitsSeparateDot(t *testing.T) {
	toks, err := lex("user.name")
	require.NoError(t, err)
	require.Len(t, toks, 4) // ident, dot, ident, eof
	assert.Equal(t, tokIdent, toks[0].kind)
	assert.Equal(t, "user", toks[0].text)
	assert.Equal(t, tokDot, toks[1].kind)
	assert.Equal(t, tokIdent, toks[2].kind)
	assert.Equal(t, "name", toks[2].text)
}

func TestParse_MemberAccessChain(t *testing.T) {
	node, err := parseExpr("a.b.c")
	require.NoError(t, err)
	outer, ok := node.(Member)
	require.True(t, ok)
	assert.Equal(t, "c", outer.Name)
	inner, ok := outer.Target.(Member)
	require.True(t, ok)
	assert.Equal(t, "b", inner.Name)
}

func TestParse_MethodCallSugarDesugarsToCall(t *testing.T) {
	node, err := parseExpr(`name.contains("x")`)
	require.NoError(t, err)
	call, ok := node.(Call)
	require.True(t, ok)
	assert.Equal(t, "contains", call.Name)
	require.Len(t, call.Args, 2)
	_, isReceiver := call.Args[0].(VarRef)
	assert.True(t, isReceiver)
}

func TestParse_TrailingGarbageFails(t *testing.T) {
	_, err := parseExpr("1 + 1 )")
	require.Error(t, err)
}

func TestParse_UnterminatedString(t *testing.T) {
	_, err := parseExpr(`"unterminated`)
	require.Error(t, err)
}
