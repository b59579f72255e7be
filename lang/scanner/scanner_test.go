package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calla-lang/calla/lang/token"
)

type scannedTok struct {
	tok  token.Token
	raw  string
	line int
}

func scanAll(t *testing.T, src string) []scannedTok {
	t.Helper()

	var s Scanner
	s.Init([]byte(src))

	var toks []scannedTok
	var tokVal token.Value
	for {
		tok := s.Scan(&tokVal)
		toks = append(toks, scannedTok{tok, tokVal.Raw, tokVal.Line})
		if tok == token.EOF {
			return toks
		}
		require.Less(t, len(toks), 1000, "scanner does not terminate")
	}
}

func TestScanPunctuation(t *testing.T) {
	toks := scanAll(t, "(){},.-+;/* ! != = == > >= < <=")
	want := []scannedTok{
		{token.LPAREN, "(", 1},
		{token.RPAREN, ")", 1},
		{token.LBRACE, "{", 1},
		{token.RBRACE, "}", 1},
		{token.COMMA, ",", 1},
		{token.DOT, ".", 1},
		{token.MINUS, "-", 1},
		{token.PLUS, "+", 1},
		{token.SEMI, ";", 1},
		{token.SLASH, "/", 1},
		{token.STAR, "*", 1},
		{token.BANG, "!", 1},
		{token.NEQ, "!=", 1},
		{token.EQ, "=", 1},
		{token.EQL, "==", 1},
		{token.GT, ">", 1},
		{token.GE, ">=", 1},
		{token.LT, "<", 1},
		{token.LE, "<=", 1},
		{token.EOF, "", 1},
	}
	assert.Equal(t, want, toks)
}

func TestScanKeywordsAndIdents(t *testing.T) {
	toks := scanAll(t, "var x = orchid and or nilly nil")
	want := []scannedTok{
		{token.VAR, "var", 1},
		{token.IDENT, "x", 1},
		{token.EQ, "=", 1},
		{token.IDENT, "orchid", 1},
		{token.AND, "and", 1},
		{token.OR, "or", 1},
		{token.IDENT, "nilly", 1},
		{token.NIL, "nil", 1},
		{token.EOF, "", 1},
	}
	assert.Equal(t, want, toks)
}

func TestScanNumbers(t *testing.T) {
	toks := scanAll(t, "1 123 1.5 0.25 1.")
	want := []scannedTok{
		{token.NUMBER, "1", 1},
		{token.NUMBER, "123", 1},
		{token.NUMBER, "1.5", 1},
		{token.NUMBER, "0.25", 1},
		// the dot is not part of the number unless a digit follows
		{token.NUMBER, "1", 1},
		{token.DOT, ".", 1},
		{token.EOF, "", 1},
	}
	assert.Equal(t, want, toks)
}

func TestScanStrings(t *testing.T) {
	toks := scanAll(t, `"" "hi" "a b"`)
	want := []scannedTok{
		{token.STRING, `""`, 1},
		{token.STRING, `"hi"`, 1},
		{token.STRING, `"a b"`, 1},
		{token.EOF, "", 1},
	}
	assert.Equal(t, want, toks)
}

func TestScanStringNewlines(t *testing.T) {
	// embedded newlines are legal and advance the line counter
	toks := scanAll(t, "\"a\nb\"\nx")
	want := []scannedTok{
		{token.STRING, "\"a\nb\"", 2},
		{token.IDENT, "x", 3},
		{token.EOF, "", 3},
	}
	assert.Equal(t, want, toks)
}

func TestScanUnterminatedString(t *testing.T) {
	toks := scanAll(t, `"abc`)
	want := []scannedTok{
		{token.ERROR, "unterminated string", 1},
		{token.EOF, "", 1},
	}
	assert.Equal(t, want, toks)
}

func TestScanUnexpectedChar(t *testing.T) {
	toks := scanAll(t, "1 @ 2")
	want := []scannedTok{
		{token.NUMBER, "1", 1},
		{token.ERROR, "unexpected character", 1},
		{token.NUMBER, "2", 1},
		{token.EOF, "", 1},
	}
	assert.Equal(t, want, toks)
}

func TestScanCommentsAndLines(t *testing.T) {
	src := `// leading comment
var a = 1; // trailing comment
// another
print a;`
	toks := scanAll(t, src)
	want := []scannedTok{
		{token.VAR, "var", 2},
		{token.IDENT, "a", 2},
		{token.EQ, "=", 2},
		{token.NUMBER, "1", 2},
		{token.SEMI, ";", 2},
		{token.PRINT, "print", 4},
		{token.IDENT, "a", 4},
		{token.SEMI, ";", 4},
		{token.EOF, "", 4},
	}
	assert.Equal(t, want, toks)
}

func TestScanEmpty(t *testing.T) {
	toks := scanAll(t, " \t\r\n// only a comment\n")
	want := []scannedTok{{token.EOF, "", 3}}
	assert.Equal(t, want, toks)
}

func TestScanDivision(t *testing.T) {
	toks := scanAll(t, "4/2")
	want := []scannedTok{
		{token.NUMBER, "4", 1},
		{token.SLASH, "/", 1},
		{token.NUMBER, "2", 1},
		{token.EOF, "", 1},
	}
	assert.Equal(t, want, toks)
}
