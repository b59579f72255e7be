package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		if tok.String() == "" {
			t.Errorf("missing string representation of token %d", tok)
		}
	}
}

func TestLookupKw(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		lit := tok.String()
		if tok == ERROR || tok == EOF {
			// multi-word descriptions, not identifier-shaped
			continue
		}
		if lit[0] < 'a' || lit[0] > 'z' {
			continue
		}
		expect := tok >= kwStart && tok <= kwEnd
		val := LookupKw(lit)
		if expect {
			require.Equal(t, tok, val, lit)
		} else {
			require.Equal(t, IDENT, val, lit)
		}
	}
}

func TestLookupKwIdents(t *testing.T) {
	// identifiers that share a prefix with keywords must not classify
	// as keywords
	for _, lit := range []string{
		"a", "an", "ands", "f", "fa", "fun_", "classy", "nils",
		"t", "th", "thi", "thisx", "truex", "variable", "whiles", "x", "_",
	} {
		require.Equal(t, IDENT, LookupKw(lit), lit)
	}
}
