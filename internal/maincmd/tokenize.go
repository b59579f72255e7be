package maincmd

import (
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/calla-lang/calla/lang/scanner"
	"github.com/calla-lang/calla/lang/token"
)

func (c *Cmd) tokenize(stdio mainer.Stdio, path string) mainer.ExitCode {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", binName, err)
		return exitIO
	}
	TokenizeSource(stdio, src)
	return mainer.Success
}

// TokenizeSource prints the token stream of src to stdout, one token
// per line, for compiler debugging.
func TokenizeSource(stdio mainer.Stdio, src []byte) {
	var s scanner.Scanner
	s.Init(src)

	var tokVal token.Value
	for {
		tok := s.Scan(&tokVal)
		switch tok {
		case token.EOF:
			fmt.Fprintf(stdio.Stdout, "%4d: %s\n", tokVal.Line, tok)
			return
		case token.ERROR:
			fmt.Fprintf(stdio.Stdout, "%4d: %s: %s\n", tokVal.Line, tok, tokVal.Raw)
		default:
			fmt.Fprintf(stdio.Stdout, "%4d: %s %q\n", tokVal.Line, tok, tokVal.Raw)
		}
	}
}
