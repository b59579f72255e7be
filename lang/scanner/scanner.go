// Package scanner tokenizes Calla source for the compiler to consume.
// Tokens are produced on demand, one Scan call at a time. The scanner
// never fails: scan errors are reported as ERROR tokens whose lexeme is
// the message, and scanning can always continue on the next call.
package scanner

import "github.com/calla-lang/calla/lang/token"

// Scanner tokenizes a source buffer. The zero value is not usable, call
// Init first. The scanner operates on raw bytes and is encoding
// agnostic: multi-byte sequences pass through string literals and
// comments untouched. Identifiers are ASCII letters, digits and '_' only;
// any other byte outside a string or comment is an unexpected character.
type Scanner struct {
	// immutable state after Init
	src []byte

	// mutable scanning state
	start int // offset in bytes of the token being scanned
	off   int // reading offset in bytes
	line  int // 1-based line number at off
}

// Init initializes the scanner to tokenize a new source buffer.
func (s *Scanner) Init(src []byte) {
	s.src = src
	s.start = 0
	s.off = 0
	s.line = 1
}

func (s *Scanner) atEnd() bool { return s.off >= len(s.src) }

func (s *Scanner) advance() byte {
	b := s.src[s.off]
	s.off++
	return b
}

// peek returns the byte at the reading offset without advancing the
// scanner. If the scanner is at EOF, peek returns 0.
func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.off]
}

// peekNext is like peek for the byte following the reading offset.
func (s *Scanner) peekNext() byte {
	if s.off+1 >= len(s.src) {
		return 0
	}
	return s.src[s.off+1]
}

// advance only if the next byte matches b.
func (s *Scanner) advanceIf(b byte) bool {
	if s.atEnd() || s.src[s.off] != b {
		return false
	}
	s.off++
	return true
}

// Scan returns the next token in the source buffer and fills tokVal with
// its payload.
func (s *Scanner) Scan(tokVal *token.Value) token.Token {
	s.skipWhitespace()
	s.start = s.off

	if s.atEnd() {
		*tokVal = token.Value{Line: s.line}
		return token.EOF
	}

	c := s.advance()
	switch {
	case isLetter(c):
		// keywords and identifiers
		lit := s.ident()
		*tokVal = token.Value{Raw: lit, Line: s.line}
		return token.LookupKw(lit)

	case isDigit(c):
		return s.number(tokVal)
	}

	switch c {
	case '(':
		return s.punct(token.LPAREN, tokVal)
	case ')':
		return s.punct(token.RPAREN, tokVal)
	case '{':
		return s.punct(token.LBRACE, tokVal)
	case '}':
		return s.punct(token.RBRACE, tokVal)
	case ',':
		return s.punct(token.COMMA, tokVal)
	case '.':
		return s.punct(token.DOT, tokVal)
	case '-':
		return s.punct(token.MINUS, tokVal)
	case '+':
		return s.punct(token.PLUS, tokVal)
	case ';':
		return s.punct(token.SEMI, tokVal)
	case '/':
		// comments are consumed by skipWhitespace, this is always a slash
		return s.punct(token.SLASH, tokVal)
	case '*':
		return s.punct(token.STAR, tokVal)

	case '!':
		if s.advanceIf('=') {
			return s.punct(token.NEQ, tokVal)
		}
		return s.punct(token.BANG, tokVal)
	case '=':
		if s.advanceIf('=') {
			return s.punct(token.EQL, tokVal)
		}
		return s.punct(token.EQ, tokVal)
	case '<':
		if s.advanceIf('=') {
			return s.punct(token.LE, tokVal)
		}
		return s.punct(token.LT, tokVal)
	case '>':
		if s.advanceIf('=') {
			return s.punct(token.GE, tokVal)
		}
		return s.punct(token.GT, tokVal)

	case '"':
		return s.str(tokVal)
	}

	return s.errorToken("unexpected character", tokVal)
}

func (s *Scanner) punct(tok token.Token, tokVal *token.Value) token.Token {
	*tokVal = token.Value{Raw: string(s.src[s.start:s.off]), Line: s.line}
	return tok
}

func (s *Scanner) errorToken(msg string, tokVal *token.Value) token.Token {
	*tokVal = token.Value{Raw: msg, Line: s.line}
	return token.ERROR
}

func (s *Scanner) ident() string {
	for isLetter(s.peek()) || isDigit(s.peek()) {
		s.off++
	}
	return string(s.src[s.start:s.off])
}

// number scans an integer part with an optional fractional part. The dot
// is part of the number only if a digit follows it.
func (s *Scanner) number(tokVal *token.Value) token.Token {
	for isDigit(s.peek()) {
		s.off++
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.off++ // the dot
		for isDigit(s.peek()) {
			s.off++
		}
	}
	*tokVal = token.Value{Raw: string(s.src[s.start:s.off]), Line: s.line}
	return token.NUMBER
}

// str scans a double-quoted string literal. There is no escape
// processing: the bytes between the quotes are the value. Strings may
// span lines.
func (s *Scanner) str(tokVal *token.Value) token.Token {
	for !s.atEnd() && s.peek() != '"' {
		if s.peek() == '\n' {
			s.line++
		}
		s.off++
	}
	if s.atEnd() {
		return s.errorToken("unterminated string", tokVal)
	}
	s.off++ // closing quote
	*tokVal = token.Value{Raw: string(s.src[s.start:s.off]), Line: s.line}
	return token.STRING
}

func (s *Scanner) skipWhitespace() {
	for {
		switch s.peek() {
		case ' ', '\t', '\r':
			s.off++
		case '\n':
			s.line++
			s.off++
		case '/':
			if s.peekNext() != '/' {
				return
			}
			// line comment, the newline is handled on the next pass
			for !s.atEnd() && s.peek() != '\n' {
				s.off++
			}
		default:
			return
		}
	}
}

func isLetter(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z' || b == '_'
}

func isDigit(b byte) bool { return '0' <= b && b <= '9' }
