// Package compiler implements the single-pass Calla compiler: a Pratt
// parser that walks the token stream and emits bytecode directly into a
// chunk, resolving local variables as it goes. There is no intermediate
// syntax tree.
package compiler

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/calla-lang/calla/lang/scanner"
	"github.com/calla-lang/calla/lang/token"
)

// maxLocals bounds the local variable table of a frame; local slots are
// one-byte operands.
const maxLocals = 256

// An Error is a single compile diagnostic.
type Error struct {
	Line   int
	Lexeme string // offending lexeme; empty for scanner diagnostics
	AtEnd  bool   // the diagnostic is at end of input
	Msg    string
}

func (e *Error) Error() string {
	switch {
	case e.AtEnd:
		return fmt.Sprintf("[line %d] Error at end: %s", e.Line, e.Msg)
	case e.Lexeme == "":
		return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Msg)
	default:
		return fmt.Sprintf("[line %d] Error at '%s': %s", e.Line, e.Lexeme, e.Msg)
	}
}

// PrintError prints err to w, one line per diagnostic if err aggregates
// several of them.
func PrintError(w io.Writer, err error) {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			fmt.Fprintln(w, e)
		}
		return
	}
	if err != nil {
		fmt.Fprintln(w, err)
	}
}

// Compile compiles source into a chunk of bytecode. On failure the chunk
// is nil and the error aggregates one *Error per diagnostic, in source
// order.
func Compile(name string, src []byte) (*Chunk, error) {
	p := parser{chunk: &Chunk{Name: name}}
	p.scan.Init(src)

	p.advance()
	for !p.match(token.EOF) {
		p.declaration()
	}
	p.emit(byte(RETURN))

	if err := p.errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.Debug("\n" + p.chunk.Disassemble(name))
	}
	return p.chunk, nil
}

// A local is one entry of a frame's local variable table. Its slot in
// the table is also the variable's slot on the machine's value stack.
type local struct {
	name  string
	depth int // scope depth, -1 while declared but not yet initialized
}

// A frame is the function-level compilation state: the table of locals
// in scope and the current scope depth. Depth 0 is the global scope.
type frame struct {
	locals []local
	depth  int
}

type tok struct {
	kind token.Token
	val  token.Value
}

// parser is the compiler state: a two-token window over the scanner
// output, the chunk being emitted into, the current frame, and the
// accumulated diagnostics.
type parser struct {
	scan  scanner.Scanner
	prev  tok
	cur   tok
	chunk *Chunk
	frame frame

	errs      *multierror.Error
	panicMode bool
}

/* Token window */

func (p *parser) advance() {
	p.prev = p.cur
	for {
		p.cur.kind = p.scan.Scan(&p.cur.val)
		if p.cur.kind != token.ERROR {
			return
		}
		p.errorAtCur(p.cur.val.Raw)
	}
}

func (p *parser) check(kind token.Token) bool { return p.cur.kind == kind }

func (p *parser) match(kind token.Token) bool {
	if !p.check(kind) {
		return false
	}
	p.advance()
	return true
}

func (p *parser) consume(kind token.Token, msg string) {
	if !p.check(kind) {
		p.errorAtCur(msg)
		return
	}
	p.advance()
}

/* Diagnostics */

// errorAt records a diagnostic at t and enters panic mode; while in
// panic mode further diagnostics are suppressed until the parser
// synchronizes on a statement boundary.
func (p *parser) errorAt(t tok, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true

	e := &Error{Line: t.val.Line, Msg: msg}
	switch t.kind {
	case token.EOF:
		e.AtEnd = true
	case token.ERROR:
		// the scanner message is the whole diagnostic
	default:
		e.Lexeme = t.val.Raw
	}
	p.errs = multierror.Append(p.errs, e)
}

func (p *parser) error(msg string)      { p.errorAt(p.prev, msg) }
func (p *parser) errorAtCur(msg string) { p.errorAt(p.cur, msg) }

// synchronize skips tokens until a statement boundary: right past a
// semicolon, or right before a token that can begin a declaration or
// statement.
func (p *parser) synchronize() {
	p.panicMode = false

	for p.cur.kind != token.EOF {
		if p.prev.kind == token.SEMI {
			return
		}
		switch p.cur.kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR,
			token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}

/* Emission */

func (p *parser) emit(bs ...byte) {
	for _, b := range bs {
		p.chunk.Write(b, p.prev.val.Line)
	}
}

func (p *parser) emitConstant(v any) {
	p.emit(byte(CONSTANT), p.makeConstant(v))
}

func (p *parser) makeConstant(v any) byte {
	idx := p.chunk.AddConstant(v)
	if idx > 0xff {
		p.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

/* Declarations and statements */

func (p *parser) declaration() {
	if p.match(token.VAR) {
		p.varDeclaration()
	} else {
		p.statement()
	}
	if p.panicMode {
		p.synchronize()
	}
}

func (p *parser) statement() {
	switch {
	case p.match(token.PRINT):
		p.printStatement()
	case p.match(token.LBRACE):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

func (p *parser) printStatement() {
	p.expression()
	p.consume(token.SEMI, "Expect ';' after value.")
	p.emit(byte(PRINT))
}

func (p *parser) expressionStatement() {
	p.expression()
	p.consume(token.SEMI, "Expect ';' after expression.")
	p.emit(byte(POP))
}

func (p *parser) block() {
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		p.declaration()
	}
	p.consume(token.RBRACE, "Expect '}' after block.")
}

// varDeclaration compiles "var NAME (= expr)? ;". At global scope the
// initializer value is consumed by DEFINE_GLOBAL; at local scope it
// stays on the stack as the local's storage, there is no define opcode
// for locals.
func (p *parser) varDeclaration() {
	global := p.parseVariable("Expect variable name.")

	if p.match(token.EQ) {
		p.expression()
	} else {
		p.emit(byte(NIL))
	}
	p.consume(token.SEMI, "Expect ';' after variable declaration.")

	p.defineVariable(global)
}

// parseVariable consumes the declared name. At global scope it returns
// the name's constant-pool index; at local scope it declares the local
// and the returned index is unused.
func (p *parser) parseVariable(errMsg string) byte {
	p.consume(token.IDENT, errMsg)

	p.declareVariable()
	if p.frame.depth > 0 {
		return 0
	}
	return p.identifierConstant(p.prev.val.Raw)
}

func (p *parser) identifierConstant(name string) byte {
	return p.makeConstant(name)
}

// declareVariable appends an uninitialized local for the name in prev,
// rejecting a redeclaration at the same depth. Globals are not tracked
// at compile time, they resolve by name at runtime.
func (p *parser) declareVariable() {
	if p.frame.depth == 0 {
		return
	}

	name := p.prev.val.Raw
	for i := len(p.frame.locals) - 1; i >= 0; i-- {
		l := p.frame.locals[i]
		if l.depth != -1 && l.depth < p.frame.depth {
			break
		}
		if l.name == name {
			p.error("Already a variable with this name in this scope.")
		}
	}
	p.addLocal(name)
}

func (p *parser) addLocal(name string) {
	if len(p.frame.locals) == maxLocals {
		p.error("Too many local variables in function.")
		return
	}
	p.frame.locals = append(p.frame.locals, local{name: name, depth: -1})
}

func (p *parser) defineVariable(global byte) {
	if p.frame.depth > 0 {
		p.markInitialized()
		return
	}
	p.emit(byte(DEFINE_GLOBAL), global)
}

// markInitialized makes the just-declared local visible; until now its
// depth of -1 rejected reads from its own initializer.
func (p *parser) markInitialized() {
	if len(p.frame.locals) == 0 {
		return
	}
	p.frame.locals[len(p.frame.locals)-1].depth = p.frame.depth
}

func (p *parser) beginScope() { p.frame.depth++ }

// endScope pops the locals of the scope being left, both from the
// compile-time table and (one POP each) from the runtime stack.
func (p *parser) endScope() {
	p.frame.depth--

	n := len(p.frame.locals)
	for n > 0 && p.frame.locals[n-1].depth > p.frame.depth {
		p.emit(byte(POP))
		n--
	}
	p.frame.locals = p.frame.locals[:n]
}

/* Expressions */

type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type parseFn func(p *parser, canAssign bool)

// A parseRule describes how a token kind parses: as a prefix of an
// expression, as an infix operator, and with which precedence it binds
// when infix.
type parseRule struct {
	prefix parseFn
	infix  parseFn
	prec   precedence
}

// indexed by token.Token; assigned in init because the rules refer to
// methods that in turn index the table.
var parseRules []parseRule

func init() {
	parseRules = []parseRule{
		token.LPAREN:  {prefix: (*parser).grouping},
		token.MINUS:   {prefix: (*parser).unary, infix: (*parser).binary, prec: precTerm},
		token.PLUS:    {infix: (*parser).binary, prec: precTerm},
		token.SLASH:   {infix: (*parser).binary, prec: precFactor},
		token.STAR:    {infix: (*parser).binary, prec: precFactor},
		token.BANG:    {prefix: (*parser).unary},
		token.NEQ:     {infix: (*parser).binary, prec: precEquality},
		token.EQL:     {infix: (*parser).binary, prec: precEquality},
		token.GT:      {infix: (*parser).binary, prec: precComparison},
		token.GE:      {infix: (*parser).binary, prec: precComparison},
		token.LT:      {infix: (*parser).binary, prec: precComparison},
		token.LE:      {infix: (*parser).binary, prec: precComparison},
		token.IDENT:   {prefix: (*parser).variable},
		token.STRING:  {prefix: (*parser).str},
		token.NUMBER:  {prefix: (*parser).number},
		token.FALSE:   {prefix: (*parser).literal},
		token.NIL:     {prefix: (*parser).literal},
		token.TRUE:    {prefix: (*parser).literal},
		token.WHILE:   {}, // sizes the table to the full token range
	}
}

func (p *parser) expression() { p.parsePrecedence(precAssignment) }

// parsePrecedence parses an expression at the given precedence level or
// higher. Only the lowest level permits an assignment target, so
// canAssign rides down through the prefix and infix callbacks.
func (p *parser) parsePrecedence(prec precedence) {
	p.advance()
	prefix := parseRules[p.prev.kind].prefix
	if prefix == nil {
		p.error("Expect expression.")
		return
	}

	canAssign := prec <= precAssignment
	prefix(p, canAssign)

	for parseRules[p.cur.kind].prec >= prec {
		p.advance()
		parseRules[p.prev.kind].infix(p, canAssign)
	}

	if canAssign && p.match(token.EQ) {
		p.error("Invalid assignment target.")
	}
}

func (p *parser) grouping(bool) {
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after expression.")
}

func (p *parser) number(bool) {
	// the scanner guarantees a valid float literal
	v, _ := strconv.ParseFloat(p.prev.val.Raw, 64)
	p.emitConstant(v)
}

// str emits the lexeme inside the quotes as a string constant. There are
// no escape sequences to process.
func (p *parser) str(bool) {
	raw := p.prev.val.Raw
	p.emitConstant(raw[1 : len(raw)-1])
}

func (p *parser) literal(bool) {
	switch p.prev.kind {
	case token.FALSE:
		p.emit(byte(FALSE))
	case token.NIL:
		p.emit(byte(NIL))
	case token.TRUE:
		p.emit(byte(TRUE))
	}
}

func (p *parser) variable(canAssign bool) {
	p.namedVariable(p.prev.val.Raw, canAssign)
}

// namedVariable emits the load or store of a variable reference. A name
// that resolves against the frame's locals addresses its stack slot;
// anything else addresses the globals table by interned name.
func (p *parser) namedVariable(name string, canAssign bool) {
	var arg byte
	var getOp, setOp Opcode
	if slot := p.resolveLocal(name); slot >= 0 {
		arg, getOp, setOp = byte(slot), GET_LOCAL, SET_LOCAL
	} else {
		arg, getOp, setOp = p.identifierConstant(name), GET_GLOBAL, SET_GLOBAL
	}

	if canAssign && p.match(token.EQ) {
		p.expression()
		p.emit(byte(setOp), arg)
	} else {
		p.emit(byte(getOp), arg)
	}
}

// resolveLocal scans the frame's locals from innermost to outermost and
// returns the slot of the first match, or -1 for a global reference.
func (p *parser) resolveLocal(name string) int {
	for i := len(p.frame.locals) - 1; i >= 0; i-- {
		l := p.frame.locals[i]
		if l.name == name {
			if l.depth == -1 {
				p.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

func (p *parser) unary(bool) {
	op := p.prev.kind

	// compile the operand; unary precedence permits nesting like !!x
	p.parsePrecedence(precUnary)

	switch op {
	case token.MINUS:
		p.emit(byte(NEGATE))
	case token.BANG:
		p.emit(byte(NOT))
	}
}

func (p *parser) binary(bool) {
	op := p.prev.kind
	rule := parseRules[op]

	// right operand binds one level tighter: left associativity
	p.parsePrecedence(rule.prec + 1)

	switch op {
	case token.NEQ:
		p.emit(byte(EQUAL), byte(NOT))
	case token.EQL:
		p.emit(byte(EQUAL))
	case token.GT:
		p.emit(byte(GREATER))
	case token.GE:
		p.emit(byte(LESS), byte(NOT))
	case token.LT:
		p.emit(byte(LESS))
	case token.LE:
		p.emit(byte(GREATER), byte(NOT))
	case token.PLUS:
		p.emit(byte(ADD))
	case token.MINUS:
		p.emit(byte(SUBTRACT))
	case token.STAR:
		p.emit(byte(MULTIPLY))
	case token.SLASH:
		p.emit(byte(DIVIDE))
	}
}
