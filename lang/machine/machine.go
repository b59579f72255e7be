// Package machine implements the virtual machine that executes
// bytecode-compiled Calla chunks. It also provides the runtime
// representation of the language's values, the interned string heap and
// the open-addressed table backing globals and the intern set.
package machine

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/calla-lang/calla/lang/compiler"
)

// StackMax is the size of the value stack. Local slots are absolute
// offsets from its base; there are no call frames in this machine.
const StackMax = 256

// An EvalError is a runtime failure. The machine aborts the current
// program when one is raised; it does not resume.
type EvalError struct {
	Line int
	Msg  string
}

func (e *EvalError) Error() string { return e.Msg }

// A Machine executes compiled chunks against a fixed-size value stack.
// The zero value is ready to use; the exported fields, if set at all,
// must be set before the first Interpret call. A machine retains its
// globals and interned strings across Interpret calls, which is what
// makes the REPL stateful.
type Machine struct {
	// Stdout and Stderr are the standard output abstractions of the
	// machine. If nil, os.Stdout and os.Stderr are used.
	Stdout io.Writer
	Stderr io.Writer

	// Trace enables the execution trace: before each instruction the
	// stack snapshot and the disassembled instruction are logged at
	// debug level.
	Trace bool

	chunk     *compiler.Chunk
	constants []Value // materialized from the chunk's pool
	ip        int
	stack     [StackMax]Value
	sp        int

	globals Table
	strings Table // the intern set: every live String, mapped to Nil

	stdout io.Writer
	stderr io.Writer
	inited bool
}

func (m *Machine) init() {
	// one-time initialization of the machine
	if m.inited {
		return
	}
	m.inited = true
	if m.Stdout != nil {
		m.stdout = m.Stdout
	} else {
		m.stdout = os.Stdout
	}
	if m.Stderr != nil {
		m.stderr = m.Stderr
	} else {
		m.stderr = os.Stderr
	}
}

// Interpret compiles src and runs the resulting chunk. On compile
// failure the error aggregate is returned without running anything; on
// runtime failure the machine prints the diagnostic to its stderr,
// resets the stack and returns the *EvalError.
func (m *Machine) Interpret(ctx context.Context, name string, src []byte) error {
	m.init()
	if err := ctx.Err(); err != nil {
		return err
	}

	chunk, err := compiler.Compile(name, src)
	if err != nil {
		return err
	}
	m.bind(chunk)
	return m.run()
}

// bind makes chunk current and materializes its constant pool: numbers
// become Number values and every string constant is interned, so by the
// time execution starts, string equality is pointer identity.
func (m *Machine) bind(chunk *compiler.Chunk) {
	m.chunk = chunk
	m.ip = 0
	m.constants = make([]Value, len(chunk.Constants))
	for i, c := range chunk.Constants {
		switch c := c.(type) {
		case float64:
			m.constants[i] = Number(c)
		case string:
			m.constants[i] = m.intern(c)
		default:
			panic(fmt.Sprintf("unexpected constant %T: %[1]v", c))
		}
	}
}

// intern returns the canonical String for the bytes of s, creating and
// recording it if these bytes have not been seen before.
func (m *Machine) intern(s string) *String {
	h := hashString(s)
	if obj := m.strings.FindString(s, h); obj != nil {
		return obj
	}
	obj := &String{s: s, hash: h}
	m.strings.Set(obj, Nil)
	return obj
}

// push and pop do not bounds-check: well-formed emissions cannot over-
// or underflow the stack, a violation is a machine bug.
func (m *Machine) push(v Value) {
	m.stack[m.sp] = v
	m.sp++
}

func (m *Machine) pop() Value {
	m.sp--
	return m.stack[m.sp]
}

func (m *Machine) peek(n int) Value { return m.stack[m.sp-1-n] }

func (m *Machine) run() error {
	code := m.chunk.Code

	for {
		if m.Trace {
			m.traceInstruction()
		}

		op := compiler.Opcode(code[m.ip])
		m.ip++
		var arg byte
		if op.HasArg() {
			arg = code[m.ip]
			m.ip++
		}

		switch op {
		case compiler.CONSTANT:
			m.push(m.constants[arg])

		case compiler.NIL:
			m.push(Nil)

		case compiler.TRUE:
			m.push(True)

		case compiler.FALSE:
			m.push(False)

		case compiler.POP:
			m.pop()

		case compiler.GET_LOCAL:
			m.push(m.stack[arg])

		case compiler.SET_LOCAL:
			// assignment is an expression, the value stays on the stack
			m.stack[arg] = m.peek(0)

		case compiler.DEFINE_GLOBAL:
			name := m.constants[arg].(*String)
			m.globals.Set(name, m.pop())

		case compiler.GET_GLOBAL:
			name := m.constants[arg].(*String)
			v, ok := m.globals.Get(name)
			if !ok {
				return m.runtimeError("Undefined variable '%s'.", name.s)
			}
			m.push(v)

		case compiler.SET_GLOBAL:
			name := m.constants[arg].(*String)
			if m.globals.Set(name, m.peek(0)) {
				// assignment must not create the global
				m.globals.Delete(name)
				return m.runtimeError("Undefined variable '%s'.", name.s)
			}

		case compiler.EQUAL:
			y := m.pop()
			x := m.pop()
			m.push(Bool(Equal(x, y)))

		case compiler.GREATER, compiler.LESS, compiler.SUBTRACT,
			compiler.MULTIPLY, compiler.DIVIDE:

			y, yok := m.peek(0).(Number)
			x, xok := m.peek(1).(Number)
			if !xok || !yok {
				return m.runtimeError("Operands must be numbers.")
			}
			m.sp -= 2
			switch op {
			case compiler.GREATER:
				m.push(Bool(x > y))
			case compiler.LESS:
				m.push(Bool(x < y))
			case compiler.SUBTRACT:
				m.push(x - y)
			case compiler.MULTIPLY:
				m.push(x * y)
			case compiler.DIVIDE:
				m.push(x / y)
			}

		case compiler.ADD:
			x, y := m.peek(1), m.peek(0)
			xs, xok := x.(*String)
			ys, yok := y.(*String)
			if xok && yok {
				m.sp -= 2
				m.push(m.intern(xs.s + ys.s))
				break
			}
			xn, xok := x.(Number)
			yn, yok := y.(Number)
			if !xok || !yok {
				return m.runtimeError("Operands must be two numbers or two strings.")
			}
			m.sp -= 2
			m.push(xn + yn)

		case compiler.NOT:
			m.push(!Truth(m.pop()))

		case compiler.NEGATE:
			n, ok := m.peek(0).(Number)
			if !ok {
				return m.runtimeError("Operand must be a number.")
			}
			m.pop()
			m.push(-n)

		case compiler.PRINT:
			fmt.Fprintln(m.stdout, m.pop())

		case compiler.RETURN:
			return nil

		default:
			panic(fmt.Sprintf("unimplemented: %s", op))
		}
	}
}

// runtimeError reports a failure at the instruction being executed:
// prints the message and the source line to stderr, resets the stack and
// returns the error that aborts the run.
func (m *Machine) runtimeError(format string, args ...any) error {
	line := m.chunk.Line(m.ip - 1)
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(m.stderr, msg)
	fmt.Fprintf(m.stderr, "[line %d] in script\n", line)
	m.resetStack()
	return &EvalError{Line: line, Msg: msg}
}

func (m *Machine) resetStack() {
	for i := range m.stack[:m.sp] {
		m.stack[i] = nil
	}
	m.sp = 0
}

func (m *Machine) traceInstruction() {
	var sb strings.Builder
	sb.WriteString("          ")
	for _, v := range m.stack[:m.sp] {
		fmt.Fprintf(&sb, "[ %s ]", v)
	}
	sb.WriteByte('\n')
	m.chunk.DisassembleInstruction(&sb, m.ip)
	logrus.Debug(sb.String())
}
