package compiler

import "fmt"

// An Opcode identifies a virtual machine instruction. Instructions are
// one byte, followed by a one-byte operand for the opcodes that take
// one.
type Opcode uint8

// "x ADD y" is a "stack picture" that describes the state of the stack
// before and after execution of the instruction.
//
// OP<index> indicates an immediate operand that is an index into the
// specified table: the constant pool or the local slots.
const ( //nolint:revive
	NIL   Opcode = iota // - NIL nil
	TRUE                // - TRUE true
	FALSE               // - FALSE false
	POP                 // x POP -

	// binary comparisons
	EQUAL   // x y EQUAL bool
	GREATER // x y GREATER bool
	LESS    // x y LESS bool

	// binary arithmetic; ADD doubles as string concatenation
	ADD      // x y ADD x+y
	SUBTRACT // x y SUBTRACT x-y
	MULTIPLY // x y MULTIPLY x*y
	DIVIDE   // x y DIVIDE x/y

	// unary operators
	NOT    // x NOT bool
	NEGATE // x NEGATE -x

	PRINT  // x PRINT -
	RETURN // - RETURN -

	// --- opcodes with a one-byte operand must go below this line ---

	CONSTANT      //   - CONSTANT<constant>   value
	GET_LOCAL     //   - GET_LOCAL<slot>      value
	SET_LOCAL     //   x SET_LOCAL<slot>      x
	DEFINE_GLOBAL //   x DEFINE_GLOBAL<name>  -
	GET_GLOBAL    //   - GET_GLOBAL<name>     value
	SET_GLOBAL    //   x SET_GLOBAL<name>     x

	OpcodeArgMin = CONSTANT
	OpcodeMax    = SET_GLOBAL
)

var opcodeNames = [...]string{
	ADD:           "add",
	CONSTANT:      "constant",
	DEFINE_GLOBAL: "define_global",
	DIVIDE:        "divide",
	EQUAL:         "equal",
	FALSE:         "false",
	GET_GLOBAL:    "get_global",
	GET_LOCAL:     "get_local",
	GREATER:       "greater",
	LESS:          "less",
	MULTIPLY:      "multiply",
	NEGATE:        "negate",
	NIL:           "nil",
	NOT:           "not",
	POP:           "pop",
	PRINT:         "print",
	RETURN:        "return",
	SET_GLOBAL:    "set_global",
	SET_LOCAL:     "set_local",
	SUBTRACT:      "subtract",
	TRUE:          "true",
}

// stackEffect records the effect on the size of the operand stack of
// each kind of instruction.
var stackEffect = [...]int8{
	ADD:           -1,
	CONSTANT:      +1,
	DEFINE_GLOBAL: -1,
	DIVIDE:        -1,
	EQUAL:         -1,
	FALSE:         +1,
	GET_GLOBAL:    +1,
	GET_LOCAL:     +1,
	GREATER:       -1,
	LESS:          -1,
	MULTIPLY:      -1,
	NEGATE:        0,
	NIL:           +1,
	NOT:           0,
	POP:           -1,
	PRINT:         -1,
	RETURN:        0,
	SET_GLOBAL:    0,
	SET_LOCAL:     0,
	SUBTRACT:      -1,
	TRUE:          +1,
}

// HasArg reports whether op is followed by a one-byte operand in the
// code stream.
func (op Opcode) HasArg() bool { return op >= OpcodeArgMin }

// StackEffect returns the net number of stack slots pushed (or popped,
// if negative) by executing op.
func (op Opcode) StackEffect() int { return int(stackEffect[op]) }

func (op Opcode) String() string {
	if op <= OpcodeMax {
		if name := opcodeNames[op]; name != "" {
			return name
		}
	}
	return fmt.Sprintf("illegal op (%d)", op)
}
