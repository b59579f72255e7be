package compiler

import (
	"fmt"
	"io"
	"strings"
)

// Disassemble renders the whole chunk in human-readable form, for debug
// tracing.
func (c *Chunk) Disassemble(name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", name)
	for off := 0; off < len(c.Code); {
		off = c.DisassembleInstruction(&sb, off)
	}
	return sb.String()
}

// DisassembleInstruction writes the instruction at off to w and returns
// the offset of the next instruction.
func (c *Chunk) DisassembleInstruction(w io.Writer, off int) int {
	fmt.Fprintf(w, "%04d ", off)
	if off > 0 && c.Lines[off] == c.Lines[off-1] {
		io.WriteString(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", c.Lines[off])
	}

	op := Opcode(c.Code[off])
	if op > OpcodeMax {
		fmt.Fprintf(w, "unknown opcode %d\n", byte(op))
		return off + 1
	}
	if !op.HasArg() {
		fmt.Fprintf(w, "%s\n", op)
		return off + 1
	}

	arg := c.Code[off+1]
	switch op {
	case GET_LOCAL, SET_LOCAL:
		fmt.Fprintf(w, "%-16s %4d\n", op, arg)
	default:
		// the operand indexes the constant pool
		fmt.Fprintf(w, "%-16s %4d '%v'\n", op, arg, c.Constants[arg])
	}
	return off + 2
}
