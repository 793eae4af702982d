// Package vm implements the register-based executor (C7): a flat dispatch
// loop over proto.Instr that drives state.State/state.Table/state.Closure.
// Grounded on the teacher's vm package (instruction.go's Instruction
// decoding plus inst_*.go's per-opcode semantics) but restructured around
// the jump-based flat Instr encoding of package proto instead of the
// teacher's packed-word ABC/ABx instruction format. Runtime faults panic
// inside the dispatch loop and are recovered into error returns at each
// Lua call level (runClosure), per spec §6.
package vm

import (
	"github.com/lollipopkit/luacore/state"
)

// frame is one activation record: a closure together with its register
// file, varargs and the instruction pointer. Registers are preallocated to
// Prototype.MaxRegister (the declared locals) and grow on demand past it
// for the temp registers code generation uses above the locals.
type frame struct {
	closure *state.Closure
	regs    []state.Value
	varargs []state.Value
	pc      int
	top     int // register index one past the last value of the most
	// recent multi-valued result (call/vararg/setlist consumer protocol)
}

func newFrame(c *state.Closure, args []state.Value) *frame {
	f := &frame{closure: c}
	n := c.Proto.ParamCount
	f.regs = make([]state.Value, max(n, c.Proto.MaxRegister))
	for i := 0; i < n && i < len(args); i++ {
		f.regs[i] = args[i]
	}
	if c.Proto.IsVararg && len(args) > n {
		f.varargs = append([]state.Value(nil), args[n:]...)
	}
	return f
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (f *frame) get(i int) state.Value {
	f.ensure(i)
	return f.regs[i]
}

func (f *frame) set(i int, v state.Value) {
	f.ensure(i)
	f.regs[i] = v
}

func (f *frame) ensure(i int) {
	for i >= len(f.regs) {
		f.regs = append(f.regs, nil)
	}
}

// window returns a copy of registers [from, upto) for handing to a call or
// return as an argument/result slice.
func (f *frame) window(from, upto int) []state.Value {
	f.ensure(upto - 1)
	out := make([]state.Value, upto-from)
	copy(out, f.regs[from:upto])
	return out
}

// openCell returns (creating if necessary) the shared upvalue cell backing
// register reg, used by closures created inside this frame that capture
// it. Captured-local registers always go through a Cell at read/write
// time (see code/gen_exp.go's GetOpenUpvalue/SetOpenUpvalue), so the cell
// is the register's single source of truth once it is captured.
func (f *frame) openCell(reg int, cells map[int]*state.Cell) *state.Cell {
	if c, ok := cells[reg]; ok {
		return c
	}
	c := &state.Cell{}
	c.Set(f.get(reg))
	cells[reg] = c
	return c
}
