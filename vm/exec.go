package vm

import (
	"fmt"

	"github.com/lollipopkit/luacore/luaerr"
	"github.com/lollipopkit/luacore/proto"
	"github.com/lollipopkit/luacore/state"
)

// Install wires a State's reentrant-call hook to this package's Call,
// resolving the state/vm/proto import cycle (state cannot import vm, since
// vm imports state) the way the teacher's vm package depends on an
// interface rather than the concrete state type — here the indirection is
// a plain function value installed once at construction instead of a
// dedicated interface type, since vm needs the concrete *state.State
// and *proto.Prototype anyway to run the dispatch loop.
func Install(st *state.State) {
	st.Call = Call
}

// Call invokes fn (a *state.Closure or *state.NativeFunc) with args,
// reentering the executor for Lua closures. This is spec §6's call entry
// point and also the hook every metamethod, table.sort comparator and
// pattern-match function replacement goes through.
func Call(st *state.State, fn state.Value, args []state.Value) (results []state.Value, err error) {
	switch f := fn.(type) {
	case *state.NativeFunc:
		st.CallStack = append(st.CallStack, state.Frame{Source: "[native]", FuncName: f.Name})
		defer func() { st.CallStack = st.CallStack[:len(st.CallStack)-1] }()
		return f.Fn(st, args)
	case *state.Closure:
		return runClosure(st, f, args)
	default:
		if mm := st.Metafield(fn, "__call"); mm != nil {
			return Call(st, mm, append([]state.Value{fn}, args...))
		}
		return nil, luaerr.NewTypeError("call", state.TypeOf(fn).String())
	}
}

// runClosure drives the dispatch loop for one Lua closure invocation,
// mirroring the teacher's per-call frame push/pop in state/api_call.go but
// returning an error instead of panicking through a C-style longjmp, per
// spec §6/§7 (every runtime fault becomes a *luaerr.RuntimeError, caught
// here and turned into a Go error so pcall-style callers can recover).
func runClosure(st *state.State, c *state.Closure, args []state.Value) (results []state.Value, err error) {
	fr := newFrame(c, args)
	cells := map[int]*state.Cell{}
	st.CallStack = append(st.CallStack, state.Frame{Source: c.Proto.Source, Line: c.Proto.LineStart})
	defer func() {
		st.CallStack = st.CallStack[:len(st.CallStack)-1]
		if r := recover(); r != nil {
			re, ok := r.(*luaerr.RuntimeError)
			if !ok {
				re = luaerr.NewGenericError(fmt.Sprintf("%v", r))
			}
			re.Traceback = append(re.Traceback, luaerr.Frame{Source: c.Proto.Source, Line: currentLine(c, fr)})
			err = re
		}
	}()

	instrs := c.Proto.Instructions
	for fr.pc < len(instrs) {
		in := instrs[fr.pc]
		fr.pc++
		if done, out := step(st, c, fr, cells, in); done {
			return out, nil
		}
	}
	return nil, nil
}

func currentLine(c *state.Closure, fr *frame) int {
	pc := fr.pc - 1
	if pc >= 0 && pc < len(c.Proto.Lines) {
		return c.Proto.Lines[pc]
	}
	return c.Proto.LineStart
}

// step executes one instruction. It returns done=true with the call's
// results when the instruction was a Return.
func step(st *state.State, c *state.Closure, fr *frame, cells map[int]*state.Cell, in proto.Instr) (bool, []state.Value) {
	switch in.Op {
	case proto.OpLoadConst:
		fr.set(in.A, c.Proto.Constants[in.Const])
	case proto.OpLoadBool:
		fr.set(in.A, in.B != 0)
	case proto.OpLoadNil:
		for i := 0; i < in.B; i++ {
			fr.set(in.A+i, nil)
		}
	case proto.OpMove:
		fr.set(in.A, fr.get(in.B))

	case proto.OpAdd, proto.OpSub, proto.OpMul, proto.OpDiv, proto.OpFloorDiv, proto.OpMod, proto.OpPow,
		proto.OpBAnd, proto.OpBOr, proto.OpBXor, proto.OpShl, proto.OpShr:
		v, err := st.Arith(arithOpOf(in.Op), fr.get(in.B), fr.get(in.C))
		must(err)
		fr.set(in.A, v)
	case proto.OpConcat:
		fr.set(in.A, concat(st, fr.get(in.B), fr.get(in.C)))
	case proto.OpNeg:
		v, err := st.Arith(state.OpUnm, fr.get(in.B), nil)
		must(err)
		fr.set(in.A, v)
	case proto.OpBNot:
		v, err := st.Arith(state.OpBNot, fr.get(in.B), nil)
		must(err)
		fr.set(in.A, v)
	case proto.OpNot:
		fr.set(in.A, !state.Truthy(fr.get(in.B)))
	case proto.OpLen:
		fr.set(in.A, length(st, fr.get(in.B)))

	case proto.OpEq:
		v, err := st.Compare("==", fr.get(in.B), fr.get(in.C))
		must(err)
		fr.set(in.A, v)
	case proto.OpLt:
		v, err := st.Compare("<", fr.get(in.B), fr.get(in.C))
		must(err)
		fr.set(in.A, v)
	case proto.OpLe:
		v, err := st.Compare("<=", fr.get(in.B), fr.get(in.C))
		must(err)
		fr.set(in.A, v)

	case proto.OpGetGlobal:
		fr.set(in.A, st.Globals[in.Str])
	case proto.OpSetGlobal:
		st.Globals[in.Str] = fr.get(in.A)

	case proto.OpGetUpvalue:
		fr.set(in.A, c.Upvalues[in.B].Get())
	case proto.OpSetUpvalue:
		c.Upvalues[in.A].Set(fr.get(in.B))
	case proto.OpGetOpenUpvalue:
		fr.set(in.A, fr.openCell(in.B, cells).Get())
	case proto.OpSetOpenUpvalue:
		fr.openCell(in.A, cells).Set(fr.get(in.B))

	case proto.OpNewTable:
		fr.set(in.A, st.NewTable(0, 0))
	case proto.OpGetField:
		fr.set(in.A, indexGet(st, fr.get(in.B), in.Str))
	case proto.OpSetField:
		indexSet(st, fr.get(in.A), in.Str, fr.get(in.C))
	case proto.OpGetIndex:
		fr.set(in.A, indexGet(st, fr.get(in.B), fr.get(in.C)))
	case proto.OpSetIndex:
		indexSet(st, fr.get(in.A), fr.get(in.B), fr.get(in.C))
	case proto.OpSetList:
		execSetList(st, fr, in)
	case proto.OpSelf:
		obj := fr.get(in.B)
		fr.set(in.A, indexGet(st, obj, in.Str))
		fr.set(in.A+1, obj)

	case proto.OpClosure:
		fr.set(in.A, makeClosure(st, c, fr, cells, in.B))
	case proto.OpCall:
		execCall(st, fr, in)
	case proto.OpVararg:
		execVararg(fr, in)
	case proto.OpReturn:
		return true, execReturn(fr, in)

	case proto.OpJump:
		fr.pc = in.Jump
	case proto.OpJumpIfFalse:
		if !state.Truthy(fr.get(in.A)) {
			fr.pc = in.Jump
		}
	case proto.OpJumpIfTrue:
		if state.Truthy(fr.get(in.A)) {
			fr.pc = in.Jump
		}

	case proto.OpForPrep:
		execForPrep(fr, in)
	case proto.OpForLoop:
		execForLoop(fr, in)
	case proto.OpTForCall:
		execTForCall(st, fr, in)
	case proto.OpTForLoop:
		if fr.get(in.A) == nil {
			fr.pc = in.Jump
		} else {
			fr.set(in.A-1, fr.get(in.A))
		}

	default:
		panic(luaerr.NewGenericError(fmt.Sprintf("vm: unhandled opcode %v", in.Op)))
	}
	return false, nil
}

func must(err error) {
	if err != nil {
		if re, ok := err.(*luaerr.RuntimeError); ok {
			panic(re)
		}
		panic(luaerr.NewGenericError(err.Error()))
	}
}

func arithOpOf(op proto.Op) state.ArithOp {
	switch op {
	case proto.OpAdd:
		return state.OpAdd
	case proto.OpSub:
		return state.OpSub
	case proto.OpMul:
		return state.OpMul
	case proto.OpDiv:
		return state.OpDiv
	case proto.OpFloorDiv:
		return state.OpIDiv
	case proto.OpMod:
		return state.OpMod
	case proto.OpPow:
		return state.OpPow
	case proto.OpBAnd:
		return state.OpBAnd
	case proto.OpBOr:
		return state.OpBOr
	case proto.OpBXor:
		return state.OpBXor
	case proto.OpShl:
		return state.OpShl
	case proto.OpShr:
		return state.OpShr
	default:
		panic("vm: not an arith opcode")
	}
}
