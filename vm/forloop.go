package vm

import (
	"github.com/lollipopkit/luacore/luaerr"
	"github.com/lollipopkit/luacore/proto"
	"github.com/lollipopkit/luacore/state"
)

// execForPrep implements OpForPrep: A/B/C are the counter/limit/step
// registers and Const is the user-visible loop variable's register. If the
// loop would run zero times, it jumps (Jump) straight to the matching
// OpForLoop, which re-tests and falls through without ever touching the
// loop variable; otherwise it seeds the loop variable with the initial
// counter value and falls through into the body.
func execForPrep(fr *frame, in proto.Instr) {
	counter, limit, step := forLoopValues(fr, in)
	if isZero(step) {
		panic(luaerr.NewGenericError("'for' step is zero"))
	}
	if outOfRange(counter, limit, step) {
		fr.pc = in.Jump
		return
	}
	fr.set(in.Const, counter)
}

// execForLoop implements OpForLoop: advances the counter by step and, if
// still within [counter, limit], refreshes the loop variable and jumps
// back to the body (Jump); otherwise falls through, ending the loop.
func execForLoop(fr *frame, in proto.Instr) {
	counter, limit, step := forLoopValues(fr, in)
	next := addNumeric(counter, step)
	if outOfRange(next, limit, step) {
		return
	}
	fr.set(in.A, next)
	fr.set(in.Const, next)
	fr.pc = in.Jump
}

func forLoopValues(fr *frame, in proto.Instr) (counter, limit, step state.Value) {
	return fr.get(in.A), fr.get(in.B), fr.get(in.C)
}

func isZero(v state.Value) bool {
	switch x := v.(type) {
	case int64:
		return x == 0
	case float64:
		return x == 0
	default:
		return true
	}
}

// outOfRange reports whether counter has passed limit given step's sign,
// coercing to float when either operand isn't already an integer so a
// mixed int/float numeric for loop still compares correctly.
func outOfRange(counter, limit, step state.Value) bool {
	ci, cok := counter.(int64)
	li, lok := limit.(int64)
	si, sok := step.(int64)
	if cok && lok && sok {
		if si > 0 {
			return ci > li
		}
		return ci < li
	}
	cf, _ := state.ToFloat(counter)
	lf, _ := state.ToFloat(limit)
	sf, _ := state.ToFloat(step)
	if sf > 0 {
		return cf > lf
	}
	return cf < lf
}

func addNumeric(a, b state.Value) state.Value {
	if ai, ok := a.(int64); ok {
		if bi, ok := b.(int64); ok {
			return ai + bi
		}
	}
	af, _ := state.ToFloat(a)
	bf, _ := state.ToFloat(b)
	return af + bf
}

// execTForCall implements OpTForCall: invokes the iterator triple living at
// A (func), A+1 (state) and A+2 (control), writing B results starting at
// A+3 for OpTForLoop and the loop-variable Move instructions to consume.
func execTForCall(st *state.State, fr *frame, in proto.Instr) {
	fn := fr.get(in.A)
	results, err := st.CallValue(fn, []state.Value{fr.get(in.A + 1), fr.get(in.A + 2)})
	must(err)
	for i := 0; i < in.B; i++ {
		if i < len(results) {
			fr.set(in.A+3+i, results[i])
		} else {
			fr.set(in.A+3+i, nil)
		}
	}
}
