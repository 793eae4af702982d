package vm

import (
	"github.com/lollipopkit/luacore/proto"
	"github.com/lollipopkit/luacore/state"
)

// execCall implements OpCall: B is the argument count, or -1 meaning "every
// value produced by the previous multi-valued instruction" (fr.top, set by
// a trailing call/vararg argument per genCall's lastMulti handling). C is
// the number of results the caller wants, with the same -1 "all" meaning;
// in that case fr.top is updated so a subsequent consumer (return, nested
// call, setlist) can see how many values actually came back.
func execCall(st *state.State, fr *frame, in proto.Instr) {
	argc := in.B
	if argc < 0 {
		argc = fr.top - (in.A + 1)
	}
	fn := fr.get(in.A)
	args := fr.window(in.A+1, in.A+1+argc)
	results, err := st.CallValue(fn, args)
	must(err)
	want := in.C
	if want < 0 {
		for i, v := range results {
			fr.set(in.A+i, v)
		}
		fr.top = in.A + len(results)
		return
	}
	for i := 0; i < want; i++ {
		if i < len(results) {
			fr.set(in.A+i, results[i])
		} else {
			fr.set(in.A+i, nil)
		}
	}
}

// execVararg implements OpVararg: B is the number of varargs to copy into
// registers starting at A, or -1 for "all of them", updating fr.top.
func execVararg(fr *frame, in proto.Instr) {
	want := in.B
	if want < 0 {
		for i, v := range fr.varargs {
			fr.set(in.A+i, v)
		}
		fr.top = in.A + len(fr.varargs)
		return
	}
	for i := 0; i < want; i++ {
		if i < len(fr.varargs) {
			fr.set(in.A+i, fr.varargs[i])
		} else {
			fr.set(in.A+i, nil)
		}
	}
}

// execReturn implements OpReturn: B is the number of values starting at A
// to return, or -1 meaning "up to fr.top" (a trailing multi-valued
// expression in the return list, per genReturn's lastMulti handling).
func execReturn(fr *frame, in proto.Instr) []state.Value {
	count := in.B
	if count < 0 {
		count = fr.top - in.A
		if count < 0 {
			count = 0
		}
	}
	return fr.window(in.A, in.A+count)
}

// execSetList implements OpSetList: copies count values starting at
// register B into the array part of the table at A, starting at 1-based
// index Const+1. count == -1 (C) means "up to fr.top", for a trailing
// call/vararg expression in a table constructor (genTable).
func execSetList(st *state.State, fr *frame, in proto.Instr) {
	t := st.Table(fr.get(in.A).(state.TableRef))
	count := in.C
	if count < 0 {
		count = fr.top - in.B
		if count < 0 {
			count = 0
		}
	}
	for i := 0; i < count; i++ {
		t.Put(int64(in.Const+i+1), fr.get(in.B+i))
	}
}
