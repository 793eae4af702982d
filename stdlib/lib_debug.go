package stdlib

import "github.com/lollipopkit/luacore/state"

// debugLib is a minimal debug table: getlocal/setlocal are stubs per
// SPEC_FULL.md's Open Question decision (the executor's frame doesn't carry
// named-local debug info, only register slots, so there is nothing real to
// report without compiling a separate symbol table the spec doesn't ask
// for).
var debugLib = map[string]func(st *state.State, args []state.Value) ([]state.Value, error){
	"getlocal": debugGetLocal,
	"setlocal": debugSetLocal,
	"traceback": debugTraceback,
}

func debugGetLocal(st *state.State, args []state.Value) ([]state.Value, error) {
	return []state.Value{nil}, nil
}

func debugSetLocal(st *state.State, args []state.Value) ([]state.Value, error) {
	return []state.Value{false}, nil
}

func debugTraceback(st *state.State, args []state.Value) ([]state.Value, error) {
	msg := optString(args, 0, "")
	trace := msg
	for i := len(st.CallStack) - 1; i >= 0; i-- {
		f := st.CallStack[i]
		if trace != "" {
			trace += "\n"
		}
		trace += "\tin " + f.FuncName
	}
	return []state.Value{trace}, nil
}
