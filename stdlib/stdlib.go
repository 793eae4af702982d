// Package stdlib implements the standard library surface of spec §4.8,
// generalized from the teacher's stdlib package (lib_basic.go, lib_string.go,
// lib_math.go, lib_table.go and friends) from its GoFunction/LkState push-pop
// ABI to state.NativeFunc's direct-argument-slice calling convention.
package stdlib

import (
	"github.com/lollipopkit/luacore/luaerr"
	"github.com/lollipopkit/luacore/state"
)

// Open installs the base library directly into globals (the teacher's
// OpenBaseLib also merges into _G rather than a named sub-table) and every
// other library under its own named table, mirroring the teacher's
// auxlib.go module-name map.
func Open(st *state.State) {
	openBaseLib(st)
	mathRef := newLibTable(st, mathLib)
	openMathConstants(st, mathRef)
	st.Globals["math"] = mathRef
	stringRef := newLibTable(st, stringLib)
	st.Globals["string"] = stringRef
	openStringMetatable(st, stringRef)
	st.Globals["table"] = newLibTable(st, tableLib)
	st.Globals["debug"] = newLibTable(st, debugLib)
	st.Globals["json"] = newLibTable(st, jsonLib)
}

// native wraps a Go function into a *state.NativeFunc value.
func native(name string, fn func(st *state.State, args []state.Value) ([]state.Value, error)) *state.NativeFunc {
	return &state.NativeFunc{Name: name, Fn: fn}
}

// newLibTable allocates a table on st's heap, populates it from funcs and
// returns its ref, the same shape the teacher's NewLib gives every
// sub-library (math, string, table, ...).
func newLibTable(st *state.State, funcs map[string]func(st *state.State, args []state.Value) ([]state.Value, error)) state.TableRef {
	ref := st.NewTable(0, len(funcs))
	t := st.Table(ref)
	for name, fn := range funcs {
		t.Put(name, native(name, fn))
	}
	return ref
}

func arg(args []state.Value, i int) state.Value {
	if i < 0 || i >= len(args) {
		return nil
	}
	return args[i]
}

func checkString(fn string, args []state.Value, i int) (string, error) {
	v := arg(args, i)
	switch x := v.(type) {
	case string:
		return x, nil
	case int64, float64:
		return state.ToString(x), nil
	default:
		return "", luaerr.NewArgumentError(fn, i+1, "string", state.TypeOf(v).String(), "")
	}
}

func checkInt(fn string, args []state.Value, i int) (int64, error) {
	v := arg(args, i)
	n, ok := state.ToInteger(v)
	if !ok {
		return 0, luaerr.NewArgumentError(fn, i+1, "number", state.TypeOf(v).String(), "")
	}
	return n, nil
}

func checkFloat(fn string, args []state.Value, i int) (float64, error) {
	v := arg(args, i)
	n, ok := state.ToFloat(v)
	if !ok {
		return 0, luaerr.NewArgumentError(fn, i+1, "number", state.TypeOf(v).String(), "")
	}
	return n, nil
}

func checkTable(fn string, args []state.Value, i int) (state.TableRef, error) {
	v := arg(args, i)
	ref, ok := v.(state.TableRef)
	if !ok {
		return 0, luaerr.NewArgumentError(fn, i+1, "table", state.TypeOf(v).String(), "")
	}
	return ref, nil
}

func optInt(args []state.Value, i int, dft int64) int64 {
	v := arg(args, i)
	if v == nil {
		return dft
	}
	n, ok := state.ToInteger(v)
	if !ok {
		return dft
	}
	return n
}

func optString(args []state.Value, i int, dft string) string {
	v := arg(args, i)
	if v == nil {
		return dft
	}
	s, ok := v.(string)
	if !ok {
		return dft
	}
	return s
}

// posRelat translates a relative string position per Lua's string library
// convention: negative counts back from the end. Grounded on the teacher's
// str.go posRelat (lua-5.3.4/lstrlib.c's posrelat), unchanged in behavior.
func posRelat(pos int64, length int) int {
	p := int(pos)
	if p >= 0 {
		return p
	}
	if -p > length {
		return 0
	}
	return length + p + 1
}
