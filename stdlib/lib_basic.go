package stdlib

import (
	"fmt"
	"strings"

	"github.com/lollipopkit/luacore/luaerr"
	"github.com/lollipopkit/luacore/state"
)

// openBaseLib merges the base library straight into globals, the way the
// teacher's OpenBaseLib pushes onto the global table instead of a named
// sub-table (lib_basic.go's OpenBaseLib).
func openBaseLib(st *state.State) {
	st.Globals["_VERSION"] = "Lua 5.3"
	st.Globals["print"] = native("print", basePrint)
	st.Globals["type"] = native("type", baseType)
	st.Globals["tostring"] = native("tostring", baseToString)
	st.Globals["tonumber"] = native("tonumber", baseToNumber)
	st.Globals["assert"] = native("assert", baseAssert)
	st.Globals["error"] = native("error", baseError)
	st.Globals["pcall"] = native("pcall", basePCall)
	st.Globals["xpcall"] = native("xpcall", baseXPCall)
	st.Globals["ipairs"] = native("ipairs", baseIPairs)
	st.Globals["pairs"] = native("pairs", basePairs)
	st.Globals["next"] = native("next", baseNext)
	st.Globals["rawget"] = native("rawget", baseRawGet)
	st.Globals["rawset"] = native("rawset", baseRawSet)
	st.Globals["rawequal"] = native("rawequal", baseRawEqual)
	st.Globals["rawlen"] = native("rawlen", baseRawLen)
	st.Globals["select"] = native("select", baseSelect)
	st.Globals["setmetatable"] = native("setmetatable", baseSetMetatable)
	st.Globals["getmetatable"] = native("getmetatable", baseGetMetatable)
}

func basePrint(st *state.State, args []state.Value) ([]state.Value, error) {
	parts := make([]string, len(args))
	for i, v := range args {
		parts[i] = toStringMeta(st, v)
	}
	fmt.Println(strings.Join(parts, "\t"))
	return nil, nil
}

// toStringMeta renders v through its __tostring metamethod when present,
// falling back to state.ToString otherwise (spec §4.6).
func toStringMeta(st *state.State, v state.Value) string {
	if mm := st.Metafield(v, "__tostring"); mm != nil {
		results, err := st.CallValue(mm, []state.Value{v})
		if err == nil && len(results) > 0 {
			if s, ok := results[0].(string); ok {
				return s
			}
		}
	}
	return state.ToString(v)
}

func baseType(st *state.State, args []state.Value) ([]state.Value, error) {
	if len(args) == 0 {
		return nil, luaerr.NewArgumentError("type", 1, "value", "no value", "")
	}
	return []state.Value{state.TypeOf(args[0]).String()}, nil
}

func baseToString(st *state.State, args []state.Value) ([]state.Value, error) {
	return []state.Value{toStringMeta(st, arg(args, 0))}, nil
}

func baseToNumber(st *state.State, args []state.Value) ([]state.Value, error) {
	v := arg(args, 0)
	if len(args) >= 2 {
		s, ok := v.(string)
		if !ok {
			return []state.Value{nil}, nil
		}
		base, err := checkInt("tonumber", args, 1)
		if err != nil {
			return nil, err
		}
		n, ok := parseIntBase(strings.TrimSpace(s), int(base))
		if !ok {
			return []state.Value{nil}, nil
		}
		return []state.Value{n}, nil
	}
	switch v.(type) {
	case int64, float64:
		return []state.Value{v}, nil
	}
	if s, ok := v.(string); ok {
		if n, ok := state.ToInteger(s); ok {
			return []state.Value{n}, nil
		}
		if f, ok := state.ToFloat(s); ok {
			return []state.Value{f}, nil
		}
	}
	return []state.Value{nil}, nil
}

func parseIntBase(s string, base int) (int64, bool) {
	if base < 2 || base > 36 || s == "" {
		return 0, false
	}
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	} else if s[0] == '+' {
		s = s[1:]
	}
	var n int64
	for i := 0; i < len(s); i++ {
		c := s[i]
		var d int
		switch {
		case c >= '0' && c <= '9':
			d = int(c - '0')
		case c >= 'a' && c <= 'z':
			d = int(c-'a') + 10
		case c >= 'A' && c <= 'Z':
			d = int(c-'A') + 10
		default:
			return 0, false
		}
		if d >= base {
			return 0, false
		}
		n = n*int64(base) + int64(d)
	}
	if neg {
		n = -n
	}
	return n, true
}

// baseAssert implements assert(v [, message]): it returns its arguments when
// v is truthy, and otherwise an AssertionError carrying message (default
// "assertion failed!"), built directly rather than through baseError.
func baseAssert(st *state.State, args []state.Value) ([]state.Value, error) {
	if state.Truthy(arg(args, 0)) {
		return args, nil
	}
	msg := arg(args, 1)
	if msg == nil {
		msg = "assertion failed!"
	}
	return nil, luaerr.NewAssertionError(state.ToString(msg))
}

func baseError(st *state.State, args []state.Value) ([]state.Value, error) {
	return nil, luaerr.NewGenericError(arg(args, 0))
}

func basePCall(st *state.State, args []state.Value) ([]state.Value, error) {
	if len(args) == 0 {
		return nil, luaerr.NewArgumentError("pcall", 1, "value", "no value", "")
	}
	results, err := st.CallValue(args[0], args[1:])
	if err != nil {
		return []state.Value{false, errMessage(err)}, nil
	}
	return append([]state.Value{true}, results...), nil
}

func baseXPCall(st *state.State, args []state.Value) ([]state.Value, error) {
	if len(args) < 2 {
		return nil, luaerr.NewArgumentError("xpcall", 2, "value", "no value", "")
	}
	handler := args[1]
	results, err := st.CallValue(args[0], args[2:])
	if err != nil {
		handled, herr := st.CallValue(handler, []state.Value{errMessage(err)})
		if herr != nil {
			return []state.Value{false, errMessage(herr)}, nil
		}
		return append([]state.Value{false}, handled...), nil
	}
	return append([]state.Value{true}, results...), nil
}

func errMessage(err error) state.Value {
	if re, ok := err.(*luaerr.RuntimeError); ok {
		if s, ok := re.Value.(string); ok {
			return s
		}
		return re.Value
	}
	return err.Error()
}

func baseIPairs(st *state.State, args []state.Value) ([]state.Value, error) {
	t := arg(args, 0)
	return []state.Value{native("ipairs_iter", ipairsIter), t, int64(0)}, nil
}

func ipairsIter(st *state.State, args []state.Value) ([]state.Value, error) {
	ref, err := checkTable("ipairs", args, 0)
	if err != nil {
		return nil, err
	}
	i, _ := checkInt("ipairs", args, 1)
	i++
	v := st.Table(ref).Get(i)
	if v == nil {
		return []state.Value{nil}, nil
	}
	return []state.Value{i, v}, nil
}

func basePairs(st *state.State, args []state.Value) ([]state.Value, error) {
	t := arg(args, 0)
	if mm := st.Metafield(t, "__pairs"); mm != nil {
		return st.CallValue(mm, []state.Value{t})
	}
	return []state.Value{native("next", baseNext), t, nil}, nil
}

// baseNext walks a stable key snapshot (state.Table.Keys) since the table
// model doesn't keep the teacher's own next-key cache (state/table.go's
// doc comment).
func baseNext(st *state.State, args []state.Value) ([]state.Value, error) {
	ref, err := checkTable("next", args, 0)
	if err != nil {
		return nil, err
	}
	t := st.Table(ref)
	keys := t.Keys()
	cur := arg(args, 1)
	if cur == nil {
		if len(keys) == 0 {
			return []state.Value{nil}, nil
		}
		return []state.Value{keys[0], t.Get(keys[0])}, nil
	}
	for i, k := range keys {
		if k == cur {
			if i+1 >= len(keys) {
				return []state.Value{nil}, nil
			}
			next := keys[i+1]
			return []state.Value{next, t.Get(next)}, nil
		}
	}
	return []state.Value{nil}, nil
}

func baseRawGet(st *state.State, args []state.Value) ([]state.Value, error) {
	ref, err := checkTable("rawget", args, 0)
	if err != nil {
		return nil, err
	}
	return []state.Value{st.Table(ref).Get(arg(args, 1))}, nil
}

func baseRawSet(st *state.State, args []state.Value) ([]state.Value, error) {
	ref, err := checkTable("rawset", args, 0)
	if err != nil {
		return nil, err
	}
	st.Table(ref).Put(arg(args, 1), arg(args, 2))
	return []state.Value{ref}, nil
}

func baseRawEqual(st *state.State, args []state.Value) ([]state.Value, error) {
	return []state.Value{arg(args, 0) == arg(args, 1)}, nil
}

func baseRawLen(st *state.State, args []state.Value) ([]state.Value, error) {
	v := arg(args, 0)
	switch x := v.(type) {
	case string:
		return []state.Value{int64(len(x))}, nil
	case state.TableRef:
		return []state.Value{int64(st.Table(x).Len())}, nil
	default:
		return nil, luaerr.NewArgumentError("rawlen", 1, "table or string", state.TypeOf(v).String(), "")
	}
}

func baseSelect(st *state.State, args []state.Value) ([]state.Value, error) {
	sel := arg(args, 0)
	if s, ok := sel.(string); ok && s == "#" {
		return []state.Value{int64(len(args) - 1)}, nil
	}
	n, err := checkInt("select", args, 0)
	if err != nil {
		return nil, err
	}
	rest := args[1:]
	if n < 0 {
		n = int64(len(rest)) + n + 1
	}
	if n < 1 {
		return nil, luaerr.NewArgumentError("select", 1, "index out of range", "", "")
	}
	if int(n) > len(rest) {
		return nil, nil
	}
	return rest[n-1:], nil
}

func baseSetMetatable(st *state.State, args []state.Value) ([]state.Value, error) {
	ref, err := checkTable("setmetatable", args, 0)
	if err != nil {
		return nil, err
	}
	mt := arg(args, 1)
	if mt == nil {
		st.SetMetatable(ref, 0, false)
		return []state.Value{ref}, nil
	}
	mtRef, ok := mt.(state.TableRef)
	if !ok {
		return nil, luaerr.NewArgumentError("setmetatable", 2, "nil or table", state.TypeOf(mt).String(), "")
	}
	st.SetMetatable(ref, mtRef, true)
	return []state.Value{ref}, nil
}

func baseGetMetatable(st *state.State, args []state.Value) ([]state.Value, error) {
	ref, ok := arg(args, 0).(state.TableRef)
	if !ok {
		return []state.Value{nil}, nil
	}
	mt, ok := st.GetMetatable(ref)
	if !ok {
		return []state.Value{nil}, nil
	}
	if protected := st.Table(mt).Get("__metatable"); protected != nil {
		return []state.Value{protected}, nil
	}
	return []state.Value{mt}, nil
}
