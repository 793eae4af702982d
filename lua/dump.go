package lua

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/lollipopkit/luacore/state"
)

var dumpJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// DumpValue renders a host Value tree as JSON, for embedding hosts that want
// to log VM state (a table argument, a function's return values, and so on)
// without resurrecting the teacher's bytecode persistence format (spec
// Non-goal) — this is for logging, not load/save. Tables are walked
// recursively through st's heap; a table reachable from itself is rendered
// as its state.ToString "table: 0x..." tag rather than looping forever, and functions
// render the same identity tag state.ToString already gives them.
func DumpValue(st *state.State, v state.Value) (string, error) {
	data, err := dumpJSON.Marshal(dumpNode(st, v, map[state.TableRef]bool{}))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func dumpNode(st *state.State, v state.Value, seen map[state.TableRef]bool) any {
	switch x := v.(type) {
	case nil, bool, int64, float64, string:
		return x
	case state.TableRef:
		if seen[x] {
			return state.ToString(x)
		}
		return dumpTable(st, x, seen)
	default:
		return state.ToString(v)
	}
}

// dumpTable renders a table as a JSON array when every key is a contiguous
// 1-based integer index (a Lua "array"), and as a JSON object otherwise,
// with non-string keys stringified via state.ToString since JSON object
// keys must be strings.
func dumpTable(st *state.State, ref state.TableRef, seen map[state.TableRef]bool) any {
	seen[ref] = true
	defer delete(seen, ref)

	t := st.Table(ref)
	keys := t.Keys()
	if isArrayLike(keys, t.Len()) {
		arr := make([]any, t.Len())
		for i := range arr {
			arr[i] = dumpNode(st, t.Get(int64(i+1)), seen)
		}
		return arr
	}
	obj := make(map[string]any, len(keys))
	for _, k := range keys {
		obj[state.ToString(k)] = dumpNode(st, t.Get(k), seen)
	}
	return obj
}

func isArrayLike(keys []state.Value, n int) bool {
	if n == 0 || len(keys) != n {
		return false
	}
	for _, k := range keys {
		i, ok := k.(int64)
		if !ok || i < 1 || i > int64(n) {
			return false
		}
	}
	return true
}
