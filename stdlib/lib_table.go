package stdlib

import (
	"sort"
	"strings"

	"github.com/lollipopkit/luacore/luaerr"
	"github.com/lollipopkit/luacore/state"
)

var tableLib = map[string]func(st *state.State, args []state.Value) ([]state.Value, error){
	"insert":   tableInsert,
	"remove":   tableRemove,
	"concat":   tableConcat,
	"sort":     tableSort,
	"unpack":   tableUnpack,
	"pack":     tablePack,
	"keys":     tableKeys,
	"values":   tableValues,
	"contains": tableContains,
}

func tableInsert(st *state.State, args []state.Value) ([]state.Value, error) {
	ref, err := checkTable("insert", args, 0)
	if err != nil {
		return nil, err
	}
	t := st.Table(ref)
	n := int64(t.Len())
	if len(args) == 2 {
		t.Put(n+1, args[1])
		return nil, nil
	}
	if len(args) != 3 {
		return nil, luaerr.NewArgumentError("insert", 2, "wrong number of arguments to 'insert'", "", "")
	}
	pos, err := checkInt("insert", args, 1)
	if err != nil {
		return nil, err
	}
	if pos < 1 || pos > n+1 {
		return nil, luaerr.NewArgumentError("insert", 2, "position out of bounds", "", "")
	}
	for i := n + 1; i > pos; i-- {
		t.Put(i, t.Get(i-1))
	}
	t.Put(pos, args[2])
	return nil, nil
}

func tableRemove(st *state.State, args []state.Value) ([]state.Value, error) {
	ref, err := checkTable("remove", args, 0)
	if err != nil {
		return nil, err
	}
	t := st.Table(ref)
	n := int64(t.Len())
	pos := optInt(args, 1, n)
	if n == 0 {
		return []state.Value{nil}, nil
	}
	if pos < 1 || pos > n+1 {
		return nil, luaerr.NewArgumentError("remove", 2, "position out of bounds", "", "")
	}
	removed := t.Get(pos)
	for i := pos; i < n; i++ {
		t.Put(i, t.Get(i+1))
	}
	t.Put(n, nil)
	return []state.Value{removed}, nil
}

func tableConcat(st *state.State, args []state.Value) ([]state.Value, error) {
	ref, err := checkTable("concat", args, 0)
	if err != nil {
		return nil, err
	}
	t := st.Table(ref)
	sep := optString(args, 1, "")
	i := optInt(args, 2, 1)
	j := optInt(args, 3, int64(t.Len()))
	var parts []string
	for k := i; k <= j; k++ {
		v := t.Get(k)
		s, ok := v.(string)
		if !ok {
			if n, ok := v.(int64); ok {
				s = state.ToString(n)
			} else if f, ok := v.(float64); ok {
				s = state.ToString(f)
			} else {
				return nil, luaerr.NewGenericError("invalid value (at index " + state.ToString(k) + ") in table for 'concat'")
			}
		}
		parts = append(parts, s)
	}
	return []state.Value{strings.Join(parts, sep)}, nil
}

// tableSort sorts the array part in place with a stable sort so equal
// elements keep their relative order (spec §5's Open Question decision),
// routing a Lua comparator through State.CallValue rather than hand-rolling
// a second comparison path.
func tableSort(st *state.State, args []state.Value) ([]state.Value, error) {
	ref, err := checkTable("sort", args, 0)
	if err != nil {
		return nil, err
	}
	t := st.Table(ref)
	n := t.Len()
	vals := make([]state.Value, n)
	for i := 0; i < n; i++ {
		vals[i] = t.Get(int64(i + 1))
	}
	cmp := arg(args, 1)
	var sortErr error
	sort.SliceStable(vals, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		if cmp != nil {
			results, err := st.CallValue(cmp, []state.Value{vals[i], vals[j]})
			if err != nil {
				sortErr = err
				return false
			}
			return len(results) > 0 && state.Truthy(results[0])
		}
		return defaultLess(vals[i], vals[j])
	})
	if sortErr != nil {
		return nil, sortErr
	}
	for i, v := range vals {
		t.Put(int64(i+1), v)
	}
	return nil, nil
}

func defaultLess(a, b state.Value) bool {
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return as < bs
		}
	}
	af, _ := state.ToFloat(a)
	bf, _ := state.ToFloat(b)
	return af < bf
}

func tableUnpack(st *state.State, args []state.Value) ([]state.Value, error) {
	ref, err := checkTable("unpack", args, 0)
	if err != nil {
		return nil, err
	}
	t := st.Table(ref)
	i := optInt(args, 1, 1)
	j := optInt(args, 2, int64(t.Len()))
	if i > j {
		return nil, nil
	}
	results := make([]state.Value, 0, j-i+1)
	for k := i; k <= j; k++ {
		results = append(results, t.Get(k))
	}
	return results, nil
}

func tablePack(st *state.State, args []state.Value) ([]state.Value, error) {
	ref := st.NewTable(len(args), 1)
	t := st.Table(ref)
	for i, v := range args {
		t.Put(int64(i+1), v)
	}
	t.Put("n", int64(len(args)))
	return []state.Value{ref}, nil
}

// tableKeys/tableValues/tableContains are kept from the teacher's own
// tableLib extras (lib_table.go), ported onto Table.Keys/Get instead of the
// old push/pop map walk.
func tableKeys(st *state.State, args []state.Value) ([]state.Value, error) {
	ref, err := checkTable("keys", args, 0)
	if err != nil {
		return nil, err
	}
	t := st.Table(ref)
	keys := t.Keys()
	out := st.NewTable(len(keys), 0)
	ot := st.Table(out)
	for i, k := range keys {
		ot.Put(int64(i+1), k)
	}
	return []state.Value{out}, nil
}

func tableValues(st *state.State, args []state.Value) ([]state.Value, error) {
	ref, err := checkTable("values", args, 0)
	if err != nil {
		return nil, err
	}
	t := st.Table(ref)
	keys := t.Keys()
	out := st.NewTable(len(keys), 0)
	ot := st.Table(out)
	for i, k := range keys {
		ot.Put(int64(i+1), t.Get(k))
	}
	return []state.Value{out}, nil
}

func tableContains(st *state.State, args []state.Value) ([]state.Value, error) {
	ref, err := checkTable("contains", args, 0)
	if err != nil {
		return nil, err
	}
	needle := arg(args, 1)
	t := st.Table(ref)
	for _, k := range t.Keys() {
		if t.Get(k) == needle {
			return []state.Value{true}, nil
		}
	}
	return []state.Value{false}, nil
}
