package vm

import (
	"github.com/lollipopkit/luacore/luaerr"
	"github.com/lollipopkit/luacore/state"
)

// concat implements the `..` operator: numbers coerce to their string
// form, strings concatenate directly, anything else falls back to the
// __concat metamethod (spec §4.4).
func concat(st *state.State, a, b state.Value) state.Value {
	as, aok := coerceConcatString(a)
	bs, bok := coerceConcatString(b)
	if aok && bok {
		return as + bs
	}
	if mm := st.Metafield(a, "__concat"); mm != nil {
		return callOne(st, mm, a, b)
	}
	if mm := st.Metafield(b, "__concat"); mm != nil {
		return callOne(st, mm, a, b)
	}
	bad := a
	if aok {
		bad = b
	}
	panic(luaerr.NewTypeError("concatenate", state.TypeOf(bad).String()))
}

func coerceConcatString(v state.Value) (string, bool) {
	switch v.(type) {
	case string, int64, float64:
		return state.ToString(v), true
	default:
		return "", false
	}
}

func callOne(st *state.State, fn state.Value, args ...state.Value) state.Value {
	results, err := st.CallValue(fn, args)
	must(err)
	if len(results) == 0 {
		return nil
	}
	return results[0]
}

// length implements the `#` operator: strings give their byte length,
// tables their border unless a __len metamethod overrides it (spec §4.4).
func length(st *state.State, v state.Value) state.Value {
	switch x := v.(type) {
	case string:
		return int64(len(x))
	case state.TableRef:
		if mm := st.Metafield(v, "__len"); mm != nil {
			return callOne(st, mm, v)
		}
		return int64(st.Table(x).Len())
	default:
		panic(luaerr.NewTypeError("get length of", state.TypeOf(v).String()))
	}
}

// indexGet implements table/metamethod-aware reads (`t[k]`/`t.k`), per
// spec §4.5's __index chain (table or function).
func indexGet(st *state.State, obj, key state.Value) state.Value {
	ref, ok := obj.(state.TableRef)
	if ok {
		v := st.Table(ref).Get(key)
		if v != nil {
			return v
		}
		mm := st.Metafield(obj, "__index")
		if mm == nil {
			return nil
		}
		if mref, ok := mm.(state.TableRef); ok {
			return indexGet(st, mref, key)
		}
		return callOne(st, mm, obj, key)
	}
	if mm := st.Metafield(obj, "__index"); mm != nil {
		if mref, ok := mm.(state.TableRef); ok {
			return indexGet(st, mref, key)
		}
		return callOne(st, mm, obj, key)
	}
	panic(luaerr.NewIndexError(obj))
}

// indexSet implements table/metamethod-aware writes, per spec §4.5's
// __newindex chain.
func indexSet(st *state.State, obj, key, val state.Value) {
	ref, ok := obj.(state.TableRef)
	if ok {
		t := st.Table(ref)
		if t.Get(key) != nil {
			t.Put(key, val)
			return
		}
		mm := st.Metafield(obj, "__newindex")
		if mm == nil {
			t.Put(key, val)
			return
		}
		if mref, ok := mm.(state.TableRef); ok {
			indexSet(st, mref, key, val)
			return
		}
		_, err := st.CallValue(mm, []state.Value{obj, key, val})
		must(err)
		return
	}
	panic(luaerr.NewIndexError(obj))
}
