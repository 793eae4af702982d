package state

import "math"

// Table is the hybrid array/hash structure of spec §3, generalized from the
// teacher's lkTable (state/lk_table.go) with the same array/map split and
// the same border-shrinking/expanding behavior on Put, but without the
// teacher's next()-key cache since spec's iteration model (table.pairs)
// generalizes over a snapshot of keys instead (see stdlib/lib_basic.go's
// baseNext).
type Table struct {
	arr  []Value
	hash map[Value]Value
	meta TableRef
}

// TableRef is the capability-style handle spec §5 requires in place of a
// raw pointer: tables live in the owning State's heap, keyed by this id, so
// that copying a Value never aliases mutable table state outside the
// State's control.
type TableRef uint64

func newTable(arrHint, hashHint int) *Table {
	t := &Table{}
	if arrHint > 0 {
		t.arr = make([]Value, 0, arrHint)
	}
	if hashHint > 0 {
		t.hash = make(map[Value]Value, hashHint)
	}
	return t
}

// Len implements the `#t` border operator: the teacher (and Lua itself)
// only guarantee a border when the array part has no internal nils, which
// normalizeKey/Put maintains for the common append-only case.
func (t *Table) Len() int {
	return len(t.arr)
}

func (t *Table) Get(key Value) Value {
	key = normalizeKey(key)
	if idx, ok := key.(int64); ok && idx >= 1 && idx <= int64(len(t.arr)) {
		return t.arr[idx-1]
	}
	return t.hash[key]
}

// Put implements spec §3's table write semantics: writing nil removes the
// key; writing just past the end of the array part (and the value is
// non-nil) appends and then migrates trailing hash entries into the array.
func (t *Table) Put(key, val Value) {
	key = normalizeKey(key)
	if idx, ok := key.(int64); ok && idx >= 1 {
		arrLen := int64(len(t.arr))
		if idx <= arrLen {
			t.arr[idx-1] = val
			if idx == arrLen && val == nil {
				t.shrink()
			}
			return
		}
		if idx == arrLen+1 {
			if t.hash != nil {
				delete(t.hash, key)
			}
			if val != nil {
				t.arr = append(t.arr, val)
				t.expand()
			}
			return
		}
	}
	if val == nil {
		if t.hash != nil {
			delete(t.hash, key)
		}
		return
	}
	if t.hash == nil {
		t.hash = make(map[Value]Value, 8)
	}
	t.hash[key] = val
}

func (t *Table) shrink() {
	for i := len(t.arr) - 1; i >= 0; i-- {
		if t.arr[i] != nil {
			t.arr = t.arr[:i+1]
			return
		}
	}
	t.arr = t.arr[:0]
}

func (t *Table) expand() {
	for idx := int64(len(t.arr)) + 1; ; idx++ {
		val, found := t.hash[idx]
		if !found {
			break
		}
		delete(t.hash, idx)
		t.arr = append(t.arr, val)
	}
}

// normalizeKey folds float keys with no fractional part to int64, matching
// Lua's rule that t[1] and t[1.0] address the same slot.
func normalizeKey(key Value) Value {
	if f, ok := key.(float64); ok {
		if i := int64(f); float64(i) == f && !math.IsInf(f, 0) {
			return i
		}
	}
	return key
}

// Keys returns a stable-ish snapshot of this table's keys, array part first
// in index order followed by hash part in map-iteration order, for use by
// pairs()/next() and table library functions that need to walk entries.
func (t *Table) Keys() []Value {
	keys := make([]Value, 0, len(t.arr)+len(t.hash))
	for i, v := range t.arr {
		if v != nil {
			keys = append(keys, int64(i+1))
		}
	}
	for k := range t.hash {
		keys = append(keys, k)
	}
	return keys
}
