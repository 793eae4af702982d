package stdlib

import (
	"testing"

	"github.com/lollipopkit/luacore/state"
)

func newArrayTable(st *state.State, vals ...state.Value) state.TableRef {
	ref := st.NewTable(len(vals), 0)
	t := st.Table(ref)
	for i, v := range vals {
		t.Put(int64(i+1), v)
	}
	return ref
}

func TestTableInsertAppend(t *testing.T) {
	st := state.New()
	ref := newArrayTable(st, int64(1), int64(2))
	_, err := tableInsert(st, []state.Value{ref, int64(3)})
	if err != nil {
		t.Fatal(err)
	}
	if st.Table(ref).Len() != 3 {
		t.Fatalf("len = %d", st.Table(ref).Len())
	}
	if st.Table(ref).Get(int64(3)) != int64(3) {
		t.Fatalf("got %v", st.Table(ref).Get(int64(3)))
	}
}

func TestTableInsertAtPosition(t *testing.T) {
	st := state.New()
	ref := newArrayTable(st, int64(1), int64(3))
	_, err := tableInsert(st, []state.Value{ref, int64(2), int64(2)})
	if err != nil {
		t.Fatal(err)
	}
	tbl := st.Table(ref)
	if tbl.Get(int64(1)) != int64(1) || tbl.Get(int64(2)) != int64(2) || tbl.Get(int64(3)) != int64(3) {
		t.Fatalf("got %v %v %v", tbl.Get(int64(1)), tbl.Get(int64(2)), tbl.Get(int64(3)))
	}
}

func TestTableRemove(t *testing.T) {
	st := state.New()
	ref := newArrayTable(st, int64(1), int64(2), int64(3))
	results, err := tableRemove(st, []state.Value{ref})
	if err != nil {
		t.Fatal(err)
	}
	if results[0] != int64(3) {
		t.Fatalf("got %v", results[0])
	}
	if st.Table(ref).Len() != 2 {
		t.Fatalf("len = %d", st.Table(ref).Len())
	}
}

func TestTableConcat(t *testing.T) {
	st := state.New()
	ref := newArrayTable(st, "a", "b", "c")
	results, err := tableConcat(st, []state.Value{ref, "-"})
	if err != nil {
		t.Fatal(err)
	}
	if results[0] != "a-b-c" {
		t.Fatalf("got %v", results[0])
	}
}

func TestTableSortDefault(t *testing.T) {
	st := state.New()
	ref := newArrayTable(st, int64(3), int64(1), int64(2))
	_, err := tableSort(st, []state.Value{ref})
	if err != nil {
		t.Fatal(err)
	}
	tbl := st.Table(ref)
	if tbl.Get(int64(1)) != int64(1) || tbl.Get(int64(2)) != int64(2) || tbl.Get(int64(3)) != int64(3) {
		t.Fatalf("not sorted: %v %v %v", tbl.Get(int64(1)), tbl.Get(int64(2)), tbl.Get(int64(3)))
	}
}

func TestTablePackUnpack(t *testing.T) {
	st := state.New()
	packed, err := tablePack(st, []state.Value{int64(1), int64(2), int64(3)})
	if err != nil {
		t.Fatal(err)
	}
	ref := packed[0].(state.TableRef)
	if st.Table(ref).Len() != 3 {
		t.Fatalf("packed len = %d", st.Table(ref).Len())
	}
	unpacked, err := tableUnpack(st, []state.Value{ref})
	if err != nil {
		t.Fatal(err)
	}
	if len(unpacked) != 3 || unpacked[0] != int64(1) || unpacked[2] != int64(3) {
		t.Fatalf("got %v", unpacked)
	}
}
