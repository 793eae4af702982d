package state

import "testing"

func TestTableArrayAppendAndBorder(t *testing.T) {
	tbl := newTable(0, 0)
	tbl.Put(int64(1), "a")
	tbl.Put(int64(2), "b")
	tbl.Put(int64(3), "c")
	if tbl.Len() != 3 {
		t.Fatalf("len = %d, want 3", tbl.Len())
	}
	if tbl.Get(int64(2)) != "b" {
		t.Fatalf("get(2) = %v", tbl.Get(int64(2)))
	}
}

func TestTableRemoveShrinksBorder(t *testing.T) {
	tbl := newTable(0, 0)
	tbl.Put(int64(1), "a")
	tbl.Put(int64(2), "b")
	tbl.Put(int64(2), nil)
	if tbl.Len() != 1 {
		t.Fatalf("len = %d, want 1", tbl.Len())
	}
}

func TestTableHashMigratesIntoArrayOnAppend(t *testing.T) {
	tbl := newTable(0, 0)
	tbl.Put(int64(1), "a")
	// written out of order into the hash part
	tbl.Put(int64(3), "c")
	tbl.Put(int64(2), "b")
	if tbl.Len() != 3 {
		t.Fatalf("len = %d, want 3", tbl.Len())
	}
	if tbl.Get(int64(3)) != "c" {
		t.Fatalf("get(3) = %v", tbl.Get(int64(3)))
	}
}

func TestTableFloatKeyNormalizesToInt(t *testing.T) {
	tbl := newTable(0, 0)
	tbl.Put(float64(1), "x")
	if tbl.Get(int64(1)) != "x" {
		t.Fatalf("get(1) = %v, want x", tbl.Get(int64(1)))
	}
}

func TestTableStringKeys(t *testing.T) {
	tbl := newTable(0, 0)
	tbl.Put("name", "lua")
	if tbl.Get("name") != "lua" {
		t.Fatalf("get(name) = %v", tbl.Get("name"))
	}
	tbl.Put("name", nil)
	if tbl.Get("name") != nil {
		t.Fatalf("expected nil after delete, got %v", tbl.Get("name"))
	}
}

func TestTableKeysCoversArrayAndHash(t *testing.T) {
	tbl := newTable(0, 0)
	tbl.Put(int64(1), "a")
	tbl.Put("k", "v")
	keys := tbl.Keys()
	if len(keys) != 2 {
		t.Fatalf("keys = %v, want 2 entries", keys)
	}
}
