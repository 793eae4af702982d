package state

import "testing"

func TestArithIntegerAdd(t *testing.T) {
	st := New()
	v, err := st.Arith(OpAdd, int64(2), int64(3))
	if err != nil {
		t.Fatal(err)
	}
	if v != int64(5) {
		t.Fatalf("got %v", v)
	}
}

func TestArithDivAlwaysFloat(t *testing.T) {
	st := New()
	v, err := st.Arith(OpDiv, int64(7), int64(2))
	if err != nil {
		t.Fatal(err)
	}
	if v != float64(3.5) {
		t.Fatalf("got %v", v)
	}
}

func TestArithFloorDivNegative(t *testing.T) {
	st := New()
	v, err := st.Arith(OpIDiv, int64(-7), int64(2))
	if err != nil {
		t.Fatal(err)
	}
	if v != int64(-4) {
		t.Fatalf("got %v", v)
	}
}

func TestArithModMatchesLuaSign(t *testing.T) {
	st := New()
	v, err := st.Arith(OpMod, int64(-5), int64(3))
	if err != nil {
		t.Fatal(err)
	}
	if v != int64(1) {
		t.Fatalf("got %v", v)
	}
}

func TestArithStringConcatFallback(t *testing.T) {
	st := New()
	v, err := st.Arith(OpAdd, "foo", "bar")
	if err != nil {
		t.Fatal(err)
	}
	if v != "foobar" {
		t.Fatalf("got %v", v)
	}
}

func TestArithTypeMismatchErrors(t *testing.T) {
	st := New()
	_, err := st.Arith(OpAdd, TableRef(1), int64(1))
	if err == nil {
		t.Fatal("expected arith error")
	}
}

func TestCompareEquality(t *testing.T) {
	st := New()
	eq, err := st.Compare("==", int64(1), float64(1))
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Fatal("1 == 1.0 should be true")
	}
}

func TestCompareLessThanStrings(t *testing.T) {
	st := New()
	lt, err := st.Compare("<", "abc", "abd")
	if err != nil {
		t.Fatal(err)
	}
	if !lt {
		t.Fatal(`"abc" < "abd" should be true`)
	}
}
