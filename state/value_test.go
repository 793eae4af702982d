package state

import "testing"

func TestTypeOf(t *testing.T) {
	cases := []struct {
		v    Value
		want Type
	}{
		{nil, TypeNil},
		{true, TypeBoolean},
		{int64(1), TypeNumber},
		{float64(1.5), TypeNumber},
		{"s", TypeString},
	}
	for _, c := range cases {
		if got := TypeOf(c.v); got != c.want {
			t.Errorf("TypeOf(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestTruthy(t *testing.T) {
	if Truthy(nil) {
		t.Error("nil should be falsy")
	}
	if Truthy(false) {
		t.Error("false should be falsy")
	}
	if !Truthy(int64(0)) {
		t.Error("0 should be truthy in Lua")
	}
	if !Truthy("") {
		t.Error("empty string should be truthy in Lua")
	}
}

func TestToIntegerFromFloat(t *testing.T) {
	i, ok := ToInteger(float64(3))
	if !ok || i != 3 {
		t.Fatalf("got %v %v", i, ok)
	}
	_, ok = ToInteger(float64(3.5))
	if ok {
		t.Fatal("expected no exact integer for 3.5")
	}
}

func TestToIntegerFromString(t *testing.T) {
	i, ok := ToInteger("42")
	if !ok || i != 42 {
		t.Fatalf("got %v %v", i, ok)
	}
	i, ok = ToInteger("  10  ")
	if !ok || i != 10 {
		t.Fatalf("got %v %v", i, ok)
	}
	_, ok = ToInteger("abc")
	if ok {
		t.Fatal("expected failure for non-numeric string")
	}
}

func TestToStringFormatsFloatsLikeLua(t *testing.T) {
	if ToString(float64(1)) != "1.0" {
		t.Fatalf("got %q", ToString(float64(1)))
	}
	if ToString(int64(1)) != "1" {
		t.Fatalf("got %q", ToString(int64(1)))
	}
}

func TestMetafieldResolvesTypeLevelMetatable(t *testing.T) {
	st := New()
	lib := st.NewTable(0, 1)
	st.Table(lib).Put("upper", "marker")
	mt := st.NewTable(0, 1)
	st.Table(mt).Put("__index", lib)
	st.SetTypeMetatable(TypeString, mt)

	mm := st.Metafield("anything", "__index")
	ref, ok := mm.(TableRef)
	if !ok || ref != lib {
		t.Fatalf("got %v", mm)
	}
}

func TestMetafieldNilWithoutTypeMetatable(t *testing.T) {
	st := New()
	if st.Metafield("s", "__index") != nil {
		t.Fatal("expected no metafield without a registered type metatable")
	}
}
