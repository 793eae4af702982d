package stdlib

import (
	"testing"

	"github.com/lollipopkit/luacore/state"
)

func TestMathFloorKeepsIntegers(t *testing.T) {
	st := state.New()
	results, err := mathFloor(st, []state.Value{int64(5)})
	if err != nil {
		t.Fatal(err)
	}
	if results[0] != int64(5) {
		t.Fatalf("got %v (%T)", results[0], results[0])
	}
}

func TestMathFloorConvertsFloat(t *testing.T) {
	st := state.New()
	results, err := mathFloor(st, []state.Value{float64(5.7)})
	if err != nil {
		t.Fatal(err)
	}
	if results[0] != int64(5) {
		t.Fatalf("got %v", results[0])
	}
}

func TestMathAbsInteger(t *testing.T) {
	st := state.New()
	results, err := mathAbs(st, []state.Value{int64(-4)})
	if err != nil {
		t.Fatal(err)
	}
	if results[0] != int64(4) {
		t.Fatalf("got %v", results[0])
	}
}

func TestMathMaxMin(t *testing.T) {
	st := state.New()
	max, err := mathMax(st, []state.Value{int64(1), int64(9), int64(3)})
	if err != nil {
		t.Fatal(err)
	}
	if max[0] != int64(9) {
		t.Fatalf("got %v", max[0])
	}
	min, err := mathMin(st, []state.Value{int64(1), int64(9), int64(3)})
	if err != nil {
		t.Fatal(err)
	}
	if min[0] != int64(1) {
		t.Fatalf("got %v", min[0])
	}
}

func TestMathRandomRange(t *testing.T) {
	st := state.New()
	for i := 0; i < 50; i++ {
		results, err := mathRandom(st, []state.Value{int64(1), int64(6)})
		if err != nil {
			t.Fatal(err)
		}
		n, ok := results[0].(int64)
		if !ok || n < 1 || n > 6 {
			t.Fatalf("got out-of-range random %v", results[0])
		}
	}
}

func TestMathTypeDistinguishesIntFloat(t *testing.T) {
	st := state.New()
	results, err := mathType(st, []state.Value{int64(1)})
	if err != nil {
		t.Fatal(err)
	}
	if results[0] != "integer" {
		t.Fatalf("got %v", results[0])
	}
	results, err = mathType(st, []state.Value{float64(1)})
	if err != nil {
		t.Fatal(err)
	}
	if results[0] != "float" {
		t.Fatalf("got %v", results[0])
	}
}
