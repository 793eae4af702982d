package stdlib

import (
	"testing"

	"github.com/lollipopkit/luacore/state"
)

func TestStrSub(t *testing.T) {
	st := state.New()
	results, err := strSub(st, []state.Value{"hello world", int64(1), int64(5)})
	if err != nil {
		t.Fatal(err)
	}
	if results[0] != "hello" {
		t.Fatalf("got %v", results[0])
	}
}

func TestStrSubNegativeIndex(t *testing.T) {
	st := state.New()
	results, err := strSub(st, []state.Value{"hello", int64(-3)})
	if err != nil {
		t.Fatal(err)
	}
	if results[0] != "llo" {
		t.Fatalf("got %v", results[0])
	}
}

func TestStrFindPlain(t *testing.T) {
	st := state.New()
	results, err := strFind(st, []state.Value{"hello world", "world"})
	if err != nil {
		t.Fatal(err)
	}
	if results[0] != int64(7) || results[1] != int64(11) {
		t.Fatalf("got %v", results)
	}
}

func TestStrMatchCapture(t *testing.T) {
	st := state.New()
	results, err := strMatch(st, []state.Value{"key=value", "(%a+)=(%a+)"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0] != "key" || results[1] != "value" {
		t.Fatalf("got %v", results)
	}
}

func TestStrGsubStringReplacement(t *testing.T) {
	st := state.New()
	results, err := strGsub(st, []state.Value{"hello world", "o", "0"})
	if err != nil {
		t.Fatal(err)
	}
	if results[0] != "hell0 w0rld" {
		t.Fatalf("got %v", results[0])
	}
	if results[1] != int64(2) {
		t.Fatalf("count got %v", results[1])
	}
}

func TestStrGsubCaptureReference(t *testing.T) {
	st := state.New()
	results, err := strGsub(st, []state.Value{"John Smith", "(%a+) (%a+)", "%2 %1"})
	if err != nil {
		t.Fatal(err)
	}
	if results[0] != "Smith John" {
		t.Fatalf("got %v", results[0])
	}
}

func TestStrFormatBasic(t *testing.T) {
	st := state.New()
	results, err := strFormat(st, []state.Value{"%s is %d", "age", int64(30)})
	if err != nil {
		t.Fatal(err)
	}
	if results[0] != "age is 30" {
		t.Fatalf("got %v", results[0])
	}
}

func TestStrUpperLower(t *testing.T) {
	st := state.New()
	u, _ := strUpper(st, []state.Value{"abc"})
	if u[0] != "ABC" {
		t.Fatalf("got %v", u[0])
	}
	l, _ := strLower(st, []state.Value{"ABC"})
	if l[0] != "abc" {
		t.Fatalf("got %v", l[0])
	}
}
