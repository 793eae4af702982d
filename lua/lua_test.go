package lua

import "testing"

func run(t *testing.T, source string) []interface{} {
	t.Helper()
	st := NewState(StateOptions{})
	chunk, err := Parse(source, "test")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	p, err := Compile(chunk, CompileOptions{SourceName: "test"})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	results, err := Execute(p, st)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	out := make([]interface{}, len(results))
	for i, r := range results {
		out[i] = r
	}
	return out
}

func TestExecuteArithmetic(t *testing.T) {
	out := run(t, "return 1 + 2 * 3")
	if len(out) != 1 || out[0] != int64(7) {
		t.Fatalf("got %+v", out)
	}
}

func TestExecuteStringLibrary(t *testing.T) {
	out := run(t, `return string.upper("abc")`)
	if len(out) != 1 || out[0] != "ABC" {
		t.Fatalf("got %+v", out)
	}
}

func TestExecuteStringMethodCallSyntax(t *testing.T) {
	out := run(t, `return ("abc"):upper()`)
	if len(out) != 1 || out[0] != "ABC" {
		t.Fatalf("got %+v", out)
	}
}

func TestExecuteTableAndLen(t *testing.T) {
	out := run(t, `
		local t = {1, 2, 3}
		table.insert(t, 4)
		return #t
	`)
	if len(out) != 1 || out[0] != int64(4) {
		t.Fatalf("got %+v", out)
	}
}

func TestExecuteClosureCounter(t *testing.T) {
	out := run(t, `
		local function counter()
			local n = 0
			return function()
				n = n + 1
				return n
			end
		end
		local c = counter()
		c()
		c()
		return c()
	`)
	if len(out) != 1 || out[0] != int64(3) {
		t.Fatalf("got %+v", out)
	}
}

func TestGetSet(t *testing.T) {
	st := NewState(StateOptions{})
	Set(st, int64(42), "answer")
	if v := Get(st, "answer"); v != int64(42) {
		t.Fatalf("got %+v", v)
	}
}

func TestParseError(t *testing.T) {
	_, err := Parse("local = ", "bad")
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDumpValuePrimitives(t *testing.T) {
	st := NewState(StateOptions{})
	out, err := DumpValue(st, int64(42))
	if err != nil {
		t.Fatal(err)
	}
	if out != "42" {
		t.Fatalf("got %q", out)
	}
}

func TestDumpValueTableShapes(t *testing.T) {
	st := NewState(StateOptions{})
	chunk, err := Parse(`t = {1, 2, 3}; obj = {name = "lua", n = 1}`, "test")
	if err != nil {
		t.Fatal(err)
	}
	p, err := Compile(chunk, CompileOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Execute(p, st); err != nil {
		t.Fatal(err)
	}

	arrOut, err := DumpValue(st, Get(st, "t"))
	if err != nil {
		t.Fatal(err)
	}
	if arrOut != "[1,2,3]" {
		t.Fatalf("got %q", arrOut)
	}

	objOut, err := DumpValue(st, Get(st, "obj"))
	if err != nil {
		t.Fatal(err)
	}
	if objOut != `{"n":1,"name":"lua"}` {
		t.Fatalf("got %q", objOut)
	}
}

func TestDumpValueCyclicTable(t *testing.T) {
	st := NewState(StateOptions{})
	chunk, err := Parse(`t = {}; t.self = t`, "test")
	if err != nil {
		t.Fatal(err)
	}
	p, err := Compile(chunk, CompileOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Execute(p, st); err != nil {
		t.Fatal(err)
	}
	out, err := DumpValue(st, Get(st, "t"))
	if err != nil {
		t.Fatal(err)
	}
	if out == "" {
		t.Fatal("expected non-empty output for cyclic table")
	}
}
