package pattern

import "testing"

func TestFindLiteral(t *testing.T) {
	r, err := Find("hello world", "world", 0)
	if err != nil {
		t.Fatal(err)
	}
	if r == nil || r.Start != 6 || r.End != 11 {
		t.Fatalf("got %+v", r)
	}
}

func TestFindClassesAndQuantifiers(t *testing.T) {
	r, err := Find("  hello world", "%a+", 0)
	if err != nil {
		t.Fatal(err)
	}
	if r == nil || r.Start != 2 || r.End != 7 {
		t.Fatalf("got %+v", r)
	}
}

func TestFindCaptures(t *testing.T) {
	r, err := Find("hello world", "(%w+) (%w+)", 0)
	if err != nil {
		t.Fatal(err)
	}
	if r == nil || len(r.Captures) != 2 {
		t.Fatalf("got %+v", r)
	}
	if r.Captures[0].Start != 0 || r.Captures[0].End != 5 {
		t.Fatalf("capture 1 = %+v", r.Captures[0])
	}
	if r.Captures[1].Start != 6 || r.Captures[1].End != 11 {
		t.Fatalf("capture 2 = %+v", r.Captures[1])
	}
}

func TestFindAnchor(t *testing.T) {
	if r, _ := Find("hello", "^ello", 0); r != nil {
		t.Fatalf("anchored pattern should not match mid-string: %+v", r)
	}
	r, err := Find("hello", "^hel", 0)
	if err != nil {
		t.Fatal(err)
	}
	if r == nil || r.Start != 0 || r.End != 3 {
		t.Fatalf("got %+v", r)
	}
}

func TestFindBalanced(t *testing.T) {
	r, err := Find("(a(b)c)d", "%b()", 0)
	if err != nil {
		t.Fatal(err)
	}
	if r == nil || r.Start != 0 || r.End != 7 {
		t.Fatalf("got %+v", r)
	}
}

func TestFindSet(t *testing.T) {
	r, err := Find("abc123", "[%d]+", 0)
	if err != nil {
		t.Fatal(err)
	}
	if r == nil || r.Start != 3 || r.End != 6 {
		t.Fatalf("got %+v", r)
	}
}

func TestNextStartAdvancesOnEmptyMatch(t *testing.T) {
	r := &Result{Start: 2, End: 2}
	if got := NextStart(r); got != 3 {
		t.Fatalf("got %d, want 3", got)
	}
	r2 := &Result{Start: 0, End: 4}
	if got := NextStart(r2); got != 4 {
		t.Fatalf("got %d, want 4", got)
	}
}

func TestNoMatch(t *testing.T) {
	r, err := Find("hello", "xyz", 0)
	if err != nil {
		t.Fatal(err)
	}
	if r != nil {
		t.Fatalf("expected no match, got %+v", r)
	}
}
