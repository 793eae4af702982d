package state

import "github.com/lollipopkit/luacore/proto"

// Cell is an upvalue storage cell shared between a closure and the frame
// that created it. It holds the captured local's value itself: once a
// register is captured, the frame reads and writes that local through the
// cell, so the cell already owns the value when the frame returns and no
// separate close step exists.
type Cell struct {
	value Value
}

func (c *Cell) Get() Value  { return c.value }
func (c *Cell) Set(v Value) { c.value = v }

// Closure pairs a compiled Prototype with the concrete upvalue cells
// captured at the point it was created, generalized from the teacher's
// closure type (which also folds in a Go-function variant; that role is
// now played separately by NativeFunc so closures are always Lua closures).
type Closure struct {
	Proto    *proto.Prototype
	Upvalues []*Cell
	id       uint64
}

func newClosure(p *proto.Prototype, id uint64) *Closure {
	c := &Closure{Proto: p, id: id}
	if n := len(p.Upvalues); n > 0 {
		c.Upvalues = make([]*Cell, n)
	}
	return c
}

// NativeFunc is a host function exposed to Lua code (spec §6
// RegisterFunction / stdlib entries), generalized from the teacher's
// goFunc variant of closure. Fn receives the call arguments and the owning
// State and returns the call's results.
type NativeFunc struct {
	Name string
	Fn   func(st *State, args []Value) ([]Value, error)
}
