package state

import "github.com/lollipopkit/luacore/proto"

// Frame is one traceback entry (spec §7 RuntimeError.Traceback), pushed by
// the executor around every Lua/native call.
type Frame struct {
	Source   string
	Line     int
	FuncName string
}

// State is the VM state (C6): the table heap, globals, metatables,
// call stack and a scratch area for stdlib-owned per-state data (the
// math.random generator). Grounded on
// the teacher's lkState (state/lk_state.go), generalized per spec §5 so
// that tables are addressed by TableRef id rather than held directly by
// Go pointer in any Value.
type State struct {
	Globals     map[string]Value
	heap        map[TableRef]*Table
	nextTableID uint64
	nextClosure uint64

	// metatables maps a TableRef to the TableRef of its metatable, per
	// spec §4.5.
	metatables map[TableRef]TableRef

	// typeMetatables maps a type tag to a shared metatable applying to
	// every value of that type, per spec §4.6's "string ... type-level
	// metatables" (the only type stdlib installs one for is TypeString,
	// so that ("abc"):upper() resolves through __index into the string
	// library table, the same trick the teacher's own lib_string.go
	// install relies on Lua's getmetatable("").__index idiom for).
	typeMetatables map[Type]TableRef

	CallStack []Frame

	// Private is scratch storage stdlib functions use to keep state across
	// calls (e.g. the math.random PRNG) without polluting the Lua-visible
	// global table.
	Private map[string]any

	// Sandboxed and ExcludePaths record the options lua.NewState was given.
	// NewState itself applies them to the globals; nothing else reads
	// these fields.
	Sandboxed    bool
	ExcludePaths []string

	// Call is supplied by package vm at construction time (state cannot
	// import vm without a cycle, since vm imports state): it invokes a
	// Lua or native callable with the given arguments, reentering the
	// executor. Metamethods, table.sort comparators and pattern-match
	// function replacements all go through this hook.
	Call func(st *State, fn Value, args []Value) ([]Value, error)
}

// CallValue invokes fn (a *Closure or *NativeFunc) via the vm-supplied Call
// hook. It panics if no hook was installed, which would mean a Lua state
// was built without going through lua.NewState.
func (st *State) CallValue(fn Value, args []Value) ([]Value, error) {
	if st.Call == nil {
		panic("state: State.Call hook not installed")
	}
	return st.Call(st, fn, args)
}

// New creates an empty State with just the base globals table allocated;
// stdlib.Open populates it with the standard library (spec §6).
func New() *State {
	return &State{
		Globals:        map[string]Value{},
		heap:           map[TableRef]*Table{},
		metatables:     map[TableRef]TableRef{},
		typeMetatables: map[Type]TableRef{},
		Private:        map[string]any{},
	}
}

// NewTable allocates a table on this State's heap and returns its
// capability handle, per spec §5.
func (st *State) NewTable(arrHint, hashHint int) TableRef {
	st.nextTableID++
	id := TableRef(st.nextTableID)
	st.heap[id] = newTable(arrHint, hashHint)
	return id
}

// Table resolves a TableRef to the concrete table it addresses. Panics on
// a dangling ref, which would indicate an executor or stdlib bug (refs are
// never handed out except by NewTable, and never freed).
func (st *State) Table(ref TableRef) *Table {
	t, ok := st.heap[ref]
	if !ok {
		panic("state: dangling TableRef")
	}
	return t
}

func (st *State) nextClosureID() uint64 {
	st.nextClosure++
	return st.nextClosure
}

// MakeClosure instantiates a closure over a compiled prototype, allocating
// the (initially open, unfilled) upvalue cell slots the executor fills in
// as it evaluates the OpClosure instruction's upvalue descriptors.
func (st *State) MakeClosure(p *proto.Prototype) *Closure {
	return newClosure(p, st.nextClosureID())
}

// SetMetatable attaches mt (or clears it, if mt is 0 with ok=false) as the
// metatable of the table addressed by ref.
func (st *State) SetMetatable(ref TableRef, mt TableRef, ok bool) {
	if !ok {
		delete(st.metatables, ref)
		return
	}
	st.metatables[ref] = mt
}

func (st *State) GetMetatable(ref TableRef) (TableRef, bool) {
	mt, ok := st.metatables[ref]
	return mt, ok
}

// SetTypeMetatable attaches mt as the shared metatable for every value of
// type t (spec §4.6), the per-type slot tables themselves don't have.
func (st *State) SetTypeMetatable(t Type, mt TableRef) {
	st.typeMetatables[t] = mt
}

func (st *State) GetTypeMetatable(t Type) (TableRef, bool) {
	mt, ok := st.typeMetatables[t]
	return mt, ok
}

// Metafield looks up name in v's metatable, if any (spec §4.5): a table's
// own metatable if v is one, otherwise the shared type-level metatable for
// v's type (spec §4.6), if any was installed.
func (st *State) Metafield(v Value, name string) Value {
	if ref, ok := v.(TableRef); ok {
		mt, ok := st.GetMetatable(ref)
		if !ok {
			return nil
		}
		return st.Table(mt).Get(name)
	}
	mt, ok := st.GetTypeMetatable(TypeOf(v))
	if !ok {
		return nil
	}
	return st.Table(mt).Get(name)
}
