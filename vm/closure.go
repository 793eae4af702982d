package vm

import (
	"github.com/lollipopkit/luacore/proto"
	"github.com/lollipopkit/luacore/state"
)

// makeClosure implements OpClosure: instantiates child, the protoIndex'th
// nested Prototype of the running closure c, and fills its upvalue cells
// per the descriptors genClosure recorded — either sharing one of c's own
// open cells (a local of the enclosing frame that the child captures
// directly) or forwarding one of c's own upvalues (the child captures a
// variable from further up the lexical chain than its immediate parent).
func makeClosure(st *state.State, c *state.Closure, fr *frame, cells map[int]*state.Cell, protoIndex int) *state.Closure {
	child := c.Proto.Prototypes[protoIndex]
	nc := st.MakeClosure(child)
	for i, uv := range child.Upvalues {
		switch uv.Kind {
		case proto.UpvalLocal:
			nc.Upvalues[i] = fr.openCell(uv.Index, cells)
		case proto.UpvalUpvalue:
			nc.Upvalues[i] = c.Upvalues[uv.Index]
		}
	}
	return nc
}
