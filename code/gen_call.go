package code

import (
	"github.com/lollipopkit/luacore/internal/ast"
	"github.com/lollipopkit/luacore/proto"
)

// genCall compiles a call or method call so that `want` results land at
// dst (want == -1 means "all results", used when a call appears in tail
// position of a return or argument list). dst is always the call's base
// register: it is already claimed by the caller (the common case, since
// callers route through genExpList), so the function value, self slot and
// results all live at dst itself rather than a freshly allocated register.
func genCall(fs *funcState, e *ast.CallExp, dst int, want int) {
	base := dst
	for fs.nextReg <= base {
		fs.allocTemp()
	}
	m := fs.mark()
	fixedArgs := 0
	if e.Method != "" {
		objReg := fs.allocTemp() // becomes base+1, the `self` arg slot
		tmp := fs.allocTemp()
		genExp(fs, e.Prefix, tmp)
		fs.emit(proto.Instr{Op: proto.OpSelf, A: base, B: tmp, Str: e.Method}, e.Line)
		fs.restore(objReg + 1)
		fixedArgs = 1 // the `self` value already placed at base+1
	} else {
		genExp(fs, e.Prefix, base)
	}
	argsBase := base + 1 + fixedArgs
	lastMulti := len(e.Args) > 0 && isMultiExp(e.Args[len(e.Args)-1])
	for fs.nextReg < argsBase {
		fs.allocTemp()
	}
	genExpList(fs, e.Args, argsBase, -1)
	argCount := fixedArgs + len(e.Args)
	if lastMulti {
		argCount = -1
	}
	fs.emit(proto.Instr{Op: proto.OpCall, A: base, B: argCount, C: want}, e.LastLine)
	fs.restore(m)
}
