package scope

import "github.com/lollipopkit/luacore/internal/ast"

func (r *Resolution) walkStat(f *frame, s ast.Stat, errp *error) {
	switch s := s.(type) {
	case *ast.LocalStat:
		for _, e := range s.Exps {
			r.walkExp(f, e, errp)
		}
		regs := make([]int, len(s.Names))
		for i, name := range s.Names {
			regs[i] = f.declare(name)
		}
		r.Locals[s] = regs

	case *ast.LocalFunctionStat:
		// the local is in scope inside its own body, enabling recursion
		reg := f.declare(s.Name)
		r.LocalFuncRegs[s] = reg
		r.walkFunction(f, s.Fn, errp)

	case *ast.AssignStat:
		for _, e := range s.Exps {
			r.walkExp(f, e, errp)
		}
		for _, t := range s.Targets {
			r.walkExp(f, t, errp)
		}

	case *ast.CallStat:
		r.walkExp(f, s.Call, errp)

	case *ast.DoStat:
		r.walkBlock(f, s.Body, errp)

	case *ast.WhileStat:
		r.walkExp(f, s.Cond, errp)
		f.loopDepth++
		r.walkBlock(f, s.Body, errp)
		f.loopDepth--

	case *ast.RepeatStat:
		// `until` can see locals declared in the loop body (Lua scoping),
		// so resolve the condition inside the same block as the body.
		f.pushBlock()
		f.loopDepth++
		for _, st := range s.Body.Stats {
			r.walkStat(f, st, errp)
		}
		if s.Body.Return != nil {
			for _, e := range s.Body.Return.Exps {
				r.walkExp(f, e, errp)
			}
		}
		r.walkExp(f, s.Cond, errp)
		f.loopDepth--
		f.popBlock()

	case *ast.IfStat:
		for i, cond := range s.Conds {
			r.walkExp(f, cond, errp)
			r.walkBlock(f, s.Blocks[i], errp)
		}
		if s.Else != nil {
			r.walkBlock(f, s.Else, errp)
		}

	case *ast.NumericForStat:
		r.walkExp(f, s.Start, errp)
		r.walkExp(f, s.Limit, errp)
		if s.Step != nil {
			r.walkExp(f, s.Step, errp)
		}
		f.pushBlock()
		f.loopDepth++
		reg := f.declare(s.Name)
		r.NumForReg[s] = reg
		r.walkBlock(f, s.Body, errp)
		f.loopDepth--
		f.popBlock()

	case *ast.GenericForStat:
		for _, e := range s.Exps {
			r.walkExp(f, e, errp)
		}
		f.pushBlock()
		f.loopDepth++
		regs := make([]int, len(s.Names))
		for i, name := range s.Names {
			regs[i] = f.declare(name)
		}
		r.GenForRegs[s] = regs
		r.walkBlock(f, s.Body, errp)
		f.loopDepth--
		f.popBlock()

	case *ast.FunctionDeclStat:
		// function a.b.c:m() ... end desugars, for resolution purposes, to
		// an assignment into the global/table path `a.b.c` (or `.m`); only
		// the path's head name needs resolving (local/upvalue/global), the
		// rest is a chain of GetField/SetField the code generator builds.
		if len(s.Path) > 0 {
			if r.FuncDeclHead == nil {
				r.FuncDeclHead = map[*ast.FunctionDeclStat]*VarRef{}
			}
			r.FuncDeclHead[s] = r.resolveName(f, s.Path[0])
		}
		r.walkFunction(f, s.Fn, errp)

	case *ast.BreakStat:
		if f.loopDepth == 0 {
			r.fail(errp, s.Meta.Line, "break outside a loop")
		}

	case *ast.GotoStat:
		// validated after the whole function is walked (forward gotos are
		// legal), see validateGotos.

	case *ast.LabelStat:
		f.labels[s.Name] = true

	case *ast.ReturnStat:
		// handled by walkBlock's caller
	}
}
