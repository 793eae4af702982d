package scope

import "github.com/lollipopkit/luacore/internal/ast"

func (r *Resolution) walkExp(f *frame, e ast.Exp, errp *error) {
	if *errp != nil || e == nil {
		return
	}
	switch e := e.(type) {
	case *ast.NameExp:
		r.Names[e] = r.resolveName(f, e.Name)
	case *ast.UnopExp:
		r.walkExp(f, e.Exp, errp)
	case *ast.BinopExp:
		r.walkExp(f, e.Left, errp)
		r.walkExp(f, e.Right, errp)
	case *ast.TableExp:
		for i := range e.Vals {
			if e.Keys[i] != nil {
				r.walkExp(f, e.Keys[i], errp)
			}
			r.walkExp(f, e.Vals[i], errp)
		}
	case *ast.FunctionExp:
		r.walkFunction(f, e, errp)
	case *ast.IndexExp:
		r.walkExp(f, e.Prefix, errp)
		if e.Key != nil {
			r.walkExp(f, e.Key, errp)
		}
	case *ast.CallExp:
		r.walkExp(f, e.Prefix, errp)
		for _, a := range e.Args {
			r.walkExp(f, a, errp)
		}
	case *ast.ParenExp:
		r.walkExp(f, e.Exp, errp)
	}
}

func (r *Resolution) walkFunction(f *frame, fn *ast.FunctionExp, errp *error) {
	child := newFrame(f, fn.IsVararg)
	child.info.ParamCount = len(fn.Params)
	regs := make([]int, len(fn.Params))
	for i, p := range fn.Params {
		regs[i] = child.declare(p)
	}
	r.Params[fn] = regs
	r.walkBlock(child, fn.Body, errp)
	child.info.MaxRegister = child.peak
	r.FuncInfo[fn] = child.info
	if err := validateGotos(fn.Body, child.labels); err != nil && *errp == nil {
		*errp = err
	}
}

// resolveName implements spec §4.3 step 3: search this frame's blocks, then
// walk outward marking captured locals and chaining upvalue descriptors.
func (r *Resolution) resolveName(f *frame, name string) *VarRef {
	if reg, ok := f.lookupLocal(name); ok {
		return &VarRef{Kind: KindLocal, Register: reg, Name: name}
	}
	if idx, ok := resolveUpvalue(f, name); ok {
		return &VarRef{Kind: KindUpvalue, UpIndex: idx, Name: name}
	}
	return &VarRef{Kind: KindGlobal, Name: name}
}

// resolveUpvalue finds (or creates, memoized) the index in f.info.Upvalues
// that supplies `name` to closures created inside f, recursing through
// enclosing frames and marking the owning frame's local register captured.
func resolveUpvalue(f *frame, name string) (int, bool) {
	if f == nil {
		return 0, false
	}
	if idx, ok := f.upvalIdx[name]; ok {
		return idx, true
	}
	if f.enclosing == nil {
		return 0, false
	}
	if reg, ok := f.enclosing.lookupLocal(name); ok {
		f.enclosing.info.Captured[reg] = true
		idx := len(f.info.Upvalues)
		f.info.Upvalues = append(f.info.Upvalues, UpvalueDescriptor{Kind: UpvalLocal, Index: reg, Name: name})
		f.upvalIdx[name] = idx
		return idx, true
	}
	if outerIdx, ok := resolveUpvalue(f.enclosing, name); ok {
		idx := len(f.info.Upvalues)
		f.info.Upvalues = append(f.info.Upvalues, UpvalueDescriptor{Kind: UpvalUpvalue, Index: outerIdx, Name: name})
		f.upvalIdx[name] = idx
		return idx, true
	}
	return 0, false
}
