package code

import (
	"github.com/lollipopkit/luacore/internal/ast"
	"github.com/lollipopkit/luacore/proto"
)

func genBlock(fs *funcState, b *ast.Block) {
	for _, s := range b.Stats {
		genStat(fs, s)
	}
	if b.Return != nil {
		genReturn(fs, b.Return)
	}
}

func genStat(fs *funcState, s ast.Stat) {
	m := fs.mark()
	switch s := s.(type) {
	case *ast.LocalStat:
		genLocalStat(fs, s)
	case *ast.LocalFunctionStat:
		genLocalFunctionStat(fs, s)
	case *ast.AssignStat:
		genAssignStat(fs, s)
	case *ast.CallStat:
		genCall(fs, s.Call, fs.nextReg, 0)
	case *ast.DoStat:
		genBlock(fs, s.Body)
	case *ast.WhileStat:
		genWhileStat(fs, s)
	case *ast.RepeatStat:
		genRepeatStat(fs, s)
	case *ast.IfStat:
		genIfStat(fs, s)
	case *ast.NumericForStat:
		genNumericForStat(fs, s)
	case *ast.GenericForStat:
		genGenericForStat(fs, s)
	case *ast.FunctionDeclStat:
		genFunctionDeclStat(fs, s)
	case *ast.BreakStat:
		j := fs.emit(proto.Instr{Op: proto.OpJump}, s.Meta.Line)
		top := len(fs.breakJumps) - 1
		fs.breakJumps[top] = append(fs.breakJumps[top], j)
	case *ast.GotoStat:
		j := fs.emit(proto.Instr{Op: proto.OpJump}, s.Meta.Line)
		fs.pendingGotos = append(fs.pendingGotos, pendingGoto{label: s.Label, instr: j, line: s.Meta.Line})
	case *ast.LabelStat:
		fs.labels[s.Name] = fs.here()
	}
	fs.restore(m)
}

func metaLine(s ast.Stat) int {
	switch s := s.(type) {
	case *ast.LocalStat:
		return s.Line
	case *ast.LocalFunctionStat:
		return s.Line
	case *ast.AssignStat:
		return s.Line
	case *ast.CallStat:
		return s.Line
	case *ast.DoStat:
		return s.Line
	case *ast.WhileStat:
		return s.Line
	case *ast.RepeatStat:
		return s.Line
	case *ast.IfStat:
		return s.Line
	case *ast.NumericForStat:
		return s.Line
	case *ast.GenericForStat:
		return s.Line
	case *ast.FunctionDeclStat:
		return s.Line
	case *ast.BreakStat:
		return s.Line
	case *ast.GotoStat:
		return s.Line
	case *ast.LabelStat:
		return s.Line
	default:
		return 0
	}
}

func genLocalStat(fs *funcState, s *ast.LocalStat) {
	genExpListInto(fs, s.Exps, fs.res.Locals[s])
}

// genExpListInto assigns values to a fixed, possibly non-contiguous set of
// destination registers (local declarations always get contiguous
// registers from the scope pass, but this stays correct even if they were
// not) by compiling into a contiguous temp run and moving into place.
func genExpListInto(fs *funcState, exps []ast.Exp, dstRegs []int) {
	if len(exps) == 0 {
		for _, r := range dstRegs {
			fs.emit(proto.Instr{Op: proto.OpLoadNil, A: r, B: 1}, 0)
			if fs.info.Captured[r] {
				fs.emit(proto.Instr{Op: proto.OpSetOpenUpvalue, A: r, B: r}, 0)
			}
		}
		return
	}
	m := fs.mark()
	base := fs.nextReg
	for range dstRegs {
		fs.allocTemp()
	}
	genExpList(fs, exps, base, len(dstRegs))
	for i, r := range dstRegs {
		if fs.info.Captured[r] {
			fs.emit(proto.Instr{Op: proto.OpSetOpenUpvalue, A: r, B: base + i}, 0)
		} else if base+i != r {
			fs.emit(proto.Instr{Op: proto.OpMove, A: r, B: base + i}, 0)
		}
	}
	fs.restore(m)
}

func genLocalFunctionStat(fs *funcState, s *ast.LocalFunctionStat) {
	reg := fs.res.LocalFuncRegs[s]
	if fs.info.Captured[reg] {
		tmp := fs.allocTemp()
		genClosure(fs, s.Fn, tmp)
		fs.emit(proto.Instr{Op: proto.OpSetOpenUpvalue, A: reg, B: tmp}, s.Line)
		return
	}
	genClosure(fs, s.Fn, reg)
}

func genAssignStat(fs *funcState, s *ast.AssignStat) {
	m := fs.mark()
	base := fs.nextReg
	for range s.Targets {
		fs.allocTemp()
	}
	genExpList(fs, s.Exps, base, len(s.Targets))
	for i, t := range s.Targets {
		genAssignTarget(fs, t, base+i)
	}
	fs.restore(m)
}

func genAssignTarget(fs *funcState, target ast.Exp, src int) {
	switch t := target.(type) {
	case *ast.NameExp:
		genNameSet(fs, fs.res.Names[t], src, t.Line)
	case *ast.IndexExp:
		m := fs.mark()
		obj := fs.allocTemp()
		genExp(fs, t.Prefix, obj)
		if t.Name != "" {
			fs.emit(proto.Instr{Op: proto.OpSetField, A: obj, C: src, Str: t.Name}, t.Line)
		} else {
			key := fs.allocTemp()
			genExp(fs, t.Key, key)
			fs.emit(proto.Instr{Op: proto.OpSetIndex, A: obj, B: key, C: src}, t.Line)
		}
		fs.restore(m)
	default:
		failf(0, "invalid assignment target")
	}
}

func genIfStat(fs *funcState, s *ast.IfStat) {
	var endJumps []int
	for i, cond := range s.Conds {
		m := fs.mark()
		condReg := fs.allocTemp()
		genExp(fs, cond, condReg)
		skip := fs.emit(proto.Instr{Op: proto.OpJumpIfFalse, A: condReg}, s.Line)
		fs.restore(m)
		genBlock(fs, s.Blocks[i])
		if i < len(s.Conds)-1 || s.Else != nil {
			endJumps = append(endJumps, fs.emit(proto.Instr{Op: proto.OpJump}, s.Line))
		}
		fs.patchJumpHere(skip)
	}
	if s.Else != nil {
		genBlock(fs, s.Else)
	}
	for _, j := range endJumps {
		fs.patchJumpHere(j)
	}
}

func genWhileStat(fs *funcState, s *ast.WhileStat) {
	top := fs.here()
	m := fs.mark()
	condReg := fs.allocTemp()
	genExp(fs, s.Cond, condReg)
	exit := fs.emit(proto.Instr{Op: proto.OpJumpIfFalse, A: condReg}, s.Line)
	fs.restore(m)
	fs.breakJumps = append(fs.breakJumps, nil)
	genBlock(fs, s.Body)
	fs.emit(proto.Instr{Op: proto.OpJump, Jump: top}, s.Line)
	fs.patchJumpHere(exit)
	patchBreaks(fs)
}

func genRepeatStat(fs *funcState, s *ast.RepeatStat) {
	top := fs.here()
	fs.breakJumps = append(fs.breakJumps, nil)
	for _, st := range s.Body.Stats {
		genStat(fs, st)
	}
	if s.Body.Return != nil {
		genReturn(fs, s.Body.Return)
	}
	m := fs.mark()
	condReg := fs.allocTemp()
	genExp(fs, s.Cond, condReg)
	fs.emit(proto.Instr{Op: proto.OpJumpIfFalse, A: condReg, Jump: top}, s.Line)
	fs.restore(m)
	patchBreaks(fs)
}

func patchBreaks(fs *funcState) {
	top := len(fs.breakJumps) - 1
	for _, j := range fs.breakJumps[top] {
		fs.patchJumpHere(j)
	}
	fs.breakJumps = fs.breakJumps[:top]
}

// genNumericForStat follows the classic FORPREP/FORLOOP shape: FORPREP
// runs once before the loop (validating the step and checking for a
// zero-iteration loop), FORLOOP sits at the bottom of the body, advancing
// the counter, testing against the limit, and jumping back to the body's
// first instruction when another iteration is due. Both instructions also
// carry (in Const) the register of the user-visible loop variable, which
// FORLOOP refreshes from the counter on every iteration it takes.
func genNumericForStat(fs *funcState, s *ast.NumericForStat) {
	m := fs.mark()
	counterReg := fs.allocTemp()
	genExp(fs, s.Start, counterReg)
	limitReg := fs.allocTemp()
	genExp(fs, s.Limit, limitReg)
	stepReg := fs.allocTemp()
	if s.Step != nil {
		genExp(fs, s.Step, stepReg)
	} else {
		fs.emit(proto.Instr{Op: proto.OpLoadConst, A: stepReg, Const: fs.constant(int64(1))}, s.Line)
	}
	loopVar := fs.res.NumForReg[s]
	prep := fs.emit(proto.Instr{Op: proto.OpForPrep, A: counterReg, B: limitReg, C: stepReg, Const: loopVar}, s.Line)
	bodyStart := fs.here()
	if fs.info.Captured[loopVar] {
		fs.emit(proto.Instr{Op: proto.OpSetOpenUpvalue, A: loopVar, B: loopVar}, s.Line)
	}
	fs.breakJumps = append(fs.breakJumps, nil)
	genBlock(fs, s.Body)
	forLoop := fs.emit(proto.Instr{Op: proto.OpForLoop, A: counterReg, B: limitReg, C: stepReg, Const: loopVar, Jump: bodyStart}, s.Line)
	fs.proto.Instructions[prep].Jump = forLoop
	patchBreaks(fs)
	fs.restore(m)
}

// genGenericForStat lays the iterator triple (func, state, control) out in
// three contiguous registers, calls the iterator each pass with TForCall
// (results land directly above the triple), then TForLoop checks the
// first result for nil (loop done) before the results are moved into the
// loop variables' own registers and the body runs.
func genGenericForStat(fs *funcState, s *ast.GenericForStat) {
	m := fs.mark()
	base := fs.nextReg
	ctrl0 := fs.allocTemp()
	fs.allocTemp() // ctrl1, state
	ctrl2 := fs.allocTemp()
	genExpListInto(fs, s.Exps, []int{ctrl0, ctrl0 + 1, ctrl2})
	regs := fs.res.GenForRegs[s]
	resBase := fs.nextReg
	for range regs {
		fs.allocTemp()
	}
	top := fs.here()
	fs.emit(proto.Instr{Op: proto.OpTForCall, A: base, B: len(regs)}, s.Line)
	exitJump := fs.emit(proto.Instr{Op: proto.OpTForLoop, A: resBase}, s.Line)
	for i, r := range regs {
		if fs.info.Captured[r] {
			fs.emit(proto.Instr{Op: proto.OpSetOpenUpvalue, A: r, B: resBase + i}, s.Line)
		} else if resBase+i != r {
			fs.emit(proto.Instr{Op: proto.OpMove, A: r, B: resBase + i}, s.Line)
		}
	}
	fs.breakJumps = append(fs.breakJumps, nil)
	genBlock(fs, s.Body)
	fs.emit(proto.Instr{Op: proto.OpJump, Jump: top}, s.Line)
	fs.proto.Instructions[exitJump].Jump = fs.here()
	patchBreaks(fs)
	fs.restore(m)
}

func genFunctionDeclStat(fs *funcState, s *ast.FunctionDeclStat) {
	if s.Method != "" {
		genMethodDeclStat(fs, s)
		return
	}
	m := fs.mark()
	reg := fs.allocTemp()
	genClosure(fs, s.Fn, reg)
	if len(s.Path) == 1 {
		genNameSet(fs, fs.res.FuncDeclHead[s], reg, s.Line)
		fs.restore(m)
		return
	}
	objReg := fs.allocTemp()
	genNameGet(fs, fs.res.FuncDeclHead[s], objReg, s.Line)
	for _, field := range s.Path[1 : len(s.Path)-1] {
		next := fs.allocTemp()
		fs.emit(proto.Instr{Op: proto.OpGetField, A: next, B: objReg, Str: field}, s.Line)
		objReg = next
	}
	fs.emit(proto.Instr{Op: proto.OpSetField, A: objReg, C: reg, Str: s.Path[len(s.Path)-1]}, s.Line)
	fs.restore(m)
}

func genMethodDeclStat(fs *funcState, s *ast.FunctionDeclStat) {
	m := fs.mark()
	reg := fs.allocTemp()
	genClosure(fs, s.Fn, reg)
	objReg := fs.allocTemp()
	genNameGet(fs, fs.res.FuncDeclHead[s], objReg, s.Line)
	for _, field := range s.Path[1:] {
		next := fs.allocTemp()
		fs.emit(proto.Instr{Op: proto.OpGetField, A: next, B: objReg, Str: field}, s.Line)
		objReg = next
	}
	fs.emit(proto.Instr{Op: proto.OpSetField, A: objReg, C: reg, Str: s.Method}, s.Line)
	fs.restore(m)
}

func genReturn(fs *funcState, r *ast.ReturnStat) {
	if len(r.Exps) == 0 {
		fs.emit(proto.Instr{Op: proto.OpReturn, A: 0, B: 0}, r.Line)
		return
	}
	m := fs.mark()
	base := fs.nextReg
	lastMulti := isMultiExp(r.Exps[len(r.Exps)-1])
	for range r.Exps {
		fs.allocTemp()
	}
	genExpList(fs, r.Exps, base, -1)
	count := len(r.Exps)
	if lastMulti {
		count = -1
	}
	fs.emit(proto.Instr{Op: proto.OpReturn, A: base, B: count}, r.Line)
	fs.restore(m)
}
