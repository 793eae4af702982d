package code

import (
	"github.com/lollipopkit/luacore/internal/ast"
	"github.com/lollipopkit/luacore/internal/scope"
	"github.com/lollipopkit/luacore/proto"
)

// genExp compiles e so its single resulting value lands in register dst,
// mirroring the teacher's cgExp(fi, node, a, 1) shape.
func genExp(fs *funcState, e ast.Exp, dst int) {
	switch e := e.(type) {
	case *ast.NilExp:
		fs.emit(proto.Instr{Op: proto.OpLoadNil, A: dst, B: 1}, e.Line)
	case *ast.TrueExp:
		fs.emit(proto.Instr{Op: proto.OpLoadBool, A: dst, B: 1}, e.Line)
	case *ast.FalseExp:
		fs.emit(proto.Instr{Op: proto.OpLoadBool, A: dst, B: 0}, e.Line)
	case *ast.IntegerExp:
		fs.emit(proto.Instr{Op: proto.OpLoadConst, A: dst, Const: fs.constant(e.Int)}, e.Line)
	case *ast.FloatExp:
		fs.emit(proto.Instr{Op: proto.OpLoadConst, A: dst, Const: fs.constant(e.Float)}, e.Line)
	case *ast.StringExp:
		fs.emit(proto.Instr{Op: proto.OpLoadConst, A: dst, Const: fs.constant(e.Str)}, e.Line)
	case *ast.VarargExp:
		fs.emit(proto.Instr{Op: proto.OpVararg, A: dst, B: 1}, e.Line)
	case *ast.ParenExp:
		genExp(fs, e.Exp, dst)
	case *ast.NameExp:
		genNameGet(fs, fs.res.Names[e], dst, e.Line)
	case *ast.UnopExp:
		genUnop(fs, e, dst)
	case *ast.BinopExp:
		genBinop(fs, e, dst)
	case *ast.IndexExp:
		genIndex(fs, e, dst)
	case *ast.TableExp:
		genTable(fs, e, dst)
	case *ast.FunctionExp:
		genClosure(fs, e, dst)
	case *ast.CallExp:
		genCall(fs, e, dst, 1)
	default:
		failf(0, "unsupported expression %T", e)
	}
}

func genNameGet(fs *funcState, ref *scope.VarRef, dst int, line int) {
	switch ref.Kind {
	case scope.KindLocal:
		if fs.info.Captured[ref.Register] {
			fs.emit(proto.Instr{Op: proto.OpGetOpenUpvalue, A: dst, B: ref.Register}, line)
		} else if ref.Register != dst {
			fs.emit(proto.Instr{Op: proto.OpMove, A: dst, B: ref.Register}, line)
		}
	case scope.KindUpvalue:
		fs.emit(proto.Instr{Op: proto.OpGetUpvalue, A: dst, B: ref.UpIndex}, line)
	default:
		fs.emit(proto.Instr{Op: proto.OpGetGlobal, A: dst, Str: ref.Name}, line)
	}
}

func genNameSet(fs *funcState, ref *scope.VarRef, src int, line int) {
	switch ref.Kind {
	case scope.KindLocal:
		if fs.info.Captured[ref.Register] {
			fs.emit(proto.Instr{Op: proto.OpSetOpenUpvalue, A: ref.Register, B: src}, line)
		} else if ref.Register != src {
			fs.emit(proto.Instr{Op: proto.OpMove, A: ref.Register, B: src}, line)
		}
	case scope.KindUpvalue:
		fs.emit(proto.Instr{Op: proto.OpSetUpvalue, A: ref.UpIndex, B: src}, line)
	default:
		fs.emit(proto.Instr{Op: proto.OpSetGlobal, A: src, Str: ref.Name}, line)
	}
}

func genUnop(fs *funcState, e *ast.UnopExp, dst int) {
	m := fs.mark()
	src := fs.allocTemp()
	genExp(fs, e.Exp, src)
	op := proto.OpNeg
	switch e.Op {
	case ast.OpUnm:
		op = proto.OpNeg
	case ast.OpNot:
		op = proto.OpNot
	case ast.OpLen:
		op = proto.OpLen
	case ast.OpBNot:
		op = proto.OpBNot
	}
	fs.emit(proto.Instr{Op: op, A: dst, B: src}, e.Line)
	fs.restore(m)
}

func genBinop(fs *funcState, e *ast.BinopExp, dst int) {
	if e.Op == ast.OpAnd || e.Op == ast.OpOr {
		genLogical(fs, e, dst)
		return
	}
	m := fs.mark()
	lreg := fs.allocTemp()
	genExp(fs, e.Left, lreg)
	rreg := fs.allocTemp()
	genExp(fs, e.Right, rreg)
	op, swap := binOpcode(e.Op)
	if swap {
		lreg, rreg = rreg, lreg
	}
	fs.emit(proto.Instr{Op: op, A: dst, B: lreg, C: rreg}, e.Line)
	if e.Op == ast.OpNe {
		fs.emit(proto.Instr{Op: proto.OpNot, A: dst, B: dst}, e.Line)
	}
	fs.restore(m)
}

// binOpcode maps an ast.Kind to its VM opcode; > and >= have no dedicated
// opcode (Lua defines a>b as b<a), so swap reports operand order reversal.
func binOpcode(k ast.Kind) (proto.Op, bool) {
	switch k {
	case ast.OpAdd:
		return proto.OpAdd, false
	case ast.OpSub:
		return proto.OpSub, false
	case ast.OpMul:
		return proto.OpMul, false
	case ast.OpDiv:
		return proto.OpDiv, false
	case ast.OpFloorDiv:
		return proto.OpFloorDiv, false
	case ast.OpMod:
		return proto.OpMod, false
	case ast.OpPow:
		return proto.OpPow, false
	case ast.OpConcat:
		return proto.OpConcat, false
	case ast.OpBAnd:
		return proto.OpBAnd, false
	case ast.OpBOr:
		return proto.OpBOr, false
	case ast.OpBXor:
		return proto.OpBXor, false
	case ast.OpShl:
		return proto.OpShl, false
	case ast.OpShr:
		return proto.OpShr, false
	case ast.OpEq:
		return proto.OpEq, false
	case ast.OpNe:
		return proto.OpEq, false // codegen negates via genBinop caller below
	case ast.OpLt:
		return proto.OpLt, false
	case ast.OpLe:
		return proto.OpLe, false
	case ast.OpGt:
		return proto.OpLt, true
	case ast.OpGe:
		return proto.OpLe, true
	default:
		failf(0, "unsupported binary operator")
		return 0, false
	}
}

func genLogical(fs *funcState, e *ast.BinopExp, dst int) {
	genExp(fs, e.Left, dst)
	var skip int
	if e.Op == ast.OpAnd {
		skip = fs.emit(proto.Instr{Op: proto.OpJumpIfFalse, A: dst}, e.Line)
	} else {
		skip = fs.emit(proto.Instr{Op: proto.OpJumpIfTrue, A: dst}, e.Line)
	}
	genExp(fs, e.Right, dst)
	fs.patchJumpHere(skip)
}

func genIndex(fs *funcState, e *ast.IndexExp, dst int) {
	m := fs.mark()
	obj := fs.allocTemp()
	genExp(fs, e.Prefix, obj)
	if e.Name != "" {
		fs.emit(proto.Instr{Op: proto.OpGetField, A: dst, B: obj, Str: e.Name}, e.Line)
	} else {
		key := fs.allocTemp()
		genExp(fs, e.Key, key)
		fs.emit(proto.Instr{Op: proto.OpGetIndex, A: dst, B: obj, C: key}, e.Line)
	}
	fs.restore(m)
}

// genTable compiles a table constructor. Keyed entries (`name = v` /
// `[k] = v`) and ordinary positional entries each become one SetIndex;
// a positional entry in final position that is itself a call or `...` is
// special-cased with SetList so all of its results (not just the first)
// land in the array part, matching Lua's table-constructor rule.
func genTable(fs *funcState, e *ast.TableExp, dst int) {
	fs.emit(proto.Instr{Op: proto.OpNewTable, A: dst}, e.Line)
	m := fs.mark()
	arrIndex := 0
	for i := range e.Vals {
		if e.Keys[i] == nil {
			last := i == len(e.Vals)-1
			if last && isMultiExp(e.Vals[i]) {
				base := fs.allocTemp()
				genExpMulti(fs, e.Vals[i], base, -1)
				fs.emit(proto.Instr{Op: proto.OpSetList, A: dst, B: base, C: -1, Const: arrIndex}, e.Line)
				fs.restore(base)
				continue
			}
			arrIndex++
			valReg := fs.allocTemp()
			genExp(fs, e.Vals[i], valReg)
			keyReg := fs.allocTemp()
			fs.emit(proto.Instr{Op: proto.OpLoadConst, A: keyReg, Const: fs.constant(int64(arrIndex))}, e.Line)
			fs.emit(proto.Instr{Op: proto.OpSetIndex, A: dst, B: keyReg, C: valReg}, e.Line)
			fs.restore(valReg)
			continue
		}
		keyReg := fs.allocTemp()
		genExp(fs, e.Keys[i], keyReg)
		valReg := fs.allocTemp()
		genExp(fs, e.Vals[i], valReg)
		fs.emit(proto.Instr{Op: proto.OpSetIndex, A: dst, B: keyReg, C: valReg}, e.Line)
		fs.restore(keyReg)
	}
	fs.restore(m)
}

func genClosure(fs *funcState, e *ast.FunctionExp, dst int) {
	info := fs.res.FuncInfo[e]
	child := newFuncState(fs, fs.res, info, fs.proto.Source)
	genBlock(child, e.Body)
	if e.Body.Return == nil {
		child.emit(proto.Instr{Op: proto.OpReturn, A: 0, B: 0}, lastLine(e.Body))
	}
	resolveGotos(child)
	child.proto.MaxRegister = child.maxReg
	child.proto.LineStart = e.Line
	child.proto.LineEnd = e.LastLine
	for _, uv := range info.Upvalues {
		var kind proto.UpvalKind
		if uv.Kind == scope.UpvalLocal {
			kind = proto.UpvalLocal
		} else {
			kind = proto.UpvalUpvalue
		}
		child.proto.Upvalues = append(child.proto.Upvalues, proto.UpvalDesc{Kind: kind, Index: uv.Index, Name: uv.Name})
	}
	idx := len(fs.proto.Prototypes)
	fs.proto.Prototypes = append(fs.proto.Prototypes, child.proto)
	fs.emit(proto.Instr{Op: proto.OpClosure, A: dst, B: idx}, e.Line)
}

func isMultiExp(e ast.Exp) bool {
	switch e.(type) {
	case *ast.CallExp, *ast.VarargExp:
		return true
	default:
		return false
	}
}

// genExpMulti compiles e, which must be a Call or Vararg expression, so it
// produces `want` values starting at dst (want == -1 means "as many as the
// call/vararg naturally yields").
func genExpMulti(fs *funcState, e ast.Exp, dst int, want int) {
	switch e := e.(type) {
	case *ast.CallExp:
		genCall(fs, e, dst, want)
	case *ast.VarargExp:
		fs.emit(proto.Instr{Op: proto.OpVararg, A: dst, B: want}, e.Line)
	default:
		genExp(fs, e, dst)
	}
}

// genExpList compiles exps into consecutive registers starting at base,
// producing exactly `want` values (want == -1 means all values the final
// expression yields, used for return/call-argument forwarding); extra
// slots beyond len(exps) are nil-filled, following Lua's adjustment rule.
func genExpList(fs *funcState, exps []ast.Exp, base int, want int) {
	for i, e := range exps {
		last := i == len(exps)-1
		reg := base + i
		for fs.nextReg <= reg {
			fs.allocTemp()
		}
		if last && isMultiExp(e) {
			remaining := -1
			if want >= 0 {
				remaining = want - i
				if remaining < 0 {
					remaining = 0
				}
			}
			genExpMulti(fs, e, reg, remaining)
			return
		}
		genExp(fs, e, reg)
	}
	if want > len(exps) {
		extra := want - len(exps)
		fs.emit(proto.Instr{Op: proto.OpLoadNil, A: base + len(exps), B: extra}, 0)
	}
}
