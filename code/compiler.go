// Package code implements the code generator (C5): lowering a resolved AST
// (package ast + the scope.Resolution computed over it) into a
// proto.Prototype tree of flat, jump-based instructions. Grounded on the
// teacher's compiler/codegen package (code_gen.go's cgExp/cgBlock dispatch,
// func_info.go's per-function instruction buffer and register bookkeeping),
// generalized in two ways the spec requires: named locals get their
// register numbers from the scope pass instead of codegen's own
// allocLocVar, and control flow is emitted as absolute jumps into one flat
// instruction stream rather than patched relative PC-like teacher's
// instructions — simpler to patch correctly without a "BNE et al" ISA.
package code

import (
	"fmt"

	"github.com/lollipopkit/luacore/internal/ast"
	"github.com/lollipopkit/luacore/internal/scope"
	"github.com/lollipopkit/luacore/luaerr"
	"github.com/lollipopkit/luacore/proto"
)

type funcState struct {
	parent *funcState
	res    *scope.Resolution
	info   *scope.FuncInfo

	proto *proto.Prototype

	nextReg int // first free register above all locals/active temps
	maxReg  int

	constIndex map[any]int

	labels       map[string]int // label name -> instruction index
	pendingGotos []pendingGoto
	breakJumps   [][]int // one slice per enclosing loop, patched at loop exit
}

type pendingGoto struct {
	label string
	instr int // index of the OpJump instruction to patch
	line  int
}

func newFuncState(parent *funcState, res *scope.Resolution, info *scope.FuncInfo, source string) *funcState {
	return &funcState{
		parent: parent,
		res:    res,
		info:   info,
		proto: &proto.Prototype{
			Source:     source,
			ParamCount: info.ParamCount,
			IsVararg:   info.IsVararg,
		},
		nextReg:    info.MaxRegister,
		maxReg:     info.MaxRegister,
		constIndex: map[any]int{},
		labels:     map[string]int{},
	}
}

func (fs *funcState) emit(in proto.Instr, line int) int {
	fs.proto.Instructions = append(fs.proto.Instructions, in)
	fs.proto.Lines = append(fs.proto.Lines, line)
	return len(fs.proto.Instructions) - 1
}

func (fs *funcState) patchJumpHere(instr int) {
	fs.proto.Instructions[instr].Jump = len(fs.proto.Instructions)
}

func (fs *funcState) here() int { return len(fs.proto.Instructions) }

// allocTemp reserves one scratch register above the current high-water
// mark; callers must restore fs.nextReg (via a saved mark) once the
// register is no longer needed, since this package never reuses locals'
// register numbers but does reuse temp registers across sibling
// subexpressions.
func (fs *funcState) allocTemp() int {
	r := fs.nextReg
	fs.nextReg++
	if fs.nextReg > fs.maxReg {
		fs.maxReg = fs.nextReg
	}
	return r
}

func (fs *funcState) mark() int       { return fs.nextReg }
func (fs *funcState) restore(m int)   { fs.nextReg = m }

func (fs *funcState) constant(v proto.Value) int {
	if idx, ok := fs.constIndex[v]; ok {
		return idx
	}
	idx := len(fs.proto.Constants)
	fs.proto.Constants = append(fs.proto.Constants, v)
	fs.constIndex[v] = idx
	return idx
}

// Compile lowers a parsed, resolved chunk into its top-level Prototype
// (spec §6 `compile(chunk) -> Prototype | CompileError`).
func Compile(chunk *ast.Block, res *scope.Resolution, source string) (p *proto.Prototype, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*luaerr.CompileError); ok {
				err = ce
				return
			}
			panic(r)
		}
	}()
	fs := newFuncState(nil, res, res.ChunkInfo, source)
	genBlock(fs, chunk)
	if chunk.Return == nil {
		fs.emit(proto.Instr{Op: proto.OpReturn, A: 0, B: 0}, lastLine(chunk))
	}
	resolveGotos(fs)
	fs.proto.MaxRegister = fs.maxReg
	return fs.proto, nil
}

func lastLine(b *ast.Block) int {
	if b.Return != nil {
		return b.Return.Meta.Line
	}
	if len(b.Stats) > 0 {
		return metaLine(b.Stats[len(b.Stats)-1])
	}
	return 0
}

func failf(line int, format string, args ...any) {
	panic(&luaerr.CompileError{Message: fmt.Sprintf("line %d: %s", line, fmt.Sprintf(format, args...))})
}

func resolveGotos(fs *funcState) {
	for _, g := range fs.pendingGotos {
		target, ok := fs.labels[g.label]
		if !ok {
			failf(g.line, "no visible label %q for goto", g.label)
		}
		fs.proto.Instructions[g.instr].Jump = target
	}
}
