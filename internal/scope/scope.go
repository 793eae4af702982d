// Package scope implements the scope resolver (C4): a single top-down walk
// per function body that classifies every variable occurrence as
// local-register / captured-local / upvalue / global, and computes each
// function's parameter count, vararg flag and local register count
// (spec §4.3). Its output is a side table keyed by AST node identity that
// the code generator (package code) consults while emitting instructions —
// the teacher inlines this bookkeeping into codegen/func_info.go; here it
// is split out as its own pass per spec's component boundary (C4 distinct
// from C5), which also makes it independently testable.
package scope

import (
	"fmt"

	"github.com/lollipopkit/luacore/internal/ast"
)

type VarKind int

const (
	KindLocal VarKind = iota
	KindUpvalue
	KindGlobal
)

type VarRef struct {
	Kind     VarKind
	Register int // valid when Kind == KindLocal
	UpIndex  int // valid when Kind == KindUpvalue
	Name     string
}

type UpvalueKind int

const (
	UpvalLocal UpvalueKind = iota
	UpvalUpvalue
)

// UpvalueDescriptor says how a closure's Nth upvalue slot is filled by its
// enclosing frame: either copied from one of the enclosing frame's own
// local registers (UpvalLocal) or forwarded from one of the enclosing
// frame's own upvalues (UpvalUpvalue) — spec §3 Prototype.upvalue_descriptors.
type UpvalueDescriptor struct {
	Kind  UpvalueKind
	Index int
	Name  string
}

// FuncInfo is the resolved metadata for one function body (chunk or
// FunctionExp).
type FuncInfo struct {
	ParamCount  int
	IsVararg    bool
	MaxRegister int // number of *local* registers declared; block exit does not release them
	Upvalues    []UpvalueDescriptor
	// Captured marks, by register index, which of this function's own
	// locals are captured by at least one nested closure and therefore
	// need an open-upvalue cell at runtime (spec §3 invariants).
	Captured map[int]bool
}

// Resolution is the full output of resolving one compilation unit (chunk).
type Resolution struct {
	Names          map[*ast.NameExp]*VarRef
	Locals         map[*ast.LocalStat][]int
	LocalFuncRegs  map[*ast.LocalFunctionStat]int
	Params         map[*ast.FunctionExp][]int
	NumForReg      map[*ast.NumericForStat]int
	GenForRegs     map[*ast.GenericForStat][]int
	FuncInfo       map[*ast.FunctionExp]*FuncInfo
	FuncDeclHead   map[*ast.FunctionDeclStat]*VarRef
	ChunkInfo      *FuncInfo
}

type frame struct {
	enclosing *frame
	blocks    []map[string]int // innermost last
	next      int              // next free local register
	peak      int
	info      *FuncInfo
	upvalIdx  map[string]int // name -> index already allocated in info.Upvalues
	loopDepth int
	labels    map[string]bool
}

func newFrame(enclosing *frame, isVararg bool) *frame {
	return &frame{
		enclosing: enclosing,
		blocks:    []map[string]int{{}},
		info:      &FuncInfo{IsVararg: isVararg, Captured: map[int]bool{}},
		upvalIdx:  map[string]int{},
		labels:    map[string]bool{},
	}
}

func (f *frame) pushBlock() { f.blocks = append(f.blocks, map[string]int{}) }
func (f *frame) popBlock()  { f.blocks = f.blocks[:len(f.blocks)-1] }

func (f *frame) declare(name string) int {
	reg := f.next
	f.next++
	if f.next > f.peak {
		f.peak = f.next
	}
	f.blocks[len(f.blocks)-1][name] = reg
	return reg
}

func (f *frame) lookupLocal(name string) (int, bool) {
	for i := len(f.blocks) - 1; i >= 0; i-- {
		if r, ok := f.blocks[i][name]; ok {
			return r, true
		}
	}
	return 0, false
}

// Resolve walks the chunk's top-level block (an implicit vararg function)
// and returns the resolution table, or a structural error (goto/break
// misuse).
func Resolve(chunk *ast.Block) (*Resolution, error) {
	r := &Resolution{
		Names:         map[*ast.NameExp]*VarRef{},
		Locals:        map[*ast.LocalStat][]int{},
		LocalFuncRegs: map[*ast.LocalFunctionStat]int{},
		Params:        map[*ast.FunctionExp][]int{},
		NumForReg:     map[*ast.NumericForStat]int{},
		GenForRegs:    map[*ast.GenericForStat][]int{},
		FuncInfo:      map[*ast.FunctionExp]*FuncInfo{},
	}
	top := newFrame(nil, true)
	var err error
	r.walkBlock(top, chunk, &err)
	if err != nil {
		return nil, err
	}
	if err := validateGotos(chunk, top.labels); err != nil {
		return nil, err
	}
	top.info.MaxRegister = top.peak
	r.ChunkInfo = top.info
	return r, nil
}

func (r *Resolution) walkBlock(f *frame, b *ast.Block, errp *error) {
	if *errp != nil {
		return
	}
	f.pushBlock()
	defer f.popBlock()
	for _, s := range b.Stats {
		r.walkStat(f, s, errp)
		if *errp != nil {
			return
		}
	}
	if b.Return != nil {
		for _, e := range b.Return.Exps {
			r.walkExp(f, e, errp)
		}
	}
}

func (r *Resolution) fail(errp *error, line int, format string, args ...any) {
	if *errp == nil {
		*errp = fmt.Errorf("line %d: %s", line, fmt.Sprintf(format, args...))
	}
}
