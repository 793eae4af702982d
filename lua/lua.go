// Package lua is the library's external interface (spec §6): parse,
// compile, execute, construct a State and reach into its globals. It is the
// thin composition root that wires package state's reentrancy hook to
// package vm and populates a fresh State from package stdlib — the same
// role the teacher's top-level main.go/run.go play by importing state,
// compiler and stdlib together, just exposed as a library API instead of
// being inlined into a CLI's main().
package lua

import (
	"strings"

	"github.com/lollipopkit/luacore/code"
	"github.com/lollipopkit/luacore/internal/ast"
	"github.com/lollipopkit/luacore/internal/parser"
	"github.com/lollipopkit/luacore/internal/scope"
	"github.com/lollipopkit/luacore/luaerr"
	"github.com/lollipopkit/luacore/proto"
	"github.com/lollipopkit/luacore/state"
	"github.com/lollipopkit/luacore/stdlib"
	"github.com/lollipopkit/luacore/vm"
)

// Chunk is a parsed-but-not-yet-compiled source unit.
type Chunk struct {
	block      *ast.Block
	sourceName string
}

// CompileOptions carries the source name recorded into error messages and
// tracebacks (spec §6 compile(chunk, options{source_name})).
type CompileOptions struct {
	SourceName string
}

// StateOptions implements spec §6's new_state(options{sandboxed,
// exclude_paths}): Sandboxed installs only the base+string+math+table+debug
// slice (stdlib.Open installs that slice plus the supplementary json table,
// which a sandboxed State drops; io/os/package are Non-goals - see
// SPEC_FULL.md §2/DESIGN.md's stdlib deletions). ExcludePaths
// removes dotted global paths ("json" or "string.rep") after the standard
// library is installed.
type StateOptions struct {
	Sandboxed    bool
	ExcludePaths []string
}

// Parse implements spec §6's parse(source) -> Chunk | ParseError. A leading
// shebang is stripped by the lexer (internal/lexer.New's stripShebang).
func Parse(source, sourceName string) (*Chunk, error) {
	block, err := parser.Parse(source, sourceName)
	if err != nil {
		return nil, err
	}
	return &Chunk{block: block, sourceName: sourceName}, nil
}

// Compile implements spec §6's compile(chunk, options{source_name}) ->
// Prototype: resolving scope (internal/scope.Resolve) and lowering to a
// proto.Prototype (code.Compile) are both steps the teacher's
// compiler.Compile folds into one call; kept here as two explicit phases so
// a scope error reports distinctly from a codegen error, per
// DESIGN.md's `code` package entry.
func Compile(chunk *Chunk, opts CompileOptions) (*proto.Prototype, error) {
	name := opts.SourceName
	if name == "" {
		name = chunk.sourceName
	}
	res, err := scope.Resolve(chunk.block)
	if err != nil {
		return nil, &luaerr.CompileError{Source: name, Message: err.Error()}
	}
	return code.Compile(chunk.block, res, name)
}

// Execute implements spec §6's execute(prototype, state) -> (results,
// state): instantiates a top-level closure over prototype (no upvalues; a
// chunk is itself the outermost function) and calls it with args as the
// chunk's varargs.
func Execute(p *proto.Prototype, st *state.State, args ...state.Value) ([]state.Value, error) {
	closure := st.MakeClosure(p)
	return st.CallValue(closure, args)
}

// NewState implements spec §6's new_state(options): it wires the
// reentrancy hook (vm.Install), installs the standard library
// (stdlib.Open) and applies the sandboxing/exclusion options.
func NewState(opts StateOptions) *state.State {
	st := state.New()
	vm.Install(st)
	stdlib.Open(st)
	st.Sandboxed = opts.Sandboxed
	st.ExcludePaths = opts.ExcludePaths
	if opts.Sandboxed {
		delete(st.Globals, "json")
	}
	for _, path := range opts.ExcludePaths {
		parts := strings.Split(path, ".")
		if len(parts) == 1 {
			delete(st.Globals, path)
			continue
		}
		keys := make([]state.Value, len(parts))
		for i, p := range parts {
			keys[i] = p
		}
		Set(st, nil, keys...)
	}
	return st
}

// RegisterFunction implements spec §6's register_function(state, name,
// callable), exposing a host Go function to Lua code under name.
func RegisterFunction(st *state.State, name string, fn func(st *state.State, args []state.Value) ([]state.Value, error)) {
	st.Globals[name] = &state.NativeFunc{Name: name, Fn: fn}
}

// Get implements spec §6's get(state, path): path is a sequence of
// string/integer keys walked from globals, through nested tables.
func Get(st *state.State, path ...state.Value) state.Value {
	if len(path) == 0 {
		return nil
	}
	first, ok := path[0].(string)
	if !ok {
		return nil
	}
	v := st.Globals[first]
	for _, key := range path[1:] {
		ref, ok := v.(state.TableRef)
		if !ok {
			return nil
		}
		v = st.Table(ref).Get(key)
	}
	return v
}

// Set implements spec §6's set(state, path, value): the final path segment
// is written; intermediate segments must already resolve to tables.
func Set(st *state.State, value state.Value, path ...state.Value) bool {
	if len(path) == 0 {
		return false
	}
	first, ok := path[0].(string)
	if !ok {
		return false
	}
	if len(path) == 1 {
		st.Globals[first] = value
		return true
	}
	v := st.Globals[first]
	for _, key := range path[1 : len(path)-1] {
		ref, ok := v.(state.TableRef)
		if !ok {
			return false
		}
		v = st.Table(ref).Get(key)
	}
	ref, ok := v.(state.TableRef)
	if !ok {
		return false
	}
	st.Table(ref).Put(path[len(path)-1], value)
	return true
}
