package state

import (
	"math"

	"github.com/lollipopkit/luacore/luaerr"
)

// ArithOp names the binary/unary arithmetic and bitwise operators the
// executor dispatches through Arith, generalized from the teacher's
// api_arith.go operator table onto spec §4.4's set.
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpMod
	OpPow
	OpDiv
	OpIDiv
	OpBAnd
	OpBOr
	OpBXor
	OpShl
	OpShr
	OpUnm
	OpBNot
)

type operator struct {
	name        string
	metamethod  string
	integerFunc func(int64, int64) int64
	floatFunc   func(float64, float64) float64
}

var operators = map[ArithOp]operator{
	OpAdd:  {"+", "__add", func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b }},
	OpSub:  {"-", "__sub", func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b }},
	OpMul:  {"*", "__mul", func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b }},
	OpMod:  {"%", "__mod", luaIMod, luaFMod},
	OpPow:  {"^", "__pow", nil, math.Pow},
	OpDiv:  {"/", "__div", nil, func(a, b float64) float64 { return a / b }},
	OpIDiv: {"//", "__idiv", luaIFloorDiv, luaFFloorDiv},
	OpBAnd: {"&", "__band", func(a, b int64) int64 { return a & b }, nil},
	OpBOr:  {"|", "__bor", func(a, b int64) int64 { return a | b }, nil},
	OpBXor: {"~", "__bxor", func(a, b int64) int64 { return a ^ b }, nil},
	OpShl:  {"<<", "__shl", luaShiftLeft, nil},
	OpShr:  {">>", "__shr", luaShiftRight, nil},
	OpUnm:  {"-", "__unm", func(a, _ int64) int64 { return -a }, func(a, _ float64) float64 { return -a }},
	OpBNot: {"~", "__bnot", func(a, _ int64) int64 { return ^a }, nil},
}

func luaIMod(a, b int64) int64 {
	if b == 0 {
		panic(luaerr.NewGenericError("attempt to perform 'n%%0'"))
	}
	r := a % b
	if r != 0 && (r^b) < 0 {
		r += b
	}
	return r
}

func luaFMod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

func luaIFloorDiv(a, b int64) int64 {
	if b == 0 {
		panic(luaerr.NewGenericError("attempt to perform 'n//0'"))
	}
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func luaFFloorDiv(a, b float64) float64 {
	return math.Floor(a / b)
}

func luaShiftLeft(a, n int64) int64 {
	if n < 0 {
		return luaShiftRight(a, -n)
	}
	if n >= 64 {
		return 0
	}
	return a << uint(n)
}

func luaShiftRight(a, n int64) int64 {
	if n < 0 {
		return luaShiftLeft(a, -n)
	}
	if n >= 64 {
		return 0
	}
	return int64(uint64(a) >> uint(n))
}

// Arith performs a/b (or just a for unary ops) with Lua 5.3's int/float
// coercion rules and a metamethod fallback, mirroring the dispatch shape of
// the teacher's lkState.Arith but returning an error instead of pushing
// onto a VM stack.
func (st *State) Arith(op ArithOp, a, b Value) (Value, error) {
	o := operators[op]
	if isUnary(op) {
		b = a
	}
	if result, ok := rawArith(a, b, o); ok {
		return result, nil
	}
	if result, ok := st.callArithMetamethod(a, b, o.metamethod); ok {
		return result, nil
	}
	if op == OpAdd {
		if as, ok := a.(string); ok {
			if bs, ok := b.(string); ok {
				return as + bs, nil
			}
		}
	}
	return nil, luaerr.NewArithError(o.name, a, b)
}

// unaryOps ignore their second operand entirely (OpUnm, OpBNot): rawArith
// passes a for both so the shared dispatch code stays uniform.
func isUnary(op ArithOp) bool { return op == OpUnm || op == OpBNot }

func rawArith(a, b Value, o operator) (Value, bool) {
	if o.floatFunc == nil { // bitwise: integer-only
		x, ok := ToInteger(a)
		if !ok {
			return nil, false
		}
		y, ok := ToInteger(b)
		if !ok {
			return nil, false
		}
		return o.integerFunc(x, y), true
	}
	if o.integerFunc != nil {
		if x, ok := a.(int64); ok {
			if y, ok := b.(int64); ok {
				return o.integerFunc(x, y), true
			}
		}
	}
	x, ok := ToFloat(a)
	if !ok {
		return nil, false
	}
	y, ok := ToFloat(b)
	if !ok {
		return nil, false
	}
	return o.floatFunc(x, y), true
}

func (st *State) callArithMetamethod(a, b Value, mm string) (Value, bool) {
	if mm == "" {
		return nil, false
	}
	fn := st.Metafield(a, mm)
	if fn == nil {
		fn = st.Metafield(b, mm)
	}
	if fn == nil {
		return nil, false
	}
	results, err := st.CallValue(fn, []Value{a, b})
	if err != nil || len(results) == 0 {
		return nil, false
	}
	return results[0], true
}

// Compare implements ==, < and <= with metamethod fallback (spec §4.4),
// covering the subset the executor needs directly; > and >= are
// synthesized by swapping operands at the call site as Lua itself does.
func (st *State) Compare(op string, a, b Value) (bool, error) {
	switch op {
	case "==":
		return st.equals(a, b)
	case "<":
		return st.lessThan(a, b)
	case "<=":
		return st.lessEqual(a, b)
	}
	panic("state: unknown comparison " + op)
}

func (st *State) equals(a, b Value) (bool, error) {
	if a == nil && b == nil {
		return true, nil
	}
	if af, ok := ToNumberStrict(a); ok {
		if bf, ok := ToNumberStrict(b); ok {
			return numEqual(af, bf), nil
		}
	}
	if a == b {
		return true, nil
	}
	aref, aok := a.(TableRef)
	bref, bok := b.(TableRef)
	if aok && bok && aref != bref {
		if fn := st.Metafield(a, "__eq"); fn != nil {
			results, err := st.CallValue(fn, []Value{a, b})
			if err != nil {
				return false, err
			}
			return len(results) > 0 && Truthy(results[0]), nil
		}
	}
	return false, nil
}

// ToNumberStrict returns a's numeric value only when a is already a number
// (not a coercible string), used by equality which never coerces strings.
func ToNumberStrict(v Value) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

func numEqual(a, b float64) bool { return a == b }

func (st *State) lessThan(a, b Value) (bool, error) {
	if af, ok := ToNumberStrict(a); ok {
		if bf, ok := ToNumberStrict(b); ok {
			return af < bf, nil
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return as < bs, nil
		}
	}
	if fn := st.Metafield(a, "__lt"); fn != nil {
		results, err := st.CallValue(fn, []Value{a, b})
		if err != nil {
			return false, err
		}
		return len(results) > 0 && Truthy(results[0]), nil
	}
	return false, luaerr.NewGenericError("attempt to compare " + TypeOf(a).String() + " with " + TypeOf(b).String())
}

func (st *State) lessEqual(a, b Value) (bool, error) {
	if af, ok := ToNumberStrict(a); ok {
		if bf, ok := ToNumberStrict(b); ok {
			return af <= bf, nil
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return as <= bs, nil
		}
	}
	if fn := st.Metafield(a, "__le"); fn != nil {
		results, err := st.CallValue(fn, []Value{a, b})
		if err != nil {
			return false, err
		}
		return len(results) > 0 && Truthy(results[0]), nil
	}
	return false, luaerr.NewGenericError("attempt to compare " + TypeOf(a).String() + " with " + TypeOf(b).String())
}
