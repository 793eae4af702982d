package stdlib

import (
	"math"
	"math/rand"
	"time"

	"github.com/lollipopkit/luacore/luaerr"
	"github.com/lollipopkit/luacore/state"
)

var mathLib = map[string]func(st *state.State, args []state.Value) ([]state.Value, error){
	"max":        mathMax,
	"min":        mathMin,
	"exp":        mathExp,
	"log":        mathLog,
	"deg":        mathDeg,
	"rad":        mathRad,
	"sin":        mathSin,
	"cos":        mathCos,
	"tan":        mathTan,
	"asin":       mathAsin,
	"acos":       mathAcos,
	"atan":       mathAtan,
	"ceil":       mathCeil,
	"floor":      mathFloor,
	"fmod":       mathFmod,
	"modf":       mathModf,
	"abs":        mathAbs,
	"sqrt":       mathSqrt,
	"ult":        mathUlt,
	"type":       mathType,
	"tointeger":  mathToInteger,
	"random":     mathRandom,
	"randomseed": mathRandomSeed,
}

func openMathConstants(st *state.State, ref state.TableRef) {
	t := st.Table(ref)
	t.Put("pi", math.Pi)
	t.Put("huge", math.Inf(1))
	t.Put("maxinteger", int64(math.MaxInt64))
	t.Put("mininteger", int64(math.MinInt64))
}

func mathMax(st *state.State, args []state.Value) ([]state.Value, error) {
	if len(args) == 0 {
		return nil, luaerr.NewArgumentError("max", 1, "value", "no value", "")
	}
	best := args[0]
	for _, v := range args[1:] {
		if numLess(best, v) {
			best = v
		}
	}
	return []state.Value{best}, nil
}

func mathMin(st *state.State, args []state.Value) ([]state.Value, error) {
	if len(args) == 0 {
		return nil, luaerr.NewArgumentError("min", 1, "value", "no value", "")
	}
	best := args[0]
	for _, v := range args[1:] {
		if numLess(v, best) {
			best = v
		}
	}
	return []state.Value{best}, nil
}

func numLess(a, b state.Value) bool {
	af, _ := state.ToFloat(a)
	bf, _ := state.ToFloat(b)
	return af < bf
}

func math1(name string, fn func(float64) float64) func(*state.State, []state.Value) ([]state.Value, error) {
	return func(st *state.State, args []state.Value) ([]state.Value, error) {
		x, err := checkFloat(name, args, 0)
		if err != nil {
			return nil, err
		}
		return []state.Value{fn(x)}, nil
	}
}

var (
	mathExp  = math1("exp", math.Exp)
	mathSin  = math1("sin", math.Sin)
	mathCos  = math1("cos", math.Cos)
	mathTan  = math1("tan", math.Tan)
	mathAsin = math1("asin", math.Asin)
	mathAcos = math1("acos", math.Acos)
	mathSqrt = math1("sqrt", math.Sqrt)
	mathDeg  = math1("deg", func(x float64) float64 { return x * 180 / math.Pi })
	mathRad  = math1("rad", func(x float64) float64 { return x * math.Pi / 180 })
)

func mathLog(st *state.State, args []state.Value) ([]state.Value, error) {
	x, err := checkFloat("log", args, 0)
	if err != nil {
		return nil, err
	}
	if arg(args, 1) == nil {
		return []state.Value{math.Log(x)}, nil
	}
	base, err := checkFloat("log", args, 1)
	if err != nil {
		return nil, err
	}
	switch base {
	case 2:
		return []state.Value{math.Log2(x)}, nil
	case 10:
		return []state.Value{math.Log10(x)}, nil
	default:
		return []state.Value{math.Log(x) / math.Log(base)}, nil
	}
}

func mathAtan(st *state.State, args []state.Value) ([]state.Value, error) {
	y, err := checkFloat("atan", args, 0)
	if err != nil {
		return nil, err
	}
	x := 1.0
	if arg(args, 1) != nil {
		x, err = checkFloat("atan", args, 1)
		if err != nil {
			return nil, err
		}
	}
	return []state.Value{math.Atan2(y, x)}, nil
}

func mathCeil(st *state.State, args []state.Value) ([]state.Value, error) {
	if n, ok := arg(args, 0).(int64); ok {
		return []state.Value{n}, nil
	}
	x, err := checkFloat("ceil", args, 0)
	if err != nil {
		return nil, err
	}
	return []state.Value{pushNumInt(math.Ceil(x))}, nil
}

func mathFloor(st *state.State, args []state.Value) ([]state.Value, error) {
	if n, ok := arg(args, 0).(int64); ok {
		return []state.Value{n}, nil
	}
	x, err := checkFloat("floor", args, 0)
	if err != nil {
		return nil, err
	}
	return []state.Value{pushNumInt(math.Floor(x))}, nil
}

func mathFmod(st *state.State, args []state.Value) ([]state.Value, error) {
	xi, xIsInt := arg(args, 0).(int64)
	yi, yIsInt := arg(args, 1).(int64)
	if xIsInt && yIsInt {
		if yi == 0 {
			return nil, luaerr.NewArgumentError("fmod", 2, "nonzero", "zero", "")
		}
		if yi == -1 {
			return []state.Value{int64(0)}, nil
		}
		return []state.Value{xi % yi}, nil
	}
	x, err := checkFloat("fmod", args, 0)
	if err != nil {
		return nil, err
	}
	y, err := checkFloat("fmod", args, 1)
	if err != nil {
		return nil, err
	}
	return []state.Value{x - math.Trunc(x/y)*y}, nil
}

func mathModf(st *state.State, args []state.Value) ([]state.Value, error) {
	x, err := checkFloat("modf", args, 0)
	if err != nil {
		return nil, err
	}
	i, f := math.Modf(x)
	if math.IsInf(x, 0) {
		f = 0
	}
	return []state.Value{pushNumInt(i), f}, nil
}

func mathAbs(st *state.State, args []state.Value) ([]state.Value, error) {
	if n, ok := arg(args, 0).(int64); ok {
		if n < 0 {
			n = -n
		}
		return []state.Value{n}, nil
	}
	x, err := checkFloat("abs", args, 0)
	if err != nil {
		return nil, err
	}
	return []state.Value{math.Abs(x)}, nil
}

func mathUlt(st *state.State, args []state.Value) ([]state.Value, error) {
	m, err := checkInt("ult", args, 0)
	if err != nil {
		return nil, err
	}
	n, err := checkInt("ult", args, 1)
	if err != nil {
		return nil, err
	}
	return []state.Value{uint64(m) < uint64(n)}, nil
}

func mathType(st *state.State, args []state.Value) ([]state.Value, error) {
	switch arg(args, 0).(type) {
	case int64:
		return []state.Value{"integer"}, nil
	case float64:
		return []state.Value{"float"}, nil
	default:
		return []state.Value{nil}, nil
	}
}

func mathToInteger(st *state.State, args []state.Value) ([]state.Value, error) {
	v := arg(args, 0)
	if _, ok := v.(string); ok {
		return []state.Value{nil}, nil // strings never convert per math.tointeger
	}
	if n, ok := state.ToInteger(v); ok {
		return []state.Value{n}, nil
	}
	return []state.Value{nil}, nil
}

func pushNumInt(d float64) state.Value {
	if i := int64(d); float64(i) == d {
		return i
	}
	return d
}

// randKey is the State.Private key for this state's math.random generator,
// grounded on the teacher's lib_rand.go (global rand.Seed) but scoped per
// state so two sandboxed States never share a seed (spec §6 NewState).
const randKey = "math.rand"

func stateRand(st *state.State) *rand.Rand {
	r, ok := st.Private[randKey].(*rand.Rand)
	if !ok {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
		st.Private[randKey] = r
	}
	return r
}

func mathRandom(st *state.State, args []state.Value) ([]state.Value, error) {
	r := stateRand(st)
	switch len(args) {
	case 0:
		return []state.Value{r.Float64()}, nil
	case 1:
		up, err := checkInt("random", args, 0)
		if err != nil {
			return nil, err
		}
		if up < 1 {
			return nil, luaerr.NewArgumentError("random", 1, "interval is empty", "", "")
		}
		return []state.Value{1 + r.Int63n(up)}, nil
	default:
		low, err := checkInt("random", args, 0)
		if err != nil {
			return nil, err
		}
		up, err := checkInt("random", args, 1)
		if err != nil {
			return nil, err
		}
		if low > up {
			return nil, luaerr.NewArgumentError("random", 2, "interval is empty", "", "")
		}
		return []state.Value{low + r.Int63n(up-low+1)}, nil
	}
}

func mathRandomSeed(st *state.State, args []state.Value) ([]state.Value, error) {
	seed := optInt(args, 0, time.Now().UnixNano())
	st.Private[randKey] = rand.New(rand.NewSource(seed))
	return nil, nil
}
