package stdlib

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lollipopkit/luacore/luaerr"
	"github.com/lollipopkit/luacore/pattern"
	"github.com/lollipopkit/luacore/state"
)

var stringLib = map[string]func(st *state.State, args []state.Value) ([]state.Value, error){
	"len":     strLen,
	"rep":     strRep,
	"reverse": strReverse,
	"lower":   strLower,
	"upper":   strUpper,
	"sub":     strSub,
	"byte":    strByte,
	"char":    strChar,
	"format":  strFormat,
	"find":    strFind,
	"match":   strMatch,
	"gmatch":  strGmatch,
	"gsub":    strGsub,
}

// openStringMetatable installs the shared type-level metatable for every
// string value (spec §4.6), with __index pointing back at the string
// library table itself so method-call syntax like ("abc"):upper() resolves
// through indexGet's __index chain (spec §8 scenario 7), the same
// getmetatable("").__index = string idiom Lua's own string library uses.
func openStringMetatable(st *state.State, stringRef state.TableRef) {
	mt := st.NewTable(0, 1)
	st.Table(mt).Put("__index", stringRef)
	st.SetTypeMetatable(state.TypeString, mt)
}

func strLen(st *state.State, args []state.Value) ([]state.Value, error) {
	s, err := checkString("len", args, 0)
	if err != nil {
		return nil, err
	}
	return []state.Value{int64(len(s))}, nil
}

func strRep(st *state.State, args []state.Value) ([]state.Value, error) {
	s, err := checkString("rep", args, 0)
	if err != nil {
		return nil, err
	}
	n, err := checkInt("rep", args, 1)
	if err != nil {
		return nil, err
	}
	sep := optString(args, 2, "")
	if n <= 0 {
		return []state.Value{""}, nil
	}
	parts := make([]string, n)
	for i := range parts {
		parts[i] = s
	}
	return []state.Value{strings.Join(parts, sep)}, nil
}

func strReverse(st *state.State, args []state.Value) ([]state.Value, error) {
	s, err := checkString("reverse", args, 0)
	if err != nil {
		return nil, err
	}
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return []state.Value{string(b)}, nil
}

func strLower(st *state.State, args []state.Value) ([]state.Value, error) {
	s, err := checkString("lower", args, 0)
	if err != nil {
		return nil, err
	}
	return []state.Value{strings.ToLower(s)}, nil
}

func strUpper(st *state.State, args []state.Value) ([]state.Value, error) {
	s, err := checkString("upper", args, 0)
	if err != nil {
		return nil, err
	}
	return []state.Value{strings.ToUpper(s)}, nil
}

func strSub(st *state.State, args []state.Value) ([]state.Value, error) {
	s, err := checkString("sub", args, 0)
	if err != nil {
		return nil, err
	}
	n := len(s)
	i, err := checkInt("sub", args, 1)
	if err != nil {
		return nil, err
	}
	j := optInt(args, 2, -1)
	pi := posRelat(i, n)
	pj := posRelat(j, n)
	if pi < 1 {
		pi = 1
	}
	if pj > n {
		pj = n
	}
	if pi > pj {
		return []state.Value{""}, nil
	}
	return []state.Value{s[pi-1 : pj]}, nil
}

func strByte(st *state.State, args []state.Value) ([]state.Value, error) {
	s, err := checkString("byte", args, 0)
	if err != nil {
		return nil, err
	}
	n := len(s)
	i := posRelat(optInt(args, 1, 1), n)
	j := posRelat(optInt(args, 2, int64(i)), n)
	if i < 1 {
		i = 1
	}
	if j > n {
		j = n
	}
	if i > j {
		return nil, nil
	}
	results := make([]state.Value, 0, j-i+1)
	for k := i; k <= j; k++ {
		results = append(results, int64(s[k-1]))
	}
	return results, nil
}

func strChar(st *state.State, args []state.Value) ([]state.Value, error) {
	b := make([]byte, len(args))
	for i := range args {
		n, err := checkInt("char", args, i)
		if err != nil {
			return nil, err
		}
		b[i] = byte(n)
	}
	return []state.Value{string(b)}, nil
}

// strFormat implements string.format, grounded on the teacher's str.go
// tagPattern/_fmtArg approach (its own %-specifier scanner feeding
// fmt.Sprintf per tag) carried over to the argument-slice ABI.
func strFormat(st *state.State, args []state.Value) ([]state.Value, error) {
	f, err := checkString("format", args, 0)
	if err != nil {
		return nil, err
	}
	if !strings.ContainsRune(f, '%') {
		return []state.Value{f}, nil
	}
	var out strings.Builder
	argIdx := 1
	for i := 0; i < len(f); i++ {
		c := f[i]
		if c != '%' {
			out.WriteByte(c)
			continue
		}
		start := i
		i++
		for i < len(f) && strings.IndexByte(" #+-0123456789.", f[i]) >= 0 {
			i++
		}
		if i >= len(f) {
			return nil, luaerr.NewGenericError("invalid format string to 'format'")
		}
		spec := f[start : i+1]
		verb := f[i]
		if verb == '%' {
			out.WriteByte('%')
			continue
		}
		v := arg(args, argIdx)
		argIdx++
		switch verb {
		case 'd', 'i', 'o':
			n, ok := state.ToInteger(v)
			if !ok {
				return nil, luaerr.NewArgumentError("format", argIdx, "number", state.TypeOf(v).String(), "")
			}
			spec = spec[:len(spec)-1] + "d"
			if verb == 'o' {
				spec = spec[:len(spec)-1] + "o"
			}
			fmt.Fprintf(&out, spec, n)
		case 'u':
			n, _ := state.ToInteger(v)
			fmt.Fprintf(&out, spec[:len(spec)-1]+"d", uint64(n))
		case 'x', 'X':
			n, _ := state.ToInteger(v)
			fmt.Fprintf(&out, spec, uint64(n))
		case 'c':
			n, _ := state.ToInteger(v)
			out.WriteByte(byte(n))
		case 'f', 'g', 'G', 'e', 'E':
			n, ok := state.ToFloat(v)
			if !ok {
				return nil, luaerr.NewArgumentError("format", argIdx, "number", state.TypeOf(v).String(), "")
			}
			fmt.Fprintf(&out, spec, n)
		case 's':
			fmt.Fprintf(&out, spec, toStringMeta(st, v))
		case 'q':
			out.WriteString(strconv.Quote(state.ToString(v)))
		default:
			return nil, luaerr.NewGenericError("invalid conversion '" + spec + "' to 'format'")
		}
	}
	return []state.Value{out.String()}, nil
}

func strFind(st *state.State, args []state.Value) ([]state.Value, error) {
	s, err := checkString("find", args, 0)
	if err != nil {
		return nil, err
	}
	pat, err := checkString("find", args, 1)
	if err != nil {
		return nil, err
	}
	init := clampInit(optInt(args, 2, 1), len(s))
	plain := state.Truthy(arg(args, 3))
	if plain || isPlainPattern(pat) {
		idx := strings.Index(s[init:], pat)
		if idx < 0 {
			return []state.Value{nil}, nil
		}
		start := init + idx
		return []state.Value{int64(start + 1), int64(start + len(pat))}, nil
	}
	r, err := pattern.Find(s, pat, init)
	if err != nil {
		return nil, luaerr.NewGenericError(err.Error())
	}
	if r == nil {
		return []state.Value{nil}, nil
	}
	results := []state.Value{int64(r.Start + 1), int64(r.End)}
	return append(results, captureValues(s, r)...), nil
}

func strMatch(st *state.State, args []state.Value) ([]state.Value, error) {
	s, err := checkString("match", args, 0)
	if err != nil {
		return nil, err
	}
	pat, err := checkString("match", args, 1)
	if err != nil {
		return nil, err
	}
	init := clampInit(optInt(args, 2, 1), len(s))
	r, err := pattern.Find(s, pat, init)
	if err != nil {
		return nil, luaerr.NewGenericError(err.Error())
	}
	if r == nil {
		return []state.Value{nil}, nil
	}
	if len(r.Captures) == 0 {
		return []state.Value{s[r.Start:r.End]}, nil
	}
	return captureValues(s, r), nil
}

// strGmatch returns an iterator closure holding its own search cursor,
// rather than stashing it in State.Private: state.NativeFunc.Fn is already
// a Go closure, so per-call cursor state just lives in the captured
// variable, the same lexical-capture idiom the VM itself uses for upvalues.
func strGmatch(st *state.State, args []state.Value) ([]state.Value, error) {
	s, err := checkString("gmatch", args, 0)
	if err != nil {
		return nil, err
	}
	pat, err := checkString("gmatch", args, 1)
	if err != nil {
		return nil, err
	}
	pos := 0
	iter := func(st *state.State, _ []state.Value) ([]state.Value, error) {
		if pos > len(s) {
			return []state.Value{nil}, nil
		}
		r, err := pattern.Find(s, pat, pos)
		if err != nil {
			return nil, luaerr.NewGenericError(err.Error())
		}
		if r == nil {
			pos = len(s) + 1
			return []state.Value{nil}, nil
		}
		pos = pattern.NextStart(r)
		if len(r.Captures) == 0 {
			return []state.Value{s[r.Start:r.End]}, nil
		}
		return captureValues(s, r), nil
	}
	return []state.Value{native("gmatch_iter", iter)}, nil
}

func strGsub(st *state.State, args []state.Value) ([]state.Value, error) {
	s, err := checkString("gsub", args, 0)
	if err != nil {
		return nil, err
	}
	pat, err := checkString("gsub", args, 1)
	if err != nil {
		return nil, err
	}
	repl := arg(args, 2)
	maxN := optInt(args, 3, -1)

	var out strings.Builder
	pos := 0
	count := int64(0)
	for pos <= len(s) {
		if maxN >= 0 && count >= maxN {
			break
		}
		r, err := pattern.Find(s, pat, pos)
		if err != nil {
			return nil, luaerr.NewGenericError(err.Error())
		}
		if r == nil {
			break
		}
		out.WriteString(s[pos:r.Start])
		whole := s[r.Start:r.End]
		replaced, err := gsubReplacement(st, whole, s, r, repl)
		if err != nil {
			return nil, err
		}
		out.WriteString(replaced)
		count++
		next := pattern.NextStart(r)
		if next > r.End {
			if r.End < len(s) {
				out.WriteString(s[r.End:next])
			}
		}
		pos = next
	}
	if pos < len(s) {
		out.WriteString(s[pos:])
	}
	return []state.Value{out.String(), count}, nil
}

func gsubReplacement(st *state.State, whole, s string, r *pattern.Result, repl state.Value) (string, error) {
	caps := captureValues(s, r)
	if len(caps) == 0 {
		caps = []state.Value{whole}
	}
	switch x := repl.(type) {
	case string:
		return expandGsubString(x, whole, caps), nil
	case state.TableRef:
		v := st.Table(x).Get(caps[0])
		if v == nil || v == false {
			return whole, nil
		}
		return state.ToString(v), nil
	case *state.Closure, *state.NativeFunc:
		results, err := st.CallValue(x, caps)
		if err != nil {
			return "", err
		}
		if len(results) == 0 || results[0] == nil || results[0] == false {
			return whole, nil
		}
		return state.ToString(results[0]), nil
	default:
		return "", luaerr.NewArgumentError("gsub", 3, "string, table or function", state.TypeOf(repl).String(), "")
	}
}

// expandGsubString implements gsub's %N capture-reference substitution
// syntax (lua-5.3.4/lstrlib.c's add_s): %0 is the whole match, %1-%9 a
// capture, %% a literal percent.
func expandGsubString(tmpl, whole string, caps []state.Value) string {
	var out strings.Builder
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '%' || i+1 >= len(tmpl) {
			out.WriteByte(tmpl[i])
			continue
		}
		next := tmpl[i+1]
		switch {
		case next == '%':
			out.WriteByte('%')
			i++
		case next >= '0' && next <= '9':
			idx := int(next - '0')
			if idx == 0 {
				out.WriteString(whole)
			} else if idx-1 < len(caps) {
				out.WriteString(state.ToString(caps[idx-1]))
			}
			i++
		default:
			out.WriteByte(tmpl[i])
		}
	}
	return out.String()
}

func captureValues(s string, r *pattern.Result) []state.Value {
	if len(r.Captures) == 0 {
		return nil
	}
	vals := make([]state.Value, len(r.Captures))
	for i, c := range r.Captures {
		if c.Position {
			vals[i] = int64(c.Start + 1)
		} else {
			vals[i] = s[c.Start:c.End]
		}
	}
	return vals
}

func clampInit(init int64, length int) int {
	p := posRelat(init, length)
	if p < 1 {
		p = 1
	}
	if p > length+1 {
		p = length + 1
	}
	return p - 1
}

// isPlainPattern reports whether s has no pattern-special characters, so
// find() can shortcut to a plain substring search (Lua's own str_find does
// the same check before invoking the pattern matcher).
func isPlainPattern(p string) bool {
	return !strings.ContainsAny(p, "^$*+?.([%-")
}
