// Package state implements the runtime value model and VM state (C1 + C6):
// the tagged Value representation, hybrid array/hash tables, closures and
// upvalue cells, and the heap/global/metatable bookkeeping the executor and
// standard library operate against. The teacher keeps this same grouping
// (its state package holds lk_value.go, lk_table.go, lk_closure.go and
// lk_state.go together) rather than splitting value kinds across packages,
// so this package follows suit.
package state

import (
	"fmt"
	"strconv"

	"github.com/lollipopkit/luacore/proto"
)

// Value is proto.Value re-exported under this package's name, so callers
// that only import state (not proto) still have it available.
type Value = proto.Value

type Type int

const (
	TypeNil Type = iota
	TypeBoolean
	TypeNumber
	TypeString
	TypeTable
	TypeFunction
)

func (t Type) String() string {
	switch t {
	case TypeNil:
		return "nil"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeTable:
		return "table"
	case TypeFunction:
		return "function"
	default:
		return "unknown"
	}
}

// TypeOf classifies a Value per spec §2's tag set. TableRef, *Closure and
// NativeFunc all report TypeFunction/TypeTable as appropriate.
func TypeOf(v Value) Type {
	switch v.(type) {
	case nil:
		return TypeNil
	case bool:
		return TypeBoolean
	case int64, float64:
		return TypeNumber
	case string:
		return TypeString
	case TableRef:
		return TypeTable
	case *Closure, *NativeFunc:
		return TypeFunction
	default:
		panic(fmt.Sprintf("state: value of unrecognized Go type %T", v))
	}
}

// Truthy implements Lua's truthiness rule: everything is true except nil
// and false.
func Truthy(v Value) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

// ToFloat implements the numeric coercion of spec §4.4 / Lua manual §3.4.3.
func ToFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case string:
		return parseFloat(x)
	default:
		return 0, false
	}
}

// ToInteger implements the numeric coercion of spec §4.4, including the
// "float with no fractional part" rule.
func ToInteger(v Value) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case float64:
		return floatToInteger(x)
	case string:
		return stringToInteger(x)
	default:
		return 0, false
	}
}

func floatToInteger(f float64) (int64, bool) {
	i := int64(f)
	if float64(i) == f {
		return i, true
	}
	return 0, false
}

func stringToInteger(s string) (int64, bool) {
	if i, ok := parseInteger(s); ok {
		return i, true
	}
	if f, ok := parseFloat(s); ok {
		return floatToInteger(f)
	}
	return 0, false
}

func parseInteger(s string) (int64, bool) {
	i, err := strconv.ParseInt(trimSpace(s), 0, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(trimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

// ToString renders a Value the way tostring() does for primitive types;
// tables and functions print an identity tag (spec §4.6 base library note).
func ToString(v Value) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case bool:
		if x {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatFloat(x)
	case string:
		return x
	case TableRef:
		return fmt.Sprintf("table: 0x%08x", uint64(x))
	case *Closure:
		return fmt.Sprintf("function: 0x%08x", x.id)
	case *NativeFunc:
		return fmt.Sprintf("function: builtin: %s", x.Name)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func formatFloat(f float64) string {
	if f != f { // NaN
		return "nan"
	}
	if f > 1.7976931348623157e+308 {
		return "inf"
	}
	if f < -1.7976931348623157e+308 {
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', 14, 64)
	if !containsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

func containsAny(s, chars string) bool {
	for i := 0; i < len(s); i++ {
		for j := 0; j < len(chars); j++ {
			if s[i] == chars[j] {
				return true
			}
		}
	}
	return false
}
