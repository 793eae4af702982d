package stdlib

import (
	glc "git.lolli.tech/lollipopkit/go_lru_cacher"
	"github.com/lollipopkit/luacore/state"
	"github.com/tidwall/gjson"
)

// jsonCache memoizes gjson.Parse by source string, the same role the
// teacher's lib_json.go gives go_lru_cacher (and lib_re.go gave it for
// compiled regexps, a concern this module's pattern package has no
// separate compile step for).
var jsonCache = glc.NewCacher(10)

var jsonLib = map[string]func(st *state.State, args []state.Value) ([]state.Value, error){
	"get":    jsonGet,
	"decode": jsonDecode,
}

// json.get(source, path) -> ok, result
func jsonGet(st *state.State, args []state.Value) ([]state.Value, error) {
	source, err := checkString("get", args, 0)
	if err != nil {
		return nil, err
	}
	path, err := checkString("get", args, 1)
	if err != nil {
		return nil, err
	}
	parsed := parseJSON(source)
	result := parsed.Get(path)
	if !result.Exists() {
		return []state.Value{false, nil}, nil
	}
	return []state.Value{true, result.String()}, nil
}

// json.decode(source) -> table or scalar, built recursively from the cached
// gjson.Result the way json.get shares its cache.
func jsonDecode(st *state.State, args []state.Value) ([]state.Value, error) {
	source, err := checkString("decode", args, 0)
	if err != nil {
		return nil, err
	}
	parsed := parseJSON(source)
	return []state.Value{gjsonToValue(st, parsed)}, nil
}

func parseJSON(source string) gjson.Result {
	if cached, ok := jsonCache.Get(source); ok {
		if r, ok := cached.(gjson.Result); ok {
			return r
		}
	}
	r := gjson.Parse(source)
	jsonCache.Set(source, r)
	return r
}

func gjsonToValue(st *state.State, r gjson.Result) state.Value {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		if r.Num == float64(int64(r.Num)) {
			return int64(r.Num)
		}
		return r.Num
	case gjson.String:
		return r.Str
	default:
		if r.IsArray() {
			items := r.Array()
			ref := st.NewTable(len(items), 0)
			t := st.Table(ref)
			for i, it := range items {
				t.Put(int64(i+1), gjsonToValue(st, it))
			}
			return ref
		}
		if r.IsObject() {
			ref := st.NewTable(0, 4)
			t := st.Table(ref)
			r.ForEach(func(key, value gjson.Result) bool {
				t.Put(key.Str, gjsonToValue(st, value))
				return true
			})
			return ref
		}
		return nil
	}
}
