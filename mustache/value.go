package mustache

import (
	"fmt"
	"iter"
	"reflect"
	"strconv"
	"sync"
)

// SafeString is text that is already HTML-safe. It is never escaped, and
// an unescaped tag rendering it keeps the output safe.
type SafeString string

// KeyLookuper is implemented by values that resolve keys themselves.
type KeyLookuper interface {
	LookupKey(key string) (any, bool)
}

// Keys available on every sequence.
const (
	keyCount = "count"
	keyFirst = "first"
	keyLast  = "last"
)

var (
	errorType = reflect.TypeFor[error]()
	byteSlice = reflect.TypeFor[[]byte]()
)

// fieldIndex caches the exported field names of struct types.
var fieldIndex sync.Map // map[reflect.Type]map[string][]int

// lookupKey resolves key on a single value.
//
// Supported values are [KeyLookuper], string-keyed maps, exported struct
// fields (matched by name or by a `mustache:"name"` tag), exported methods
// taking no arguments and the count, first and last keys of sequences.
// A method returning a non-nil error resolves to nothing.
func lookupKey(v any, key string) (any, bool) {
	switch x := v.(type) {
	case nil:
		return nil, false

	case KeyLookuper:
		return x.LookupKey(key)

	case map[string]any:
		val, ok := x[key]

		return val, ok

	case iter.Seq[any]:
		return sequenceKey(collect(x), key)
	}

	rv := reflect.ValueOf(v)
	base := rv

	for base.Kind() == reflect.Pointer || base.Kind() == reflect.Interface {
		if base.IsNil() {
			return nil, false
		}

		base = base.Elem()
	}

	switch base.Kind() {
	case reflect.Map:
		if base.Type().Key().Kind() == reflect.String {
			k := reflect.ValueOf(key).Convert(base.Type().Key())
			if mv := base.MapIndex(k); mv.IsValid() {
				return mv.Interface(), true
			}
		}

	case reflect.Struct:
		if index, ok := structFields(base.Type())[key]; ok {
			fv, err := base.FieldByIndexErr(index)
			if err == nil {
				return fv.Interface(), true
			}
		}

	case reflect.Slice, reflect.Array:
		if base.Type() != byteSlice {
			if val, ok := sequenceKey(items(base), key); ok {
				return val, true
			}
		}
	}

	return callMethod(rv, key)
}

// structFields returns the exported fields of t by template key.
func structFields(t reflect.Type) map[string][]int {
	if m, ok := fieldIndex.Load(t); ok {
		return m.(map[string][]int)
	}

	m := make(map[string][]int)

	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() {
			continue
		}

		name := f.Name

		if tag, ok := f.Tag.Lookup("mustache"); ok {
			if tag == "-" {
				continue
			}

			if tag != "" {
				name = tag
			}
		}

		// Shallower fields win over promoted ones.
		if prev, ok := m[name]; ok && len(prev) <= len(f.Index) {
			continue
		}

		m[name] = f.Index
	}

	actual, _ := fieldIndex.LoadOrStore(t, m)

	return actual.(map[string][]int)
}

// callMethod invokes the exported method key of rv if it takes no arguments
// and returns a value optionally followed by an error.
func callMethod(rv reflect.Value, key string) (any, bool) {
	m := rv.MethodByName(key)
	if !m.IsValid() {
		return nil, false
	}

	mt := m.Type()
	if mt.NumIn() != 0 {
		return nil, false
	}

	switch {
	case mt.NumOut() == 1:
		return m.Call(nil)[0].Interface(), true

	case mt.NumOut() == 2 && mt.Out(1) == errorType:
		out := m.Call(nil)
		if !out[1].IsNil() {
			return nil, false
		}

		return out[0].Interface(), true

	default:
		return nil, false
	}
}

func sequenceKey(seq []any, key string) (any, bool) {
	switch key {
	case keyCount:
		return len(seq), true

	case keyFirst:
		if len(seq) > 0 {
			return seq[0], true
		}

	case keyLast:
		if len(seq) > 0 {
			return seq[len(seq)-1], true
		}
	}

	return nil, false
}

// sequence returns the elements of v if v is a slice, array or
// iter.Seq[any]. Byte slices are text, not sequences.
func sequence(v any) ([]any, bool) {
	switch x := v.(type) {
	case nil, []byte, string:
		return nil, false

	case []any:
		return x, true

	case iter.Seq[any]:
		return collect(x), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return items(rv), true

	default:
		return nil, false
	}
}

func items(rv reflect.Value) []any {
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}

	return out
}

func collect(seq iter.Seq[any]) []any {
	var out []any
	for v := range seq {
		out = append(out, v)
	}

	return out
}

// truthy reports whether a resolved value renders a section.
//
// Absent values, nil, false, numeric zero, empty strings and empty
// sequences are falsy. Everything else, including empty maps and structs,
// is truthy.
func truthy(v any, found bool) bool {
	if !found || v == nil {
		return false
	}

	switch x := v.(type) {
	case bool:
		return x

	case string:
		return x != ""

	case SafeString:
		return x != ""

	case []byte:
		return len(x) > 0

	case iter.Seq[any]:
		return len(collect(x)) > 0
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()

	case reflect.String:
		return rv.Len() > 0

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0

	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0

	case reflect.Slice, reflect.Array:
		return rv.Len() > 0

	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func,
		reflect.Chan:
		return !rv.IsNil()

	default:
		return true
	}
}

// stringify converts a value to its canonical text and reports whether the
// text is already HTML-safe.
func stringify(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", true

	case SafeString:
		return string(x), true

	case string:
		return x, false

	case []byte:
		return string(x), false

	case fmt.Stringer:
		return x.String(), false

	case error:
		return x.Error(), false

	case bool:
		return strconv.FormatBool(x), false

	case int:
		return strconv.Itoa(x), false

	case int64:
		return strconv.FormatInt(x, 10), false

	case uint64:
		return strconv.FormatUint(x, 10), false

	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), false

	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), false

	default:
		return fmt.Sprint(v), false
	}
}
