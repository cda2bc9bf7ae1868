package query

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/lestrrat-go/blackmagic"
)

// ErrUnsupportedValue is returned by FromMap for values that have no
// string representation on the wire.
var ErrUnsupportedValue = errors.New("unsupported parameter value")

// FromMap converts loosely typed parameters into Params.
//
// Scalars are formatted with strconv, string slices are joined with commas,
// and maps are flattened the way CloudStack expects dictionary arguments:
//
//	{"tags": {"env": "prod"}} => tags[0].key=env, tags[0].value=prod
//
// Dictionary entries are numbered in sorted key order so that the output is
// stable across calls.
func FromMap(src map[string]any) (Params, error) {
	out := make(Params, len(src))
	for key, value := range src {
		if err := ValidateKey(key); err != nil {
			return nil, err
		}
		switch v := value.(type) {
		case map[string]string:
			flattenStrings(out, key, v)
		case map[string]any:
			if err := flatten(out, key, v); err != nil {
				return nil, err
			}
		default:
			s, err := Stringify(value)
			if err != nil {
				return nil, fmt.Errorf("parameter %q: %w", key, err)
			}
			out[key] = s
		}
	}
	return out, nil
}

// Stringify renders a scalar parameter value.
func Stringify(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case []string:
		return strings.Join(v, ","), nil
	case fmt.Stringer:
		return v.String(), nil
	case nil:
		return "", fmt.Errorf("%w: nil", ErrUnsupportedValue)
	}

	// named scalar types (type ZoneID string and friends)
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Pointer:
		if rv.IsNil() {
			return "", fmt.Errorf("%w: nil %T", ErrUnsupportedValue, value)
		}
	}

	// pointers to strings
	var s string
	if err := blackmagic.AssignIfCompatible(&s, value); err != nil {
		return "", fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
	}
	return s, nil
}

func flattenStrings(dst Params, key string, m map[string]string) {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	for i, name := range names {
		prefix := key + "[" + strconv.Itoa(i) + "]"
		dst[prefix+".key"] = name
		dst[prefix+".value"] = m[name]
	}
}

func flatten(dst Params, key string, m map[string]any) error {
	flat := make(map[string]string, len(m))
	for k, v := range m {
		s, err := Stringify(v)
		if err != nil {
			return fmt.Errorf("parameter %q[%q]: %w", key, k, err)
		}
		flat[k] = s
	}
	flattenStrings(dst, key, flat)
	return nil
}
