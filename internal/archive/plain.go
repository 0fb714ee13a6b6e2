package archive

import (
	"fmt"
	"math"
	"reflect"
)

// maxExactInt is the largest integer magnitude a float64 holds exactly
const maxExactInt = 1 << 53

// PlainObject returns a fresh copy of m in the form a record stores it.
// Numbers become float64, slices and arrays become []any and string-keyed
// maps become map[string]any, recursively. Nil containers become empty ones.
// Anything else, including integers beyond ±2^53, NaN, byte slices, structs,
// pointers, funcs and channels, fails with ErrUnsupportedValue.
func PlainObject(m map[string]any) (map[string]any, error) {
	if m == nil {
		return nil, nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		pv, err := plainValue(reflect.ValueOf(v))
		if err != nil {
			return nil, fmt.Errorf("%q: %w", k, err)
		}
		out[k] = pv
	}
	return out, nil
}

func plainValue(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
		return plainValue(v.Elem())

	case reflect.String:
		return v.String(), nil

	case reflect.Bool:
		return v.Bool(), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := v.Int()
		if n > maxExactInt || n < -maxExactInt {
			return nil, fmt.Errorf("%w: integer %d cannot be stored exactly", ErrUnsupportedValue, n)
		}
		return float64(n), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := v.Uint()
		if n > maxExactInt {
			return nil, fmt.Errorf("%w: integer %d cannot be stored exactly", ErrUnsupportedValue, n)
		}
		return float64(n), nil

	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedValue, f)
		}
		return f, nil

	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedValue, v.Type())
		}
		out := make([]any, v.Len())
		for i := range out {
			pv, err := plainValue(v.Index(i))
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = pv
		}
		return out, nil

	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedValue, v.Type())
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			pv, err := plainValue(iter.Value())
			if err != nil {
				return nil, fmt.Errorf("%q: %w", key, err)
			}
			out[key] = pv
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedValue, v.Type())
	}
}
