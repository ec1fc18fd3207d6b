package entity

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Coerce converts v into a value of type t.
//
// Conversions are strict: numbers never become strings, a float becomes an integer only when it
// is integral and fits, strings are parsed for numeric and boolean targets. Pointer targets
// accept nil; no other target does. The result may share memory with v.
func Coerce(v any, t reflect.Type) (reflect.Value, error) {
	if t.Kind() == reflect.Pointer {
		if v == nil {
			return reflect.Zero(t), nil
		}
		if rv := reflect.ValueOf(v); rv.Type() == t {
			return rv, nil
		}
		inner, err := Coerce(v, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(inner)
		return p, nil
	}
	if v == nil {
		return reflect.Value{}, fmt.Errorf("%w: nil is not a valid %s", ErrTypeMismatch, t)
	}

	rv := reflect.ValueOf(v)
	if rv.Type() == t {
		return rv, nil
	}
	if t == durationType {
		if s, ok := v.(string); ok {
			d, err := time.ParseDuration(s)
			if err != nil {
				return reflect.Value{}, mismatch(v, t)
			}
			return reflect.ValueOf(d), nil
		}
	}

	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toIntStrict(v)
		if err != nil || out.OverflowInt(n) {
			return reflect.Value{}, mismatch(v, t)
		}
		out.SetInt(n)
		return out, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := toIntStrict(v)
		if err != nil || n < 0 || out.OverflowUint(uint64(n)) {
			return reflect.Value{}, mismatch(v, t)
		}
		out.SetUint(uint64(n))
		return out, nil
	case reflect.Float32, reflect.Float64:
		f, err := toFloatStrict(v)
		if err != nil || out.OverflowFloat(f) {
			return reflect.Value{}, mismatch(v, t)
		}
		out.SetFloat(f)
		return out, nil
	case reflect.Complex64, reflect.Complex128:
		c, err := toComplexStrict(v)
		if err != nil || out.OverflowComplex(c) {
			return reflect.Value{}, mismatch(v, t)
		}
		out.SetComplex(c)
		return out, nil
	case reflect.String:
		s, err := toStringStrict(v)
		if err != nil {
			return reflect.Value{}, mismatch(v, t)
		}
		out.SetString(s)
		return out, nil
	case reflect.Bool:
		b, err := toBoolStrict(v)
		if err != nil {
			return reflect.Value{}, mismatch(v, t)
		}
		out.SetBool(b)
		return out, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			if s, ok := v.(string); ok {
				out.SetBytes([]byte(s))
				return out, nil
			}
		}
	case reflect.Interface:
		if rv.Type().Implements(t) {
			out.Set(rv)
			return out, nil
		}
		return reflect.Value{}, mismatch(v, t)
	}

	if rv.Type().AssignableTo(t) {
		out.Set(rv)
		return out, nil
	}
	return decode(v, t)
}

// decode handles composite targets (lists, maps, time.Time, user-registered structs).
func decode(v any, t reflect.Type) (reflect.Value, error) {
	target := reflect.New(t)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToTimeDurationHookFunc(),
		),
		ErrorUnused: true,
		Result:      target.Interface(),
	})
	if err != nil {
		return reflect.Value{}, err
	}
	if err := dec.Decode(v); err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
	}
	return target.Elem(), nil
}

func mismatch(v any, t reflect.Type) error {
	return fmt.Errorf("%w: cannot use %v (%T) as %s", ErrTypeMismatch, v, v, t)
}

func toStringStrict(v any) (string, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), nil
	}
	return "", fmt.Errorf("must be string")
}

func toIntStrict(v any) (int64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("must be integer")
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, fmt.Errorf("must be integer")
		}
		return int64(f), nil
	case reflect.String:
		n, err := strconv.ParseInt(strings.TrimSpace(rv.String()), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("must be integer")
		}
		return n, nil
	}
	return 0, fmt.Errorf("must be integer")
}

func toFloatStrict(v any) (float64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(rv.String()), 64)
		if err != nil {
			return 0, fmt.Errorf("must be float")
		}
		return f, nil
	}
	return 0, fmt.Errorf("must be float")
}

func toComplexStrict(v any) (complex128, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Complex64, reflect.Complex128:
		return rv.Complex(), nil
	case reflect.String:
		c, err := strconv.ParseComplex(strings.TrimSpace(rv.String()), 128)
		if err != nil {
			return 0, fmt.Errorf("must be complex")
		}
		return c, nil
	}
	f, err := toFloatStrict(v)
	if err != nil {
		return 0, fmt.Errorf("must be complex")
	}
	return complex(f, 0), nil
}

func toBoolStrict(v any) (bool, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		switch strings.ToLower(strings.TrimSpace(rv.String())) {
		case "true", "1", "yes", "y", "on":
			return true, nil
		case "false", "0", "no", "n", "off":
			return false, nil
		}
	}
	return false, fmt.Errorf("must be boolean")
}
