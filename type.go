package appconf

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

// String resolves name and returns it as a string. Attempts conversion from
// common types if the resolved value isn't already a string. A nil resolution
// is returned as the empty string.
func (c *AppConfig) String(name string) (string, error) {
	val, err := c.Get(name)
	if err != nil {
		return "", err
	}
	if val == nil {
		return "", nil
	}

	if strVal, ok := val.(string); ok {
		return strVal, nil
	}

	switch v := val.(type) {
	case fmt.Stringer:
		return v.String(), nil
	case []byte:
		return string(v), nil
	case int, int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(val).Int(), 10), nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(val).Uint(), 10), nil
	case float32, float64:
		return strconv.FormatFloat(reflect.ValueOf(val).Float(), 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case error:
		return v.Error(), nil
	default:
		return "", fmt.Errorf("cannot convert type %T to string for %s", val, name)
	}
}

// Int64 resolves name and returns it as an int64. Attempts conversion from
// numeric types, parsable strings, and booleans.
func (c *AppConfig) Int64(name string) (int64, error) {
	val, err := c.Get(name)
	if err != nil {
		return 0, err
	}
	if val == nil {
		return 0, fmt.Errorf("value for %s is nil, cannot convert to int64", name)
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := v.Uint()
		if u > uint64(math.MaxInt64) {
			return 0, fmt.Errorf("cannot convert unsigned integer %d (type %T) to int64 for %s: overflow", u, val, name)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		// Truncate float to int
		return int64(v.Float()), nil
	case reflect.String:
		s := v.String()
		if i, err := strconv.ParseInt(s, 0, 64); err == nil { // base 0 for "0xFF" etc.
			return i, nil
		} else {
			if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
				return int64(f), nil // Truncate
			}
			return 0, fmt.Errorf("cannot convert string %q to int64 for %s: %w", s, name, err)
		}
	case reflect.Bool:
		if v.Bool() {
			return 1, nil
		}
		return 0, nil
	}

	return 0, fmt.Errorf("cannot convert type %T to int64 for %s", val, name)
}

// Bool resolves name and returns it as a bool. Attempts conversion from
// numeric types (0=false, non-zero=true) and parsable strings.
func (c *AppConfig) Bool(name string) (bool, error) {
	val, err := c.Get(name)
	if err != nil {
		return false, err
	}
	if val == nil {
		return false, fmt.Errorf("value for %s is nil, cannot convert to bool", name)
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.String:
		s := v.String()
		if b, err := strconv.ParseBool(s); err == nil {
			return b, nil
		} else {
			return false, fmt.Errorf("cannot convert string %q to bool for %s: %w", s, name, err)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() != 0, nil
	case reflect.Float32, reflect.Float64:
		return v.Float() != 0, nil
	}

	return false, fmt.Errorf("cannot convert type %T to bool for %s", val, name)
}

// Float64 resolves name and returns it as a float64. Attempts conversion from
// numeric types, parsable strings, and booleans.
func (c *AppConfig) Float64(name string) (float64, error) {
	val, err := c.Get(name)
	if err != nil {
		return 0.0, err
	}
	if val == nil {
		return 0.0, fmt.Errorf("value for %s is nil, cannot convert to float64", name)
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), nil
	case reflect.String:
		s := v.String()
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		} else {
			return 0.0, fmt.Errorf("cannot convert string %q to float64 for %s: %w", s, name, err)
		}
	case reflect.Bool:
		if v.Bool() {
			return 1.0, nil
		}
		return 0.0, nil
	}

	return 0.0, fmt.Errorf("cannot convert type %T to float64 for %s", val, name)
}

// Duration resolves name and returns it as a time.Duration. Strings parse via
// time.ParseDuration; integers count nanoseconds.
func (c *AppConfig) Duration(name string) (time.Duration, error) {
	val, err := c.Get(name)
	if err != nil {
		return 0, err
	}
	if val == nil {
		return 0, fmt.Errorf("value for %s is nil, cannot convert to duration", name)
	}

	switch v := val.(type) {
	case time.Duration:
		return v, nil
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("cannot convert string %q to duration for %s: %w", v, name, err)
		}
		return d, nil
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return time.Duration(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return time.Duration(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return time.Duration(rv.Float()), nil
	}

	return 0, fmt.Errorf("cannot convert type %T to duration for %s", val, name)
}

// Strings resolves name and returns it as a string slice. A scalar resolution
// is returned as a one-element slice; each element is converted with the same
// rules as String.
func (c *AppConfig) Strings(name string) ([]string, error) {
	val, err := c.Get(name)
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, nil
	}

	list, ok := asList(val)
	if !ok {
		list = []any{val}
	}

	out := make([]string, len(list))
	for i, elem := range list {
		switch v := elem.(type) {
		case string:
			out[i] = v
		case fmt.Stringer:
			out[i] = v.String()
		default:
			out[i] = fmt.Sprintf("%v", elem)
		}
	}
	return out, nil
}
