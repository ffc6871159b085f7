package setting

import (
	"fmt"
)

// Description declaratively specifies a Setting or Group to construct.
//
// For settings, "type" and "name" are required; "default", "display_name",
// "description", "tags", "sources" and "allow_empty" are recognized by every
// type, and each type may consume further attributes (see the builtin types
// in this package). For groups built via GroupFromDescription, "name" is
// required and "groups" recursively lists child group descriptions.
type Description map[string]any

// Clone returns a shallow copy, so merging group defaults never mutates a
// description the caller may reuse.
func (d Description) Clone() Description {
	out := make(Description, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// str fetches a string attribute. Missing keys yield "".
func (d Description) str(key string) (string, error) {
	v, ok := d[key]
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("attribute %q: expected string, got %T", key, v)
	}
	return s, nil
}

// strs fetches a string-slice attribute, accepting []string or []any.
func (d Description) strs(key string) ([]string, error) {
	v, ok := d[key]
	if !ok {
		return nil, nil
	}
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out, nil
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("attribute %q: expected string element, got %T", key, item)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("attribute %q: expected string list, got %T", key, v)
	}
}

// float fetches a numeric attribute as float64.
func (d Description) float(key string) (float64, bool, error) {
	v, ok := d[key]
	if !ok {
		return 0, false, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, false, fmt.Errorf("attribute %q: expected number, got %T", key, v)
	}
	return f, true, nil
}

// bool fetches a boolean attribute.
func (d Description) boolean(key string) (bool, error) {
	v, ok := d[key]
	if !ok {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("attribute %q: expected bool, got %T", key, v)
	}
	return b, nil
}

// toFloat widens any numeric value to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// toInt narrows any integral value to int64. Integer-valued floats are
// accepted because several storage formats decode numbers as float64.
func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float32:
		if float32(int64(n)) == n {
			return int64(n), true
		}
	case float64:
		if float64(int64(n)) == n {
			return int64(n), true
		}
	}
	return 0, false
}
