package annidx

import "fmt"

// ParamBag is the generic, loosely-typed option carrier the top-level
// Index interface accepts. Index families parse the subset of keys they
// recognize (see hnsw.FromParamBag and napp.FromParamBag) and return an
// ErrParameter-matching error for any key
// that is malformed or contradicts another key — never at search time.
type ParamBag map[string]any

// Int returns bag[key] as an int, or def if the key is absent. It
// returns an error if the key is present but not an int-like value.
func (b ParamBag) Int(key string, def int) (int, error) {
	v, ok := b[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: parameter %q: expected int, got %T", ErrParameter, key, v)
	}
}

// Bool returns bag[key] as a bool, or def if the key is absent.
func (b ParamBag) Bool(key string, def bool) (bool, error) {
	v, ok := b[key]
	if !ok {
		return def, nil
	}
	n, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: parameter %q: expected bool, got %T", ErrParameter, key, v)
	}
	return n, nil
}

// String returns bag[key] as a string, or def if the key is absent.
func (b ParamBag) String(key, def string) (string, error) {
	v, ok := b[key]
	if !ok {
		return def, nil
	}
	n, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: parameter %q: expected string, got %T", ErrParameter, key, v)
	}
	return n, nil
}
