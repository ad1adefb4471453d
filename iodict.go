package waffles

import (
	"fmt"
	"sort"
)

// ioDict is the common behavior of the input-parameter and output-result
// dictionaries: a string-keyed map whose misses produce an error that names
// the missing key and enumerates the keys that do exist.
type ioDict map[string]any

func (d ioDict) get(kind, key string) (any, error) {
	if v, ok := d[key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: there is no %s called '%s'; available: %v",
		ErrMissingKey, kind, key, d.keys())
}

func (d ioDict) keys() []string {
	out := make([]string, 0, len(d))
	for k := range d {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IPDict holds the input parameters of a waveform analysis, keyed by
// parameter name.
type IPDict map[string]any

// Get returns the parameter stored under key, or an error enumerating the
// available parameters.
func (d IPDict) Get(key string) (any, error) {
	return ioDict(d).get("input parameter", key)
}

// Int returns the parameter under key as an int.
func (d IPDict) Int(key string) (int, error) {
	v, err := d.Get(key)
	if err != nil {
		return 0, err
	}
	i, ok := v.(int)
	if !ok {
		return 0, fmt.Errorf("input parameter '%s' is %T, want int", key, v)
	}
	return i, nil
}

// Float returns the parameter under key as a float64. Integer-valued
// parameters are widened.
func (d IPDict) Float(key string) (float64, error) {
	v, err := d.Get(key)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	}
	return 0, fmt.Errorf("input parameter '%s' is %T, want float64", key, v)
}

// Ints returns the parameter under key as an []int.
func (d IPDict) Ints(key string) ([]int, error) {
	v, err := d.Get(key)
	if err != nil {
		return nil, err
	}
	s, ok := v.([]int)
	if !ok {
		return nil, fmt.Errorf("input parameter '%s' is %T, want []int", key, v)
	}
	return s, nil
}

// ORDict holds the output results of a waveform analysis, keyed by result
// name. The set of keys is declared by the concrete analysis that produced
// the dictionary; callers must look values up by name.
type ORDict map[string]any

// Get returns the result stored under key, or an error enumerating the
// available results.
func (d ORDict) Get(key string) (any, error) {
	return ioDict(d).get("output parameter in the results dictionary", key)
}

// Float returns the result under key as a float64.
func (d ORDict) Float(key string) (float64, error) {
	v, err := d.Get(key)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	}
	return 0, fmt.Errorf("output parameter '%s' is %T, want float64", key, v)
}
