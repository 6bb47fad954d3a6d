package models

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Attributes is the free-form attribute bag of a character. Values must be JSON-compatible:
// string, number, bool, nil, or nested maps/slices of the same. The bag is checked with
// Validate where it is consumed, never at rest.
type Attributes map[string]any

// Validate reports the first value that is not JSON-compatible
func (a Attributes) Validate() error {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := validateValue(a[k], k); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(v any, path string) error {
	switch val := v.(type) {
	case nil, string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return nil
	case float32:
		return validateFloat(float64(val), path)
	case float64:
		return validateFloat(val, path)
	case map[string]any:
		return Attributes(val).validateNested(path)
	case Attributes:
		return val.validateNested(path)
	case []any:
		for i, item := range val {
			if err := validateValue(item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil
	case []string:
		return nil
	default:
		return fmt.Errorf("%s: unsupported value type %T", path, v)
	}
}

func (a Attributes) validateNested(path string) error {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := validateValue(a[k], path+"."+k); err != nil {
			return err
		}
	}
	return nil
}

func validateFloat(f float64, path string) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%s: %v is not representable in JSON", path, f)
	}
	return nil
}

// Clone returns a deep copy so snapshots never share nested maps with callers
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return map[string]any(Attributes(val).Clone())
	case Attributes:
		return val.Clone()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return v
	}
}
