package canonical

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Value is a sealed interface over the closed set of wire value types.
// Only Null, Bool, Int, Float, String, Array, and Object implement it.
type Value interface {
	value() // Sealed - only the types in this package implement it.
}

// Null represents a JSON null.
type Null struct{}

func (Null) value() {}

// Bool represents a JSON boolean.
type Bool bool

func (Bool) value() {}

// Int represents a JSON number with no fractional part.
// Kept distinct from Float so integer payload fields survive round-trips
// without precision loss above 2^53.
type Int int64

func (Int) value() {}

// Float represents a non-integral JSON number.
type Float float64

func (Float) value() {}

// String represents a JSON string.
type String string

func (String) value() {}

// Array represents a JSON array of Values.
type Array []Value

func (Array) value() {}

// Object represents a JSON object. Use SortedKeys for deterministic
// iteration; Go map order is randomized.
type Object map[string]Value

func (Object) value() {}

// SortedKeys returns the object's keys in canonical (byte-lexicographic)
// order.
func (o Object) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AsString returns the string form of v, reporting whether v is a String.
func AsString(v Value) (string, bool) {
	s, ok := v.(String)
	return string(s), ok
}

// AsInt returns the int64 form of v, reporting whether v is an Int.
func AsInt(v Value) (int64, bool) {
	n, ok := v.(Int)
	return int64(n), ok
}

// AsFloat returns the float64 form of v, reporting whether v is a Float.
func AsFloat(v Value) (float64, bool) {
	f, ok := v.(Float)
	return float64(f), ok
}

// AsBool returns the bool form of v, reporting whether v is a Bool.
func AsBool(v Value) (bool, bool) {
	b, ok := v.(Bool)
	return bool(b), ok
}

// AsArray returns the Array form of v, reporting whether v is an Array.
func AsArray(v Value) (Array, bool) {
	a, ok := v.(Array)
	return a, ok
}

// AsObject returns the Object form of v, reporting whether v is an Object.
func AsObject(v Value) (Object, bool) {
	o, ok := v.(Object)
	return o, ok
}

// Num returns the numeric form of v for fields that accept either Int or
// Float (storyPoints and friends).
func Num(v Value) (float64, bool) {
	switch n := v.(type) {
	case Int:
		return float64(n), true
	case Float:
		return float64(n), true
	default:
		return 0, false
	}
}

// FromJSON parses arbitrary JSON into a Value tree. Numbers are decoded
// via json.Number so integers keep full int64 precision; anything with a
// fraction or exponent becomes a Float.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	// Reject trailing garbage after the first value.
	if dec.More() {
		return nil, fmt.Errorf("trailing data after JSON value")
	}

	return fromGo(raw)
}

// fromGo recursively converts a decoded Go value into a Value.
func fromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case json.Number:
		s := string(val)
		if !strings.ContainsAny(s, ".eE") {
			if n, err := val.Int64(); err == nil {
				return Int(n), nil
			}
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("unrepresentable number: %s", s)
		}
		return Float(f), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			cv, err := fromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = cv
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			cv, err := fromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = cv
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

// ObjectFromJSON parses JSON that must be an object at the top level.
func ObjectFromJSON(data []byte) (Object, error) {
	v, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(Object)
	if !ok {
		return nil, fmt.Errorf("expected JSON object, got %T", v)
	}
	return obj, nil
}
