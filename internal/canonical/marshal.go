package canonical

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"
)

// ErrUnsupportedType is returned when a value outside the sealed union is
// handed to the serializer.
var ErrUnsupportedType = errors.New("unsupported type for canonical serialization")

// ErrInvalidUTF8 is returned when a string value is not valid UTF-8. The
// serializer refuses rather than substituting replacement characters, since
// a lossy rewrite would change the content address.
var ErrInvalidUTF8 = errors.New("string is not valid UTF-8")

// Marshal produces the canonical byte encoding of v.
//
// The output is a pure function of the logical value: no whitespace, keys
// sorted, fixed numeric formatting. Two independently constructed values
// that compare equal serialize to identical bytes, which is what makes the
// content-addressed IDs stable across clients.
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshal(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshal(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("%w: untyped nil", ErrUnsupportedType)
	case Null:
		buf.WriteString("null")
		return nil
	case Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case Int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
		return nil
	case Float:
		return marshalFloat(buf, float64(val))
	case String:
		return marshalString(buf, string(val))
	case Array:
		return marshalArray(buf, val)
	case Object:
		return marshalObject(buf, val)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

// marshalFloat renders a number with the protocol's fixed formatting rule:
// integral values have no fractional part, everything else uses the
// shortest decimal rendering that round-trips.
func marshalFloat(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: non-finite number %v", ErrUnsupportedType, f)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		buf.WriteString(strconv.FormatInt(int64(f), 10))
		return nil
	}
	buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	return nil
}

// marshalString writes a JSON string with the minimal escape set: quote,
// backslash, and control characters. No HTML escaping, non-ASCII passes
// through as UTF-8. Invalid UTF-8 is an error, never replaced.
func marshalString(buf *bytes.Buffer, s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: %q", ErrInvalidUTF8, s)
	}
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
	return nil
}

func marshalArray(buf *bytes.Buffer, arr Array) error {
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshal(buf, elem); err != nil {
			return fmt.Errorf("array[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return nil
}

func marshalObject(buf *bytes.Buffer, obj Object) error {
	buf.WriteByte('{')
	for i, k := range obj.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshalString(buf, k); err != nil {
			return fmt.Errorf("object key: %w", err)
		}
		buf.WriteByte(':')
		if err := marshal(buf, obj[k]); err != nil {
			return fmt.Errorf("object[%q]: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// IsCanonical reports whether data contains no insignificant whitespace
// outside string literals. It is a structural scan, not a full re-parse:
// bytes that already came out of Marshal always pass.
func IsCanonical(data []byte) bool {
	inString := false
	escaped := false
	for _, b := range data {
		if inString {
			if escaped {
				escaped = false
				continue
			}
			switch b {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			inString = true
		case ' ', '\t', '\n', '\r':
			return false
		}
	}
	return true
}
