// internal/filter/bound.go
package filter

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

/*
 * Lenient decoding of ATK/DEF range bounds.
 *
 * UI inputs arrive as numbers, numeric strings, empty strings or null. Only
 * definedness matters for inference; range validity is not checked here.
 *
 * Coercion:
 *   - null, missing, "" and whitespace-only strings: undefined
 *   - JSON numbers and numeric strings: defined, Value set
 *   - any other string (e.g. "?"): defined, Value zero, Numeric false
 *   - booleans, objects, arrays: undefined (not a bound)
 */

// Bound is an optional numeric range limit.
type Bound struct {
	Value   float64
	Numeric bool // Value holds a parsed number
	set     bool
}

// NewBound returns a defined numeric bound.
func NewBound(v float64) Bound {
	return Bound{Value: v, Numeric: true, set: true}
}

// Defined reports whether the user entered anything for this bound.
func (b Bound) Defined() bool {
	return b.set
}

// UnmarshalJSON implements json.Unmarshaler. Never fails on well-formed JSON.
func (b *Bound) UnmarshalJSON(data []byte) error {
	*b = Bound{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		b.set = true
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			b.Value = f
			b.Numeric = true
		}
		return nil
	case 't', 'f', '{', '[':
		return nil
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return nil
		}
		*b = NewBound(f)
		return nil
	}
}

// MarshalJSON implements json.Marshaler. Undefined bounds encode as null.
func (b Bound) MarshalJSON() ([]byte, error) {
	if !b.set {
		return []byte("null"), nil
	}
	if !b.Numeric {
		return []byte(`""`), nil
	}
	return []byte(strconv.FormatFloat(b.Value, 'f', -1, 64)), nil
}
