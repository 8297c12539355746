package metric

import (
	"math"
	"strconv"
	"strings"
)

// Float is an optional numeric value. The zero value is "unknown", which is a
// distinct state from a known zero and serializes as JSON null.
type Float struct {
	Value float64
	Known bool
}

func FloatOf(v float64) Float {
	return Float{Value: v, Known: true}
}

// ParseFloat coerces a raw feed field into a Float. Empty strings, "NA"-style
// placeholders and unparseable input all map to unknown rather than an error.
func ParseFloat(raw string) Float {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || isPlaceholder(trimmed) {
		return Float{}
	}

	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Float{}
	}

	return Float{Value: v, Known: true}
}

func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Known {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f.Value, 'f', -1, 64)), nil
}

func (f *Float) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*f = Float{}
		return nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return err
	}
	*f = Float{Value: v, Known: true}
	return nil
}

// Int mirrors Float for integer-valued fields such as bye weeks and rank
// bounds. Feeds frequently carry these as floats ("7.0"), so parsing goes
// through float coercion first.
type Int struct {
	Value int
	Known bool
}

func IntOf(v int) Int {
	return Int{Value: v, Known: true}
}

func ParseInt(raw string) Int {
	f := ParseFloat(raw)
	if !f.Known {
		return Int{}
	}
	return Int{Value: int(f.Value), Known: true}
}

// IntFromFloat narrows a Float into an Int, preserving the unknown state.
func IntFromFloat(f Float) Int {
	if !f.Known {
		return Int{}
	}
	return Int{Value: int(f.Value), Known: true}
}

func (i Int) MarshalJSON() ([]byte, error) {
	if !i.Known {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(i.Value)), nil
}

func (i *Int) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*i = Int{}
		return nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return err
	}
	*i = Int{Value: int(v), Known: true}
	return nil
}

func isPlaceholder(v string) bool {
	switch strings.ToLower(v) {
	case "na", "n/a", "nan", "null", "none":
		return true
	default:
		return false
	}
}
