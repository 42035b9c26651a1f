package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"db-refcheck/internal/dialect"
)

// Range is an inclusive numeric interval of values that never count as
// missing references.
type Range struct {
	Min float64
	Max float64
}

func (r *Range) contains(f float64) bool {
	return r != nil && f >= r.Min && f <= r.Max
}

// normalizeValue turns driver-specific representations into comparable Go
// values: []byte becomes string, and numeric strings read from number
// columns become int64 or float64.
func normalizeValue(v any, class dialect.ValueClass) any {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	s, ok := v.(string)
	if !ok || class != dialect.ClassNumber {
		return v
	}
	t := strings.TrimSpace(s)
	if i, err := strconv.ParseInt(t, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		return f
	}
	return v
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return math.NaN(), false
}

// ignorable reports whether a single value is "no reference": NULL, a blank
// string, zero, or a number inside the ignore range.
func ignorable(v any, ignore *Range) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case bool:
		return !x
	}
	if f, ok := asFloat(v); ok {
		return f == 0 || ignore.contains(f)
	}
	return false
}

// ignorableTuple reports whether every value of t is ignorable.
func ignorableTuple(t []any, ignore *Range) bool {
	for _, v := range t {
		if !ignorable(v, ignore) {
			return false
		}
	}
	return true
}

func tupleKey(t []any) string {
	var b strings.Builder
	for i, v := range t {
		if i > 0 {
			b.WriteByte(0)
		}
		fmt.Fprintf(&b, "%T:%v", v, v)
	}
	return b.String()
}
