// Package coerce converts loosely typed JSON values into the shapes the store
// persists. Every function is total: malformed input yields a zero value and
// false rather than an error.
package coerce

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimal parses numbers, numeric strings and booleans.
func Decimal(v any) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case nil:
		return decimal.Zero, false
	case float64:
		return decimal.NewFromFloat(val), true
	case float32:
		return decimal.NewFromFloat32(val), true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		return d, err == nil
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(trimmed)
		return d, err == nil
	case bool:
		if val {
			return decimal.NewFromInt(1), true
		}
		return decimal.Zero, true
	default:
		return decimal.Zero, false
	}
}

var (
	maxInt = decimal.NewFromInt(math.MaxInt64)
	minInt = decimal.NewFromInt(math.MinInt64)
)

// Int rounds v half away from zero, saturating at the int64 range.
func Int(v any) (int64, bool) {
	d, ok := Decimal(v)
	if !ok {
		return 0, false
	}
	d = d.Round(0)
	switch {
	case d.GreaterThan(maxInt):
		return math.MaxInt64, true
	case d.LessThan(minInt):
		return math.MinInt64, true
	}
	return d.IntPart(), true
}

// NonNegativeInt rounds v and clamps it at zero; unparseable input yields zero.
func NonNegativeInt(v any) int64 {
	n, ok := Int(v)
	if !ok || n < 0 {
		return 0
	}
	return n
}

// AtLeast rounds v and clamps it at min.
func AtLeast(v any, min int64) int64 {
	n, ok := Int(v)
	if !ok || n < min {
		return min
	}
	return n
}

// Between rounds v and clamps it into [min, max]; unparseable input yields min.
func Between(v any, min, max int64) int64 {
	n := AtLeast(v, min)
	if n > max {
		return max
	}
	return n
}

// String stringifies scalars; nil, objects and arrays yield "".
func String(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// Truthy reports JSON truthiness: false, 0, "", null and missing are false.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0
	case json.Number:
		f, err := val.Float64()
		return err == nil && f != 0
	default:
		return true
	}
}

// Object returns v as a JSON object, or nil when v is anything else.
func Object(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return nil
}

// Strings keeps the stringifiable entries of a JSON array.
func Strings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch item.(type) {
		case map[string]any, []any:
			continue
		}
		out = append(out, String(item))
	}
	return out
}

// List decodes a JSON array without failing the enclosing document. Valid is
// false when the field was missing, null, or not an array.
type List struct {
	Items []json.RawMessage
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *List) UnmarshalJSON(data []byte) error {
	l.Items = nil
	l.Valid = false
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	l.Items = items
	l.Valid = true
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l List) MarshalJSON() ([]byte, error) {
	if !l.Valid {
		return []byte("null"), nil
	}
	if l.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.Items)
}

// NewList builds a valid List from already-encodable values.
func NewList[T any](values []T) (List, error) {
	items := make([]json.RawMessage, 0, len(values))
	for _, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return List{}, err
		}
		items = append(items, raw)
	}
	return List{Items: items, Valid: true}, nil
}

// Each decodes every element into a fresh T, skipping elements that do not
// decode (for example a bare number where an object was expected).
func Each[T any](l List, fn func(T)) {
	for _, raw := range l.Items {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		fn(v)
	}
}
