package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Row is one report record, either raw (upstream field names) or normalized
// (destination column names). Values arrive as whatever JSON gave us, so all
// numeric reads go through Num.
type Row map[string]any

// Str returns the value under key as a string, or "" when absent.
func (r Row) Str(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	}
	return ""
}

// Num returns the value under key as a float64. Missing, null, or
// non-numeric values coerce to 0 rather than propagating NaN downstream.
func (r Row) Num(key string) float64 {
	return coerceNum(r[key])
}

// Has reports whether the key is present with a non-nil value.
func (r Row) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

func coerceNum(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(n, ",", ""))
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}
