package database

import (
	"math"

	"github.com/jackc/pgx/v5/pgtype"
)

// SanitizeParams coerces numeric wrapper values that came back from prior
// query results into plain int64 before binding. Identifier values read
// out of a Table can be pgtype numerics or odd integer widths, and the
// store rejects mismatched numeric wrapper types on bind.
func SanitizeParams(params []interface{}) []interface{} {
	if params == nil {
		return nil
	}

	sanitized := make([]interface{}, len(params))
	for i, p := range params {
		if n, ok := asInt64(p); ok {
			sanitized[i] = n
		} else {
			sanitized[i] = p
		}
	}
	return sanitized
}

// asInt64 converts the assorted integer shapes a Table can hold into a
// plain int64. Floats qualify only when they hold an integral value.
func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint8:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int64(n), true
		}
	case float32:
		return asInt64(float64(n))
	case pgtype.Numeric:
		if !n.Valid {
			return 0, false
		}
		if eight, err := n.Int64Value(); err == nil && eight.Valid {
			return eight.Int64, true
		}
	case pgtype.Int8:
		if n.Valid {
			return n.Int64, true
		}
	case pgtype.Int4:
		if n.Valid {
			return int64(n.Int32), true
		}
	case pgtype.Int2:
		if n.Valid {
			return int64(n.Int16), true
		}
	}
	return 0, false
}
