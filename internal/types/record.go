package types

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

func stringField(record map[string]any, key string) string {
	s, _ := record[key].(string)
	return s
}

// FloatField reads a numeric field that may arrive as a JSON number or a
// numeric string.
func FloatField(record map[string]any, key string) (float64, bool) {
	switch v := record[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// timeField accepts RFC 3339 timestamps as well as SQLite's
// CURRENT_TIMESTAMP layout.
func timeField(record map[string]any, key string) time.Time {
	s := stringField(record, key)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateTime} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
