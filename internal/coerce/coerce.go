// Package coerce converts loosely typed store values into display types.
// The bot's tables mix schema generations, so values arrive as strings,
// numbers, or driver-native types depending on the column and backend.
// Conversion is best-effort: a malformed value yields the caller's default,
// never an error.
package coerce

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Float converts v to float64, returning def when v is absent, null, or not
// numeric.
func Float(v any, def float64) float64 {
	if f, ok := FloatPtr(v); ok {
		return *f
	}
	return def
}

// FloatPtr converts v to float64, reporting whether the value was numeric.
func FloatPtr(v any) (*float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return nil, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, false
		}
		f = parsed
	case []byte:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(string(x)), 64)
		if err != nil {
			return nil, false
		}
		f = parsed
	default:
		return nil, false
	}
	return &f, true
}

// String converts v to its display form, returning def when v is absent.
// Timestamps are rendered as RFC 3339 so downstream substring logic sees the
// same shape the store's JSON API would return.
func String(v any, def string) string {
	switch x := v.(type) {
	case nil:
		return def
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
}

// Time parses v as an ISO 8601 instant, normalized to UTC. Naive values are
// taken as UTC. The second return reports whether parsing succeeded.
func Time(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), true
	case string, []byte:
		s := strings.TrimSpace(String(x, ""))
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}
