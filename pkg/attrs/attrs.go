// Package attrs reads values back out of slog-style key/value lists, so one
// attribute list can feed both the audit log line and the emitted event.
package attrs

import "fmt"

// ExtractString returns the value paired with key in a [k1, v1, k2, v2, ...]
// list. Strings and fmt.Stringer values (typed IDs) are returned as text;
// anything else, or a missing key, yields "".
func ExtractString(attrs []any, key string) string {
	for i := 0; i+1 < len(attrs); i += 2 {
		if k, ok := attrs[i].(string); !ok || k != key {
			continue
		}
		switch v := attrs[i+1].(type) {
		case string:
			return v
		case fmt.Stringer:
			return v.String()
		}
		return ""
	}
	return ""
}

// Lift collects the named keys into a map, skipping keys with no text value.
func Lift(attrs []any, keys ...string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		if v := ExtractString(attrs, key); v != "" {
			out[key] = v
		}
	}
	return out
}
