// Package attrs works with the alternating key/value slices passed to slog
// so the same audit fields can be reused on trace spans.
package attrs

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
)

// Lookup returns the value stored under key in pairs ([k1, v1, k2, v2, ...]).
func Lookup(pairs []any, key string) (any, bool) {
	for i := 0; i+1 < len(pairs); i += 2 {
		if k, ok := pairs[i].(string); ok && k == key {
			return pairs[i+1], true
		}
	}
	return nil, false
}

// String returns the value under key rendered as text, or "" when absent.
// Values implementing fmt.Stringer, such as ids and statuses, are rendered
// with String.
func String(pairs []any, key string) string {
	v, ok := Lookup(pairs, key)
	if !ok || v == nil {
		return ""
	}
	return render(v)
}

// Span converts pairs into span attributes. Keys that are not strings are
// skipped along with their value.
func Span(pairs []any) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		k, ok := pairs[i].(string)
		if !ok {
			continue
		}
		switch v := pairs[i+1].(type) {
		case bool:
			out = append(out, attribute.Bool(k, v))
		case int:
			out = append(out, attribute.Int(k, v))
		case int64:
			out = append(out, attribute.Int64(k, v))
		case float64:
			out = append(out, attribute.Float64(k, v))
		case nil:
		default:
			out = append(out, attribute.String(k, render(v)))
		}
	}
	return out
}

func render(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
