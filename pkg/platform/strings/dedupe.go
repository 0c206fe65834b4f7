// Package strings holds small slice helpers shared by request normalization
// and configuration parsing.
package strings

import (
	"strings"
)

// Dedupe drops repeated values and keeps the first occurrence of each.
func Dedupe[T comparable](values []T) []T {
	if len(values) < 2 {
		return values
	}
	seen := make(map[T]struct{}, len(values))
	out := make([]T, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// SplitList splits s on sep, trims each part and drops empty or repeated parts.
//
//	SplitList(" a, b,,a ", ",") // []string{"a", "b"}
func SplitList(s, sep string) []string {
	var parts []string
	for _, p := range strings.Split(s, sep) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return Dedupe(parts)
}
