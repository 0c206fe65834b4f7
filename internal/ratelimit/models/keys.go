package models

import "strings"

// SanitizeKeySegment escapes ':' so identifiers cannot forge adjacent keys.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// ActorKey buckets an authenticated actor within a tenant.
func ActorKey(tenantID, actorID string, class Class) string {
	return "rl:actor:" + SanitizeKeySegment(tenantID) + ":" + SanitizeKeySegment(actorID) + ":" + string(class)
}

// IPKey buckets anonymous traffic by client address.
func IPKey(ip string, class Class) string {
	return "rl:ip:" + SanitizeKeySegment(ip) + ":" + string(class)
}
