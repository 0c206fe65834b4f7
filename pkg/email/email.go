package email

import (
	"net/mail"
	"strings"
)

const maxLength = 254

// Normalize trims surrounding whitespace and lowercases the domain part.
func Normalize(addr string) string {
	addr = strings.TrimSpace(addr)
	at := strings.LastIndexByte(addr, '@')
	if at <= 0 {
		return addr
	}
	return addr[:at] + "@" + strings.ToLower(addr[at+1:])
}

// IsValid reports whether addr is a bare address (no display name) with a
// dotted domain.
func IsValid(addr string) bool {
	if addr == "" || len(addr) > maxLength {
		return false
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr || parsed.Name != "" {
		return false
	}
	at := strings.LastIndexByte(addr, '@')
	domain := addr[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}
