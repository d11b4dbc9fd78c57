package observability

import (
	"strings"
	"unicode"
)

// Limits for request-scoped log fields. Identifiers are Firebase UID or ULID
// sized, routes are chi patterns.
const (
	maxUserIDField = 64
	maxRouteField  = 180
	maxMethodField = 10
)

// logField strips control characters and truncates the value so attacker
// controlled input cannot break up the JSON log stream.
func logField(value string, limit int) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, value)
	if runes := []rune(cleaned); len(runes) > limit {
		return string(runes[:limit])
	}
	return cleaned
}

// SanitizeRoute prepares a route pattern for logging.
func SanitizeRoute(route string) string {
	if route == "" {
		return "/"
	}
	return logField(route, maxRouteField)
}

// SanitizeMethod prepares an HTTP method for logging.
func SanitizeMethod(method string) string {
	return logField(method, maxMethodField)
}

// SanitizeUserID prepares a user identifier for logging.
func SanitizeUserID(uid string) string {
	return logField(uid, maxUserIDField)
}
