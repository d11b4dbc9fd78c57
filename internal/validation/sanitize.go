package validation

import "strings"

// sanitizeReplacer escapes the characters that could break out of HTML
// attribute or element context downstream. Replacement happens in a single
// pass, so already-escaped output is never double-escaped into new entities.
var sanitizeReplacer = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// Sanitize trims surrounding whitespace and escapes HTML-sensitive
// characters. Applied to every user-originated string before it is stored
// or displayed. Never fails.
func Sanitize(input string) string {
	return sanitizeReplacer.Replace(strings.TrimSpace(input))
}
