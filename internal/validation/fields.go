package validation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	maxEmailLength    = 254
	minPasswordLength = 8
	maxPasswordLength = 128
	minNameLength     = 2
	maxNameLength     = 50
	minAddressLength  = 5
	maxAddressLength  = 200
	maxSearchLength   = 100
	minQuantity       = 1
	maxQuantity       = 999
	maxRating         = 5.0
)

var (
	emailPattern  = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(\.[A-Za-z0-9\-]+)+$`)
	namePattern   = regexp.MustCompile(`^[A-Za-z ]+$`)
	phonePattern  = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	addressChars  = regexp.MustCompile(`^[A-Za-z0-9 \-_.,#/]+$`)
	searchChars   = regexp.MustCompile(`^[A-Za-z0-9 \-_.,]+$`)
	passwordChars = regexp.MustCompile(`^[A-Za-z0-9@$!%*?&]+$`)
	innerSpaces   = regexp.MustCompile(`\s+`)
)

// maxPrice is the inclusive upper bound accepted for price inputs.
var maxPrice = decimal.RequireFromString("999999.99")

// weakPasswords lists substrings rejected regardless of composition rules.
var weakPasswords = []string{"password", "12345678", "qwerty123", "admin123", "welcome123"}

// Email validates an email address. The pattern is deliberately a
// RFC-5322-lite check: local part, @, and a dotted domain.
func Email(input string) Result {
	email := strings.TrimSpace(input)
	if email == "" {
		return Invalid("Email is required")
	}
	if len(email) > maxEmailLength {
		return Invalid("Email is too long")
	}
	if !emailPattern.MatchString(email) {
		return Invalid("Please enter a valid email address")
	}
	return Valid()
}

// Password enforces length bounds, the allowed character set, one character
// from each of the lower/upper/digit classes, and a weak-password blacklist.
func Password(input string) Result {
	if input == "" {
		return Invalid("Password is required")
	}
	if len(input) < minPasswordLength {
		return Invalid("Password must be at least 8 characters long")
	}
	if len(input) > maxPasswordLength {
		return Invalid("Password is too long (max 128 characters)")
	}

	var hasLower, hasUpper, hasDigit bool
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasLower || !hasUpper || !hasDigit || !passwordChars.MatchString(input) {
		return Invalid("Password must contain at least one uppercase letter, one lowercase letter, and one number")
	}

	lowered := strings.ToLower(input)
	for _, weak := range weakPasswords {
		if strings.Contains(lowered, weak) {
			return Invalid("Password is too common. Please choose a stronger password")
		}
	}
	return Valid()
}

// PasswordConfirm returns a validator that checks the confirmation input
// against the reference password.
func PasswordConfirm(password string) Validator {
	return func(input string) Result {
		if input == "" {
			return Invalid("Please confirm your password")
		}
		if input != password {
			return Invalid("Passwords do not match")
		}
		return Valid()
	}
}

// Name validates a display name: letters and spaces, 2 to 50 characters.
func Name(input string) Result {
	name := strings.TrimSpace(input)
	if name == "" {
		return Invalid("Name is required")
	}
	if len(name) < minNameLength {
		return Invalid("Name must be at least 2 characters long")
	}
	if len(name) > maxNameLength {
		return Invalid("Name is too long (max 50 characters)")
	}
	if !namePattern.MatchString(name) {
		return Invalid("Name can only contain letters and spaces")
	}
	return Valid()
}

// Phone validates a phone number after stripping inner whitespace: optional
// leading plus followed by 10 to 15 digits.
func Phone(input string) Result {
	phone := strings.TrimSpace(input)
	if phone == "" {
		return Invalid("Phone number is required")
	}
	phone = innerSpaces.ReplaceAllString(phone, "")
	if !phonePattern.MatchString(phone) {
		return Invalid("Please enter a valid phone number (10-15 digits)")
	}
	return Valid()
}

// Address validates a delivery address: 5 to 200 characters drawn from the
// letter/digit/punctuation set used by street addresses.
func Address(input string) Result {
	address := strings.TrimSpace(input)
	if address == "" {
		return Invalid("Address is required")
	}
	if len(address) < minAddressLength {
		return Invalid("Address must be at least 5 characters long")
	}
	if len(address) > maxAddressLength {
		return Invalid("Address is too long (max 200 characters)")
	}
	if !addressChars.MatchString(address) {
		return Invalid("Address contains invalid characters")
	}
	return Valid()
}

// SearchQuery validates a catalog search query: 1 to 100 characters from
// the letter/digit/basic-punctuation set.
func SearchQuery(input string) Result {
	query := strings.TrimSpace(input)
	if query == "" {
		return Invalid("Search query cannot be empty")
	}
	if len(query) > maxSearchLength {
		return Invalid("Search query is too long (max 100 characters)")
	}
	if !searchChars.MatchString(query) {
		return Invalid("Search query contains invalid characters")
	}
	return Valid()
}

// Price validates a decimal price input: non-negative, at most 999,999.99,
// and at most two fraction digits.
func Price(input string) Result {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Invalid("Price is required")
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return Invalid("Please enter a valid price")
	}
	if price.IsNegative() {
		return Invalid("Price cannot be negative")
	}
	if price.GreaterThan(maxPrice) {
		return Invalid("Price is too high (max $999,999.99)")
	}
	if price.Exponent() < -2 {
		return Invalid("Price can have at most 2 decimal places")
	}
	return Valid()
}

// Quantity validates an integer quantity between 1 and 999.
func Quantity(input string) Result {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Invalid("Quantity is required")
	}
	qty, err := strconv.Atoi(raw)
	if err != nil {
		return Invalid("Please enter a valid quantity")
	}
	if qty < minQuantity {
		return Invalid("Quantity must be at least 1")
	}
	if qty > maxQuantity {
		return Invalid("Quantity cannot exceed 999")
	}
	return Valid()
}

// Rating validates a decimal rating between 0.0 and 5.0.
func Rating(input string) Result {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Invalid("Rating is required")
	}
	rating, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Invalid("Please enter a valid rating")
	}
	if rating < 0 {
		return Invalid("Rating cannot be negative")
	}
	if rating > maxRating {
		return Invalid("Rating cannot exceed 5.0")
	}
	return Valid()
}
