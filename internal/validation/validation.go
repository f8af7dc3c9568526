package validation

import (
	"regexp"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether the address looks like an email. Deliberately
// loose; deliverability is proven by the OTP round trip, not the regex.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidPassword enforces the signup password policy: at least 8 characters
// with at least one uppercase letter and one digit.
func ValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasUpper && hasDigit
}
