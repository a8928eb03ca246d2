package validators

import "strings"

const (
	minPhoneDigits = 6
	maxPhoneDigits = 15
)

// NormalizePhone strips separators from a phone number, keeping a leading +.
// It returns "" when the result is not a plausible number.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	var b strings.Builder
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '/' || r == '(' || r == ')' || r == '.':
		default:
			return ""
		}
	}

	out := b.String()
	digits := len(strings.TrimPrefix(out, "+"))
	if digits < minPhoneDigits || digits > maxPhoneDigits {
		return ""
	}
	return out
}

// IsSlug reports whether s is a lowercase URL slug.
func IsSlug(s string) bool {
	if s == "" || len(s) > 100 || s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-') {
			return false
		}
	}
	return true
}
