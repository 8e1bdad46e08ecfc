package util

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrPhoneInvalidChars = errors.New("phone contains invalid characters")
	ErrPhoneLength       = errors.New("phone must have 8 to 15 digits")

	phoneAllowed  = regexp.MustCompile(`^[0-9+\s\-.()]+$`)
	registerPhone = regexp.MustCompile(`^\+?\d{9,15}$`)
)

// NormalizePhone keeps a leading '+' and the digits of s.
// "+84 (90) 123-4567" -> "+84901234567".
func NormalizePhone(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || !phoneAllowed.MatchString(s) {
		return "", ErrPhoneInvalidChars
	}

	var b strings.Builder
	if strings.HasPrefix(s, "+") {
		b.WriteByte('+')
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			digits++
		}
	}
	if digits < 8 || digits > 15 {
		return "", ErrPhoneLength
	}
	return b.String(), nil
}

// ValidRegisterPhone is the stricter sign-up rule: optional '+' then 9-15 digits.
func ValidRegisterPhone(s string) bool {
	return registerPhone.MatchString(s)
}
