package util

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const defaultSlug = "item"

// Slugify folds s to lowercase ASCII words joined by '-'.
// Diacritics are dropped after NFKD decomposition ("Cà phê" -> "ca-phe").
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false

	for _, r := range norm.NFKD.String(s) {
		if r > unicode.MaxASCII {
			// combining marks and non-latin letters have no ASCII form
			if r == 'đ' || r == 'Đ' {
				r = 'd'
			} else {
				continue
			}
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
			r = unicode.ToLower(r)
		default:
			pendingDash = b.Len() > 0
			continue
		}
		if pendingDash {
			b.WriteByte('-')
			pendingDash = false
		}
		b.WriteRune(r)
	}

	if b.Len() == 0 {
		return defaultSlug
	}
	return b.String()
}

// UniqueSlug returns base or the first free "base-N" (N from 1).
// exists must ignore the row being updated so an unchanged slug is kept.
func UniqueSlug(base string, exists func(slug string) (bool, error)) (string, error) {
	if base == "" {
		base = defaultSlug
	}
	candidate := base
	for i := 1; ; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
