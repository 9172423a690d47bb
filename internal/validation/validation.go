// Package validation holds the form field rules shared by the wizard and the
// auth endpoints.
package validation

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	emailRe  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe  = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
	digitsRe = regexp.MustCompile(`^\d+$`)
	expiryRe = regexp.MustCompile(`^(\d{2})/(\d{2})$`)
)

// IsValidEmail checks for a local@domain.tld shape.
func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPhone accepts up to 16 digits with an optional leading "+". Spaces,
// dashes and parentheses are ignored; the first digit must not be zero.
func IsValidPhone(phone string) bool {
	return phoneRe.MatchString(StripPhone(phone))
}

// StripPhone removes the separators IsValidPhone tolerates.
func StripPhone(phone string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, phone)
}

// NormalizeCardNumber drops the spaces customers type between digit groups.
func NormalizeCardNumber(number string) string {
	return strings.ReplaceAll(number, " ", "")
}

// IsValidCardNumber accepts 13 to 19 digits, spaces allowed.
func IsValidCardNumber(number string) bool {
	n := NormalizeCardNumber(number)
	return len(n) >= 13 && len(n) <= 19 && digitsRe.MatchString(n)
}

// IsValidExpiry accepts MM/YY with a month between 01 and 12.
func IsValidExpiry(expiry string) bool {
	m := expiryRe.FindStringSubmatch(expiry)
	if m == nil {
		return false
	}
	month, err := strconv.Atoi(m[1])
	if err != nil {
		return false
	}
	return month >= 1 && month <= 12
}

// IsValidCVV accepts three or four digits.
func IsValidCVV(cvv string) bool {
	return (len(cvv) == 3 || len(cvv) == 4) && digitsRe.MatchString(cvv)
}

// Last4 returns the last four digits of a card number.
func Last4(number string) string {
	n := NormalizeCardNumber(number)
	if len(n) <= 4 {
		return n
	}
	return n[len(n)-4:]
}
