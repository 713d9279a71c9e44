// Package format normalizes raw payment input into its display form.
// Every function is pure and idempotent on already-formatted input.
package format

import (
	"strings"
	"unicode"
)

const (
	cardNumberLength = 16
	cardGroupSize    = 4
	expiryLength     = 5
)

// FormatCardNumber strips whitespace, keeps the first 16 remaining
// characters and groups them in fours separated by single spaces.
func FormatCardNumber(raw string) string {
	stripped := []rune(StripWhitespace(raw))
	if len(stripped) > cardNumberLength {
		stripped = stripped[:cardNumberLength]
	}

	var b strings.Builder
	for i, r := range stripped {
		if i > 0 && i%cardGroupSize == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatExpiry keeps digits only, inserts "/" after the first two and
// truncates the result to MM/YY.
func FormatExpiry(raw string) string {
	digits := DigitsOnly(raw)
	if len(digits) >= 2 {
		digits = digits[:2] + "/" + digits[2:]
	}
	if len(digits) > expiryLength {
		digits = digits[:expiryLength]
	}
	return digits
}

// DigitsOnly drops every character that is not an ASCII digit.
func DigitsOnly(raw string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
}

// StripWhitespace removes all Unicode whitespace.
func StripWhitespace(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
}

// MaskCardNumber hides everything but the last four characters of a card
// number, e.g. "**** **** **** 1111".
func MaskCardNumber(cardNumber string) string {
	r := []rune(cardNumber)
	if len(r) > cardGroupSize {
		r = r[len(r)-cardGroupSize:]
	}
	return "**** **** **** " + string(r)
}
