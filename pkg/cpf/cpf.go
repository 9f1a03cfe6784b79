// Package cpf validates the Brazilian CPF taxpayer identifier.
package cpf

import "strings"

const length = 11

// Normalize strips every non-digit character from value and reports whether
// the remainder has the expected 11 digits. The returned string is the form
// persisted by the repository.
func Normalize(value string) (string, bool) {
	var b strings.Builder
	b.Grow(length)
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	return digits, len(digits) == length
}

// Valid reports whether value is a well-formed CPF: 11 digits after
// normalization, not an all-repeated sequence, and with both check digits
// matching the weighted mod-11 algorithm.
func Valid(value string) bool {
	digits, ok := Normalize(value)
	if !ok {
		return false
	}
	if allSame(digits) {
		return false
	}
	d1 := checkDigit(digits[:9], 10)
	d2 := checkDigit(digits[:10], 11)
	return digits[9] == d1 && digits[10] == d2
}

func allSame(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}

// checkDigit computes one verification digit over digits, with weights
// starting at startWeight and decreasing to 2.
func checkDigit(digits string, startWeight int) byte {
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * (startWeight - i)
	}
	rem := (sum * 10) % 11
	if rem == 10 {
		rem = 0
	}
	return byte('0' + rem)
}
