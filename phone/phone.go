// Package phone normalizes and validates Cameroonian mobile numbers.
//
// The canonical form is "+237" followed by nine digits whose first digit is
// 6, 7 or 2. The same rules are used by registration, the patient detail form
// and the payment phone entry, on the client and on the server.
package phone

import (
	"errors"
	"regexp"
	"strings"
)

// CountryCode is the Cameroonian international dialing prefix.
const CountryCode = "+237"

var canonicalRe = regexp.MustCompile(`^\+237[672]\d{8}$`)

// ErrInvalid is returned by Parse when a number cannot be brought into canonical form.
var ErrInvalid = errors.New("invalid Cameroonian phone number: expected +237 followed by 9 digits starting with 6, 7 or 2")

// Normalize strips everything but digits and brings the number into "+237XXXXXXXXX"
// form when it can. Bare 9-digit local numbers starting with 6, 7 or 2 get the
// country code prepended; digit strings starting with 237 get a leading "+".
// Inputs that match neither shape are returned digits-only (with "+" if the
// input carried one) so that Valid reports them as invalid.
func Normalize(input string) string {
	trimmed := strings.TrimSpace(input)
	plus := strings.HasPrefix(trimmed, "+")
	digits := digitsOnly(trimmed)

	switch {
	case len(digits) == 9 && isLocalLead(digits[0]):
		return CountryCode + digits
	case len(digits) == 12 && strings.HasPrefix(digits, "237"):
		return "+" + digits
	case strings.HasPrefix(digits, "00237") && len(digits) == 14:
		return "+" + digits[2:]
	}
	if plus {
		return "+" + digits
	}
	return digits
}

// Valid reports whether s is already in canonical form.
func Valid(s string) bool {
	return canonicalRe.MatchString(s)
}

// Parse normalizes input and validates the result.
func Parse(input string) (string, error) {
	n := Normalize(input)
	if !Valid(n) {
		return "", ErrInvalid
	}
	return n, nil
}

// Local returns the nine national digits of a canonical number, or the input
// unchanged when it is not canonical.
func Local(canonical string) string {
	if !Valid(canonical) {
		return canonical
	}
	return strings.TrimPrefix(canonical, CountryCode)
}

func isLocalLead(b byte) bool {
	return b == '6' || b == '7' || b == '2'
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
