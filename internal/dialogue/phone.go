package dialogue

import "strings"

// NormalizePhone reduces any phone representation to a digit-only string,
// replacing a single leading trunk "0" with the country calling code.
// No further validation happens here; a malformed number passes through and
// surfaces later as a failed notification send.
func NormalizePhone(raw, countryCode string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "0") {
		return countryCode + digits[1:]
	}
	return digits
}
