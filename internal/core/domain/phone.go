package domain

import (
	"regexp"
	"strings"
)

// CountryCode prefixes every stored phone number.
const CountryCode = "+975"

var (
	localMobile = regexp.MustCompile(`^(1[6-9]|7[1-7])\d{6}$`)
	citizenID   = regexp.MustCompile(`^\d{11}$`)
)

// CanonicalPhone accepts a Bhutan mobile number as 8 local digits, as 975
// followed by 8 digits, or as +975 followed by 8 digits, and returns the
// +975XXXXXXXX form. Phones are stored and compared only in that form.
func CanonicalPhone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "+"):
		if !strings.HasPrefix(s, CountryCode) {
			return "", false
		}
		s = s[len(CountryCode):]
	case len(s) == 11 && strings.HasPrefix(s, "975"):
		s = s[3:]
	}
	if !localMobile.MatchString(s) {
		return "", false
	}
	return CountryCode + s, true
}

// IsCID reports whether s is an 11-digit citizenship id.
func IsCID(s string) bool {
	return citizenID.MatchString(strings.TrimSpace(s))
}
