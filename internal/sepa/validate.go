package sepa

import (
	"regexp"
	"strings"
)

const maxIdentifierLen = 35

var (
	ibanPattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]{1,30}$`)
	bicPattern  = regexp.MustCompile(`^[A-Z0-9]{8}([A-Z0-9]{3})?$`)
	// identifierPattern is the ISO 20022 basic latin character set allowed
	// in Max35Text identifier fields.
	identifierPattern = regexp.MustCompile(`^[A-Za-z0-9/\-?:().,'+ ]{1,35}$`)
)

// NormalizeIBAN strips all whitespace and uppercases the account number.
func NormalizeIBAN(iban string) string {
	return strings.ToUpper(strings.Join(strings.Fields(iban), ""))
}

// NormalizeBIC trims surrounding whitespace and uppercases the code.
func NormalizeBIC(bic string) string {
	return strings.ToUpper(strings.TrimSpace(bic))
}

// ValidIBAN reports whether the normalized value has IBAN structure:
// two-letter country code, two check digits, alphanumeric body.
func ValidIBAN(iban string) bool {
	return ibanPattern.MatchString(NormalizeIBAN(iban))
}

// ValidBIC reports whether the normalized value is an 8 or 11 character
// business identifier code.
func ValidBIC(bic string) bool {
	return bicPattern.MatchString(NormalizeBIC(bic))
}

// ValidIdentifier reports whether the value fits an ISO 20022 Max35Text
// identifier field.
func ValidIdentifier(id string) bool {
	return identifierPattern.MatchString(id)
}

// ValidChecksum reports whether the normalized IBAN clears the mod-97
// check defined by ISO 13616. The encoder itself only requires structure;
// upstream filtering uses the checksum so that a mistyped account becomes
// an exclusion instead of a bank-side rejection.
func ValidChecksum(iban string) bool {
	normalized := NormalizeIBAN(iban)
	if !ibanPattern.MatchString(normalized) {
		return false
	}
	rearranged := normalized[4:] + normalized[:4]
	remainder := 0
	for _, r := range rearranged {
		switch {
		case r >= '0' && r <= '9':
			remainder = (remainder*10 + int(r-'0')) % 97
		case r >= 'A' && r <= 'Z':
			remainder = (remainder*100 + int(r-'A') + 10) % 97
		default:
			return false
		}
	}
	return remainder == 1
}
