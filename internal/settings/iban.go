package settings

import (
	"strings"

	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
)

// NormalizeIBAN strips spaces and uppercases the value.
func NormalizeIBAN(value string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(value), " ", ""))
}

// ValidateIBAN runs the ISO 13616 mod-97 check on a normalized IBAN.
func ValidateIBAN(value string) error {
	iban := NormalizeIBAN(value)
	if len(iban) < 15 || len(iban) > 34 {
		return pkgerrors.New(pkgerrors.CodeValidation, "iban length must be between 15 and 34 characters")
	}
	for _, r := range iban {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return pkgerrors.New(pkgerrors.CodeValidation, "iban contains invalid characters")
		}
	}
	if iban[0] < 'A' || iban[0] > 'Z' || iban[1] < 'A' || iban[1] > 'Z' {
		return pkgerrors.New(pkgerrors.CodeValidation, "iban must start with a country code")
	}

	// move the country code and check digits to the end, map letters to
	// numbers (A=10..Z=35) and reduce mod 97 as we go
	rearranged := iban[4:] + iban[:4]
	remainder := 0
	for _, r := range rearranged {
		if r >= 'A' && r <= 'Z' {
			value := int(r-'A') + 10
			remainder = (remainder*100 + value) % 97
		} else {
			remainder = (remainder*10 + int(r-'0')) % 97
		}
	}
	if remainder != 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "iban checksum is invalid")
	}
	return nil
}
