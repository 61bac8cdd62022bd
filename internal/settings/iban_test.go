package settings

import "testing"

func TestValidateIBAN(t *testing.T) {
	t.Parallel()

	valid := []string{
		"DE89370400440532013000",
		"de89 3704 0044 0532 0130 00",
		"GB82WEST12345698765432",
		"FR1420041010050500013M02606",
		"NL91ABNA0417164300",
	}
	for _, iban := range valid {
		if err := ValidateIBAN(iban); err != nil {
			t.Errorf("ValidateIBAN(%q) = %v, want nil", iban, err)
		}
	}

	invalid := []struct {
		name string
		iban string
	}{
		{"bad checksum", "DE89370400440532013001"},
		{"too short", "DE8937040044"},
		{"too long", "DE893704004405320130000000000000000"},
		{"no country code", "1289370400440532013000"},
		{"illegal characters", "DE89-3704-0044-0532-0130-00"},
		{"empty", ""},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateIBAN(tc.iban); err == nil {
				t.Errorf("ValidateIBAN(%q) = nil, want error", tc.iban)
			}
		})
	}
}

func TestNormalizeIBAN(t *testing.T) {
	t.Parallel()

	got := NormalizeIBAN(" de89 3704 0044 0532 0130 00 ")
	if got != "DE89370400440532013000" {
		t.Fatalf("NormalizeIBAN = %q", got)
	}
}
