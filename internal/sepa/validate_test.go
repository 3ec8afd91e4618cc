package sepa

import "testing"

func TestNormalizeIBAN(t *testing.T) {
	cases := map[string]string{
		"fi21 1234 5600 0007 85": "FI2112345600000785",
		" DE89370400440532013000": "DE89370400440532013000",
		"":                        "",
	}
	for in, want := range cases {
		if got := NormalizeIBAN(in); got != want {
			t.Errorf("NormalizeIBAN(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidIBAN(t *testing.T) {
	valid := []string{
		"FI2112345600000785",
		"fi21 1234 5600 0007 85",
		"DE89370400440532013000",
		"FI0000000000000000",
	}
	for _, iban := range valid {
		if !ValidIBAN(iban) {
			t.Errorf("ValidIBAN(%q) = false, want true", iban)
		}
	}

	invalid := []string{
		"",
		"00123456",
		"F12112345600000785",
		"FIAB12345600000785",
		"FI21123456000007851234567890123456789",
	}
	for _, iban := range invalid {
		if ValidIBAN(iban) {
			t.Errorf("ValidIBAN(%q) = true, want false", iban)
		}
	}
}

func TestValidChecksum(t *testing.T) {
	valid := []string{
		"FI2112345600000785",
		"DE89370400440532013000",
		"GB29NWBK60161331926819",
	}
	for _, iban := range valid {
		if !ValidChecksum(iban) {
			t.Errorf("ValidChecksum(%q) = false, want true", iban)
		}
	}

	// Structurally fine but the check digits do not clear mod 97.
	invalid := []string{
		"FI2112345600000786",
		"FI0000000000000000",
		"DE89370400440532013001",
	}
	for _, iban := range invalid {
		if ValidChecksum(iban) {
			t.Errorf("ValidChecksum(%q) = true, want false", iban)
		}
	}
}

func TestValidBIC(t *testing.T) {
	valid := []string{"NDEAFIHH", "ndeafihh", "OKOYFIHH", "DEUTDEFF500"}
	for _, bic := range valid {
		if !ValidBIC(bic) {
			t.Errorf("ValidBIC(%q) = false, want true", bic)
		}
	}

	invalid := []string{"", "NDEA", "NDEAFIHH12", "NDEAFIHH-XXX"}
	for _, bic := range invalid {
		if ValidBIC(bic) {
			t.Errorf("ValidBIC(%q) = true, want false", bic)
		}
	}
}

func TestValidIdentifier(t *testing.T) {
	if !ValidIdentifier("SAL-2025-11-1732500000") {
		t.Error("expected salary message id to be a valid identifier")
	}
	if ValidIdentifier("") {
		t.Error("empty identifier must be invalid")
	}
	if ValidIdentifier("id-with-<angle>") {
		t.Error("angle brackets are outside the identifier set")
	}
	if ValidIdentifier("0123456789012345678901234567890123456789") {
		t.Error("identifiers over 35 characters must be invalid")
	}
}
