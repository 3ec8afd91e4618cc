package application

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"payroll-cloud/internal/sepa"
)

type profileFile struct {
	Name string `yaml:"name"`
	IBAN string `yaml:"iban"`
	BIC  string `yaml:"bic"`
}

// LoadDebtorProfile loads the paying company's profile from an
// optional YAML file, then applies COMPANY_NAME/COMPANY_IBAN/
// COMPANY_BIC env overrides. The result is validated so that a
// misconfigured profile fails at startup rather than on the first
// export.
func LoadDebtorProfile(path string) (sepa.DebtorProfile, error) {
	var file profileFile
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return sepa.DebtorProfile{}, fmt.Errorf("debtor profile: %w", err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return sepa.DebtorProfile{}, fmt.Errorf("debtor profile: %w", err)
		}
	}

	profile := sepa.DebtorProfile{
		Name: override("COMPANY_NAME", file.Name),
		IBAN: sepa.NormalizeIBAN(override("COMPANY_IBAN", file.IBAN)),
		BIC:  sepa.NormalizeBIC(override("COMPANY_BIC", file.BIC)),
	}

	if profile.Name == "" {
		return profile, fmt.Errorf("debtor profile: company name required")
	}
	if !sepa.ValidIBAN(profile.IBAN) {
		return profile, fmt.Errorf("debtor profile: malformed IBAN %q", profile.IBAN)
	}
	if !sepa.ValidBIC(profile.BIC) {
		return profile, fmt.Errorf("debtor profile: malformed BIC %q", profile.BIC)
	}
	return profile, nil
}

func override(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
