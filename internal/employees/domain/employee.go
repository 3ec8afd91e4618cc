package employees

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"payroll-cloud/internal/sepa"
)

// Sentinel errors for the employees context.
var (
	ErrNotFound       = errors.New("employee: not found")
	ErrDuplicateEmail = errors.New("employee: duplicate email")
)

// BankInfo holds the payout account of an employee. IBAN and BIC may
// be empty while onboarding is incomplete; when present they must be
// structurally valid and the IBAN must clear mod-97.
type BankInfo struct {
	BankName string `json:"bankName,omitempty"`
	IBAN     string `json:"iban,omitempty"`
	BIC      string `json:"bic,omitempty"`
}

// EmploymentInfo holds contract details.
type EmploymentInfo struct {
	JobTitle   string          `json:"jobTitle,omitempty"`
	Contract   string          `json:"contract,omitempty"`
	HourlyRate decimal.Decimal `json:"hourlyRate"`
	StartDate  string          `json:"startDate,omitempty"`
}

// Employee is the personnel aggregate.
type Employee struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Phone      string         `json:"phone,omitempty"`
	Address    string         `json:"address,omitempty"`
	Role       string         `json:"role"`
	Bank       BankInfo       `json:"bank"`
	Employment EmploymentInfo `json:"employment"`
	Active     bool           `json:"active"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// Validate checks employee invariants. Bank details are optional but
// must be usable when set.
func (e Employee) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return errors.New("employee: empty id")
	}
	if strings.TrimSpace(e.Name) == "" {
		return errors.New("employee: empty name")
	}
	if strings.TrimSpace(e.Email) == "" {
		return errors.New("employee: empty email")
	}
	if !strings.Contains(e.Email, "@") {
		return fmt.Errorf("employee: malformed email %q", e.Email)
	}
	if e.Role != "admin" && e.Role != "employee" {
		return fmt.Errorf("employee: unknown role %q", e.Role)
	}
	if e.Employment.HourlyRate.IsNegative() {
		return errors.New("employee: negative hourly rate")
	}
	if e.Bank.IBAN != "" {
		iban := sepa.NormalizeIBAN(e.Bank.IBAN)
		if !sepa.ValidIBAN(iban) {
			return fmt.Errorf("employee: malformed IBAN %q", e.Bank.IBAN)
		}
		if !sepa.ValidChecksum(iban) {
			return fmt.Errorf("employee: IBAN checksum failed for %q", e.Bank.IBAN)
		}
	}
	if e.Bank.BIC != "" && !sepa.ValidBIC(sepa.NormalizeBIC(e.Bank.BIC)) {
		return fmt.Errorf("employee: malformed BIC %q", e.Bank.BIC)
	}
	return nil
}

// Payable reports whether the employee has bank details usable for a
// credit transfer.
func (e Employee) Payable() bool {
	if e.Bank.IBAN == "" {
		return false
	}
	iban := sepa.NormalizeIBAN(e.Bank.IBAN)
	return sepa.ValidIBAN(iban) && sepa.ValidChecksum(iban)
}

// Repository manages employee persistence.
type Repository interface {
	List(ctx context.Context) ([]Employee, error)
	Get(ctx context.Context, id string) (*Employee, error)
	Save(ctx context.Context, employee *Employee, passwordHash string) error
	Delete(ctx context.Context, id string) error
}
