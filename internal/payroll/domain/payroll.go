package payroll

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Payment states.
const (
	PaymentPaid   = "paid"
	PaymentUnpaid = "unpaid"
)

// Sentinel errors for the payroll context.
var (
	ErrPaymentNotFound = errors.New("payment: not found")
	ErrBadMonth        = errors.New("payroll: month must be YYYY-MM")
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidMonth reports whether the value is a YYYY-MM month key.
func ValidMonth(month string) bool {
	return monthPattern.MatchString(month)
}

// PayrollLine is one employee's aggregated pay for a month.
type PayrollLine struct {
	EmployeeID   string          `json:"employeeId"`
	EmployeeName string          `json:"employeeName"`
	Month        string          `json:"month"`
	TotalHours   decimal.Decimal `json:"totalHours"`
	HourlyRate   decimal.Decimal `json:"hourlyRate"`
	TotalPay     decimal.Decimal `json:"totalPay"`
	IBAN         string          `json:"-"`
	Payable      bool            `json:"payable"`
}

// Payment is a recorded salary payout.
type Payment struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employeeId"`
	EmployeeName string          `json:"employeeName"`
	Month        string          `json:"month"`
	TotalHours   decimal.Decimal `json:"totalHours"`
	TotalPay     decimal.Decimal `json:"totalPay"`
	RatePerHour  decimal.Decimal `json:"ratePerHour"`
	Status       string          `json:"status"`
	DatePaid     *time.Time      `json:"datePaid,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Validate checks payment invariants.
func (p Payment) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("payment: empty id")
	}
	if strings.TrimSpace(p.EmployeeID) == "" {
		return errors.New("payment: empty employee id")
	}
	if !ValidMonth(p.Month) {
		return fmt.Errorf("%w, got %q", ErrBadMonth, p.Month)
	}
	if p.Status != PaymentPaid && p.Status != PaymentUnpaid {
		return fmt.Errorf("payment: unknown status %q", p.Status)
	}
	if p.TotalPay.IsNegative() {
		return errors.New("payment: negative total pay")
	}
	return nil
}

// PaymentRepository manages payment history persistence.
type PaymentRepository interface {
	List(ctx context.Context, month string) ([]Payment, error)
	Get(ctx context.Context, id string) (*Payment, error)
	Save(ctx context.Context, payment *Payment) error
}
