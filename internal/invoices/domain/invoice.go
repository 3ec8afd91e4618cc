package invoices

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice states.
const (
	StatusUnpaid    = "unpaid"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

// Sentinel errors for the invoices context.
var (
	ErrNotFound = errors.New("invoice: not found")
)

const dateLayout = "2006-01-02"

// DueDays is the default payment term.
const DueDays = 14

// Item is one invoice line.
type Item struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	VAT         decimal.Decimal `json:"vat"`
	Total       decimal.Decimal `json:"total"`
}

// Validate checks line invariants.
func (i Item) Validate() error {
	if strings.TrimSpace(i.Description) == "" {
		return errors.New("invoice item: empty description")
	}
	if !i.Quantity.IsPositive() {
		return fmt.Errorf("invoice item: quantity must be positive, got %s", i.Quantity)
	}
	if i.Rate.IsNegative() {
		return errors.New("invoice item: negative rate")
	}
	if i.VAT.IsNegative() {
		return errors.New("invoice item: negative VAT")
	}
	return nil
}

// Amount is the line total including VAT.
func (i Item) Amount() decimal.Decimal {
	net := i.Quantity.Mul(i.Rate)
	return net.Add(net.Mul(i.VAT).Div(decimal.NewFromInt(100))).Round(2)
}

// Invoice is a billing document tied to an employee and month.
type Invoice struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoiceNumber"`
	EmployeeID    string          `json:"employeeId"`
	EmployeeName  string          `json:"employeeName"`
	Month         string          `json:"month,omitempty"`
	IssueDate     string          `json:"issueDate"`
	DueDate       string          `json:"dueDate"`
	Items         []Item          `json:"items"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Validate checks invoice invariants.
func (inv Invoice) Validate() error {
	if strings.TrimSpace(inv.ID) == "" {
		return errors.New("invoice: empty id")
	}
	if strings.TrimSpace(inv.InvoiceNumber) == "" {
		return errors.New("invoice: empty invoice number")
	}
	if strings.TrimSpace(inv.EmployeeID) == "" {
		return errors.New("invoice: empty employee id")
	}
	if _, err := time.Parse(dateLayout, inv.IssueDate); err != nil {
		return fmt.Errorf("invoice: issue date %q must be YYYY-MM-DD", inv.IssueDate)
	}
	if _, err := time.Parse(dateLayout, inv.DueDate); err != nil {
		return fmt.Errorf("invoice: due date %q must be YYYY-MM-DD", inv.DueDate)
	}
	if len(inv.Items) == 0 {
		return errors.New("invoice: no items")
	}
	for idx, item := range inv.Items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("invoice: item %d: %w", idx, err)
		}
	}
	switch inv.Status {
	case StatusUnpaid, StatusPaid, StatusCancelled:
	default:
		return fmt.Errorf("invoice: unknown status %q", inv.Status)
	}
	if inv.Total.IsNegative() {
		return errors.New("invoice: negative total")
	}
	return nil
}

// ValidStatus reports whether s is a known invoice state.
func ValidStatus(s string) bool {
	switch s {
	case StatusUnpaid, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// Number formats an invoice number, INV-2025-0001 style.
func Number(year, sequence int) string {
	return fmt.Sprintf("INV-%d-%04d", year, sequence)
}

// Filter narrows invoice queries.
type Filter struct {
	EmployeeID string
	Status     string
}

// Repository manages invoice persistence.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Invoice, error)
	Get(ctx context.Context, id string) (*Invoice, error)
	Save(ctx context.Context, invoice *Invoice) error
	// NextSequence allocates the next per-year invoice counter.
	NextSequence(ctx context.Context, year int) (int, error)
}
