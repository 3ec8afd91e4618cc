package workrecords

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Work record approval states.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Sentinel errors for the workrecords context.
var (
	ErrNotFound          = errors.New("work record: not found")
	ErrInvalidTransition = errors.New("work record: invalid status transition")
)

const dateLayout = "2006-01-02"

// WorkRecord is one day of reported hours.
type WorkRecord struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employeeId"`
	EmployeeName string          `json:"employeeName,omitempty"`
	Date         string          `json:"date"`
	StartTime    string          `json:"startTime,omitempty"`
	EndTime      string          `json:"endTime,omitempty"`
	Hours        decimal.Decimal `json:"hours"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Validate checks record invariants.
func (w WorkRecord) Validate() error {
	if strings.TrimSpace(w.ID) == "" {
		return errors.New("work record: empty id")
	}
	if strings.TrimSpace(w.EmployeeID) == "" {
		return errors.New("work record: empty employee id")
	}
	if _, err := time.Parse(dateLayout, w.Date); err != nil {
		return fmt.Errorf("work record: date %q must be YYYY-MM-DD", w.Date)
	}
	if !w.Hours.IsPositive() {
		return fmt.Errorf("work record: hours must be positive, got %s", w.Hours)
	}
	if w.Hours.GreaterThan(decimal.NewFromInt(24)) {
		return fmt.Errorf("work record: hours %s exceed one day", w.Hours)
	}
	if !ValidStatus(w.Status) {
		return fmt.Errorf("work record: unknown status %q", w.Status)
	}
	return nil
}

// Month returns the YYYY-MM prefix of the record date.
func (w WorkRecord) Month() string {
	if len(w.Date) < 7 {
		return ""
	}
	return w.Date[:7]
}

// ValidStatus reports whether s is a known approval state.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanTransition reports whether a record may move between states.
// Only pending records can be decided.
func CanTransition(from, to string) bool {
	if from != StatusPending {
		return false
	}
	return to == StatusApproved || to == StatusRejected
}

// Filter narrows record queries.
type Filter struct {
	EmployeeID string
	Date       string
	Month      string
	Status     string
}

// Repository manages work record persistence.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]WorkRecord, error)
	Get(ctx context.Context, id string) (*WorkRecord, error)
	Save(ctx context.Context, record *WorkRecord) error
	Delete(ctx context.Context, id string) error
}
