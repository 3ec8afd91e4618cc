package holidays

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Approval states, kept in the title case the HR tooling expects.
const (
	ApprovalPending  = "Pending"
	ApprovalApproved = "Approved"
	ApprovalRejected = "Rejected"
)

// Sentinel errors for the holidays context.
var (
	ErrNotFound        = errors.New("holiday: not found")
	ErrAlreadyDecided  = errors.New("holiday: already decided")
	ErrUnknownDecision = errors.New("holiday: unknown decision")
)

const dateLayout = "2006-01-02"

// Holiday is one leave request.
type Holiday struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employeeId"`
	EmployeeName string    `json:"employeeName,omitempty"`
	Type         string    `json:"type,omitempty"`
	StartDate    string    `json:"startDate"`
	EndDate      string    `json:"endDate"`
	Notes        string    `json:"notes,omitempty"`
	Approval     string    `json:"approval"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Validate checks request invariants.
func (h Holiday) Validate() error {
	if strings.TrimSpace(h.ID) == "" {
		return errors.New("holiday: empty id")
	}
	if strings.TrimSpace(h.EmployeeID) == "" {
		return errors.New("holiday: empty employee id")
	}
	start, err := time.Parse(dateLayout, h.StartDate)
	if err != nil {
		return fmt.Errorf("holiday: start date %q must be YYYY-MM-DD", h.StartDate)
	}
	end, err := time.Parse(dateLayout, h.EndDate)
	if err != nil {
		return fmt.Errorf("holiday: end date %q must be YYYY-MM-DD", h.EndDate)
	}
	if end.Before(start) {
		return fmt.Errorf("holiday: end date %s before start date %s", h.EndDate, h.StartDate)
	}
	switch h.Approval {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
	default:
		return fmt.Errorf("holiday: unknown approval state %q", h.Approval)
	}
	return nil
}

// ValidDecision reports whether the value is a terminal approval state.
func ValidDecision(decision string) bool {
	return decision == ApprovalApproved || decision == ApprovalRejected
}

// Filter narrows holiday queries.
type Filter struct {
	EmployeeID string
	Approval   string
}

// Repository manages holiday persistence.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Holiday, error)
	Get(ctx context.Context, id string) (*Holiday, error)
	Save(ctx context.Context, holiday *Holiday) error
}
