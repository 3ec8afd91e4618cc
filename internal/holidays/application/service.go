package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"payroll-cloud/internal/auth"
	holidays "payroll-cloud/internal/holidays/domain"
	"payroll-cloud/internal/observability/metrics"
)

// Notifier pushes a message to the notification feed. Decisions must
// not fail because the feed is down, so errors are surfaced to the
// caller as a log concern only.
type Notifier interface {
	Notify(ctx context.Context, text, kind string) error
}

// CreateRequest represents a holiday request payload.
type CreateRequest struct {
	EmployeeID   string `json:"employeeId"`
	EmployeeName string `json:"employeeName"`
	Type         string `json:"type"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Notes        string `json:"notes"`
}

// Service handles holiday requests and decisions.
type Service struct {
	repo     holidays.Repository
	notifier Notifier
}

// NewService constructs a holiday service. The notifier is optional.
func NewService(repo holidays.Repository, notifier Notifier) (*Service, error) {
	if repo == nil {
		return nil, errors.New("holidays: nil repo")
	}
	return &Service{repo: repo, notifier: notifier}, nil
}

// List returns requests visible to the caller.
func (s *Service) List(ctx context.Context, filter holidays.Filter) ([]holidays.Holiday, error) {
	if !auth.IsAdmin(ctx) {
		filter.EmployeeID = auth.EmployeeIDFromContext(ctx)
	}
	return s.repo.List(ctx, filter)
}

// Create stores a new pending request. Non-admins can only request
// for themselves.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*holidays.Holiday, error) {
	employeeID := req.EmployeeID
	if !auth.IsAdmin(ctx) {
		employeeID = auth.EmployeeIDFromContext(ctx)
	}
	now := time.Now().UTC()
	holiday := holidays.Holiday{
		ID:           "hol-" + uuid.NewString(),
		EmployeeID:   employeeID,
		EmployeeName: req.EmployeeName,
		Type:         req.Type,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Notes:        req.Notes,
		Approval:     holidays.ApprovalPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := holiday.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, &holiday); err != nil {
		return nil, err
	}
	return &holiday, nil
}

// Update edits a pending request. Non-admins can only touch their own.
func (s *Service) Update(ctx context.Context, id string, req CreateRequest) (*holidays.Holiday, error) {
	holiday, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.IsAdmin(ctx) && holiday.EmployeeID != auth.EmployeeIDFromContext(ctx) {
		return nil, auth.ErrForbidden
	}
	if holiday.Approval != holidays.ApprovalPending {
		return nil, holidays.ErrAlreadyDecided
	}

	if req.Type != "" {
		holiday.Type = req.Type
	}
	if req.StartDate != "" {
		holiday.StartDate = req.StartDate
	}
	if req.EndDate != "" {
		holiday.EndDate = req.EndDate
	}
	if req.Notes != "" {
		holiday.Notes = req.Notes
	}
	holiday.UpdatedAt = time.Now().UTC()

	if err := holiday.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, holiday); err != nil {
		return nil, err
	}
	return holiday, nil
}

// Decide approves or rejects a pending request and drops a note into
// the notification feed.
func (s *Service) Decide(ctx context.Context, id, decision string) (*holidays.Holiday, error) {
	if !holidays.ValidDecision(decision) {
		return nil, fmt.Errorf("%w: %q", holidays.ErrUnknownDecision, decision)
	}
	holiday, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if holiday.Approval != holidays.ApprovalPending {
		return nil, holidays.ErrAlreadyDecided
	}
	holiday.Approval = decision
	holiday.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, holiday); err != nil {
		return nil, err
	}
	metrics.IncHolidayDecision(decision)

	if s.notifier != nil {
		kind := "success"
		if decision == holidays.ApprovalRejected {
			kind = "warning"
		}
		name := holiday.EmployeeName
		if name == "" {
			name = holiday.EmployeeID
		}
		text := fmt.Sprintf("Holiday request of %s (%s to %s) was %s",
			name, holiday.StartDate, holiday.EndDate, decision)
		_ = s.notifier.Notify(ctx, text, kind)
	}
	return holiday, nil
}

func (s *Service) get(ctx context.Context, id string) (*holidays.Holiday, error) {
	if id == "" {
		return nil, errors.New("holidays: empty id")
	}
	holiday, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if holiday == nil {
		return nil, holidays.ErrNotFound
	}
	return holiday, nil
}
