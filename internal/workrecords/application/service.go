package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"payroll-cloud/internal/auth"
	"payroll-cloud/internal/observability/metrics"
	workrecords "payroll-cloud/internal/workrecords/domain"
)

// CreateRequest represents a work record create/update payload.
type CreateRequest struct {
	EmployeeID   string          `json:"employeeId"`
	EmployeeName string          `json:"employeeName"`
	Date         string          `json:"date"`
	StartTime    string          `json:"startTime"`
	EndTime      string          `json:"endTime"`
	Hours        decimal.Decimal `json:"hours"`
}

// Service handles work record lifecycle and approvals.
type Service struct {
	repo workrecords.Repository
}

// NewService constructs a work record service.
func NewService(repo workrecords.Repository) (*Service, error) {
	if repo == nil {
		return nil, errors.New("workrecords: nil repo")
	}
	return &Service{repo: repo}, nil
}

// List returns records visible to the caller. Non-admins only see
// their own records regardless of the requested filter.
func (s *Service) List(ctx context.Context, filter workrecords.Filter) ([]workrecords.WorkRecord, error) {
	if !auth.IsAdmin(ctx) {
		filter.EmployeeID = auth.EmployeeIDFromContext(ctx)
	}
	return s.repo.List(ctx, filter)
}

// Create stores a new pending record. Non-admins can only report
// their own hours.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*workrecords.WorkRecord, error) {
	employeeID := req.EmployeeID
	if !auth.IsAdmin(ctx) {
		employeeID = auth.EmployeeIDFromContext(ctx)
	}
	now := time.Now().UTC()
	record := workrecords.WorkRecord{
		ID:           "wr-" + uuid.NewString(),
		EmployeeID:   employeeID,
		EmployeeName: req.EmployeeName,
		Date:         req.Date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Hours:        req.Hours,
		Status:       workrecords.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Update edits an existing record. Non-admins can only touch their
// own records, and only while still pending.
func (s *Service) Update(ctx context.Context, id string, req CreateRequest) (*workrecords.WorkRecord, error) {
	record, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.IsAdmin(ctx) {
		if record.EmployeeID != auth.EmployeeIDFromContext(ctx) {
			return nil, auth.ErrForbidden
		}
		if record.Status != workrecords.StatusPending {
			return nil, fmt.Errorf("work record: cannot edit %s record", record.Status)
		}
	}

	if req.Date != "" {
		record.Date = req.Date
	}
	if req.StartTime != "" {
		record.StartTime = req.StartTime
	}
	if req.EndTime != "" {
		record.EndTime = req.EndTime
	}
	if req.Hours.IsPositive() {
		record.Hours = req.Hours
	}
	record.UpdatedAt = time.Now().UTC()

	if err := record.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Decide approves or rejects a pending record.
func (s *Service) Decide(ctx context.Context, id, status string) (*workrecords.WorkRecord, error) {
	if !workrecords.ValidStatus(status) {
		return nil, fmt.Errorf("work record: unknown status %q", status)
	}
	record, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !workrecords.CanTransition(record.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", workrecords.ErrInvalidTransition, record.Status, status)
	}
	record.Status = status
	record.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, record); err != nil {
		return nil, err
	}
	metrics.IncWorkRecordDecision(status)
	return record, nil
}

// Delete removes a record. Non-admins can only delete their own
// records while not yet approved.
func (s *Service) Delete(ctx context.Context, id string) error {
	record, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !auth.IsAdmin(ctx) {
		if record.EmployeeID != auth.EmployeeIDFromContext(ctx) {
			return auth.ErrForbidden
		}
		if record.Status == workrecords.StatusApproved {
			return auth.ErrForbidden
		}
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) get(ctx context.Context, id string) (*workrecords.WorkRecord, error) {
	if id == "" {
		return nil, errors.New("workrecords: empty id")
	}
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, workrecords.ErrNotFound
	}
	return record, nil
}
