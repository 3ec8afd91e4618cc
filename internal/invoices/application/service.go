package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"payroll-cloud/internal/auth"
	invoices "payroll-cloud/internal/invoices/domain"
)

// CreateRequest represents an invoice create payload.
type CreateRequest struct {
	EmployeeID   string          `json:"employeeId"`
	EmployeeName string          `json:"employeeName"`
	Month        string          `json:"month"`
	IssueDate    string          `json:"issueDate"`
	DueDate      string          `json:"dueDate"`
	Items        []invoices.Item `json:"items"`
	Notes        string          `json:"notes"`
}

// Service handles invoice lifecycle.
type Service struct {
	repo invoices.Repository
}

// NewService constructs an invoice service.
func NewService(repo invoices.Repository) (*Service, error) {
	if repo == nil {
		return nil, errors.New("invoices: nil repo")
	}
	return &Service{repo: repo}, nil
}

// List returns invoices visible to the caller.
func (s *Service) List(ctx context.Context, filter invoices.Filter) ([]invoices.Invoice, error) {
	if !auth.IsAdmin(ctx) {
		filter.EmployeeID = auth.EmployeeIDFromContext(ctx)
	}
	return s.repo.List(ctx, filter)
}

// Get returns one invoice, restricted to the owner for non-admins.
func (s *Service) Get(ctx context.Context, id string) (*invoices.Invoice, error) {
	if id == "" {
		return nil, errors.New("invoices: empty id")
	}
	invoice, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, invoices.ErrNotFound
	}
	if !auth.IsAdmin(ctx) && invoice.EmployeeID != auth.EmployeeIDFromContext(ctx) {
		return nil, auth.ErrForbidden
	}
	return invoice, nil
}

// Create issues a new invoice with an auto-generated number, item
// totals recomputed server side and a 14-day due date default.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*invoices.Invoice, error) {
	now := time.Now().UTC()

	issueDate := req.IssueDate
	if issueDate == "" {
		issueDate = now.Format("2006-01-02")
	}
	dueDate := req.DueDate
	if dueDate == "" {
		issued, err := time.Parse("2006-01-02", issueDate)
		if err != nil {
			return nil, fmt.Errorf("invoice: issue date %q must be YYYY-MM-DD", issueDate)
		}
		dueDate = issued.AddDate(0, 0, invoices.DueDays).Format("2006-01-02")
	}

	total := decimal.Zero
	items := make([]invoices.Item, 0, len(req.Items))
	for _, item := range req.Items {
		item.Total = item.Amount()
		total = total.Add(item.Total)
		items = append(items, item)
	}

	sequence, err := s.repo.NextSequence(ctx, now.Year())
	if err != nil {
		return nil, err
	}

	invoice := invoices.Invoice{
		ID:            "inv-" + uuid.NewString(),
		InvoiceNumber: invoices.Number(now.Year(), sequence),
		EmployeeID:    req.EmployeeID,
		EmployeeName:  req.EmployeeName,
		Month:         req.Month,
		IssueDate:     issueDate,
		DueDate:       dueDate,
		Items:         items,
		Total:         total,
		Status:        invoices.StatusUnpaid,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := invoice.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// UpdateStatus moves an invoice between unpaid, paid and cancelled.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*invoices.Invoice, error) {
	if !invoices.ValidStatus(status) {
		return nil, fmt.Errorf("invoice: unknown status %q", status)
	}
	invoice, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, invoices.ErrNotFound
	}
	invoice.Status = status
	invoice.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}
