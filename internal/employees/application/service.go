package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"payroll-cloud/internal/auth"
	employees "payroll-cloud/internal/employees/domain"
)

// CreateRequest represents an employee create/update payload.
type CreateRequest struct {
	ID         string                   `json:"id"`
	Name       string                   `json:"name"`
	Email      string                   `json:"email"`
	Phone      string                   `json:"phone"`
	Address    string                   `json:"address"`
	Role       string                   `json:"role"`
	Password   string                   `json:"password,omitempty"`
	Bank       employees.BankInfo       `json:"bank"`
	Employment employees.EmploymentInfo `json:"employment"`
	Active     *bool                    `json:"active,omitempty"`
}

// Service handles employee lifecycle.
type Service struct {
	repo employees.Repository
}

// NewService constructs an employee service.
func NewService(repo employees.Repository) (*Service, error) {
	if repo == nil {
		return nil, errors.New("employees: nil repo")
	}
	return &Service{repo: repo}, nil
}

// List returns all employees.
func (s *Service) List(ctx context.Context) ([]employees.Employee, error) {
	return s.repo.List(ctx)
}

// Get returns one employee.
func (s *Service) Get(ctx context.Context, id string) (*employees.Employee, error) {
	if id == "" {
		return nil, errors.New("employees: empty id")
	}
	emp, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, employees.ErrNotFound
	}
	return emp, nil
}

// Create registers a new employee. A missing id gets a generated one
// and a missing role defaults to employee.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*employees.Employee, error) {
	now := time.Now().UTC()
	emp := employees.Employee{
		ID:         strings.TrimSpace(req.ID),
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:      strings.TrimSpace(req.Phone),
		Address:    strings.TrimSpace(req.Address),
		Role:       req.Role,
		Bank:       req.Bank,
		Employment: req.Employment,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if emp.ID == "" {
		emp.ID = "emp-" + uuid.NewString()
	}
	if emp.Role == "" {
		emp.Role = string(auth.RoleEmployee)
	}
	if req.Active != nil {
		emp.Active = *req.Active
	}
	if err := emp.Validate(); err != nil {
		return nil, err
	}

	passwordHash := ""
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		passwordHash = hash
	}
	if err := s.repo.Save(ctx, &emp, passwordHash); err != nil {
		return nil, err
	}
	return &emp, nil
}

// Update applies a partial update to an existing employee.
func (s *Service) Update(ctx context.Context, id string, req CreateRequest) (*employees.Employee, error) {
	emp, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		emp.Name = strings.TrimSpace(req.Name)
	}
	if req.Email != "" {
		emp.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.Phone != "" {
		emp.Phone = strings.TrimSpace(req.Phone)
	}
	if req.Address != "" {
		emp.Address = strings.TrimSpace(req.Address)
	}
	if req.Role != "" {
		emp.Role = req.Role
	}
	if req.Bank.IBAN != "" || req.Bank.BIC != "" || req.Bank.BankName != "" {
		emp.Bank = req.Bank
	}
	if req.Employment.JobTitle != "" {
		emp.Employment.JobTitle = req.Employment.JobTitle
	}
	if req.Employment.Contract != "" {
		emp.Employment.Contract = req.Employment.Contract
	}
	if !req.Employment.HourlyRate.Equal(decimal.Zero) {
		emp.Employment.HourlyRate = req.Employment.HourlyRate
	}
	if req.Employment.StartDate != "" {
		emp.Employment.StartDate = req.Employment.StartDate
	}
	if req.Active != nil {
		emp.Active = *req.Active
	}
	emp.UpdatedAt = time.Now().UTC()

	if err := emp.Validate(); err != nil {
		return nil, err
	}

	passwordHash := ""
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		passwordHash = hash
	}
	if err := s.repo.Save(ctx, emp, passwordHash); err != nil {
		return nil, err
	}
	return emp, nil
}

// Delete removes an employee.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("employees: empty id")
	}
	return s.repo.Delete(ctx, id)
}
