package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"payroll-cloud/internal/auth"
	employeesapp "payroll-cloud/internal/employees/application"
	employees "payroll-cloud/internal/employees/domain"
)

type stubRepo struct {
	byID map[string]employees.Employee
}

func newStubRepo(list ...employees.Employee) *stubRepo {
	repo := &stubRepo{byID: make(map[string]employees.Employee)}
	for _, emp := range list {
		repo.byID[emp.ID] = emp
	}
	return repo
}

func (s *stubRepo) List(ctx context.Context) ([]employees.Employee, error) {
	var out []employees.Employee
	for _, emp := range s.byID {
		out = append(out, emp)
	}
	return out, nil
}

func (s *stubRepo) Get(ctx context.Context, id string) (*employees.Employee, error) {
	emp, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &emp, nil
}

func (s *stubRepo) Save(ctx context.Context, emp *employees.Employee, passwordHash string) error {
	s.byID[emp.ID] = *emp
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, id string) error {
	if _, ok := s.byID[id]; !ok {
		return employees.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func newTestHandler(t *testing.T, repo employees.Repository) *Handler {
	t.Helper()
	service, err := employeesapp.NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler, err := NewHandler(service, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler
}

func adminContext(r *http.Request) *http.Request {
	ctx := auth.WithIdentity(r.Context(), "EMP900", auth.RoleAdmin, "EMP900")
	return r.WithContext(ctx)
}

func TestCreateEmployee(t *testing.T) {
	repo := newStubRepo()
	handler := newTestHandler(t, repo)

	body := `{"name":"Alice Virtanen","email":"alice@example.com","role":"employee","bank":{"iban":"FI2112345600000785","bic":"NDEAFIHH"},"employment":{"hourlyRate":"18.5"}}`
	req := adminContext(httptest.NewRequest(http.MethodPost, "/api/v1/employees", strings.NewReader(body)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created employees.Employee
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated employee id")
	}
	if _, ok := repo.byID[created.ID]; !ok {
		t.Fatal("employee not persisted")
	}
}

func TestCreateEmployeeRejectsBadIBAN(t *testing.T) {
	handler := newTestHandler(t, newStubRepo())

	body := `{"name":"Bob","email":"bob@example.com","bank":{"iban":"FI2112345600000786"}}`
	req := adminContext(httptest.NewRequest(http.MethodPost, "/api/v1/employees", strings.NewReader(body)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestGetEmployeeSelfOnly(t *testing.T) {
	emp := employees.Employee{ID: "EMP001", Name: "Alice", Email: "alice@example.com", Role: "employee", Active: true}
	handler := newTestHandler(t, newStubRepo(emp))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/employees/EMP001", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), "EMP001", auth.RoleEmployee, "EMP001"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for own record, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/employees/EMP001", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), "EMP002", auth.RoleEmployee, "EMP002"))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for other record, got %d", resp.Code)
	}
}

func TestGetEmployeeNotFound(t *testing.T) {
	handler := newTestHandler(t, newStubRepo())

	req := adminContext(httptest.NewRequest(http.MethodGet, "/api/v1/employees/EMP404", nil))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestDeleteEmployee(t *testing.T) {
	emp := employees.Employee{ID: "EMP001", Name: "Alice", Email: "alice@example.com", Role: "employee"}
	repo := newStubRepo(emp)
	handler := newTestHandler(t, repo)

	req := adminContext(httptest.NewRequest(http.MethodDelete, "/api/v1/employees/EMP001", nil))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if _, ok := repo.byID["EMP001"]; ok {
		t.Fatal("employee still present after delete")
	}
}
