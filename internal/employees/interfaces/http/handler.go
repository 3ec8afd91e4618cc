package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"payroll-cloud/internal/audit"
	"payroll-cloud/internal/auth"
	employeesapp "payroll-cloud/internal/employees/application"
	employees "payroll-cloud/internal/employees/domain"
)

// Handler provides employee HTTP endpoints under /api/v1/employees.
type Handler struct {
	service     *employeesapp.Service
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *employeesapp.Service, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("employees handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes collection and item requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/employees"), "/")

	switch {
	case id == "" && r.Method == http.MethodGet:
		h.handleList(w, r)
	case id == "" && r.Method == http.MethodPost:
		h.handleCreate(w, r)
	case id != "" && r.Method == http.MethodGet:
		h.handleGet(w, r, id)
	case id != "" && r.Method == http.MethodPut:
		h.handleUpdate(w, r, id)
	case id != "" && r.Method == http.MethodDelete:
		h.handleDelete(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []employees.Employee{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	// Non-admins may only read their own record.
	if !auth.IsAdmin(r.Context()) && auth.EmployeeIDFromContext(r.Context()) != id {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	emp, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	emp, err := h.service.Create(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	h.logAudit(r, audit.ActionEmployeeCreate, emp.ID)
	writeJSON(w, http.StatusCreated, emp)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	emp, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	h.logAudit(r, audit.ActionEmployeeUpdate, id)
	writeJSON(w, http.StatusOK, emp)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	h.logAudit(r, audit.ActionEmployeeDelete, id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logAudit(r *http.Request, action, employeeID string) {
	if h.auditLogger == nil {
		return
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "employee",
		ResourceID:   employeeID,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (employeesapp.CreateRequest, bool) {
	var req employeesapp.CreateRequest
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body error", http.StatusBadRequest)
		return req, false
	}
	defer r.Body.Close()
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, employees.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, employees.ErrDuplicateEmail):
		http.Error(w, "email already registered", http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
