package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"payroll-cloud/internal/audit"
	"payroll-cloud/internal/auth"
	invoicesapp "payroll-cloud/internal/invoices/application"
	invoices "payroll-cloud/internal/invoices/domain"
	invoicespdf "payroll-cloud/internal/invoices/interfaces"
	"payroll-cloud/internal/observability/metrics"
)

// Handler provides invoice HTTP endpoints under /api/v1/invoices.
type Handler struct {
	service     *invoicesapp.Service
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *invoicesapp.Service, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("invoices handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes collection, item, status and PDF requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/invoices"), "/")

	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	if id, ok := strings.CutSuffix(rest, "/status"); ok {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleStatus(w, r, id)
		return
	}
	if id, ok := strings.CutSuffix(rest, "/pdf"); ok {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handlePDF(w, r, id)
		return
	}

	if r.Method == http.MethodGet {
		h.handleGet(w, r, rest)
		return
	}
	w.WriteHeader(http.StatusMethodNotAllowed)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := invoices.Filter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		Status:     r.URL.Query().Get("status"),
	}
	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []invoices.Invoice{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	invoice, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req invoicesapp.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	invoice, err := h.service.Create(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	h.logAudit(r, audit.ActionInvoiceCreate, invoice.ID, invoice.InvoiceNumber)
	writeJSON(w, http.StatusCreated, invoice)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	invoice, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondError(w, err)
		return
	}
	h.logAudit(r, audit.ActionInvoiceStatus, id, req.Status)
	writeJSON(w, http.StatusOK, invoice)
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request, id string) {
	invoice, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	start := time.Now()
	payload, err := invoicespdf.BuildInvoicePDF(invoice)
	outcome := metrics.ResultSuccess
	if err != nil {
		outcome = metrics.ResultError
	}
	metrics.ObserveInvoicePDF(outcome, time.Since(start))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+invoice.InvoiceNumber+`.pdf"`)
	_, _ = w.Write(payload)
}

func (h *Handler) logAudit(r *http.Request, action, invoiceID, detail string) {
	if h.auditLogger == nil {
		return
	}
	meta, _ := json.Marshal(map[string]any{"detail": detail})
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "invoice",
		ResourceID:   invoiceID,
		Metadata:     meta,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, invoices.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, auth.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
