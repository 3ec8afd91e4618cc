package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"payroll-cloud/internal/audit"
	"payroll-cloud/internal/auth"
	payrollapp "payroll-cloud/internal/payroll/application"
	payroll "payroll-cloud/internal/payroll/domain"
	payrollexport "payroll-cloud/internal/payroll/interfaces"
)

// PaymentsHandler provides payment history endpoints:
// GET/POST /api/v1/payments
// PUT /api/v1/payments/{id}/status
type PaymentsHandler struct {
	service     *payrollapp.Service
	auditLogger audit.Logger
}

// NewPaymentsHandler constructs a handler.
func NewPaymentsHandler(service *payrollapp.Service, auditLogger audit.Logger) (*PaymentsHandler, error) {
	if service == nil {
		return nil, errors.New("payments handler: nil service")
	}
	return &PaymentsHandler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes payment requests.
func (h *PaymentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/payments"), "/")

	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleRecord(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	if id, ok := strings.CutSuffix(rest, "/status"); ok && r.Method == http.MethodPut {
		h.handleStatus(w, r, id)
		return
	}
	w.WriteHeader(http.StatusMethodNotAllowed)
}

func (h *PaymentsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.ListPayments(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		respondError(w, err)
		return
	}
	if payments == nil {
		payments = []payroll.Payment{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payments)
}

func (h *PaymentsHandler) handleRecord(w http.ResponseWriter, r *http.Request) {
	var req payrollapp.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	payment, err := h.service.RecordPayment(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.logPayment(r, payment.ID, payment.Month)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(payment)
}

func (h *PaymentsHandler) handleStatus(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	payment, err := h.service.UpdatePaymentStatus(r.Context(), id, req.Status)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payment)
}

func (h *PaymentsHandler) logPayment(r *http.Request, paymentID, month string) {
	if h.auditLogger == nil {
		return
	}
	meta, _ := json.Marshal(map[string]any{"month": month})
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       audit.ActionPaymentRecord,
		ResourceType: "payment",
		ResourceID:   paymentID,
		Metadata:     meta,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

// PaymentsCSVHandler serves GET /api/v1/exports/payments.csv.
type PaymentsCSVHandler struct {
	service *payrollapp.Service
}

// NewPaymentsCSVHandler constructs a handler.
func NewPaymentsCSVHandler(service *payrollapp.Service) (*PaymentsCSVHandler, error) {
	if service == nil {
		return nil, errors.New("payments csv handler: nil service")
	}
	return &PaymentsCSVHandler{service: service}, nil
}

// ServeHTTP renders payment history as a CSV download.
func (h *PaymentsCSVHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	payments, err := h.service.ListPayments(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		respondError(w, err)
		return
	}
	payload, err := payrollexport.BuildPaymentsCSV(payments)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="payments.csv"`)
	_, _ = w.Write(payload)
}
