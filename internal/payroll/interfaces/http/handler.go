package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"payroll-cloud/internal/audit"
	"payroll-cloud/internal/auth"
	"payroll-cloud/internal/observability/metrics"
	payrollapp "payroll-cloud/internal/payroll/application"
	payroll "payroll-cloud/internal/payroll/domain"
	payrollexport "payroll-cloud/internal/payroll/interfaces"
	"payroll-cloud/internal/sepa"
)

// Handler provides payroll summary and export endpoints:
// GET /api/v1/payroll?month=YYYY-MM
// GET /api/v1/payroll/export/sepa?month=YYYY-MM[&date=YYYY-MM-DD]
// GET /api/v1/payroll/export/xlsx?month=YYYY-MM
type Handler struct {
	service     *payrollapp.Service
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *payrollapp.Service, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("payroll handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes summary and export requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/payroll"), "/")
	switch rest {
	case "":
		h.handleSummary(w, r)
	case "export/sepa":
		h.handleSEPAExport(w, r)
	case "export/xlsx":
		h.handleXLSXExport(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	lines, err := h.service.MonthlySummary(r.Context(), month)
	if err != nil {
		respondError(w, err)
		return
	}
	if lines == nil {
		lines = []payroll.PayrollLine{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(lines)
}

func (h *Handler) handleSEPAExport(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")

	var executionDate time.Time
	if value := r.URL.Query().Get("date"); value != "" {
		parsed, err := time.Parse("2006-01-02", value)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		executionDate = parsed
	}

	result, err := h.service.BuildExport(r.Context(), month, executionDate)
	if err != nil {
		respondError(w, err)
		return
	}

	h.logExport(r, month, result)

	if len(result.Excluded) > 0 {
		ids := make([]string, 0, len(result.Excluded))
		for _, ex := range result.Excluded {
			ids = append(ids, ex.EmployeeID)
		}
		w.Header().Set("X-Payroll-Excluded", strings.Join(ids, ","))
	}
	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	_, _ = w.Write(result.XML)
}

func (h *Handler) handleXLSXExport(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	start := time.Now()
	lines, err := h.service.MonthlySummary(r.Context(), month)
	if err != nil {
		respondError(w, err)
		return
	}
	payload, err := payrollexport.BuildPayrollXLSX(month, lines)
	outcome := metrics.ResultSuccess
	if err != nil {
		outcome = metrics.ResultError
	}
	metrics.ObservePayrollExport("xlsx", outcome, time.Since(start))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="payroll_`+month+`.xlsx"`)
	_, _ = w.Write(payload)
}

func (h *Handler) logExport(r *http.Request, month string, result *payrollapp.ExportResult) {
	if h.auditLogger == nil {
		return
	}
	meta, _ := json.Marshal(map[string]any{
		"month":    month,
		"excluded": len(result.Excluded),
	})
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       audit.ActionPayrollExport,
		ResourceType: "sepa_export",
		ResourceID:   result.MessageID,
		Metadata:     meta,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, payroll.ErrBadMonth):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, payroll.ErrPaymentNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, sepa.ErrEmptyBatch):
		http.Error(w, "no payable employees for month", http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
