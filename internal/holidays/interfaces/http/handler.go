package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"payroll-cloud/internal/audit"
	"payroll-cloud/internal/auth"
	holidaysapp "payroll-cloud/internal/holidays/application"
	holidays "payroll-cloud/internal/holidays/domain"
)

// Handler provides holiday HTTP endpoints under /api/v1/holidays.
type Handler struct {
	service     *holidaysapp.Service
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *holidaysapp.Service, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("holidays handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes collection, item and decision requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/holidays"), "/")

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

	if id, ok := strings.CutSuffix(rest, "/decision"); ok {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleDecision(w, r, id)
		return
	}

	if r.Method == http.MethodPut {
		h.handleUpdate(w, r, rest)
		return
	}
	w.WriteHeader(http.StatusMethodNotAllowed)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := holidays.Filter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		Approval:   r.URL.Query().Get("approval"),
	}
	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []holidays.Holiday{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req holidaysapp.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	holiday, err := h.service.Create(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, holiday)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var req holidaysapp.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	holiday, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, holiday)
}

func (h *Handler) handleDecision(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Decision string `json:"decision"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	holiday, err := h.service.Decide(r.Context(), id, req.Decision)
	if err != nil {
		respondError(w, err)
		return
	}
	h.logDecision(r, id, req.Decision)
	writeJSON(w, http.StatusOK, holiday)
}

func (h *Handler) logDecision(r *http.Request, holidayID, decision string) {
	if h.auditLogger == nil {
		return
	}
	meta, _ := json.Marshal(map[string]any{"decision": decision})
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       audit.ActionHolidayDecision,
		ResourceType: "holiday",
		ResourceID:   holidayID,
		Metadata:     meta,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, holidays.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, holidays.ErrAlreadyDecided):
		http.Error(w, err.Error(), http.StatusConflict)
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
