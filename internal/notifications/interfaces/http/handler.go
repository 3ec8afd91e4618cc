package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	notificationsapp "payroll-cloud/internal/notifications/application"
	notifications "payroll-cloud/internal/notifications/domain"
)

// Handler provides notification feed endpoints under
// /api/v1/notifications.
type Handler struct {
	service *notificationsapp.Service
}

// NewHandler constructs a handler.
func NewHandler(service *notificationsapp.Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("notifications handler: nil service")
	}
	return &Handler{service: service}, nil
}

// ServeHTTP routes feed requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/notifications"), "/")

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

	if id, ok := strings.CutSuffix(rest, "/read"); ok && r.Method == http.MethodPut {
		h.handleMarkRead(w, r, id)
		return
	}
	if r.Method == http.MethodDelete {
		h.handleDelete(w, r, rest)
		return
	}
	w.WriteHeader(http.StatusMethodNotAllowed)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []notifications.Notification{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
		Kind string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, "notification text required", http.StatusBadRequest)
		return
	}
	if err := h.service.Notify(r.Context(), req.Text, req.Kind); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request, id string) {
	notification, err := h.service.MarkRead(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notification)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, notifications.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
