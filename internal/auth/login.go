package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = time.Hour

// Credential is the subset of an employee record needed to log in.
type Credential struct {
	EmployeeID   string
	Name         string
	Email        string
	Role         string
	PasswordHash string
}

// CredentialSource looks up login credentials by email.
type CredentialSource interface {
	CredentialByEmail(ctx context.Context, email string) (*Credential, error)
}

// LoginHandler issues JWTs for valid email/password pairs.
type LoginHandler struct {
	source CredentialSource
	secret []byte
	ttl    time.Duration
	logger *log.Logger
}

// NewLoginHandler constructs a login handler.
func NewLoginHandler(source CredentialSource, secret []byte, logger *log.Logger) (*LoginHandler, error) {
	if source == nil {
		return nil, errors.New("login handler: nil credential source")
	}
	if len(secret) == 0 {
		return nil, errors.New("login handler: empty secret")
	}
	return &LoginHandler{source: source, secret: secret, ttl: defaultTokenTTL, logger: logger}, nil
}

// ServeHTTP handles POST /api/v1/auth/login.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password required", http.StatusBadRequest)
		return
	}

	cred, err := h.source.CredentialByEmail(r.Context(), req.Email)
	if err != nil || cred == nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.Password)) != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	role, ok := NormalizeRole(cred.Role)
	if !ok {
		role = RoleEmployee
	}

	token, err := IssueJWT(h.secret, cred.EmployeeID, cred.Name, role, h.ttl)
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("login: issue token: %v", err)
		}
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"token": token,
		"user": map[string]string{
			"employee_id": cred.EmployeeID,
			"name":        cred.Name,
			"email":       cred.Email,
			"role":        string(role),
		},
	})
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
