package auth

import (
	"net/http"
	"strings"
)

// Policy determines required roles by request.
type Policy struct {
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
}

// NewDefaultPolicy builds a default policy with exemptions.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	set := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{ExemptPaths: set, ExemptPrefixes: exemptPrefixes}
}

// IsExempt returns true when a request should skip auth/RBAC.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	if _, ok := p.ExemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

// RequiredRole resolves required role for the request. Handlers still
// narrow employee reads to the caller's own records.
func (p Policy) RequiredRole(r *http.Request) (Role, bool) {
	if r == nil {
		return "", false
	}
	path := r.URL.Path
	method := r.Method

	switch {
	case path == "/api/v1/payroll":
		return RoleAdmin, true
	case strings.HasPrefix(path, "/api/v1/payroll/export/"):
		return RoleAdmin, true
	case path == "/api/v1/payments":
		if method == http.MethodPost {
			return RoleAdmin, true
		}
		return RoleEmployee, true
	case strings.HasPrefix(path, "/api/v1/payments/"):
		return RoleAdmin, true
	case path == "/api/v1/exports/payments.csv":
		return RoleAdmin, true
	case path == "/api/v1/employees":
		return RoleAdmin, true
	case strings.HasPrefix(path, "/api/v1/employees/"):
		if method == http.MethodGet {
			return RoleEmployee, true
		}
		return RoleAdmin, true
	case path == "/api/v1/work-records":
		return RoleEmployee, true
	case strings.HasPrefix(path, "/api/v1/work-records/") && strings.HasSuffix(path, "/status"):
		return RoleAdmin, true
	case strings.HasPrefix(path, "/api/v1/work-records/"):
		return RoleEmployee, true
	case path == "/api/v1/holidays":
		return RoleEmployee, true
	case strings.HasPrefix(path, "/api/v1/holidays/") && strings.HasSuffix(path, "/decision"):
		return RoleAdmin, true
	case strings.HasPrefix(path, "/api/v1/holidays/"):
		return RoleEmployee, true
	case path == "/api/v1/invoices":
		if method == http.MethodPost {
			return RoleAdmin, true
		}
		return RoleEmployee, true
	case strings.HasPrefix(path, "/api/v1/invoices/") && strings.HasSuffix(path, "/status"):
		return RoleAdmin, true
	case strings.HasPrefix(path, "/api/v1/invoices/"):
		return RoleEmployee, true
	case strings.HasPrefix(path, "/api/v1/notifications"):
		return RoleEmployee, true
	}

	if strings.HasPrefix(path, "/api/") {
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
			return RoleEmployee, true
		}
		return RoleAdmin, true
	}
	return "", false
}
