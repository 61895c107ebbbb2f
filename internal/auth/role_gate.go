package auth

import "net/http"

// DefaultRoleHeader is the header the browser client attaches to every
// outgoing request.
const DefaultRoleHeader = "UserRole"

// RoleSource answers "what role is the caller asserting" for a request.
// The header strategy below takes the claim verbatim with no cryptographic
// binding, so any caller can assert any role. That is the existing client
// contract, kept deliberately; the trust decision lives behind this interface
// so a verified strategy (e.g. signed tokens) can replace it later without
// touching the allowed-roles matching.
type RoleSource interface {
	Role(r *http.Request) string
}

// HeaderRoleSource reads the asserted role from a single request header.
type HeaderRoleSource struct {
	Header string
}

// NewHeaderRoleSource returns a HeaderRoleSource for the given header name,
// falling back to DefaultRoleHeader when empty.
func NewHeaderRoleSource(header string) HeaderRoleSource {
	if header == "" {
		header = DefaultRoleHeader
	}
	return HeaderRoleSource{Header: header}
}

func (s HeaderRoleSource) Role(r *http.Request) string {
	return r.Header.Get(s.Header)
}

// Authorized reports whether the asserted role may proceed: true iff role is
// non-empty and a member of allowed. Pure function of its inputs; no I/O, no
// state retained between calls.
func Authorized(role string, allowed []string) bool {
	if role == "" {
		return false
	}
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// RequireRole gates protected routes. On denial it responds 401 with a
// generic body, leaking nothing about which roles were expected, and the
// wrapped handler never runs.
func RequireRole(source RoleSource, allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !Authorized(source.Role(r), allowedRoles) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
