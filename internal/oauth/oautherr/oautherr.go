// Package oautherr carries protocol errors as values rather than as
// panics or bare Go errors, so that service-layer code returns a result
// an endpoint can translate to HTTP at a single point.
package oautherr

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes per RFC 6749 section 5.2, restricted to the set this server
// recognizes.
const (
	InvalidRequest       = "invalid_request"
	InvalidClient        = "invalid_client"
	InvalidGrant         = "invalid_grant"
	UnauthorizedClient   = "unauthorized_client"
	UnsupportedGrantType = "unsupported_grant_type"
	InvalidScope         = "invalid_scope"
	AccessDenied         = "access_denied"
	ServerError          = "server_error"
)

// Error is a protocol error: an HTTP status paired with an OAuth2 error
// code and description. Service-layer functions return *Error instead of
// writing HTTP responses directly; the http package is the single point
// that translates one to a response.
type Error struct {
	Status      int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteJSON writes the error body to w with its associated status.
func (e *Error) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(e)
}

// New builds an *Error with the given status, code and description.
func New(status int, code, description string) *Error {
	return &Error{Status: status, Code: code, Description: description}
}

func InvalidRequestf(format string, args ...any) *Error {
	return New(http.StatusBadRequest, InvalidRequest, fmt.Sprintf(format, args...))
}

func InvalidClientf(format string, args ...any) *Error {
	return New(http.StatusUnauthorized, InvalidClient, fmt.Sprintf(format, args...))
}

func InvalidGrantf(format string, args ...any) *Error {
	return New(http.StatusBadRequest, InvalidGrant, fmt.Sprintf(format, args...))
}

func UnauthorizedClientf(format string, args ...any) *Error {
	return New(http.StatusBadRequest, UnauthorizedClient, fmt.Sprintf(format, args...))
}

func UnsupportedGrantTypef(format string, args ...any) *Error {
	return New(http.StatusBadRequest, UnsupportedGrantType, fmt.Sprintf(format, args...))
}

func InvalidScopef(format string, args ...any) *Error {
	return New(http.StatusBadRequest, InvalidScope, fmt.Sprintf(format, args...))
}

func AccessDeniedf(format string, args ...any) *Error {
	return New(http.StatusForbidden, AccessDenied, fmt.Sprintf(format, args...))
}

// ServerErrorf produces the caller-facing server_error body. The caller is
// responsible for logging cause; it is never included in the response.
func ServerErrorf(format string, args ...any) *Error {
	return New(http.StatusBadRequest, ServerError, fmt.Sprintf(format, args...))
}
