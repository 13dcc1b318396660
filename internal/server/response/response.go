// Package response provides standardized HTTP response structures and helpers
// for the lookup server. All API responses follow a consistent format with a
// data field for successful responses and an error field for failures.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/agentstation/kepmap/pkg/errors"
)

// Response represents the standardized API response structure.
type Response struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
}

// Error represents an API error with code, message, and optional details.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Success creates a successful response with data.
func Success(data any) Response {
	return Response{Data: data}
}

// Fail creates an error response.
func Fail(code, message, details string) Response {
	return Response{
		Error: &Error{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encoding errors are ignored as headers are already sent (best effort)
	_ = json.NewEncoder(w).Encode(resp)
}

// OK writes a successful response with 200 status.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Success(data))
}

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusBadRequest, Fail("BAD_REQUEST", message, details))
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusNotFound, Fail("NOT_FOUND", message, details))
}

// MethodNotAllowed writes a 405 error response.
func MethodNotAllowed(w http.ResponseWriter, method string) {
	JSON(w, http.StatusMethodNotAllowed, Fail(
		"METHOD_NOT_ALLOWED",
		"Method not allowed",
		"Method "+method+" is not supported for this endpoint",
	))
}

// RateLimited writes a 429 error response.
func RateLimited(w http.ResponseWriter, message string) {
	JSON(w, http.StatusTooManyRequests, Fail("RATE_LIMITED", "Rate limit exceeded", message))
}

// InternalError writes a 500 error response without exposing err.
func InternalError(w http.ResponseWriter, _ error) {
	JSON(w, http.StatusInternalServerError, Fail(
		"INTERNAL_ERROR",
		"Internal server error",
		"An unexpected error occurred",
	))
}

// ServiceUnavailable writes a 503 error response.
func ServiceUnavailable(w http.ResponseWriter, message string) {
	JSON(w, http.StatusServiceUnavailable, Fail("SERVICE_UNAVAILABLE", "Service unavailable", message))
}

// Status returns the HTTP status an error maps to.
func Status(err error) int {
	switch {
	case errors.IsInvalidIdentifier(err) && !errors.IsUnknownIdentifier(err),
		errors.IsValidationError(err):
		return http.StatusBadRequest
	case errors.IsUnknownIdentifier(err), errors.IsPropertyNotFound(err):
		return http.StatusNotFound
	case errors.IsCatalogUnavailable(err), errors.IsTimeout(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorFromType maps typed errors to HTTP responses. Lookup misses are 404,
// malformed input is 400 and an unreachable archive is 503.
func ErrorFromType(w http.ResponseWriter, err error) {
	switch Status(err) {
	case http.StatusBadRequest:
		JSON(w, http.StatusBadRequest, Fail("INVALID_INPUT", err.Error(), ""))
	case http.StatusNotFound:
		code := "UNKNOWN_IDENTIFIER"
		if errors.IsPropertyNotFound(err) {
			code = "PROPERTY_NOT_FOUND"
		}
		JSON(w, http.StatusNotFound, Fail(code, err.Error(), ""))
	case http.StatusServiceUnavailable:
		JSON(w, http.StatusServiceUnavailable, Fail("CATALOG_UNAVAILABLE", "Catalog unavailable", err.Error()))
	default:
		InternalError(w, err)
	}
}
