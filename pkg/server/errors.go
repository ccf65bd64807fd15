package server

import (
	"encoding/json"
	"net/http"

	"mercator-hq/urlcat/pkg/telemetry/logging"
)

// Error types reported in error responses.
const (
	ErrorTypeInvalidRequest = "invalid_request"
	ErrorTypeEvaluation     = "evaluation_error"
	ErrorTypeRules          = "rules_error"
	ErrorTypeUnavailable    = "unavailable"
	ErrorTypeRateLimited    = "rate_limited"
	ErrorTypeUnauthorized   = "unauthorized"
	ErrorTypeInternal       = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes an error response with the request ID of r.
func writeError(w http.ResponseWriter, r *http.Request, status int, errType, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Message:   message,
			Type:      errType,
			RequestID: logging.GetRequestID(r.Context()),
		},
	})
}

// writeJSON writes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already sent; encoding errors cannot be reported.
	_ = json.NewEncoder(w).Encode(v)
}
