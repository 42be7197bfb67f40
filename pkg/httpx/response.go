package httpx

import (
	"encoding/json"
	"net/http"
)

// JSON writes v as JSON with the given status code. Content-Type and
// X-Content-Type-Options headers are set automatically. Encoding errors are
// silently discarded.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ErrorBody is the envelope of every failed API call.
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
} // @name ErrorBody

// MessageBody is the envelope of API calls that only report an outcome.
type MessageBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
} // @name MessageBody

// JSONError writes a {"success": false, "error": message} response.
func JSONError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// JSONErrorDetails is JSONError with an additional details string.
func JSONErrorDetails(w http.ResponseWriter, status int, message, details string) {
	JSON(w, status, ErrorBody{Error: message, Details: details})
}

// JSONMessage writes a {"success": true, "message": message} response.
func JSONMessage(w http.ResponseWriter, status int, message string) {
	JSON(w, status, MessageBody{Success: true, Message: message})
}

// SafeError returns the error message for client responses.
// In production (isProduction=true), internal server errors (5xx) are replaced
// with a generic message to avoid leaking implementation details.
func SafeError(err error, status int, isProduction bool) string {
	if isProduction && status >= http.StatusInternalServerError {
		return http.StatusText(status)
	}
	return err.Error()
}
