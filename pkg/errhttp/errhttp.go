// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add an entry to mappings for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/contractflow/pkg/httpx"
	"github.com/ghuser/contractflow/pkg/logger"
	"github.com/ghuser/contractflow/pkg/telemetry"
	contractdomain "github.com/ghuser/contractflow/services/contract/domain"
	userdomain "github.com/ghuser/contractflow/services/user/domain"
)

type mapping struct {
	sentinel error
	status   int
}

// Order matters only when an error wraps more than one sentinel.
var mappings = []mapping{
	{contractdomain.ErrContractNotFound, http.StatusNotFound},
	{contractdomain.ErrDocumentNotFound, http.StatusNotFound},
	{userdomain.ErrUserNotFound, http.StatusNotFound},

	{contractdomain.ErrInvalidContract, http.StatusBadRequest},
	{contractdomain.ErrInvalidDocument, http.StatusBadRequest},
	{contractdomain.ErrDocumentTooLarge, http.StatusBadRequest},
	{userdomain.ErrInvalidUser, http.StatusBadRequest},

	{contractdomain.ErrForbidden, http.StatusForbidden},
	{contractdomain.ErrLockNotHeld, http.StatusForbidden},
	{userdomain.ErrForbidden, http.StatusForbidden},

	{contractdomain.ErrAlreadyLocked, http.StatusConflict},
	{contractdomain.ErrInvalidTransition, http.StatusConflict},
	{contractdomain.ErrConcurrentUpdate, http.StatusConflict},
	{contractdomain.ErrContractAlreadyExists, http.StatusConflict},
	{userdomain.ErrUserAlreadyExists, http.StatusConflict},

	{contractdomain.ErrMissingReason, http.StatusUnprocessableEntity},

	{contractdomain.ErrUpstreamUnavailable, http.StatusServiceUnavailable},
}

// Status returns the HTTP status for err and the sentinel it matched.
// Unrecognised errors map to 500 with a nil sentinel.
func Status(err error) (int, error) {
	for _, m := range mappings {
		if errors.Is(err, m.sentinel) {
			return m.status, m.sentinel
		}
	}
	return http.StatusInternalServerError, nil
}

// Respond logs err against the request context and writes the envelope.
// In production the details of 5xx responses are replaced with the status text.
func Respond(w http.ResponseWriter, r *http.Request, log logger.Logger, production bool, err error) {
	status, _ := Status(err)
	if status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed", "status", status, "error", err)
		telemetry.ReportError(r.Context(), err)
	} else {
		log.WarnContext(r.Context(), "request rejected", "status", status, "error", err)
	}
	write(w, err, production)
}

// write sends the JSON error envelope. The error field carries the matched
// sentinel message and details the wrapped chain.
func write(w http.ResponseWriter, err error, production bool) {
	status, sentinel := Status(err)
	message := http.StatusText(status)
	if sentinel != nil {
		message = sentinel.Error()
	}
	httpx.JSONErrorDetails(w, status, message, httpx.SafeError(err, status, production))
}
