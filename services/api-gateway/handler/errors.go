package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
)

// Error codes returned in the "code" field of error bodies.
const (
	codeInvalidInput       = "InvalidInput"
	codeNotFound           = "NotFound"
	codeInvalidTransition  = "InvalidTransition"
	codeConflict           = "Conflict"
	codePreconditionFailed = "PreconditionFailed"
	codeInvalidTimeRange   = "InvalidTimeRange"
	codeUnavailable        = "Unavailable"
	codeRateLimited        = "RateLimited"
	codeInternal           = "Internal"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps a service error onto an HTTP status and error code.
func statusFor(err error) (int, string) {
	var (
		invalidInput *domain.InvalidInputError
		notFound     *domain.NotFoundError
		transition   *domain.InvalidTransitionError
		conflict     *domain.ConflictError
		precondition *domain.PreconditionFailedError
		timeRange    *domain.InvalidTimeRangeError
		unavailable  *domain.UnavailableError
	)
	switch {
	case errors.As(err, &invalidInput):
		return http.StatusBadRequest, codeInvalidInput
	case errors.As(err, &notFound):
		return http.StatusNotFound, codeNotFound
	case errors.As(err, &transition):
		return http.StatusConflict, codeInvalidTransition
	case errors.As(err, &conflict):
		return http.StatusConflict, codeConflict
	case errors.As(err, &precondition):
		return http.StatusPreconditionFailed, codePreconditionFailed
	case errors.As(err, &timeRange):
		return http.StatusUnprocessableEntity, codeInvalidTimeRange
	case errors.As(err, &unavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, codeUnavailable
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

// writeError renders err. Internal errors are logged and hidden from the client.
func (h *REST) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		msg = "internal error"
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}
