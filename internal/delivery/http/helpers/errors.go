package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"holidaymatch/internal/domain"
)

// WriteServiceError maps a service error to its HTTP status and error code.
// Unrecognised errors are logged and reported as 500 without their details.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		WriteJSONError(w, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())
	case errors.Is(err, domain.ErrSelfInvitation), errors.Is(err, domain.ErrInvalidInput):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicateInvitation), errors.Is(err, domain.ErrInvalidStatusTransition),
		errors.Is(err, domain.ErrConversationState):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrInvitationNotFound), errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrNotAuthorized), errors.Is(err, domain.ErrNotMatched):
		WriteJSONError(w, http.StatusForbidden, ErrCodeForbidden, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}
