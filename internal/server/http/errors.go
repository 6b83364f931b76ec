package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/cmskeeper/internal/common"
)

// errBadRequest marks malformed or invalid request input.
var errBadRequest = errors.New("bad request")

var statusByError = []struct {
	err    error
	status int
}{
	{common.ErrIncorrectAuthorizationToken, http.StatusUnauthorized},
	{common.ErrIncorrectRefreshToken, http.StatusUnauthorized},
	{common.ErrForbidden, http.StatusForbidden},

	{common.ErrUserNotExist, http.StatusNotFound},
	{common.ErrPageNotExist, http.StatusNotFound},
	{common.ErrCategoryNotExist, http.StatusNotFound},
	{common.ErrParentCategoryNotExist, http.StatusNotFound},
	{common.ErrFileNotExist, http.StatusNotFound},
	{common.ErrSettingNotExist, http.StatusNotFound},
	{common.ErrInvalidResetToken, http.StatusNotFound},
	{common.ErrorNotFound, http.StatusNotFound},

	{common.ErrWrongCredentials, http.StatusBadRequest},
	{common.ErrCredentialsInUse, http.StatusBadRequest},
	{common.ErrSlugAlreadyExists, http.StatusBadRequest},
	{common.ErrTooManySlugAttempts, http.StatusBadRequest},
	{common.ErrCategoryOwnParent, http.StatusBadRequest},
	{common.ErrFileNotSent, http.StatusBadRequest},
	{common.ErrUnsupportedFileType, http.StatusBadRequest},
	{errBadRequest, http.StatusBadRequest},
}

// statusFor maps a service error to an HTTP status. Unknown errors are
// internal.
func statusFor(err error) int {
	for _, e := range statusByError {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// writeError answers with the status matching err. Internal errors are
// logged and their message is not exposed.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
