package middleware

import (
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/fuzzy"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/resolution"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/search"
)

var statusBySentinel = []struct {
	err    error
	status int
}{
	{search.ErrUnknownCollection, http.StatusNotFound},
	{search.ErrInvalidQuery, http.StatusBadRequest},
	{fuzzy.ErrInvalidConfig, http.StatusBadRequest},
	{resolution.ErrInvalidSession, http.StatusUnprocessableEntity},
	{resolution.ErrSessionNotOpen, http.StatusNotFound},
	{resolution.ErrUnknownRow, http.StatusNotFound},
	{resolution.ErrRowInvalid, http.StatusBadRequest},
	{resolution.ErrMissingPersonID, http.StatusBadRequest},
	{resolution.ErrUnexpectedPersonID, http.StatusBadRequest},
	{resolution.ErrInvalidAction, http.StatusBadRequest},
	{resolution.ErrDecisionsIncomplete, http.StatusPreconditionFailed},
	{resolution.ErrCommitInProgress, http.StatusConflict},
	{resolution.ErrSessionClosed, http.StatusConflict},
	{resolution.ErrSessionLocked, http.StatusConflict},
}

// Translate maps domain errors onto HTTP errors. Errors that already carry a
// status, including upstream failures, are returned unchanged.
func Translate(err error) error {
	if err == nil || httperror.IsHTTPError(err) {
		return err
	}
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return httperror.NewHTTPError(s.status, err.Error())
		}
	}
	return err
}
