package api

import (
	"errors"
	"net/http"

	"github.com/okian/leetlens/internal/adapters/leetcode"
	"github.com/okian/leetlens/internal/adapters/repository"
	"github.com/okian/leetlens/internal/app"
	"github.com/okian/leetlens/internal/contest"
	"github.com/okian/leetlens/internal/domain/recommend"
)

// Sentinel kinds for API errors.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
)

// writeError translates a domain error into a stable wire shape. Unmapped
// errors become 500s without leaking internals.
func writeError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, recommend.ErrInvalidInput),
		errors.Is(err, app.ErrInvalidTitle):
		status, code = http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, app.ErrMissingCredentials),
		errors.Is(err, leetcode.ErrMissingCredentials):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, repository.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, contest.ErrRebuildFailed),
		errors.Is(err, leetcode.ErrUpstream):
		status, code = http.StatusBadGateway, "upstream_failed"
	}

	msg := http.StatusText(status)
	if status != http.StatusInternalServerError {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
