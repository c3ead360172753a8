package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/recipe-share/internal/rewriting"
	"github.com/jonathan/recipe-share/internal/share"
)

// HTTPStatus maps pipeline and token-lifecycle errors to status codes.
// Expected lifecycle states get specific statuses, never a generic 500:
// absent tokens are 404, terminal tokens are 410 Gone, policy violations
// and empty batches are 400, and an unreachable rewrite service is 503.
func HTTPStatus(err error) int {
	var (
		notFound    *share.ErrTokenNotFound
		gone        *share.ErrTokenGone
		scope       *share.ErrInvalidScope
		selfImport  *share.ErrSelfImport
		emptyBatch  *share.ErrEmptyBatch
		unavailable *rewriting.UnavailableError
	)

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &gone):
		return http.StatusGone
	case errors.As(err, &scope), errors.As(err, &selfImport), errors.As(err, &emptyBatch):
		return http.StatusBadRequest
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
