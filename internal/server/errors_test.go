package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/recipe-share/internal/rewriting"
	"github.com/jonathan/recipe-share/internal/share"
)

func TestHTTPStatus_Mapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"token not found", &share.ErrTokenNotFound{}, http.StatusNotFound},
		{"token used", &share.ErrTokenGone{Reason: share.ReasonUsed}, http.StatusGone},
		{"token expired", &share.ErrTokenGone{Reason: share.ReasonExpired}, http.StatusGone},
		{"invalid scope", &share.ErrInvalidScope{Scope: "public"}, http.StatusBadRequest},
		{"self import", &share.ErrSelfImport{}, http.StatusBadRequest},
		{"empty batch", &share.ErrEmptyBatch{}, http.StatusBadRequest},
		{"rewrite unavailable", &rewriting.UnavailableError{Message: "down"}, http.StatusServiceUnavailable},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestHTTPStatus_WrappedErrors(t *testing.T) {
	err := fmt.Errorf("redeem failed: %w", &share.ErrTokenGone{Reason: share.ReasonExpired})
	assert.Equal(t, http.StatusGone, HTTPStatus(err))
}
