package apperr

import (
	"errors"
	"net/http"
	"testing"
)

func TestRequestErrorIs(t *testing.T) {
	cases := []struct {
		status int
		target error
		want   bool
	}{
		{http.StatusNotFound, ErrNotFound, true},
		{http.StatusConflict, ErrConflict, true},
		{http.StatusUnauthorized, ErrUnauthorized, true},
		{http.StatusNotFound, ErrConflict, false},
		{http.StatusInternalServerError, ErrNotFound, false},
		{0, ErrUnauthorized, false},
	}
	for _, tc := range cases {
		err := NewRequestError(tc.status, "boom")
		if got := errors.Is(err, tc.target); got != tc.want {
			t.Errorf("status %d vs %v: Is = %v, want %v", tc.status, tc.target, got, tc.want)
		}
	}
}

func TestRequestErrorMessage(t *testing.T) {
	err := NewRequestError(http.StatusConflict, "slug taken")
	if err.Error() != "slug taken" {
		t.Errorf("Error() = %q", err.Error())
	}

	// Empty message falls back to a status description.
	err = NewRequestError(http.StatusBadGateway, "")
	if err.Error() == "" {
		t.Error("empty message not defaulted")
	}
}
