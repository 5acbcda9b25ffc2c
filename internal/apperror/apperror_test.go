package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCodeByKind(t *testing.T) {
	cases := []struct {
		kind Kind
		code int
		safe bool
	}{
		{Validation, http.StatusBadRequest, true},
		{Conflict, http.StatusBadRequest, true},
		{Authentication, http.StatusUnauthorized, true},
		{NotFound, http.StatusNotFound, true},
		{Upstream, http.StatusInternalServerError, false},
		{Internal, http.StatusInternalServerError, false},
	}

	for _, tc := range cases {
		err := New(tc.kind, "msg", nil)
		if got := err.StatusCode(); got != tc.code {
			t.Errorf("%s: expected status %d, got %d", tc.kind, tc.code, got)
		}
		if got := err.Safe(); got != tc.safe {
			t.Errorf("%s: expected safe=%v, got %v", tc.kind, tc.safe, got)
		}
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	sentinel := errors.New("duplicate")
	err := fmt.Errorf("add favorite: %w", NewConflictError("already exists", sentinel))

	if !IsConflict(err) {
		t.Fatalf("expected conflict kind through wrapping, got %s", KindOf(err))
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel to be reachable via errors.Is")
	}
	if KindOf(errors.New("plain")) != Internal {
		t.Fatalf("plain errors must classify as internal")
	}
	if IsNotFound(nil) {
		t.Fatalf("nil must not classify as not found")
	}
}
